package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase identifies one stage of a simulation tick.
type Phase uint8

// Phases in the order Step runs them.
const (
	PhaseViews Phase = iota
	PhaseParallel
	PhaseResolve
	PhaseGraze
	PhaseLifecycle
	PhaseFlora
	numPhases
)

var phaseNames = [numPhases]string{
	"views", "parallel", "resolve", "graze", "lifecycle", "flora",
}

// String returns the phase's log key.
func (p Phase) String() string {
	if p < numPhases {
		return phaseNames[p]
	}
	return "unknown"
}

// phaseTimes holds one duration per phase.
type phaseTimes [numPhases]time.Duration

// PerfCollector times tick phases over a ring of the last windowSize ticks.
// It is driven from the orchestrator goroutine only.
type PerfCollector struct {
	ticks  []time.Duration
	phases []phaseTimes
	next   int
	filled int

	cur        phaseTimes
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool
	last       time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize ticks
// (50 when windowSize < 1, one second at the default tick rate).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 50
	}
	return &PerfCollector{
		ticks:  make([]time.Duration, windowSize),
		phases: make([]phaseTimes, windowSize),
	}
}

// StartTick begins timing a new tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.cur = phaseTimes{}
	p.inPhase = false
}

// StartPhase ends the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := time.Now()
	p.endPhase(now)
	p.phase = phase
	p.phaseStart = now
	p.inPhase = true
}

func (p *PerfCollector) endPhase(now time.Time) {
	if p.inPhase && p.phase < numPhases {
		p.cur[p.phase] += now.Sub(p.phaseStart)
	}
	p.inPhase = false
}

// EndTick finishes the tick and stores its sample in the ring.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.endPhase(now)

	p.last = now.Sub(p.tickStart)
	p.ticks[p.next] = p.last
	p.phases[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ticks)
	if p.filled < len(p.ticks) {
		p.filled++
	}
}

// LastTickDuration returns the duration of the most recently completed tick.
func (p *PerfCollector) LastTickDuration() time.Duration {
	return p.last
}

// PerfStats holds aggregated timing over the collector's window.
type PerfStats struct {
	Samples         int
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	P95TickDuration time.Duration
	TicksPerSecond  float64

	PhaseAvg [numPhases]time.Duration
	PhasePct [numPhases]float64 // Share of the average tick, 0-100
}

// Stats aggregates the samples currently in the window.
func (p *PerfCollector) Stats() PerfStats {
	n := p.filled
	if n == 0 {
		return PerfStats{}
	}

	ns := make([]float64, n)
	var sums phaseTimes
	s := PerfStats{Samples: n, MinTickDuration: p.ticks[0]}
	for i := 0; i < n; i++ {
		d := p.ticks[i]
		ns[i] = float64(d)
		if d < s.MinTickDuration {
			s.MinTickDuration = d
		}
		if d > s.MaxTickDuration {
			s.MaxTickDuration = d
		}
		for ph, pd := range p.phases[i] {
			sums[ph] += pd
		}
	}

	sort.Float64s(ns)
	s.AvgTickDuration = time.Duration(stat.Mean(ns, nil))
	s.P95TickDuration = time.Duration(stat.Quantile(0.95, stat.Empirical, ns, nil))
	if s.AvgTickDuration > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTickDuration)
	}

	for ph := range sums {
		s.PhaseAvg[ph] = sums[ph] / time.Duration(n)
		if s.AvgTickDuration > 0 {
			s.PhasePct[ph] = float64(s.PhaseAvg[ph]) / float64(s.AvgTickDuration) * 100
		}
	}
	return s
}

// LogStats logs the window's timing at Info.
func (s PerfStats) LogStats() {
	slog.Info("perf", "perf", s)
}

// LogValue implements slog.LogValuer for structured logging.
// Phases under 0.1% of the tick are left out.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("p95_tick_us", s.P95TickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Int("ticks_per_sec", int(s.TicksPerSecond)),
	}
	for ph, pct := range s.PhasePct {
		if pct > 0.1 {
			attrs = append(attrs, slog.Float64(Phase(ph).String()+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd    int32   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	P95TickUS    int64   `csv:"p95_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	ViewsPct     float64 `csv:"views_pct"`
	ParallelPct  float64 `csv:"parallel_pct"`
	ResolvePct   float64 `csv:"resolve_pct"`
	GrazePct     float64 `csv:"graze_pct"`
	LifecyclePct float64 `csv:"lifecycle_pct"`
	FloraPct     float64 `csv:"flora_pct"`
}

// ToCSV flattens the stats into a perf.csv row.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		P95TickUS:    s.P95TickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		ViewsPct:     s.PhasePct[PhaseViews],
		ParallelPct:  s.PhasePct[PhaseParallel],
		ResolvePct:   s.PhasePct[PhaseResolve],
		GrazePct:     s.PhasePct[PhaseGraze],
		LifecyclePct: s.PhasePct[PhaseLifecycle],
		FloraPct:     s.PhasePct[PhaseFlora],
	}
}

package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the kind of moment a bookmark marks.
type BookmarkType string

const (
	BookmarkHuntSurge           BookmarkType = "hunt_surge"
	BookmarkCarnivoreRecovery   BookmarkType = "carnivore_recovery"
	BookmarkCarnivoreExtinction BookmarkType = "carnivore_extinction"
	BookmarkHerbivoreExtinction BookmarkType = "herbivore_extinction"
	BookmarkHerbivoreCrash      BookmarkType = "herbivore_crash"
	BookmarkStableEcosystem     BookmarkType = "stable_ecosystem"
	BookmarkSpeciation          BookmarkType = "speciation"
)

// Detector thresholds.
const (
	huntSurgeFactor   = 2.0 // Kills over this multiple of the recent average
	huntSurgeMinKills = 3
	recoveryLowWater  = 3 // Carnivore count that counts as near-extinct
	recoveryFactor    = 3
	recoveryMin       = 6
	crashDrop         = 0.30 // Fraction lost from the recent herbivore peak
	crashMinLoss      = 10
	stableSpan        = 4    // Windows the variance is measured over
	stableMaxCV2      = 0.04 // Squared coefficient of variation, CV < 0.2
	stableHold        = 5    // Consecutive stable checks before triggering
	stableMinHerb     = 10
	stableMinCarn     = 3
)

// Bookmark marks a window worth looking at in the telemetry.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark at Info.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector watches the stream of window records for population
// events. Each rule sees the new record and the history before it.
type BookmarkDetector struct {
	history []Record // ring, oldest first once unrolled
	next    int
	full    bool

	carnLow     int // Lowest carnivore count since the last recovery
	herbPeak    int // Highest herbivore count since the last crash
	stableCount int

	rules []func(r Record, past []Record) (Bookmark, bool)
}

// NewBookmarkDetector creates a detector remembering historySize windows (at least 5).
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < stableSpan+1 {
		historySize = stableSpan + 1
	}
	bd := &BookmarkDetector{history: make([]Record, historySize)}
	bd.rules = []func(Record, []Record) (Bookmark, bool){
		bd.huntSurge,
		bd.carnivoreRecovery,
		bd.extinctions(BookmarkCarnivoreExtinction, "Carnivores", func(r Record) int { return r.Carnivores }),
		bd.extinctions(BookmarkHerbivoreExtinction, "Herbivores", func(r Record) int { return r.Herbivores }),
		bd.herbivoreCrash,
		bd.stableEcosystem,
		bd.speciation,
	}
	return bd
}

// Check runs every rule against r, then adds r to the history.
// The first record never triggers.
func (bd *BookmarkDetector) Check(r Record) []Bookmark {
	var out []Bookmark

	if past := bd.past(); len(past) > 0 {
		for _, rule := range bd.rules {
			if b, ok := rule(r, past); ok {
				out = append(out, b)
			}
		}
	}

	bd.push(r)
	if bd.carnLow == 0 || r.Carnivores < bd.carnLow {
		bd.carnLow = r.Carnivores
	}
	if r.Herbivores > bd.herbPeak {
		bd.herbPeak = r.Herbivores
	}
	return out
}

func (bd *BookmarkDetector) push(r Record) {
	bd.history[bd.next] = r
	bd.next = (bd.next + 1) % len(bd.history)
	if bd.next == 0 {
		bd.full = true
	}
}

// past returns the remembered records in arrival order.
func (bd *BookmarkDetector) past() []Record {
	if !bd.full {
		return bd.history[:bd.next]
	}
	out := make([]Record, 0, len(bd.history))
	out = append(out, bd.history[bd.next:]...)
	return append(out, bd.history[:bd.next]...)
}

func (bd *BookmarkDetector) huntSurge(r Record, past []Record) (Bookmark, bool) {
	if len(past) < 3 {
		return Bookmark{}, false
	}
	kills := make([]float64, len(past))
	for i, h := range past {
		kills[i] = float64(h.Kills)
	}
	avg := stat.Mean(kills, nil)
	if avg == 0 || float64(r.Kills) <= avg*huntSurgeFactor || r.Kills < huntSurgeMinKills {
		return Bookmark{}, false
	}
	return Bookmark{
		Type:        BookmarkHuntSurge,
		Tick:        r.Tick,
		Description: fmt.Sprintf("%d kills is %.1fx average (%.2f)", r.Kills, float64(r.Kills)/avg, avg),
	}, true
}

func (bd *BookmarkDetector) carnivoreRecovery(r Record, _ []Record) (Bookmark, bool) {
	low := bd.carnLow
	if low == 0 || low > recoveryLowWater {
		return Bookmark{}, false
	}
	if r.Carnivores < low*recoveryFactor || r.Carnivores < recoveryMin {
		return Bookmark{}, false
	}
	bd.carnLow = r.Carnivores
	return Bookmark{
		Type:        BookmarkCarnivoreRecovery,
		Tick:        r.Tick,
		Description: fmt.Sprintf("Carnivore population recovered from %d to %d", low, r.Carnivores),
	}, true
}

// extinctions builds a rule that fires when count drops from positive to zero.
func (bd *BookmarkDetector) extinctions(typ BookmarkType, label string, count func(Record) int) func(Record, []Record) (Bookmark, bool) {
	return func(r Record, past []Record) (Bookmark, bool) {
		prev := count(past[len(past)-1])
		if prev == 0 || count(r) != 0 {
			return Bookmark{}, false
		}
		return Bookmark{
			Type:        typ,
			Tick:        r.Tick,
			Description: fmt.Sprintf("%s died out (%d in previous window)", label, prev),
		}, true
	}
}

func (bd *BookmarkDetector) herbivoreCrash(r Record, _ []Record) (Bookmark, bool) {
	peak := bd.herbPeak
	if peak == 0 {
		return Bookmark{}, false
	}
	drop := 1 - float64(r.Herbivores)/float64(peak)
	if drop <= crashDrop || r.Herbivores >= peak-crashMinLoss {
		return Bookmark{}, false
	}
	bd.herbPeak = r.Herbivores
	return Bookmark{
		Type:        BookmarkHerbivoreCrash,
		Tick:        r.Tick,
		Description: fmt.Sprintf("Herbivores crashed %.0f%% from peak %d to %d", drop*100, peak, r.Herbivores),
	}, true
}

// stableEcosystem fires once when both populations have held steady over
// the last stableSpan windows for stableHold consecutive checks.
func (bd *BookmarkDetector) stableEcosystem(r Record, past []Record) (Bookmark, bool) {
	if r.Herbivores < stableMinHerb || r.Carnivores < stableMinCarn {
		bd.stableCount = 0
		return Bookmark{}, false
	}
	if len(past) < stableSpan {
		return Bookmark{}, false
	}

	recent := past[len(past)-stableSpan:]
	herb := make([]float64, stableSpan)
	carn := make([]float64, stableSpan)
	for i, h := range recent {
		herb[i] = float64(h.Herbivores)
		carn[i] = float64(h.Carnivores)
	}

	if cv2(herb) < stableMaxCV2 && cv2(carn) < stableMaxCV2 {
		bd.stableCount++
	} else {
		bd.stableCount = 0
	}
	if bd.stableCount != stableHold {
		return Bookmark{}, false
	}
	return Bookmark{
		Type:        BookmarkStableEcosystem,
		Tick:        r.Tick,
		Description: fmt.Sprintf("Stable ecosystem with %d herbivores, %d carnivores over %d+ windows", r.Herbivores, r.Carnivores, stableHold),
	}, true
}

func (bd *BookmarkDetector) speciation(r Record, _ []Record) (Bookmark, bool) {
	if r.Speciations == 0 {
		return Bookmark{}, false
	}
	return Bookmark{
		Type:        BookmarkSpeciation,
		Tick:        r.Tick,
		Description: fmt.Sprintf("%d herbivore litters turned carnivore (%d carnivores now)", r.Speciations, r.Carnivores),
	}, true
}

// cv2 is the squared coefficient of variation; zero for a zero mean.
func cv2(x []float64) float64 {
	mean, variance := stat.PopMeanVariance(x, nil)
	if mean == 0 {
		return 0
	}
	return variance / (mean * mean)
}

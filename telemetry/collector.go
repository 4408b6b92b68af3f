package telemetry

import "time"

// Collector accumulates events within tick windows and produces Records.
type Collector struct {
	windowDurationTicks int32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	births      int
	deaths      int
	kills       int
	plantsEaten int
	speciations int
}

// NewCollector creates a collector that flushes every intervalTicks ticks.
func NewCollector(intervalTicks int) *Collector {
	if intervalTicks < 1 {
		intervalTicks = 1
	}
	return &Collector{windowDurationTicks: int32(intervalTicks)}
}

// RecordBirth records a birth event.
func (c *Collector) RecordBirth() {
	c.births++
}

// RecordDeath records a death event, whether by starvation or predation.
func (c *Collector) RecordDeath() {
	c.deaths++
}

// RecordKill records a successful hunt.
func (c *Collector) RecordKill() {
	c.kills++
}

// RecordPlantsEaten records n plants consumed.
func (c *Collector) RecordPlantsEaten(n int) {
	c.plantsEaten += n
}

// RecordSpeciation records a speciation litter.
func (c *Collector) RecordSpeciation() {
	c.speciations++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Sample is the population state the engine observes at window end.
type Sample struct {
	SpawnRate    float64
	Plants       int
	Herbivores   int
	Carnivores   int
	TickDuration time.Duration
	Means        TraitMeans
}

// Flush produces a Record and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, s Sample) Record {
	r := Record{
		WindowStartTick: c.windowStartTick,
		Tick:            currentTick,

		SpawnRate:      s.SpawnRate,
		Plants:         s.Plants,
		Herbivores:     s.Herbivores,
		Carnivores:     s.Carnivores,
		TickDurationUS: s.TickDuration.Microseconds(),

		MeanSize:   s.Means.Size,
		MeanSpeed:  s.Means.Speed,
		MeanEnergy: s.Means.Energy,
		MeanVision: s.Means.Vision,

		Births:      c.births,
		Deaths:      c.deaths,
		Kills:       c.kills,
		PlantsEaten: c.plantsEaten,
		Speciations: c.speciations,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.births = 0
	c.deaths = 0
	c.kills = 0
	c.plantsEaten = 0
	c.speciations = 0

	return r
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}

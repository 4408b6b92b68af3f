// Package game runs the tick engine: an ark world holding the agents, an
// ordered handle list fixing iteration order, the plant store, and the worker
// pool that runs per-agent updates.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/genetics"
	"github.com/pthm-cable/critters/scheduler"
	"github.com/pthm-cable/critters/systems"
	"github.com/pthm-cable/critters/telemetry"
	"github.com/pthm-cable/critters/traits"
)

// Options configures a Game beyond the simulation config.
type Options struct {
	Seed          int64                  // RNG seed; the same seed and config replay the same run
	OutputDir     string                 // Directory for CSV output (empty = disabled)
	LogStats      bool                   // Log window records and perf to slog
	StatsCallback func(telemetry.Record) // Called for every flushed window
}

// Game holds the complete simulation state.
type Game struct {
	cfg  *config.Config
	rng  *rand.Rand
	seed int64

	world *ecs.World

	// Entity mappers
	agentMapper *ecs.Map5[
		components.Position,
		components.Velocity,
		traits.Genome,
		components.Energy,
		components.Organism,
	]
	agentFilter *ecs.Filter5[
		components.Position,
		components.Velocity,
		traits.Genome,
		components.Energy,
		components.Organism,
	]

	// Individual component mappers for lookups
	posMap    *ecs.Map1[components.Position]
	velMap    *ecs.Map1[components.Velocity]
	genomeMap *ecs.Map1[traits.Genome]
	energyMap *ecs.Map1[components.Energy]
	orgMap    *ecs.Map1[components.Organism]

	// Ordered population store. Appended on birth, compacted in order on death.
	agents []ecs.Entity
	births []genetics.Offspring

	flora *systems.FloraSystem

	pool     *scheduler.Pool
	parallel *parallelState

	physiology systems.Physiology
	params     systems.BehaviorParams
	rules      genetics.Rules
	bounds     systems.Bounds

	// State
	tick    int32
	nextID  uint32
	numHerb int
	numCarn int

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	logStats         bool
	statsCallback    func(telemetry.Record)
	lastRecord       telemetry.Record
}

// New creates a simulation from cfg, seeds the initial population and plants,
// and starts the worker pool. Call Close to stop the workers.
func New(cfg *config.Config, opts Options) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	world := ecs.NewWorld()

	g := &Game{
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(opts.Seed)),
		seed:  opts.Seed,
		world: world,
		agentMapper: ecs.NewMap5[
			components.Position,
			components.Velocity,
			traits.Genome,
			components.Energy,
			components.Organism,
		](world),
		agentFilter: ecs.NewFilter5[
			components.Position,
			components.Velocity,
			traits.Genome,
			components.Energy,
			components.Organism,
		](world),
		posMap:    ecs.NewMap1[components.Position](world),
		velMap:    ecs.NewMap1[components.Velocity](world),
		genomeMap: ecs.NewMap1[traits.Genome](world),
		energyMap: ecs.NewMap1[components.Energy](world),
		orgMap:    ecs.NewMap1[components.Organism](world),

		agents: make([]ecs.Entity, 0, 256),
		flora:  systems.NewFloraSystem(cfg),

		physiology: systems.PhysiologyFromConfig(cfg),
		params:     systems.BehaviorParamsFromConfig(cfg),
		rules:      genetics.RulesFromConfig(cfg),
		bounds:     systems.Bounds{Width: cfg.Arena.Width, Height: cfg.Arena.Height},

		nextID: 1,

		collector:        telemetry.NewCollector(cfg.Telemetry.Interval),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		outputManager:    om,
		logStats:         opts.LogStats,
		statsCallback:    opts.StatsCallback,
	}
	g.parallel = newParallelState(g)

	g.spawnInitialPopulation()
	g.spawnInitialPlants()

	g.pool = scheduler.New(cfg.Sim.Workers)

	slog.Info("simulation_started",
		"seed", opts.Seed,
		"workers", g.pool.Workers(),
		"herbivores", g.numHerb,
		"carnivores", g.numCarn,
		"plants", g.flora.Count(),
		"arena_w", cfg.Arena.Width,
		"arena_h", cfg.Arena.Height,
	)

	return g, nil
}

// Close stops the worker pool and flushes output files. It is safe to call more than once.
func (g *Game) Close() error {
	g.pool.Close()
	om := g.outputManager
	g.outputManager = nil
	if err := om.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}
	return nil
}

// Tick returns the number of completed ticks.
func (g *Game) Tick() int32 {
	return g.tick
}

// Seed returns the RNG seed the run started from.
func (g *Game) Seed() int64 {
	return g.seed
}

// Population returns the live herbivore and carnivore counts.
func (g *Game) Population() (herbivores, carnivores int) {
	return g.numHerb, g.numCarn
}

// PlantCount returns the number of live plants.
func (g *Game) PlantCount() int {
	return g.flora.Count()
}

// PlantSpawnChance returns the per-tick plant spawn probability.
func (g *Game) PlantSpawnChance() float64 {
	return g.flora.SpawnChance()
}

// SetPlantSpawnChance changes the per-tick plant spawn probability.
func (g *Game) SetPlantSpawnChance(p float64) {
	g.flora.SetSpawnChance(p)
}

// LastRecord returns the most recently flushed telemetry record.
func (g *Game) LastRecord() telemetry.Record {
	return g.lastRecord
}

package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/scheduler"
	"github.com/pthm-cable/critters/telemetry"
	"github.com/pthm-cable/critters/traits"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// emptyConfig returns defaults with no seed population, no plants and no speciation.
func emptyConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Population.Herbivores = 0
	cfg.Population.Carnivores = 0
	cfg.Flora.Initial = 0
	cfg.Flora.SpawnChance = 0
	cfg.Genetics.SpeciationChance = 0
	cfg.Sim.Workers = 4
	return cfg
}

func newTestGame(t *testing.T, cfg *config.Config, opts Options) *Game {
	t.Helper()
	g, err := New(cfg, opts)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, g.Close())
	})
	return g
}

var seedGenome = traits.Uniform(128)

func TestLoneHerbivoreOnlyDrains(t *testing.T) {
	g := newTestGame(t, emptyConfig(t), Options{Seed: 1})
	e := g.spawnAgent(seedGenome, traits.Herbivore, r2.Vec{X: 480, Y: 360}, r2.Vec{X: 1})
	metabolism := g.physiology.MetabolismOf(seedGenome)

	for tick := 0; tick < 200; tick++ {
		before := g.energyMap.Get(e).Current
		require.NoError(t, g.Step())

		require.True(t, g.world.Alive(e))
		energy := g.energyMap.Get(e)
		org := g.orgMap.Get(e)
		require.InDelta(t, before-metabolism, energy.Current, 1e-9, "tick %d", tick)
		require.NotEqual(t, components.StatusFleeing, org.Status)
		require.NotEqual(t, components.StatusForaging, org.Status)
	}
}

func TestLoneHerbivoreStarves(t *testing.T) {
	g := newTestGame(t, emptyConfig(t), Options{Seed: 1})
	e := g.spawnAgent(seedGenome, traits.Herbivore, r2.Vec{X: 480, Y: 360}, r2.Vec{X: 1})
	g.energyMap.Get(e).Current = 2

	for i := 0; i < 5; i++ {
		require.NoError(t, g.Step())
	}
	assert.False(t, g.world.Alive(e))
	assert.Empty(t, g.agents)

	herb, carn := g.Population()
	assert.Zero(t, herb)
	assert.Zero(t, carn)
}

func TestHeadOnCollisionBounces(t *testing.T) {
	g := newTestGame(t, emptyConfig(t), Options{Seed: 1})
	a := g.spawnAgent(seedGenome, traits.Herbivore, r2.Vec{X: 100, Y: 100}, r2.Vec{X: 1})
	b := g.spawnAgent(seedGenome, traits.Herbivore, r2.Vec{X: 115, Y: 100}, r2.Vec{X: -1})

	g.buildViews()
	g.resolveInteractions()

	assert.InDelta(t, -1, g.velMap.Get(a).X, 1e-12)
	assert.InDelta(t, 1, g.velMap.Get(b).X, 1e-12)
	assert.True(t, g.orgMap.Get(a).Bouncing)
	assert.True(t, g.orgMap.Get(b).Bouncing)

	// The next tick keeps the bounced velocities and clears the flag.
	require.NoError(t, g.Step())
	assert.False(t, g.orgMap.Get(a).Bouncing)
	assert.False(t, g.orgMap.Get(b).Bouncing)
	assert.InDelta(t, -1, g.velMap.Get(a).X, 1e-12)
	assert.InDelta(t, 1, g.velMap.Get(b).X, 1e-12)
}

func TestSeparatingOverlapDoesNotBounce(t *testing.T) {
	g := newTestGame(t, emptyConfig(t), Options{Seed: 1})
	a := g.spawnAgent(seedGenome, traits.Herbivore, r2.Vec{X: 100, Y: 100}, r2.Vec{X: -1})
	b := g.spawnAgent(seedGenome, traits.Herbivore, r2.Vec{X: 115, Y: 100}, r2.Vec{X: 1})

	g.buildViews()
	g.resolveInteractions()

	assert.False(t, g.orgMap.Get(a).Bouncing)
	assert.False(t, g.orgMap.Get(b).Bouncing)
	assert.InDelta(t, -1, g.velMap.Get(a).X, 1e-12)
}

func TestMatingAndReproduction(t *testing.T) {
	g := newTestGame(t, emptyConfig(t), Options{Seed: 3})
	a := g.spawnAgent(seedGenome, traits.Herbivore, r2.Vec{X: 300, Y: 300}, r2.Vec{X: 1})
	b := g.spawnAgent(seedGenome, traits.Herbivore, r2.Vec{X: 400, Y: 300}, r2.Vec{X: 1})

	maxE := g.physiology.MaxEnergyOf(seedGenome)
	metabolism := g.physiology.MetabolismOf(seedGenome)
	g.energyMap.Get(a).Current = 0.95 * maxE
	g.energyMap.Get(b).Current = 0.95 * maxE

	require.NoError(t, g.Step())
	assert.Equal(t, components.StatusMating, g.orgMap.Get(a).Status)
	assert.Equal(t, components.StatusMating, g.orgMap.Get(b).Status)
	require.Len(t, g.agents, 2)

	bred := false
	for tick := 0; tick < 40 && !bred; tick++ {
		beforeA := g.energyMap.Get(a).Current
		beforeB := g.energyMap.Get(b).Current
		require.NoError(t, g.Step())

		if len(g.agents) == 2 {
			continue
		}
		bred = true

		require.Len(t, g.agents, 3)
		assert.InDelta(t, (beforeA-metabolism)/2, g.energyMap.Get(a).Current, 1e-9)
		assert.InDelta(t, (beforeB-metabolism)/2, g.energyMap.Get(b).Current, 1e-9)
		assert.Equal(t, components.StatusIdle, g.orgMap.Get(a).Status)
		assert.True(t, g.orgMap.Get(a).Bouncing)

		child := g.agents[2]
		childGenome := *g.genomeMap.Get(child)
		assert.Equal(t, traits.Herbivore, g.orgMap.Get(child).Diet)
		assert.InDelta(t, g.physiology.MaxEnergyOf(childGenome)/2, g.energyMap.Get(child).Current, 1e-9)
	}
	require.True(t, bred, "mates never met")

	herb, _ := g.Population()
	assert.Equal(t, 3, herb)
}

func TestSpeciationLitter(t *testing.T) {
	cfg := emptyConfig(t)
	cfg.Genetics.SpeciationChance = 1
	g := newTestGame(t, cfg, Options{Seed: 5})

	a := g.spawnAgent(seedGenome, traits.Herbivore, r2.Vec{X: 100, Y: 100}, r2.Vec{X: 1})
	b := g.spawnAgent(seedGenome, traits.Herbivore, r2.Vec{X: 115, Y: 100}, r2.Vec{X: -1})

	g.buildViews()
	g.orgMap.Get(a).Status = components.StatusMating
	g.orgMap.Get(b).Status = components.StatusMating
	g.resolveInteractions()
	g.cleanupDead()
	g.flushBirths()

	herb, carn := g.Population()
	assert.Equal(t, 2, herb)
	assert.Equal(t, cfg.Genetics.SpeciationLitter, carn)
	require.Len(t, g.agents, 2+cfg.Genetics.SpeciationLitter)
	for _, e := range g.agents[2:] {
		assert.Equal(t, traits.Carnivore, g.orgMap.Get(e).Diet)
	}
}

func TestPredation(t *testing.T) {
	tests := []struct {
		name          string
		carnivoreLast bool
	}{
		{"carnivore first", false},
		{"carnivore second", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := emptyConfig(t)
			g := newTestGame(t, cfg, Options{Seed: 1})

			spawn := func(diet traits.Diet, x, vx float64) ecs.Entity {
				return g.spawnAgent(seedGenome, diet, r2.Vec{X: x, Y: 200}, r2.Vec{X: vx})
			}
			var carn, herb ecs.Entity
			if tt.carnivoreLast {
				herb = spawn(traits.Herbivore, 200, 1)
				carn = spawn(traits.Carnivore, 215, -1)
			} else {
				carn = spawn(traits.Carnivore, 200, 1)
				herb = spawn(traits.Herbivore, 215, -1)
			}
			g.energyMap.Get(carn).Current = 100
			g.energyMap.Get(herb).Current = 300

			g.buildViews()
			g.resolveInteractions()

			assert.InDelta(t, 100+300-cfg.Interaction.HuntPenalty, g.energyMap.Get(carn).Current, 1e-9)
			assert.True(t, g.energyMap.Get(herb).Dead)
			assert.Zero(t, g.energyMap.Get(herb).Current)

			g.cleanupDead()
			assert.False(t, g.world.Alive(herb))
			assert.Equal(t, []ecs.Entity{carn}, g.agents)
			h, c := g.Population()
			assert.Equal(t, 0, h)
			assert.Equal(t, 1, c)
		})
	}
}

func TestPredationOfStarvedPreyKillsPredator(t *testing.T) {
	cfg := emptyConfig(t)
	cfg.Interaction.HuntPenalty = 20
	g := newTestGame(t, cfg, Options{Seed: 1})
	carn := g.spawnAgent(seedGenome, traits.Carnivore, r2.Vec{X: 200, Y: 200}, r2.Vec{X: 1})
	herb := g.spawnAgent(seedGenome, traits.Herbivore, r2.Vec{X: 215, Y: 200}, r2.Vec{X: -1})

	// The prey is worth less than the hunt costs.
	g.energyMap.Get(carn).Current = 5
	g.energyMap.Get(herb).Current = 5

	g.buildViews()
	g.resolveInteractions()

	assert.Zero(t, g.energyMap.Get(carn).Current)
	assert.True(t, g.energyMap.Get(carn).Dead)

	g.cleanupDead()
	assert.False(t, g.world.Alive(carn))
	assert.False(t, g.world.Alive(herb))
	assert.Empty(t, g.agents)
	h, c := g.Population()
	assert.Zero(t, h)
	assert.Zero(t, c)
}

func TestPredationClampsToMaxEnergy(t *testing.T) {
	g := newTestGame(t, emptyConfig(t), Options{Seed: 1})
	carn := g.spawnAgent(seedGenome, traits.Carnivore, r2.Vec{X: 200, Y: 200}, r2.Vec{X: 1})
	herb := g.spawnAgent(seedGenome, traits.Herbivore, r2.Vec{X: 215, Y: 200}, r2.Vec{X: -1})

	maxE := g.physiology.MaxEnergyOf(seedGenome)
	g.energyMap.Get(carn).Current = 0.9 * maxE
	g.energyMap.Get(herb).Current = 0.9 * maxE

	g.buildViews()
	g.resolveInteractions()

	assert.Equal(t, maxE, g.energyMap.Get(carn).Current)
}

func TestGrazing(t *testing.T) {
	cfg := emptyConfig(t)
	g := newTestGame(t, cfg, Options{Seed: 1})
	herb := g.spawnAgent(seedGenome, traits.Herbivore, r2.Vec{X: 500, Y: 500}, r2.Vec{X: 1})
	g.spawnAgent(seedGenome, traits.Carnivore, r2.Vec{X: 100, Y: 100}, r2.Vec{X: 1})

	require.True(t, g.flora.Add(r2.Vec{X: 505, Y: 500}))
	require.True(t, g.flora.Add(r2.Vec{X: 100, Y: 105})) // under the carnivore
	require.True(t, g.flora.Add(r2.Vec{X: 800, Y: 600}))
	g.energyMap.Get(herb).Current = 10

	g.buildViews()
	g.grazePlants()

	assert.InDelta(t, 10+cfg.Interaction.PlantEnergy, g.energyMap.Get(herb).Current, 1e-9)
	assert.Equal(t, 2, g.PlantCount(), "carnivores do not eat plants")
	assert.Equal(t, r2.Vec{X: 100, Y: 105}, g.flora.Plants()[0].Pos)
}

func TestEnergyStaysInBounds(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Population.RandomTraits = true
	g := newTestGame(t, cfg, Options{Seed: 7})

	for tick := 0; tick < 300; tick++ {
		require.NoError(t, g.Step())

		herb, carn := g.Population()
		require.Equal(t, herb+carn, len(g.agents))

		for _, e := range g.agents {
			require.True(t, g.world.Alive(e))
			energy := g.energyMap.Get(e)
			maxE := g.physiology.MaxEnergyOf(*g.genomeMap.Get(e))
			require.False(t, energy.Dead)
			require.GreaterOrEqual(t, energy.Current, 0.0)
			require.LessOrEqual(t, energy.Current, maxE)
		}

		count := 0
		query := g.agentFilter.Query()
		for query.Next() {
			count++
		}
		require.Equal(t, len(g.agents), count)
	}
}

func TestSameSeedSameRun(t *testing.T) {
	run := func() Snapshot {
		cfg, err := config.Load("")
		require.NoError(t, err)
		g := newTestGame(t, cfg, Options{Seed: 99})
		for i := 0; i < 150; i++ {
			require.NoError(t, g.Step())
		}
		return g.Snapshot()
	}

	a, b := run(), run()
	assert.Equal(t, a.Agents, b.Agents)
	assert.Equal(t, a.Plants, b.Plants)
	assert.Equal(t, a.Herbivores, b.Herbivores)
}

func TestSnapshot(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	g := newTestGame(t, cfg, Options{Seed: 11})
	require.NoError(t, g.Step())

	s := g.Snapshot()
	assert.Equal(t, int32(1), s.Tick)
	assert.Equal(t, cfg.Arena.Width, s.Width)
	assert.Len(t, s.Agents, s.Herbivores+s.Carnivores)
	assert.Equal(t, g.PlantCount(), len(s.Plants))
	assert.InDelta(t, 128, s.Means.Size, 1e-9, "seed population shares one genome")

	// Mutating the snapshot does not reach the engine.
	s.Agents[0].Pos = r2.Vec{X: -1000}
	assert.NotEqual(t, s.Agents[0].Pos, g.posMap.Get(g.agents[0]).Vec)
}

func TestSnapshotAgentAt(t *testing.T) {
	s := Snapshot{Agents: []AgentState{
		{ID: 1, Pos: r2.Vec{X: 100, Y: 100}, Radius: 10},
		{ID: 2, Pos: r2.Vec{X: 112, Y: 100}, Radius: 10},
		{ID: 3, Pos: r2.Vec{X: 300, Y: 300}, Radius: 5},
	}}

	assert.Equal(t, 0, s.AgentAt(104, 100, 0))
	assert.Equal(t, 1, s.AgentAt(108, 100, 0), "closest center wins among overlapping bodies")
	assert.Equal(t, -1, s.AgentAt(300, 308, 0))
	assert.Equal(t, 2, s.AgentAt(300, 308, 4), "slack widens the hit area")

	a, ok := s.AgentByID(3)
	require.True(t, ok)
	assert.Equal(t, 5.0, a.Radius)
	_, ok = s.AgentByID(9)
	assert.False(t, ok)
}

func TestPlantSpawner(t *testing.T) {
	g := newTestGame(t, emptyConfig(t), Options{Seed: 1})

	g.SetPlantSpawnChance(1)
	for i := 0; i < 10; i++ {
		require.NoError(t, g.Step())
	}
	assert.Equal(t, 10, g.PlantCount())
	assert.Equal(t, 1.0, g.PlantSpawnChance())
}

func TestTelemetryWindows(t *testing.T) {
	cfg := emptyConfig(t)
	cfg.Telemetry.Interval = 10
	cfg.Flora.SpawnChance = 0.5
	dir := filepath.Join(t.TempDir(), "out")

	var records []telemetry.Record
	g := newTestGame(t, cfg, Options{
		Seed:          2,
		OutputDir:     dir,
		StatsCallback: func(r telemetry.Record) { records = append(records, r) },
	})
	g.spawnAgent(seedGenome, traits.Herbivore, r2.Vec{X: 480, Y: 360}, r2.Vec{X: 1})

	for i := 0; i < 30; i++ {
		require.NoError(t, g.Step())
	}

	require.Len(t, records, 3)
	assert.Equal(t, []int32{10, 20, 30}, []int32{records[0].Tick, records[1].Tick, records[2].Tick})
	assert.Equal(t, 1, records[2].Herbivores)
	assert.Equal(t, 0.5, records[2].SpawnRate)
	assert.InDelta(t, 128, records[2].MeanSize, 1e-9)
	assert.Equal(t, records[2], g.LastRecord())

	for _, name := range []string{"telemetry.csv", "perf.csv", "bookmarks.csv", "config.yaml"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestTelemetryRecordCarriesItsOwnTickDuration(t *testing.T) {
	cfg := emptyConfig(t)
	cfg.Telemetry.Interval = 1
	cfg.Telemetry.PerfWindow = 10

	var g *Game
	var records []telemetry.Record
	var timed []int
	g = newTestGame(t, cfg, Options{
		Seed: 3,
		StatsCallback: func(r telemetry.Record) {
			records = append(records, r)
			timed = append(timed, g.perfCollector.Stats().Samples)
			assert.Equal(t, g.perfCollector.LastTickDuration().Microseconds(), r.TickDurationUS, "tick %d", r.Tick)
		},
	})
	g.spawnAgent(seedGenome, traits.Herbivore, r2.Vec{X: 480, Y: 360}, r2.Vec{X: 1})

	for i := 0; i < 3; i++ {
		require.NoError(t, g.Step())
	}

	require.Len(t, records, 3)
	assert.Equal(t, []int{1, 2, 3}, timed, "each tick is timed before its record is built")
	assert.Positive(t, g.perfCollector.LastTickDuration())
}

func TestStepAfterCloseFails(t *testing.T) {
	g := newTestGame(t, emptyConfig(t), Options{Seed: 1})
	g.spawnAgent(seedGenome, traits.Herbivore, r2.Vec{X: 480, Y: 360}, r2.Vec{X: 1})

	require.NoError(t, g.Close())
	err := g.Step()
	assert.ErrorIs(t, err, scheduler.ErrClosed)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := emptyConfig(t)
	cfg.Agent.MinRadius = cfg.Agent.MaxRadius

	_, err := New(cfg, Options{})
	assert.Error(t, err)
}

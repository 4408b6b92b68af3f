package game

import (
	"log/slog"
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/genetics"
	"github.com/pthm-cable/critters/traits"
)

// spawnInitialPopulation creates the seed herbivores and carnivores.
func (g *Game) spawnInitialPopulation() {
	pop := g.cfg.Population
	seed := traits.New(
		pop.SeedTraits.Color,
		pop.SeedTraits.Size,
		pop.SeedTraits.Speed,
		pop.SeedTraits.Energy,
		pop.SeedTraits.Vision,
	)

	spawn := func(diet traits.Diet) {
		genome := seed
		if pop.RandomTraits {
			for i := range genome {
				genome[i] = uint8(g.rng.Intn(256))
			}
		}
		radius := g.physiology.RadiusOf(genome)
		g.spawnAgent(genome, diet, g.randomPosition(radius), g.randomHeading())
	}

	for i := 0; i < pop.Herbivores; i++ {
		spawn(traits.Herbivore)
	}
	for i := 0; i < pop.Carnivores; i++ {
		spawn(traits.Carnivore)
	}
}

// spawnInitialPlants scatters the starting plants.
func (g *Game) spawnInitialPlants() {
	for i := 0; i < g.cfg.Flora.Initial; i++ {
		if !g.flora.SpawnRandom(g.rng) {
			break
		}
	}
}

// spawnAgent creates an agent at half its max energy and appends it to the
// population store. Only the serial phase may call it.
func (g *Game) spawnAgent(genome traits.Genome, diet traits.Diet, pos, vel r2.Vec) ecs.Entity {
	id := g.nextID
	g.nextID++

	p := components.Position{Vec: pos}
	v := components.Velocity{Vec: vel}
	energy := components.Energy{Current: g.physiology.MaxEnergyOf(genome) / 2}
	org := components.Organism{
		ID:       id,
		Diet:     diet,
		Status:   components.StatusIdle,
		BornTick: g.tick,
	}

	entity := g.agentMapper.NewEntity(&p, &v, &genome, &energy, &org)
	g.agents = append(g.agents, entity)

	if diet == traits.Herbivore {
		g.numHerb++
	} else {
		g.numCarn++
	}

	return entity
}

// randomPosition returns a uniformly random point keeping a circle of the
// given radius inside the arena.
func (g *Game) randomPosition(radius float64) r2.Vec {
	w := math.Max(g.bounds.Width-2*radius, 0)
	h := math.Max(g.bounds.Height-2*radius, 0)
	return r2.Vec{
		X: radius + g.rng.Float64()*w,
		Y: radius + g.rng.Float64()*h,
	}
}

// randomHeading returns a unit vector with uniformly random direction.
func (g *Game) randomHeading() r2.Vec {
	angle := g.rng.Float64() * 2 * math.Pi
	return r2.Vec{X: math.Cos(angle), Y: math.Sin(angle)}
}

// queueBirths records offspring to be added once the pair scan completes.
func (g *Game) queueBirths(children []genetics.Offspring) {
	g.births = append(g.births, children...)
}

// flushBirths spawns every queued offspring at a random position and heading.
func (g *Game) flushBirths() {
	for _, child := range g.births {
		radius := g.physiology.RadiusOf(child.Genome)
		e := g.spawnAgent(child.Genome, child.Diet, g.randomPosition(radius), g.randomHeading())
		g.collector.RecordBirth()

		slog.Debug("birth",
			"tick", g.tick,
			"id", g.orgMap.Get(e).ID,
			"diet", child.Diet.String(),
		)
	}
	clear(g.births)
	g.births = g.births[:0]
}

// cleanupDead removes agents marked dead, preserving the order of survivors.
func (g *Game) cleanupDead() {
	// First pass: compact the handle list and collect dead entities
	var toRemove []ecs.Entity
	alive := 0
	for _, e := range g.agents {
		if g.energyMap.Get(e).Dead {
			toRemove = append(toRemove, e)
			continue
		}
		g.agents[alive] = e
		alive++
	}
	clear(g.agents[alive:])
	g.agents = g.agents[:alive]

	// Second pass: remove entities from the world
	for _, e := range toRemove {
		org := g.orgMap.Get(e)
		if org.Diet == traits.Herbivore {
			g.numHerb--
		} else {
			g.numCarn--
		}
		g.collector.RecordDeath()

		slog.Debug("death",
			"tick", g.tick,
			"id", org.ID,
			"diet", org.Diet.String(),
			"age", g.tick-org.BornTick,
		)

		g.world.RemoveEntity(e)
	}
}

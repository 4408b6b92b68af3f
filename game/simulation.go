package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/systems"
	"github.com/pthm-cable/critters/telemetry"
	"github.com/pthm-cable/critters/traits"
)

// Step advances the simulation by one tick: the parallel update phase, then
// the serial phase (interactions, grazing, deaths and births, plant spawn).
// An error means the worker pool is gone and the run cannot continue.
func (g *Game) Step() error {
	g.perfCollector.StartTick()
	g.tick++

	if err := g.updateAgents(); err != nil {
		return fmt.Errorf("tick %d: %w", g.tick, err)
	}

	// Component pointers in g.parallel.refs stay valid until cleanupDead.
	g.perfCollector.StartPhase(telemetry.PhaseResolve)
	g.resolveInteractions()

	g.perfCollector.StartPhase(telemetry.PhaseGraze)
	g.grazePlants()

	g.perfCollector.StartPhase(telemetry.PhaseLifecycle)
	g.cleanupDead()
	g.flushBirths()

	g.perfCollector.StartPhase(telemetry.PhaseFlora)
	g.flora.Update(g.rng)

	// Timing closes first so the window record carries this tick's duration.
	g.perfCollector.EndTick()
	g.flushTelemetry()
	return nil
}

// resolveInteractions visits every unordered pair (i, j), i < j, of live
// agents in store order and resolves real collisions between them.
func (g *Game) resolveInteractions() {
	refs := g.parallel.refs

	for i := range refs {
		a := &refs[i]
		if a.energy.Dead {
			continue
		}
		for j := i + 1; j < len(refs); j++ {
			b := &refs[j]
			if b.energy.Dead {
				continue
			}
			if !systems.Overlapping(a.pos.Vec, a.radius, b.pos.Vec, b.radius) {
				continue
			}
			if !systems.Intersects(a.pos.Vec, a.vel.Vec, b.pos.Vec, b.vel.Vec) {
				continue
			}

			g.collide(i, j)
			if a.energy.Dead {
				break
			}
		}
	}
}

// collide applies the elastic bounce between agents i and j, then the
// outcome of the encounter: reproduction for two mating agents of the same
// diet, predation when one may eat the other.
func (g *Game) collide(i, j int) {
	a, b := &g.parallel.refs[i], &g.parallel.refs[j]

	if na, nb, ok := systems.ElasticBounce(a.pos.Vec, a.vel.Vec, b.pos.Vec, b.vel.Vec); ok {
		a.vel.Vec, b.vel.Vec = na, nb
	}
	a.org.Bouncing = true
	b.org.Bouncing = true

	if a.org.Status == components.StatusMating && b.org.Status == components.StatusMating &&
		a.org.Diet == b.org.Diet {
		g.reproduce(i, j)
		return
	}

	views := g.parallel.views
	switch {
	case g.rules.CanEat(a.org.Diet, views[i].Genome, b.org.Diet, views[j].Genome):
		g.hunt(i, j)
	case g.rules.CanEat(b.org.Diet, views[j].Genome, a.org.Diet, views[i].Genome):
		g.hunt(j, i)
	}
}

// reproduce resets both parents to Idle, halves their energy, and queues
// their offspring.
func (g *Game) reproduce(i, j int) {
	a, b := &g.parallel.refs[i], &g.parallel.refs[j]
	views := g.parallel.views

	a.org.Status = components.StatusIdle
	b.org.Status = components.StatusIdle
	a.energy.Current /= 2
	b.energy.Current /= 2

	children, speciated := g.rules.Breed(views[i].Genome, views[j].Genome, a.org.Diet, g.rng)
	g.queueBirths(children)

	if speciated {
		g.collector.RecordSpeciation()
		slog.Info("speciation",
			"tick", g.tick,
			"parent_a", a.org.ID,
			"parent_b", b.org.ID,
			"litter", len(children),
		)
	}
}

// hunt transfers the prey's energy, less the hunt penalty, to the predator
// and marks the prey for removal.
func (g *Game) hunt(pred, prey int) {
	p, q := &g.parallel.refs[pred], &g.parallel.refs[prey]

	gain := q.energy.Current - g.cfg.Interaction.HuntPenalty
	systems.Feed(p.energy, gain, g.parallel.views[pred].MaxEnergy)
	systems.Kill(q.energy)

	g.collector.RecordKill()
	slog.Debug("kill",
		"tick", g.tick,
		"predator", p.org.ID,
		"prey", q.org.ID,
	)
}

// grazePlants lets every live herbivore eat the plants it overlaps, in
// store order. Each plant grants a fixed energy amount.
func (g *Game) grazePlants() {
	refs := g.parallel.refs
	views := g.parallel.views
	amount := g.cfg.Interaction.PlantEnergy

	eaten := 0
	for i := range refs {
		r := &refs[i]
		if r.energy.Dead || r.org.Diet != traits.Herbivore {
			continue
		}
		if n := g.flora.Graze(r.pos.Vec, r.radius); n > 0 {
			systems.Feed(r.energy, amount*float64(n), views[i].MaxEnergy)
			eaten += n
		}
	}

	if eaten > 0 {
		g.flora.Compact()
		g.collector.RecordPlantsEaten(eaten)
	}
}

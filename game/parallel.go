package game

import (
	"fmt"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/scheduler"
	"github.com/pthm-cable/critters/systems"
	"github.com/pthm-cable/critters/telemetry"
)

// agentRef holds live component pointers for one agent plus its derived
// attributes. Pointers are captured in the serial phase and stay valid until
// the next structural change to the world.
type agentRef struct {
	pos    *components.Position
	vel    *components.Velocity
	energy *components.Energy
	org    *components.Organism

	radius     float64
	speed      float64
	metabolism float64
}

// parallelState holds the per-tick views shared with update tasks.
type parallelState struct {
	views  []systems.AgentView // read-only during the parallel phase
	refs   []agentRef          // task i writes only through refs[i]
	plants []components.Plant  // read-only copy of the plant store
	run    func(int)
}

func newParallelState(g *Game) *parallelState {
	p := &parallelState{
		views:  make([]systems.AgentView, 0, 256),
		refs:   make([]agentRef, 0, 256),
		plants: make([]components.Plant, 0, 256),
	}
	p.run = g.updateAgent
	return p
}

// buildViews snapshots every agent and plant for the coming parallel phase.
// Returns the number of agents.
func (g *Game) buildViews() int {
	p := g.parallel
	p.views = p.views[:0]
	p.refs = p.refs[:0]

	for _, e := range g.agents {
		pos := g.posMap.Get(e)
		vel := g.velMap.Get(e)
		genome := g.genomeMap.Get(e)
		energy := g.energyMap.Get(e)
		org := g.orgMap.Get(e)

		radius := g.physiology.RadiusOf(*genome)
		p.views = append(p.views, systems.AgentView{
			Pos:       pos.Vec,
			Vel:       vel.Vec,
			Genome:    *genome,
			Diet:      org.Diet,
			Energy:    energy.Current,
			MaxEnergy: g.physiology.MaxEnergyOf(*genome),
			Radius:    radius,
			Vision:    g.physiology.VisionOf(*genome),
		})
		p.refs = append(p.refs, agentRef{
			pos:        pos,
			vel:        vel,
			energy:     energy,
			org:        org,
			radius:     radius,
			speed:      g.physiology.SpeedOf(*genome),
			metabolism: g.physiology.MetabolismOf(*genome),
		})
	}

	p.plants = append(p.plants[:0], g.flora.Plants()...)
	return len(p.views)
}

// updateAgents runs one update task per agent on the worker pool and waits
// for all of them to finish.
func (g *Game) updateAgents() error {
	g.perfCollector.StartPhase(telemetry.PhaseViews)
	n := g.buildViews()

	g.perfCollector.StartPhase(telemetry.PhaseParallel)
	g.pool.StartTick()
	for i := 0; i < n; i++ {
		if err := g.pool.Submit(scheduler.Task{Index: i, Run: g.parallel.run}); err != nil {
			// Tasks already queued still reference the views; let them finish.
			g.pool.AwaitDrain()
			return fmt.Errorf("dispatching agent %d of %d: %w", i, n, err)
		}
	}
	g.pool.AwaitDrain()
	return nil
}

// updateAgent is the per-agent task: behavior decision, movement, metabolism.
// It reads the shared views and writes only through its own agentRef.
func (g *Game) updateAgent(i int) {
	p := g.parallel
	ref := &p.refs[i]

	if ref.org.Bouncing {
		// Keep the velocity the collision left us with for one tick.
		ref.org.Bouncing = false
	} else {
		d := systems.Decide(i, p.views, p.plants, &g.params)
		ref.org.Status = d.Status
		ref.vel.Vec = d.Vel
	}

	ref.pos.Vec, ref.vel.Vec = systems.Integrate(ref.pos.Vec, ref.vel.Vec, ref.radius, ref.speed, g.bounds)
	systems.Metabolize(ref.energy, ref.metabolism)
}

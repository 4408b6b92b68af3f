package game

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/telemetry"
	"github.com/pthm-cable/critters/traits"
)

// AgentState is the read-only per-agent part of a Snapshot.
type AgentState struct {
	ID        uint32
	Pos       r2.Vec
	Vel       r2.Vec
	Radius    float64
	Vision    float64
	Color     uint8
	Diet      traits.Diet
	Status    components.Status
	Energy    float64
	MaxEnergy float64
	Genome    traits.Genome
}

// Snapshot is a copy of the simulation state handed to renderers and tests.
// It shares no memory with the engine.
type Snapshot struct {
	Tick         int32
	Width        float64
	Height       float64
	Agents       []AgentState
	Plants       []components.Plant
	Herbivores   int
	Carnivores   int
	SpawnChance  float64
	Means        telemetry.TraitMeans
	TickDuration time.Duration
}

// Snapshot captures the state after the last completed tick, in store order.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Tick:         g.tick,
		Width:        g.bounds.Width,
		Height:       g.bounds.Height,
		Agents:       make([]AgentState, 0, len(g.agents)),
		Plants:       append([]components.Plant(nil), g.flora.Plants()...),
		Herbivores:   g.numHerb,
		Carnivores:   g.numCarn,
		SpawnChance:  g.flora.SpawnChance(),
		TickDuration: g.perfCollector.LastTickDuration(),
	}

	genomes := make([]traits.Genome, 0, len(g.agents))
	for _, e := range g.agents {
		genome := *g.genomeMap.Get(e)
		org := g.orgMap.Get(e)

		s.Agents = append(s.Agents, AgentState{
			ID:        org.ID,
			Pos:       g.posMap.Get(e).Vec,
			Vel:       g.velMap.Get(e).Vec,
			Radius:    g.physiology.RadiusOf(genome),
			Vision:    g.physiology.VisionOf(genome),
			Color:     genome.Get(traits.Color),
			Diet:      org.Diet,
			Status:    org.Status,
			Energy:    g.energyMap.Get(e).Current,
			MaxEnergy: g.physiology.MaxEnergyOf(genome),
			Genome:    genome,
		})
		genomes = append(genomes, genome)
	}
	s.Means = telemetry.ComputeTraitMeans(genomes)

	return s
}

// AgentAt returns the index of the agent whose body, widened by slack,
// contains (x, y). The closest center wins. Returns -1 if none.
func (s *Snapshot) AgentAt(x, y, slack float64) int {
	p := r2.Vec{X: x, Y: y}
	best, bestDist := -1, math.Inf(1)
	for i := range s.Agents {
		a := &s.Agents[i]
		d := r2.Norm(r2.Sub(a.Pos, p))
		if d <= a.Radius+slack && d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// AgentByID returns the agent with the given ID, if present.
func (s *Snapshot) AgentByID(id uint32) (AgentState, bool) {
	for i := range s.Agents {
		if s.Agents[i].ID == id {
			return s.Agents[i], true
		}
	}
	return AgentState{}, false
}

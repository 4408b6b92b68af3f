package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/genetics"
	"github.com/pthm-cable/critters/traits"
)

// AgentView is the read-only copy of an agent that update tasks observe.
// Views are built by the orchestrator before the parallel phase and never
// written while tasks run.
type AgentView struct {
	Pos       r2.Vec
	Vel       r2.Vec
	Genome    traits.Genome
	Diet      traits.Diet
	Energy    float64
	MaxEnergy float64
	Radius    float64
	Vision    float64
}

// EnergyRatio returns current energy over max energy.
func (a *AgentView) EnergyRatio() float64 {
	if a.MaxEnergy <= 0 {
		return 0
	}
	return a.Energy / a.MaxEnergy
}

// BehaviorParams holds the thresholds the state machine reads.
type BehaviorParams struct {
	MateThreshold      float64
	MatingRadiusFactor float64
	Rules              genetics.Rules
}

// BehaviorParamsFromConfig extracts behavior parameters from the loaded config.
func BehaviorParamsFromConfig(cfg *config.Config) BehaviorParams {
	return BehaviorParams{
		MateThreshold:      cfg.Behavior.MateThreshold,
		MatingRadiusFactor: cfg.Behavior.MatingRadiusFactor,
		Rules:              genetics.RulesFromConfig(cfg),
	}
}

// Decision is the outcome of one behavior evaluation.
type Decision struct {
	Status components.Status
	Vel    r2.Vec
}

// Decide runs the state machine for agents[self] against a full scan of the
// agent and plant views. States are tried in priority order
// Fleeing > Mating > Foraging; Idle keeps the current velocity.
func Decide(self int, agents []AgentView, plants []components.Plant, p *BehaviorParams) Decision {
	a := &agents[self]

	if a.Diet == traits.Herbivore {
		if vel, ok := fleeDirection(self, agents, &p.Rules); ok {
			return Decision{Status: components.StatusFleeing, Vel: vel}
		}
	}

	if a.EnergyRatio() >= p.MateThreshold {
		if mate := nearestMate(self, agents, p); mate >= 0 {
			return Decision{Status: components.StatusMating, Vel: steer(a, agents[mate].Pos)}
		}
	}

	if a.Diet == traits.Carnivore {
		if prey := nearestPrey(self, agents, &p.Rules); prey >= 0 {
			return Decision{Status: components.StatusForaging, Vel: steer(a, agents[prey].Pos)}
		}
	} else {
		if plant := NearestPlant(a.Pos, a.Vision, plants); plant >= 0 {
			return Decision{Status: components.StatusForaging, Vel: steer(a, plants[plant].Pos)}
		}
	}

	return Decision{Status: components.StatusIdle, Vel: a.Vel}
}

// fleeDirection averages the unit repulsion vectors from every visible
// carnivore able to eat agents[self]. ok is false when no threat is visible.
// Threats exactly on top of the agent add no direction; if the repulsions
// cancel out the current heading is kept.
func fleeDirection(self int, agents []AgentView, rules *genetics.Rules) (r2.Vec, bool) {
	a := &agents[self]
	var sum r2.Vec
	threats := 0

	for j := range agents {
		if j == self {
			continue
		}
		c := &agents[j]
		if Distance(a.Pos, c.Pos) > a.Vision {
			continue
		}
		if !rules.CanEat(c.Diet, c.Genome, a.Diet, a.Genome) {
			continue
		}
		threats++
		if away, ok := Direction(c.Pos, a.Pos); ok {
			sum = r2.Add(sum, away)
		}
	}

	if threats == 0 {
		return r2.Vec{}, false
	}
	avg := r2.Scale(1/float64(threats), sum)
	if dir, ok := Unit(avg); ok {
		return dir, true
	}
	return a.Vel, true
}

// nearestMate finds the closest same-diet agent within the mating radius that
// also has enough energy and a compatible genome. Returns -1 if none.
func nearestMate(self int, agents []AgentView, p *BehaviorParams) int {
	a := &agents[self]
	radius := a.Vision * p.MatingRadiusFactor
	best, bestDist := -1, math.Inf(1)

	for j := range agents {
		if j == self {
			continue
		}
		m := &agents[j]
		if m.Diet != a.Diet {
			continue
		}
		d := Distance(a.Pos, m.Pos)
		if d > radius || d >= bestDist {
			continue
		}
		if m.EnergyRatio() < p.MateThreshold || !p.Rules.Compatible(a.Genome, m.Genome) {
			continue
		}
		best, bestDist = j, d
	}
	return best
}

// nearestPrey finds the closest herbivore within vision that agents[self] may eat.
func nearestPrey(self int, agents []AgentView, rules *genetics.Rules) int {
	a := &agents[self]
	best, bestDist := -1, math.Inf(1)

	for j := range agents {
		if j == self {
			continue
		}
		h := &agents[j]
		d := Distance(a.Pos, h.Pos)
		if d > a.Vision || d >= bestDist {
			continue
		}
		if !rules.CanEat(a.Diet, a.Genome, h.Diet, h.Genome) {
			continue
		}
		best, bestDist = j, d
	}
	return best
}

// NearestPlant returns the index of the closest plant whose center lies
// within radius of pos, or -1. Ties go to the earlier plant.
func NearestPlant(pos r2.Vec, radius float64, plants []components.Plant) int {
	best, bestDist := -1, math.Inf(1)
	for i := range plants {
		d := Distance(pos, plants[i].Pos)
		if d <= radius && d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// steer points the agent at target, keeping its heading if already there.
func steer(a *AgentView, target r2.Vec) r2.Vec {
	if dir, ok := Direction(a.Pos, target); ok {
		return dir
	}
	return a.Vel
}

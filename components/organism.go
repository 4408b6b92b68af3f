package components

import "github.com/pthm-cable/critters/traits"

// Energy tracks an agent's metabolic reserve.
// Current stays within [0, max energy]; Dead marks the agent for removal
// in the serial phase.
type Energy struct {
	Current float64
	Dead    bool
}

// Organism bundles identity, diet, and behavior state.
type Organism struct {
	ID       uint32
	Diet     traits.Diet
	Status   Status
	Bouncing bool  // Skip the next behavior decision after a collision
	BornTick int32 // Tick the agent entered the population
}

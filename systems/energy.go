package systems

import (
	"github.com/pthm-cable/critters/components"
)

// Metabolize drains one tick of metabolism from the agent's reserve, clamping
// at zero. An exhausted agent is marked dead; removal happens in the serial phase.
// Returns true if the agent is dead after the call.
func Metabolize(energy *components.Energy, metabolism float64) bool {
	if energy.Dead {
		return true
	}
	if energy.Current <= 0 {
		energy.Current = 0
		energy.Dead = true
		return true
	}

	energy.Current -= metabolism
	if energy.Current <= 0 {
		energy.Current = 0
		energy.Dead = true
	}
	return energy.Dead
}

// Feed adds amount to the reserve, clamped into [0, maxEnergy]. A negative
// amount that empties the reserve marks the agent dead.
func Feed(energy *components.Energy, amount, maxEnergy float64) {
	energy.Current = clampFloat(energy.Current+amount, 0, maxEnergy)
	if energy.Current <= 0 {
		energy.Dead = true
	}
}

// Kill zeroes the reserve and marks the agent for removal.
func Kill(energy *components.Energy) {
	energy.Current = 0
	energy.Dead = true
}

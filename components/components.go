// Package components defines ECS components for the simulation.
package components

import "gonum.org/v1/gonum/spatial/r2"

// Status is an agent's behavior state, listed from lowest to highest priority.
type Status uint8

const (
	StatusIdle Status = iota
	StatusForaging
	StatusMating
	StatusFleeing
	numStatuses
)

var statusNames = [numStatuses]string{"Idle", "Foraging", "Mating", "Fleeing"}

// NumStatuses is the number of Status values.
const NumStatuses = int(numStatuses)

// String returns the display name for a Status.
func (s Status) String() string {
	if s < numStatuses {
		return statusNames[s]
	}
	return "Unknown"
}

// Plant is a stationary food item. Plants are not ECS entities; the engine
// keeps them in an ordered slice.
type Plant struct {
	Pos    r2.Vec
	Radius float64
}

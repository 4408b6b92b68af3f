package components

import "gonum.org/v1/gonum/spatial/r2"

// Position represents an agent's center in arena coordinates.
type Position struct {
	r2.Vec
}

// Velocity represents an agent's heading vector. Steering sets it to a unit
// vector; collisions may leave it non-unit until the next steer.
type Velocity struct {
	r2.Vec
}

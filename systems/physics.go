package systems

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Bounds represents the arena extent. The arena spans [0, Width] x [0, Height].
type Bounds struct {
	Width, Height float64
}

// Integrate advances one agent by a tick. A velocity component is reflected
// when the step would push the agent's edge past a wall while moving toward
// it; the position then advances by vel * speed.
func Integrate(pos, vel r2.Vec, radius, speed float64, b Bounds) (r2.Vec, r2.Vec) {
	next := r2.Add(pos, r2.Scale(speed, vel))

	if (next.X-radius < 0 && vel.X < 0) || (next.X+radius > b.Width && vel.X > 0) {
		vel.X = -vel.X
	}
	if (next.Y-radius < 0 && vel.Y < 0) || (next.Y+radius > b.Height && vel.Y > 0) {
		vel.Y = -vel.Y
	}

	return r2.Add(pos, r2.Scale(speed, vel)), vel
}

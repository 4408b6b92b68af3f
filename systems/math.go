// Package systems provides the per-agent rules of the simulation: trait
// physiology, the behavior state machine, integration, collision response
// and the plant store.
package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// epsilon is the tolerance below which a vector or cross product counts as zero.
const epsilon = 1e-9

// clampFloat clamps v between minVal and maxVal.
func clampFloat(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// Span is a closed interval that trait bytes are mapped into.
type Span struct {
	Min, Max float64
}

// Map linearly maps a trait byte onto the span: 0 -> Min, 255 -> Max.
func (s Span) Map(b uint8) float64 {
	return s.Min + float64(b)/255.0*(s.Max-s.Min)
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(a, b))
}

// Unit returns v scaled to length one. ok is false for a (near) zero vector,
// in which case the zero vector is returned.
func Unit(v r2.Vec) (u r2.Vec, ok bool) {
	n := r2.Norm(v)
	if n < epsilon || math.IsNaN(n) {
		return r2.Vec{}, false
	}
	return r2.Scale(1/n, v), true
}

// Direction returns the unit vector pointing from one point to another.
func Direction(from, to r2.Vec) (r2.Vec, bool) {
	return Unit(r2.Sub(to, from))
}

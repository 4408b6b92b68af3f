package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Overlapping reports whether two circles touch or overlap.
func Overlapping(pa r2.Vec, ra float64, pb r2.Vec, rb float64) bool {
	return Distance(pa, pb) <= ra+rb
}

// Intersects decides whether an overlap is a real same-tick collision.
// Each agent is parametrized along its velocity ray, pa + u*va = pb + v*vb,
// and the collision counts only if both u and v are non-negative, meaning
// both agents are moving into the overlap rather than out of it.
// Parallel rays (including a stationary agent) count when the agents are
// closing on each other.
func Intersects(pa, va, pb, vb r2.Vec) bool {
	denom := r2.Cross(va, vb)
	d := r2.Sub(pb, pa)

	if math.Abs(denom) < epsilon {
		return r2.Dot(r2.Sub(vb, va), d) < 0
	}

	u := r2.Cross(d, vb) / denom
	v := r2.Cross(d, va) / denom
	return u >= 0 && v >= 0
}

// ElasticBounce resolves an equal-mass elastic collision between two circles.
// The velocity components along the line of centers are exchanged and the
// tangential components are left untouched. ok is false when the centers
// coincide and no normal exists.
func ElasticBounce(pa, va, pb, vb r2.Vec) (na, nb r2.Vec, ok bool) {
	normal, ok := Unit(r2.Sub(pa, pb))
	if !ok {
		return va, vb, false
	}

	p := r2.Dot(va, normal) - r2.Dot(vb, normal)
	na = r2.Sub(va, r2.Scale(p, normal))
	nb = r2.Add(vb, r2.Scale(p, normal))
	return na, nb, true
}

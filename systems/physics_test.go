package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestIntegrate(t *testing.T) {
	b := Bounds{Width: 100, Height: 80}

	tests := []struct {
		name    string
		pos     r2.Vec
		vel     r2.Vec
		wantPos r2.Vec
		wantVel r2.Vec
	}{
		{"free move", r2.Vec{X: 50, Y: 40}, r2.Vec{X: 1, Y: 0}, r2.Vec{X: 52, Y: 40}, r2.Vec{X: 1, Y: 0}},
		{"left wall", r2.Vec{X: 6, Y: 40}, r2.Vec{X: -1, Y: 0}, r2.Vec{X: 8, Y: 40}, r2.Vec{X: 1, Y: 0}},
		{"right wall", r2.Vec{X: 94, Y: 40}, r2.Vec{X: 1, Y: 0}, r2.Vec{X: 92, Y: 40}, r2.Vec{X: -1, Y: 0}},
		{"top wall", r2.Vec{X: 50, Y: 6}, r2.Vec{X: 0, Y: -1}, r2.Vec{X: 50, Y: 8}, r2.Vec{X: 0, Y: 1}},
		{"corner flips both", r2.Vec{X: 94, Y: 74}, r2.Vec{X: 1, Y: 1}, r2.Vec{X: 92, Y: 72}, r2.Vec{X: -1, Y: -1}},
		{"moving away from wall is untouched", r2.Vec{X: 3, Y: 40}, r2.Vec{X: 1, Y: 0}, r2.Vec{X: 5, Y: 40}, r2.Vec{X: 1, Y: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, vel := Integrate(tt.pos, tt.vel, 5, 2, b)
			assert.InDelta(t, tt.wantPos.X, pos.X, 1e-9)
			assert.InDelta(t, tt.wantPos.Y, pos.Y, 1e-9)
			assert.Equal(t, tt.wantVel, vel)
		})
	}
}

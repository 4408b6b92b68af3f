package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pthm-cable/critters/components"
)

func TestMetabolize(t *testing.T) {
	tests := []struct {
		name     string
		start    components.Energy
		drain    float64
		want     float64
		wantDead bool
	}{
		{"normal drain", components.Energy{Current: 10}, 1.5, 8.5, false},
		{"drain to exactly zero", components.Energy{Current: 1}, 1, 0, true},
		{"overdrain clamps", components.Energy{Current: 0.5}, 2, 0, true},
		{"already empty", components.Energy{Current: 0}, 1, 0, true},
		{"already dead is untouched", components.Energy{Current: 3, Dead: true}, 1, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.start
			dead := Metabolize(&e, tt.drain)
			assert.Equal(t, tt.wantDead, dead)
			assert.Equal(t, tt.wantDead, e.Dead)
			assert.InDelta(t, tt.want, e.Current, 1e-12)
			assert.GreaterOrEqual(t, e.Current, 0.0)
		})
	}
}

func TestFeedClamps(t *testing.T) {
	e := components.Energy{Current: 90}
	Feed(&e, 50, 100)
	assert.Equal(t, 100.0, e.Current)
	assert.False(t, e.Dead)

	Feed(&e, -60, 100)
	assert.Equal(t, 40.0, e.Current)
	assert.False(t, e.Dead)

	Feed(&e, -500, 100)
	assert.Equal(t, 0.0, e.Current)
	assert.True(t, e.Dead, "an emptied reserve is dead")
}

func TestKill(t *testing.T) {
	e := components.Energy{Current: 42}
	Kill(&e)
	assert.True(t, e.Dead)
	assert.Zero(t, e.Current)
}

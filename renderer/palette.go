package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/traits"
)

var (
	colorBackground = rl.NewColor(18, 20, 24, 255)
	colorWall       = rl.NewColor(70, 74, 82, 255)
	colorPlant      = rl.NewColor(60, 120, 230, 255)
	colorHerbivore  = rl.NewColor(60, 200, 90, 255)
	colorCarnivore  = rl.NewColor(220, 60, 60, 255)
	colorPanel      = rl.NewColor(0, 0, 0, 170)
)

// bodyColor maps the color trait to a grey level.
func bodyColor(color uint8) rl.Color {
	return rl.NewColor(color, color, color, 255)
}

// dietColor is the border color marking an agent's diet.
func dietColor(d traits.Diet) rl.Color {
	if d == traits.Carnivore {
		return colorCarnivore
	}
	return colorHerbivore
}

// statusColor tints the status label in the inspector.
func statusColor(s components.Status) rl.Color {
	switch s {
	case components.StatusFleeing:
		return rl.Orange
	case components.StatusMating:
		return rl.Pink
	case components.StatusForaging:
		return rl.SkyBlue
	default:
		return rl.LightGray
	}
}

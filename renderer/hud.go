package renderer

import (
	"fmt"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/critters/game"
	"github.com/pthm-cable/critters/traits"
)

const controlsText = "SPACE pause | < > speed | V vision | arrows/wheel camera | HOME reset"

// drawHUD renders population counts, playback state and the control legend.
func (r *Renderer) drawHUD(s *game.Snapshot) {
	rl.DrawRectangle(0, 0, 360, 100, colorPanel)
	rl.DrawText("Critters", 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Herbivores: %d | Carnivores: %d | Plants: %d", s.Herbivores, s.Carnivores, len(s.Plants)),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Speed: %dx | FPS: %d | Step: %s", s.Tick, r.stepsPerFrame, rl.GetFPS(), s.TickDuration.Round(time.Microsecond)),
		10, 55, 16, rl.LightGray,
	)

	statusText := "Running"
	if r.paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, 75, 16, rl.Yellow)

	rl.DrawText(controlsText, 10, int32(r.screenH)-25, 14, rl.Gray)
}

// drawSpawnSlider renders the plant spawn chance slider in the top-right corner.
func (r *Renderer) drawSpawnSlider(current float64) (float64, bool) {
	panelX := r.screenW - 260
	rl.DrawRectangle(int32(panelX)-10, 0, 270, 60, colorPanel)
	rl.DrawText("Plant spawn chance", int32(panelX), 8, 14, rl.LightGray)

	value := gui.SliderBar(
		rl.Rectangle{X: panelX, Y: 28, Width: 200, Height: 20},
		"", "",
		float32(current), 0, 1,
	)
	rl.DrawText(fmt.Sprintf("%.2f", value), int32(panelX)+208, 30, 16, rl.White)

	if value != float32(current) {
		return float64(value), true
	}
	return current, false
}

// drawInspector shows the hovered agent's traits and state near the cursor.
func (r *Renderer) drawInspector(a *game.AgentState) {
	mouse := rl.GetMousePosition()
	x := int32(mouse.X) + 16
	y := int32(mouse.Y) + 16
	if float32(x+200) > r.screenW {
		x -= 232
	}
	if float32(y+150) > r.screenH {
		y -= 182
	}

	rl.DrawRectangle(x, y, 200, 150, colorPanel)
	rl.DrawRectangleLines(x, y, 200, 150, dietColor(a.Diet))

	line := func(i int32, text string, color rl.Color) {
		rl.DrawText(text, x+8, y+8+i*16, 14, color)
	}
	line(0, fmt.Sprintf("#%d %s", a.ID, a.Diet), dietColor(a.Diet))
	line(1, a.Status.String(), statusColor(a.Status))
	line(2, fmt.Sprintf("Energy %.0f / %.0f", a.Energy, a.MaxEnergy), rl.White)
	line(3, fmt.Sprintf("Size %d  Speed %d", a.Genome.Get(traits.Size), a.Genome.Get(traits.Speed)), rl.LightGray)
	line(4, fmt.Sprintf("Vision %d  Energy %d", a.Genome.Get(traits.Vision), a.Genome.Get(traits.Energy)), rl.LightGray)
	line(5, fmt.Sprintf("Color %d", a.Color), rl.LightGray)
	line(6, fmt.Sprintf("Radius %.1f  Sight %.0f", a.Radius, a.Vision), rl.LightGray)
	line(7, fmt.Sprintf("Pos %.0f, %.0f", a.Pos.X, a.Pos.Y), rl.Gray)
}

package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/critters/game"
)

// borderWidth is the diet ring thickness in screen pixels.
const borderWidth = 2

// Draw renders one frame of the snapshot. It returns the plant spawn chance
// chosen on the slider and whether the user changed it this frame.
func (r *Renderer) Draw(s *game.Snapshot) (spawnChance float64, changed bool) {
	rl.BeginDrawing()
	defer rl.EndDrawing()

	rl.ClearBackground(colorBackground)

	r.drawArena(s)
	r.drawPlants(s)
	r.drawAgents(s)

	r.drawHUD(s)
	if a, ok := s.AgentByID(r.hoveredID); r.hovering && ok {
		r.drawInspector(&a)
	}
	return r.drawSpawnSlider(s.SpawnChance)
}

func (r *Renderer) drawArena(s *game.Snapshot) {
	x0, y0 := r.cam.WorldToScreen(0, 0)
	x1, y1 := r.cam.WorldToScreen(float32(s.Width), float32(s.Height))
	rl.DrawRectangleLines(int32(x0), int32(y0), int32(x1-x0), int32(y1-y0), colorWall)
}

func (r *Renderer) drawPlants(s *game.Snapshot) {
	for i := range s.Plants {
		p := &s.Plants[i]
		x, y, rad := float32(p.Pos.X), float32(p.Pos.Y), float32(p.Radius)
		if !r.cam.IsVisible(x, y, rad) {
			continue
		}
		sx, sy := r.cam.WorldToScreen(x, y)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, r.cam.Scale(rad), colorPlant)
	}
}

func (r *Renderer) drawAgents(s *game.Snapshot) {
	for i := range s.Agents {
		a := &s.Agents[i]
		x, y, rad := float32(a.Pos.X), float32(a.Pos.Y), float32(a.Radius)
		if !r.cam.IsVisible(x, y, rad) {
			continue
		}
		sx, sy := r.cam.WorldToScreen(x, y)
		center := rl.Vector2{X: sx, Y: sy}
		outer := r.cam.Scale(rad)

		rl.DrawCircleV(center, outer, dietColor(a.Diet))
		inner := outer - borderWidth
		if inner < 1 {
			inner = 1
		}
		rl.DrawCircleV(center, inner, bodyColor(a.Color))

		if r.showVision || (r.hovering && a.ID == r.hoveredID) {
			rl.DrawCircleLines(int32(sx), int32(sy), r.cam.Scale(float32(a.Vision)), rl.Fade(dietColor(a.Diet), 0.4))
		}
	}
}

package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/critters/game"
)

// hoverSlack is the extra pick distance in screen pixels around an agent.
const hoverSlack = 4

// HandleInput processes keyboard and mouse input against the latest snapshot.
func (r *Renderer) HandleInput(s *game.Snapshot) {
	r.handleResize()

	if rl.IsKeyPressed(rl.KeySpace) {
		r.paused = !r.paused
	}

	// Steps-per-frame control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && r.stepsPerFrame > 1 {
		r.stepsPerFrame--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && r.stepsPerFrame < maxStepsPerFrame {
		r.stepsPerFrame++
	}

	if rl.IsKeyPressed(rl.KeyV) {
		r.showVision = !r.showVision
	}

	r.handleCameraInput()
	r.updateHover(s)
}

// handleResize checks for window resize and propagates new dimensions.
func (r *Renderer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == r.screenW && h == r.screenH {
		return
	}
	r.screenW = w
	r.screenH = h
	r.cam.Resize(w, h)
}

// handleCameraInput processes camera pan/zoom controls.
func (r *Renderer) handleCameraInput() {
	// Pan speed scales inversely with zoom for natural feel
	panSpeed := float32(8.0) / r.cam.Zoom

	if rl.IsKeyDown(rl.KeyRight) {
		r.cam.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		r.cam.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		r.cam.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		r.cam.Pan(0, -panSpeed)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		r.cam.ZoomBy(1 + wheel*0.1)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		r.cam.Reset()
	}
}

// updateHover tracks the agent under the cursor by ID so the selection
// survives store compaction between ticks.
func (r *Renderer) updateHover(s *game.Snapshot) {
	mouse := rl.GetMousePosition()
	wx, wy := r.cam.ScreenToWorld(mouse.X, mouse.Y)

	i := s.AgentAt(float64(wx), float64(wy), float64(hoverSlack/r.cam.Zoom))
	if i < 0 {
		r.hovering = false
		return
	}
	r.hoveredID = s.Agents[i].ID
	r.hovering = true
}

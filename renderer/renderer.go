// Package renderer draws simulation snapshots in a raylib window and turns
// keyboard and mouse input into playback controls.
package renderer

import (
	"github.com/pthm-cable/critters/camera"
)

const maxStepsPerFrame = 10

// Renderer owns the view state of graphical mode. It only ever reads
// game.Snapshot values, so it never touches engine memory.
type Renderer struct {
	cam *camera.Camera

	screenW, screenH float32

	paused        bool
	stepsPerFrame int
	showVision    bool

	hoveredID uint32
	hovering  bool
}

// New creates a renderer for a window of the given size showing the arena.
func New(screenW, screenH int32, arenaW, arenaH float64) *Renderer {
	return &Renderer{
		cam:           camera.New(float32(screenW), float32(screenH), float32(arenaW), float32(arenaH)),
		screenW:       float32(screenW),
		screenH:       float32(screenH),
		stepsPerFrame: 1,
	}
}

// Paused reports whether playback is paused.
func (r *Renderer) Paused() bool {
	return r.paused
}

// StepsPerFrame returns how many ticks to run per drawn frame.
func (r *Renderer) StepsPerFrame() int {
	if r.paused {
		return 0
	}
	return r.stepsPerFrame
}

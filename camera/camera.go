// Package camera provides a 2D viewport over the bounded arena.
package camera

// Camera controls the viewport into the arena.
// The view never scrolls past the arena walls; when the whole arena fits on
// screen it is centered.
type Camera struct {
	// Position is the camera center in arena coordinates
	X, Y float32

	// Zoom level (1.0 = 1:1, 2.0 = 2x magnification)
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Arena dimensions
	WorldW, WorldH float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera that shows the whole arena.
func New(viewportW, viewportH, worldW, worldH float32) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		WorldW:    worldW,
		WorldH:    worldH,
		MaxZoom:   4.0,
	}
	c.MinZoom = fitZoom(viewportW, viewportH, worldW, worldH)
	c.Reset()
	return c
}

// fitZoom is the largest zoom at which the whole arena is visible.
func fitZoom(viewportW, viewportH, worldW, worldH float32) float32 {
	zx := viewportW / worldW
	zy := viewportH / worldH
	if zy < zx {
		return zy
	}
	return zx
}

// WorldToScreen converts arena coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportH/2 + (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to arena coordinates.
// Points off the arena map outside [0, WorldW] x [0, WorldH].
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y + (sy-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// Scale converts an arena length to screen pixels.
func (c *Camera) Scale(d float32) float32 {
	return d * c.Zoom
}

// IsVisible returns true if a circle at (wx, wy) with given radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return absf(wx-c.X) <= halfW && absf(wy-c.Y) <= halfH
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.MinZoom = fitZoom(viewportW, viewportH, c.WorldW, c.WorldH)
	c.SetZoom(c.Zoom)
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	c.X += dx / c.Zoom
	c.Y += dy / c.Zoom
	c.clampCenter()
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
	c.clampCenter()
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset shows the whole arena again.
func (c *Camera) Reset() {
	c.X = c.WorldW / 2
	c.Y = c.WorldH / 2
	c.Zoom = c.MinZoom
}

// VisibleWorldBounds returns the arena-coordinate bounds of the visible area.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)

	minX = c.X - halfW
	maxX = c.X + halfW
	minY = c.Y - halfH
	maxY = c.Y + halfH
	return
}

// clampCenter keeps the visible area inside the arena on each axis where
// the arena is larger than the view, and centers it otherwise.
func (c *Camera) clampCenter() {
	c.X = clampAxis(c.X, c.ViewportW/(2*c.Zoom), c.WorldW)
	c.Y = clampAxis(c.Y, c.ViewportH/(2*c.Zoom), c.WorldH)
}

func clampAxis(center, half, size float32) float32 {
	if 2*half >= size {
		return size / 2
	}
	return clamp(center, half, size-half)
}

// absf returns the absolute value of a float32.
func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}

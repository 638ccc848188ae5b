package scene

import (
	"time"

	"github.com/cwbudde/algo-chime/geom"
	"github.com/cwbudde/algo-chime/hittest"
)

// HUDFlash is how long the button stays lit after a press.
const (
	HUDFlash = 120 * time.Millisecond

	hudRadius = 0.016
)

var hudSpin = geom.Euler{X: 0.007, Y: 0.012}

// HUDLook is what a host needs to draw the HUD button.
type HUDLook struct {
	Rotation  geom.Euler
	Glow      float32 // core light intensity
	CoreScale float32
	Opacity   float32
	Hover     bool
	Open      bool // settings overlay shown
}

// HUD is the rotating dodecahedron button that opens the settings overlay.
// It has its own camera and viewport, separate from the sculpture's.
type HUD struct {
	viewport hittest.Viewport
	camera   *hittest.Camera
	hull     hittest.Hull

	hover bool
	open  bool
	flash time.Duration
}

// NewHUD creates the button with an empty viewport.
func NewHUD() *HUD {
	return &HUD{
		camera: hittest.NewHUDCamera(),
		hull:   hittest.Hull{Planes: geom.DodecahedronHull(hudRadius)},
	}
}

// SetViewport places the button's square on screen.
func (h *HUD) SetViewport(vp hittest.Viewport) { h.viewport = vp }

// Contains reports whether the client point is over the HUD's viewport.
func (h *HUD) Contains(x, y float32) bool {
	vp := h.viewport
	return vp.Width > 0 && vp.Height > 0 &&
		x >= vp.X && x < vp.X+vp.Width && y >= vp.Y && y < vp.Y+vp.Height
}

func (h *HUD) hit(x, y float32) bool {
	_, ok := hittest.TestHit(h.viewport.NDC(x, y), h.camera, &h.hull)
	return ok
}

// PointerMove updates the hover state and reports whether it changed.
func (h *HUD) PointerMove(x, y float32) bool {
	over := h.hit(x, y)
	changed := over != h.hover
	h.hover = over
	return changed
}

// PointerLeave drops the hover highlight.
func (h *HUD) PointerLeave() { h.hover = false }

// PointerDown opens the overlay and starts the press flash when the button
// is hit.
func (h *HUD) PointerDown(x, y float32) bool {
	if !h.hit(x, y) {
		return false
	}
	h.open = true
	h.flash = HUDFlash
	return true
}

// Close hides the overlay and drops the hover highlight.
func (h *HUD) Close() {
	h.open = false
	h.hover = false
	h.flash = 0
}

// Tick spins the button and runs down the press flash.
func (h *HUD) Tick(dt time.Duration) {
	h.hull.Rotation = h.hull.Rotation.Add(hudSpin)
	if h.flash > 0 {
		h.flash = max(h.flash-dt, 0)
	}
}

// Look returns the button's current appearance.
func (h *HUD) Look() HUDLook {
	l := HUDLook{
		Rotation:  h.hull.Rotation,
		Glow:      2.5,
		CoreScale: 1,
		Opacity:   0.98,
		Hover:     h.hover,
		Open:      h.open,
	}
	if h.hover {
		l.Glow, l.CoreScale, l.Opacity = 6.5, 1.7, 0.6
	}
	if h.flash > 0 {
		l.Glow, l.CoreScale = 12, 2.5
	}
	return l
}

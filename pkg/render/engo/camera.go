// pkg/render/engo/camera.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-roadball/pkg/physics"
)

// Default viewport in pixels, matching the level camera offsets.
const (
	DefaultViewWidth  = 800
	DefaultViewHeight = 600
)

// CameraSystem follows the level camera. Its position is the world point
// at the top-left of the view at zoom 1; zoom scales about the view centre.
type CameraSystem struct {
	target    physics.Vector2D
	targetSet bool

	zoom    float32
	minZoom float32
	maxZoom float32

	followSpeed float32
	smoothing   bool

	width, height float64
	currentPos    physics.Vector2D
}

// NewCameraSystem creates a camera for the default viewport.
func NewCameraSystem() *CameraSystem {
	return &CameraSystem{
		zoom:        1.0,
		minZoom:     0.25,
		maxZoom:     4.0,
		followSpeed: 8.0,
		smoothing:   true,
		width:       DefaultViewWidth,
		height:      DefaultViewHeight,
	}
}

// Remove satisfies the ecs.System interface
func (cs *CameraSystem) Remove(basic ecs.BasicEntity) {}

// Update reads the zoom keys and moves toward the target.
func (cs *CameraSystem) Update(dt float32) {
	cs.handleZoomInput()
	if cs.targetSet {
		cs.updateCameraPosition(dt)
	}
}

func (cs *CameraSystem) handleZoomInput() {
	if scrollY := engo.Input.Mouse.ScrollY; scrollY != 0 {
		cs.SetZoom(cs.zoom * (1.0 + scrollY*0.1))
	}
	if engo.Input.Button(ButtonZoomIn).Down() {
		cs.SetZoom(cs.zoom * 1.02)
	}
	if engo.Input.Button(ButtonZoomOut).Down() {
		cs.SetZoom(cs.zoom * 0.98)
	}
	if engo.Input.Button(ButtonResetZoom).JustPressed() {
		cs.SetZoom(1.0)
	}
}

// updateCameraPosition eases toward the target, never overshooting.
func (cs *CameraSystem) updateCameraPosition(dt float32) {
	if !cs.smoothing {
		cs.currentPos = cs.target
		return
	}
	f := float64(cs.followSpeed * dt)
	if f > 1 {
		f = 1
	}
	cs.currentPos = cs.currentPos.Add(cs.target.Sub(cs.currentPos).Scale(f))
}

// SetTarget sets the view position to follow. The first target is taken
// immediately.
func (cs *CameraSystem) SetTarget(target physics.Vector2D) {
	first := !cs.targetSet
	cs.target = target
	cs.targetSet = true
	if first || !cs.smoothing {
		cs.currentPos = target
	}
}

// ClearTarget stops following.
func (cs *CameraSystem) ClearTarget() {
	cs.targetSet = false
}

// SetViewport sets the view size in pixels.
func (cs *CameraSystem) SetViewport(width, height float64) {
	cs.width, cs.height = width, height
}

// SetZoom sets the zoom level within the limits.
func (cs *CameraSystem) SetZoom(zoom float32) {
	cs.zoom = cs.clampZoom(zoom)
}

// GetZoom returns the current zoom level
func (cs *CameraSystem) GetZoom() float32 {
	return cs.zoom
}

func (cs *CameraSystem) clampZoom(zoom float32) float32 {
	if zoom < cs.minZoom {
		return cs.minZoom
	}
	if zoom > cs.maxZoom {
		return cs.maxZoom
	}
	return zoom
}

// SetZoomLimits sets the zoom bounds and re-clamps the current zoom.
func (cs *CameraSystem) SetZoomLimits(min, max float32) {
	cs.minZoom = min
	cs.maxZoom = max
	cs.zoom = cs.clampZoom(cs.zoom)
}

// GetZoomLimits returns the current zoom limits
func (cs *CameraSystem) GetZoomLimits() (float32, float32) {
	return cs.minZoom, cs.maxZoom
}

// SetFollowSpeed sets the easing rate per second.
func (cs *CameraSystem) SetFollowSpeed(speed float32) {
	cs.followSpeed = speed
}

// EnableSmoothing enables or disables easing.
func (cs *CameraSystem) EnableSmoothing(enabled bool) {
	cs.smoothing = enabled
}

// GetCurrentPosition returns the current view position.
func (cs *CameraSystem) GetCurrentPosition() physics.Vector2D {
	return cs.currentPos
}

func (cs *CameraSystem) halfView() physics.Vector2D {
	return physics.Vec(cs.width/2, cs.height/2)
}

// WorldToScreen converts world coordinates to pixels.
func (cs *CameraSystem) WorldToScreen(p physics.Vector2D) physics.Vector2D {
	half := cs.halfView()
	center := cs.currentPos.Add(half)
	return p.Sub(center).Scale(float64(cs.zoom)).Add(half)
}

// ScreenToWorld converts pixels to world coordinates.
func (cs *CameraSystem) ScreenToWorld(p physics.Vector2D) physics.Vector2D {
	half := cs.halfView()
	center := cs.currentPos.Add(half)
	return p.Sub(half).Scale(1 / float64(cs.zoom)).Add(center)
}

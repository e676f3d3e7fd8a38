package engo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opd-ai/go-roadball/pkg/physics"
)

func TestCameraSystem_Defaults(t *testing.T) {
	cs := NewCameraSystem()
	assert.Equal(t, float32(1.0), cs.GetZoom())
	min, max := cs.GetZoomLimits()
	assert.Equal(t, float32(0.25), min)
	assert.Equal(t, float32(4.0), max)
	assert.Equal(t, physics.Vector2D{}, cs.GetCurrentPosition())
}

func TestCameraSystem_SetZoomClamps(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want float32
	}{
		{"within", 2, 2},
		{"below", 0.1, 0.25},
		{"above", 10, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := NewCameraSystem()
			cs.SetZoom(tt.in)
			assert.Equal(t, tt.want, cs.GetZoom())
		})
	}
}

func TestCameraSystem_ZoomLimitsReclamp(t *testing.T) {
	cs := NewCameraSystem()
	cs.SetZoom(3)
	cs.SetZoomLimits(0.5, 2)
	assert.Equal(t, float32(2), cs.GetZoom())
}

func TestCameraSystem_FirstTargetIsImmediate(t *testing.T) {
	cs := NewCameraSystem()
	cs.SetTarget(physics.Vec(100, 50))
	assert.Equal(t, physics.Vec(100, 50), cs.GetCurrentPosition())
}

func TestCameraSystem_SmoothingEasesTowardTarget(t *testing.T) {
	cs := NewCameraSystem()
	cs.SetTarget(physics.Vec(0, 0))
	cs.SetTarget(physics.Vec(100, 0))
	assert.Equal(t, physics.Vec(0, 0), cs.GetCurrentPosition())

	cs.updateCameraPosition(0.05)
	pos := cs.GetCurrentPosition()
	assert.InDelta(t, 40, pos.X, 1e-4)

	cs.updateCameraPosition(1)
	assert.InDelta(t, 100, cs.GetCurrentPosition().X, 1e-9, "never overshoots")
}

func TestCameraSystem_WithoutSmoothing(t *testing.T) {
	cs := NewCameraSystem()
	cs.EnableSmoothing(false)
	cs.SetTarget(physics.Vec(0, 0))
	cs.SetTarget(physics.Vec(30, 40))
	assert.Equal(t, physics.Vec(30, 40), cs.GetCurrentPosition())
}

func TestCameraSystem_WorldToScreen(t *testing.T) {
	tests := []struct {
		name  string
		zoom  float32
		world physics.Vector2D
		want  physics.Vector2D
	}{
		{"top_left", 1, physics.Vec(100, 200), physics.Vec(0, 0)},
		{"offset", 1, physics.Vec(150, 260), physics.Vec(50, 60)},
		{"centre_fixed_under_zoom", 2, physics.Vec(500, 500), physics.Vec(400, 300)},
		{"zoomed", 2, physics.Vec(510, 500), physics.Vec(420, 300)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := NewCameraSystem()
			cs.SetTarget(physics.Vec(100, 200))
			cs.SetZoom(tt.zoom)

			got := cs.WorldToScreen(tt.world)
			assert.True(t, got.ApproxEqual(tt.want, 1e-9), "got %v want %v", got, tt.want)

			back := cs.ScreenToWorld(got)
			assert.True(t, back.ApproxEqual(tt.world, 1e-9), "round trip %v", back)
		})
	}
}

func TestCameraSystem_Viewport(t *testing.T) {
	cs := NewCameraSystem()
	cs.SetViewport(200, 100)
	cs.SetZoom(2)
	got := cs.WorldToScreen(physics.Vec(100, 50))
	assert.True(t, got.ApproxEqual(physics.Vec(100, 50), 1e-9), "view centre stays put: %v", got)
}

package render

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-roadball/pkg/config"
	"github.com/opd-ai/go-roadball/pkg/engine"
	"github.com/opd-ai/go-roadball/pkg/entity"
	"github.com/opd-ai/go-roadball/pkg/physics"
)

func newScreen(t *testing.T, w, h int) tcell.Screen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(w, h)
	t.Cleanup(screen.Fini)
	return screen
}

func row(r *TerminalRenderer, y int) string {
	w, _ := r.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		b.WriteRune(r.Cell(x, y))
	}
	return b.String()
}

func drawn(r *TerminalRenderer) int {
	w, h := r.Size()
	n := 0
	for y := 1; y < h; y++ {
		for x := 0; x < w; x++ {
			if r.Cell(x, y) != ' ' {
				n++
			}
		}
	}
	return n
}

func TestSlopeRune(t *testing.T) {
	tests := []struct {
		name string
		dir  physics.Vector2D
		want rune
	}{
		{"flat", physics.Vec(1, 0), '-'},
		{"flat_leftwards", physics.Vec(-5, 0.5), '-'},
		{"vertical", physics.Vec(0, 1), '|'},
		{"down_right", physics.Vec(1, 2), '\\'},
		{"up_right", physics.Vec(1, -2), '/'},
		{"down_left", physics.Vec(-1, 2), '/'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slopeRune(tt.dir))
		})
	}
}

func TestTerminalRenderer_DrawsGround(t *testing.T) {
	r := NewTerminalRenderer(newScreen(t, 40, 20), 1)
	floor := entity.NewGround(1, []physics.Line{
		physics.NewLine(physics.Vec(0, 20), physics.Vec(39, 20), 0.5),
	})

	r.Clear()
	r.RenderGround(floor)

	assert.Equal(t, strings.Repeat("-", 40), row(r, 10))
	assert.Equal(t, ' ', r.Cell(0, 9))
}

func TestTerminalRenderer_CameraShiftsView(t *testing.T) {
	r := NewTerminalRenderer(newScreen(t, 40, 20), 1)
	wall := entity.NewCustomObject(1, []physics.Line{
		physics.NewLine(physics.Vec(30, 0), physics.Vec(30, 30), 0.5),
	})

	r.Clear()
	r.RenderGround(wall)
	assert.Equal(t, '|', r.Cell(30, 5))

	r.SetCamera(physics.Vec(20, 0))
	r.Clear()
	r.RenderGround(wall)
	assert.Equal(t, ' ', r.Cell(30, 5))
	assert.Equal(t, '|', r.Cell(10, 5))
}

func TestTerminalRenderer_ClipsOffscreenLines(t *testing.T) {
	r := NewTerminalRenderer(newScreen(t, 10, 5), 1)
	far := entity.NewObstacle(1, []physics.Line{
		physics.NewLine(physics.Vec(-100, -100), physics.Vec(-50, -100), 0.5),
	})

	r.Clear()
	assert.NotPanics(t, func() { r.RenderTarget(far) })
	assert.Zero(t, drawn(r))
}

func TestTerminalRenderer_StatusOnTopRow(t *testing.T) {
	r := NewTerminalRenderer(newScreen(t, 20, 5), 1)
	r.Clear()
	r.SetStatus("level 1")
	r.Present()
	assert.True(t, strings.HasPrefix(row(r, 0), "level 1"))
}

func TestTerminalRenderer_FollowsResize(t *testing.T) {
	screen := newScreen(t, 20, 10)
	r := NewTerminalRenderer(screen, 1)
	w, h := r.Size()
	assert.Equal(t, 20, w)
	assert.Equal(t, 10, h)

	screen.SetSize(30, 12)
	r.Clear()
	w, h = r.Size()
	assert.Equal(t, 30, w)
	assert.Equal(t, 12, h)
}

func TestTerminalRenderer_DrawSnapshot(t *testing.T) {
	game, err := engine.NewGameFromConfig(config.DefaultConfig(), nil)
	require.NoError(t, err)

	r := NewTerminalRenderer(newScreen(t, 100, 40), 8)
	s := game.Snapshot()
	r.DrawSnapshot(s)

	assert.Greater(t, drawn(r), 0)
	assert.Contains(t, row(r, 0), s.LevelName)
}

func TestTerminalRenderer_RendersThroughGame(t *testing.T) {
	game, err := engine.NewGameFromConfig(config.DefaultConfig(), nil)
	require.NoError(t, err)
	_, lv := game.CurrentLevel()
	camera, err := lv.CameraPosition()
	require.NoError(t, err)

	r := NewTerminalRenderer(newScreen(t, 100, 40), 8)
	r.SetCamera(camera)
	game.Render(r)

	snap := NewTerminalRenderer(newScreen(t, 100, 40), 8)
	snap.DrawSnapshot(game.Snapshot())

	for y := 1; y < 40; y++ {
		assert.Equal(t, row(snap, y), row(r, y), "row %d", y)
	}
}

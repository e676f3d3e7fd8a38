// Package render draws game state: a tcell terminal renderer and a logging
// null renderer for headless runs. It also maps terminal keys to game input
// and formats events for display.
package render

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/opd-ai/go-roadball/pkg/engine"
	"github.com/opd-ai/go-roadball/pkg/entity"
	"github.com/opd-ai/go-roadball/pkg/event"
	"github.com/opd-ai/go-roadball/pkg/logging"
	"github.com/opd-ai/go-roadball/pkg/network"
)

// NullRenderer draws nothing and logs every call at debug level.
type NullRenderer struct {
	logger *logging.Logger
	frames atomic.Uint64
}

// NewNullRenderer creates a NullRenderer. A nil logger discards the calls.
func NewNullRenderer(logger *logging.Logger) *NullRenderer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &NullRenderer{logger: logger}
}

// Frames returns how many frames were presented.
func (d *NullRenderer) Frames() uint64 {
	return d.frames.Load()
}

// Clear implements entity.Renderer.
func (d *NullRenderer) Clear() {
	d.logger.Debug(context.Background(), "clear")
}

// Present implements entity.Renderer.
func (d *NullRenderer) Present() {
	n := d.frames.Add(1)
	d.logger.Debug(context.Background(), "present", "frame", n)
}

// RenderBall implements entity.Renderer.
func (d *NullRenderer) RenderBall(ball entity.Ball) {
	d.logger.Debug(context.Background(), "render ball",
		"id", ball.ID(),
		"position", ball.Position(),
	)
}

// RenderCar implements entity.Renderer.
func (d *NullRenderer) RenderCar(car entity.Car) {
	d.logger.Debug(context.Background(), "render car",
		"id", car.ID(),
		"position", car.Position(),
		"angle", car.Body().Angle,
		"touching_ground", car.TouchingGround,
	)
}

// RenderGround implements entity.Renderer.
func (d *NullRenderer) RenderGround(ground entity.Ground) {
	d.logger.Debug(context.Background(), "render ground",
		"id", ground.ID(),
		"kind", ground.Kind().String(),
	)
}

// RenderTarget implements entity.Renderer.
func (d *NullRenderer) RenderTarget(target entity.Target) {
	d.logger.Debug(context.Background(), "render target",
		"id", target.ID(),
		"kind", target.Kind().String(),
		"hit", target.Hit,
	)
}

// StatusLine summarises a snapshot for a one-line HUD.
func StatusLine(s engine.Snapshot) string {
	state := "playing"
	switch {
	case s.Completed:
		state = "all levels done"
	case s.Won:
		state = "won! press enter"
	case s.Lost:
		state = "lost"
	}
	return fmt.Sprintf(" %d: %s | frame %d | %s ", s.Level+1, s.LevelName, s.Frame, state)
}

// EventText describes a streamed event in a few words.
func EventText(p network.EventPayload) string {
	switch p.Type {
	case event.TargetHit:
		return fmt.Sprintf("hit %s #%d", p.Kind, p.TargetID)
	case event.LevelStarted:
		return fmt.Sprintf("level %d: %s", p.Level+1, p.Name)
	case event.LevelWon:
		return "won " + p.Name
	case event.LevelLost:
		return "lost " + p.Name
	case event.LevelReset:
		return "reset " + p.Name
	case event.GameCompleted:
		return "all levels done"
	case event.ObjectCollision:
		return fmt.Sprintf("%d hit %d", p.ObjectA, p.ObjectB)
	}
	return string(p.Type)
}

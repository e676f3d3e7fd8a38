// pkg/engine/game.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opd-ai/go-roadball/pkg/entity"
	"github.com/opd-ai/go-roadball/pkg/event"
	"github.com/opd-ai/go-roadball/pkg/logging"
)

// ErrNoLevels is returned when a game is created without levels.
var ErrNoLevels = errors.New("game has no levels")

// GameStatus describes where the game is in its level sequence.
type GameStatus int

const (
	// GameStatusPlaying means the current level is being simulated.
	GameStatusPlaying GameStatus = iota
	// GameStatusLevelWon means physics is paused until start is pressed.
	GameStatusLevelWon
	// GameStatusCompleted means the last level was won.
	GameStatusCompleted
)

func (s GameStatus) String() string {
	switch s {
	case GameStatusPlaying:
		return "playing"
	case GameStatusLevelWon:
		return "level_won"
	case GameStatusCompleted:
		return "completed"
	}
	return "unknown"
}

// Stats summarises frame timing for health checks.
type Stats struct {
	Frames     uint64
	LastUpdate time.Time
	Average    time.Duration
	Max        time.Duration
}

// GameManager runs a sequence of levels. It is safe for concurrent use: one
// goroutine drives Update while others take snapshots.
type GameManager struct {
	mu         sync.RWMutex
	levels     []Level
	current    int
	status     GameStatus
	frame      uint64
	prevInput  entity.Input
	timeUnitMS float64
	lastUpdate time.Time
	telemetry  Telemetry

	SessionID string
	EventBus  *event.Bus
	logger    *logging.Logger
}

// NewGameManager creates a game that steps levels by timeUnitMS
// milliseconds per Update.
func NewGameManager(levels []Level, timeUnitMS float64, logger *logging.Logger) (*GameManager, error) {
	if len(levels) == 0 {
		return nil, ErrNoLevels
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	g := &GameManager{
		levels:     append([]Level(nil), levels...),
		timeUnitMS: timeUnitMS,
		SessionID:  uuid.NewString(),
		EventBus:   event.NewEventBus(),
	}
	g.logger = logger.With("session_id", g.SessionID)
	return g, nil
}

// TimeUnitMS returns the frame step in milliseconds.
func (g *GameManager) TimeUnitMS() float64 {
	return g.timeUnitMS
}

// Status returns the current game status.
func (g *GameManager) Status() GameStatus {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.status
}

// CurrentLevel returns the index and state of the level being played.
func (g *GameManager) CurrentLevel() (int, Level) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current, g.levels[g.current]
}

// Stats returns frame timing.
func (g *GameManager) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return Stats{
		Frames:     g.frame,
		LastUpdate: g.lastUpdate,
		Average:    g.telemetry.Average(),
		Max:        g.telemetry.Max(),
	}
}

// Update advances the game by one frame with the given input. Start and
// reset react to the press, not to the key being held. Events are published
// after the game lock is released, so handlers may call back into g.
func (g *GameManager) Update(ctx context.Context, in entity.Input) error {
	started := time.Now()
	events, err := g.step(ctx, in)
	for _, e := range events {
		g.EventBus.Publish(e)
	}
	if err != nil {
		g.logger.Error(ctx, "frame failed", err, "level", g.levelName())
	}
	g.mu.Lock()
	g.lastUpdate = time.Now()
	g.telemetry = g.telemetry.Record(g.lastUpdate.Sub(started))
	g.mu.Unlock()
	return err
}

func (g *GameManager) step(ctx context.Context, in entity.Input) ([]event.Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	startPressed := in.Pressed(entity.ActionStart) && !g.prevInput.Pressed(entity.ActionStart)
	resetPressed := in.Pressed(entity.ActionReset) && !g.prevInput.Pressed(entity.ActionReset)
	g.prevInput = in

	switch g.status {
	case GameStatusCompleted:
		return nil, nil
	case GameStatusLevelWon:
		if !startPressed {
			return nil, nil
		}
		return g.advance(ctx), nil
	}

	lv := g.levels[g.current]
	if resetPressed {
		g.levels[g.current] = lv.Reset()
		g.logger.Info(ctx, "level reset", "level", lv.Name)
		return []event.Event{event.NewLevelEvent(event.LevelReset, g, g.current, lv.Name)}, nil
	}

	next, contacts, err := lv.Updated(g.timeUnitMS, in)
	if err != nil {
		return nil, fmt.Errorf("frame %d: %w", g.frame, err)
	}
	g.frame++

	events := make([]event.Event, 0, len(contacts))
	for _, c := range contacts {
		events = append(events, event.NewCollisionEvent(g, uint64(c.A), uint64(c.B)))
	}
	for _, t := range hitTargets(lv, next) {
		events = append(events, event.NewTargetEvent(g, uint64(t.ID()), t.Kind().String()))
	}

	switch {
	case next.Lost:
		g.logger.Info(ctx, "level lost", "level", next.Name, "frame", g.frame)
		events = append(events,
			event.NewLevelEvent(event.LevelLost, g, g.current, next.Name),
			event.NewLevelEvent(event.LevelReset, g, g.current, next.Name),
		)
		next = next.Reset()
	case next.Won:
		g.logger.Info(ctx, "level won", "level", next.Name, "frame", g.frame)
		events = append(events, event.NewLevelEvent(event.LevelWon, g, g.current, next.Name))
		g.status = GameStatusLevelWon
	}
	g.levels[g.current] = next
	return events, nil
}

// advance moves past a won level. Callers hold g.mu.
func (g *GameManager) advance(ctx context.Context) []event.Event {
	if g.current == len(g.levels)-1 {
		g.status = GameStatusCompleted
		g.logger.Info(ctx, "game completed", "levels", len(g.levels))
		return []event.Event{event.NewLevelEvent(event.GameCompleted, g, g.current, g.levels[g.current].Name)}
	}
	g.current++
	g.levels[g.current] = g.levels[g.current].Reset()
	g.status = GameStatusPlaying
	name := g.levels[g.current].Name
	g.logger.Info(ctx, "level started", "level", name, "index", g.current)
	return []event.Event{event.NewLevelEvent(event.LevelStarted, g, g.current, name)}
}

func (g *GameManager) levelName() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.levels[g.current].Name
}

// Snapshot captures the current level for rendering.
func (g *GameManager) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	lv := g.levels[g.current]
	camera, _ := lv.CameraPosition()
	return Snapshot{
		SessionID:   g.SessionID,
		Frame:       g.frame,
		Level:       g.current,
		LevelName:   lv.Name,
		Won:         lv.Won,
		Lost:        lv.Lost,
		Completed:   g.status == GameStatusCompleted,
		Camera:      camera,
		Objects:     levelObjects(lv),
		Fingerprint: LevelFingerprint(lv),
	}
}

// Render walks the current level's objects, layer by layer, and lets each
// dispatch to r.
func (g *GameManager) Render(r entity.Renderer) {
	_, lv := g.CurrentLevel()
	r.Clear()
	for _, l := range lv.layers {
		for _, o := range l.Objects() {
			o.Render(r)
		}
	}
	r.Present()
}

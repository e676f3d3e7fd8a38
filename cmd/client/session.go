package main

import (
	"context"
	"sync"
	"time"

	"github.com/opd-ai/go-roadball/pkg/engine"
	"github.com/opd-ai/go-roadball/pkg/entity"
	"github.com/opd-ai/go-roadball/pkg/event"
	"github.com/opd-ai/go-roadball/pkg/network"
)

// session is where frames come from: a local game or a remote stream.
type session interface {
	Run(ctx context.Context) error
	Snapshots() <-chan engine.Snapshot
	Events() <-chan network.EventPayload
	SendInput(in entity.Input) error
}

var _ session = (*network.StreamClient)(nil)

// localSession steps a game in-process at its frame rate.
type localSession struct {
	game *engine.GameManager
	// render, when set, draws the live game after every frame.
	render entity.Renderer
	// maxFrames stops Run after that many frames when positive.
	maxFrames uint64

	mu    sync.Mutex
	input entity.Input

	snapshots chan engine.Snapshot
	events    chan network.EventPayload
}

func newLocalSession(game *engine.GameManager) *localSession {
	return &localSession{
		game:      game,
		snapshots: make(chan engine.Snapshot, 1),
		events:    make(chan network.EventPayload, 32),
	}
}

// queue runs on the frame goroutine; a full buffer drops the event.
func (s *localSession) queue(e event.Event) {
	select {
	case s.events <- network.NewEventPayload(e):
	default:
	}
}

func (s *localSession) Snapshots() <-chan engine.Snapshot { return s.snapshots }

func (s *localSession) Events() <-chan network.EventPayload { return s.events }

// SendInput sets the input used from the next frame on.
func (s *localSession) SendInput(in entity.Input) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = in
	return nil
}

func (s *localSession) latest() entity.Input {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Run steps the game until ctx is done, forwarding events while it runs.
// The channels are closed when it returns.
func (s *localSession) Run(ctx context.Context) error {
	defer close(s.snapshots)
	defer close(s.events)

	subs := make([]*event.Subscription, 0, len(network.StreamedEvents()))
	for _, t := range network.StreamedEvents() {
		subs = append(subs, s.game.EventBus.Subscribe(t, s.queue))
	}
	defer func() {
		for _, sub := range subs {
			sub.Cancel()
		}
	}()

	ticker := time.NewTicker(time.Duration(s.game.TimeUnitMS() * float64(time.Millisecond)))
	defer ticker.Stop()

	for frames := uint64(0); s.maxFrames == 0 || frames < s.maxFrames; frames++ {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		if err := s.step(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
	return nil
}

func (s *localSession) step(ctx context.Context) error {
	if err := s.game.Update(ctx, s.latest()); err != nil {
		return err
	}
	if s.render != nil {
		s.game.Render(s.render)
	}
	publish(s.snapshots, s.game.Snapshot())
	return nil
}

// publish replaces an unread snapshot with snap.
func publish(ch chan engine.Snapshot, snap engine.Snapshot) {
	for {
		select {
		case ch <- snap:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

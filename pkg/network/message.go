// pkg/network/message.go
package network

import (
	"github.com/opd-ai/go-roadball/pkg/engine"
	"github.com/opd-ai/go-roadball/pkg/event"
)

// MessageType tags messages sent from server to client.
type MessageType string

const (
	SnapshotMessage MessageType = "snapshot"
	EventMessage    MessageType = "event"
	ErrorMessage    MessageType = "error"
)

// Message is the JSON envelope written for every frame, game event and
// rejected input.
type Message struct {
	Type     MessageType      `json:"type"`
	Snapshot *engine.Snapshot `json:"snapshot,omitempty"`
	Event    *EventPayload    `json:"event,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// EventPayload is the wire form of a game event. Fields not carried by the
// event type are left zero.
type EventPayload struct {
	Type     event.Type `json:"type"`
	Level    int        `json:"level,omitempty"`
	Name     string     `json:"name,omitempty"`
	ObjectA  uint64     `json:"objectA,omitempty"`
	ObjectB  uint64     `json:"objectB,omitempty"`
	TargetID uint64     `json:"targetId,omitempty"`
	Kind     string     `json:"kind,omitempty"`
}

// StreamedEvents lists the event types forwarded to clients.
func StreamedEvents() []event.Type {
	return []event.Type{
		event.TargetHit,
		event.LevelStarted,
		event.LevelWon,
		event.LevelLost,
		event.LevelReset,
		event.GameCompleted,
	}
}

// NewEventPayload converts a bus event.
func NewEventPayload(e event.Event) EventPayload {
	p := EventPayload{Type: e.GetType()}
	switch ev := e.(type) {
	case *event.CollisionEvent:
		p.ObjectA, p.ObjectB = ev.ObjectA, ev.ObjectB
	case *event.TargetEvent:
		p.TargetID, p.Kind = ev.TargetID, ev.Kind
	case *event.LevelEvent:
		p.Level, p.Name = ev.Index, ev.Name
	}
	return p
}

// pkg/event/event.go
package event

import (
	"sync"
)

// Type represents the type of event
type Type string

// Game event types
const (
	ObjectCollision Type = "object_collision"
	TargetHit       Type = "target_hit"
	LevelStarted    Type = "level_started"
	LevelWon        Type = "level_won"
	LevelLost       Type = "level_lost"
	LevelReset      Type = "level_reset"
	GameCompleted   Type = "game_completed"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription identifies a registered handler so it can be cancelled.
type Subscription struct {
	id        uint64
	eventType Type
	bus       *Bus
}

// Cancel removes the handler from its bus. Cancelling twice is a no-op.
func (s *Subscription) Cancel() {
	if s == nil || s.bus == nil {
		return
	}
	s.bus.unsubscribe(s.eventType, s.id)
	s.bus = nil
}

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching. Handlers run
// synchronously on the publishing goroutine, in subscription order.
type Bus struct {
	handlers map[Type][]subscriber
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]subscriber),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscriber{id: id, handler: handler})
	return &Subscription{id: id, eventType: eventType, bus: b}
}

func (b *Bus) unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[eventType]
	for i, s := range subs {
		if s.id == id {
			b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	subs := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(event)
	}
}

// CollisionEvent reports that two objects touched during a frame
type CollisionEvent struct {
	BaseEvent
	ObjectA uint64
	ObjectB uint64
}

// NewCollisionEvent creates a new collision event
func NewCollisionEvent(source interface{}, objectA, objectB uint64) *CollisionEvent {
	return &CollisionEvent{
		BaseEvent: BaseEvent{
			EventType: ObjectCollision,
			Source:    source,
		},
		ObjectA: objectA,
		ObjectB: objectB,
	}
}

// TargetEvent reports a goal or obstacle being hit
type TargetEvent struct {
	BaseEvent
	TargetID uint64
	Kind     string
}

// NewTargetEvent creates a new target-hit event
func NewTargetEvent(source interface{}, targetID uint64, kind string) *TargetEvent {
	return &TargetEvent{
		BaseEvent: BaseEvent{
			EventType: TargetHit,
			Source:    source,
		},
		TargetID: targetID,
		Kind:     kind,
	}
}

// LevelEvent carries level transitions
type LevelEvent struct {
	BaseEvent
	Index int
	Name  string
}

// NewLevelEvent creates a new level event
func NewLevelEvent(eventType Type, source interface{}, index int, name string) *LevelEvent {
	return &LevelEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		Index: index,
		Name:  name,
	}
}

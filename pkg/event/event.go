// Package event is an internal diagnostic bus for step-lifecycle
// notifications (body sleep/wake, pair start/active/end). It is not
// the core API for pair lifecycle — callers needing contact data walk
// the pair cache's Start/Active/End sets directly (see pkg/paircache)
// — this bus exists for observers that only want to know an event
// happened, such as a log sink or a test harness counting wakes.
package event

import (
	"sync"
)

// Type represents the type of a diagnostic event.
type Type string

// Lifecycle event types emitted during a step.
const (
	BodySlept       Type = "body_slept"
	BodyWoke        Type = "body_woke"
	PairStarted     Type = "pair_started"
	PairActive      Type = "pair_active"
	PairEnded       Type = "pair_ended"
	WorldStructural Type = "world_structural"
)

// Event is the base interface for all diagnostic events.
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events.
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type.
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source.
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events.
type Handler func(Event)

// Bus manages event subscriptions and dispatching.
type Bus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]Handler),
	}
}

// Subscribe registers a handler for a specific event type.
func (b *Bus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish sends an event to all subscribed handlers.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers, ok := b.handlers[event.GetType()]
	b.mu.RUnlock()

	if !ok {
		return
	}

	for _, handler := range handlers {
		handler(event)
	}
}

// BodyEvent carries a sleep/wake notification for a single body.
type BodyEvent struct {
	BaseEvent
	BodyID uint64
}

// NewBodyEvent creates a body sleep/wake event.
func NewBodyEvent(eventType Type, source interface{}, bodyID uint64) *BodyEvent {
	return &BodyEvent{
		BaseEvent: BaseEvent{EventType: eventType, Source: source},
		BodyID:    bodyID,
	}
}

// PairEvent carries a pair start/active/end notification.
type PairEvent struct {
	BaseEvent
	BodyA, BodyB uint64
}

// NewPairEvent creates a pair lifecycle event.
func NewPairEvent(eventType Type, source interface{}, bodyA, bodyB uint64) *PairEvent {
	return &PairEvent{
		BaseEvent: BaseEvent{EventType: eventType, Source: source},
		BodyA:     bodyA,
		BodyB:     bodyB,
	}
}

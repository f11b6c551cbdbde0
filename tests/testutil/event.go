package testutil

import (
	"context"
	"sync"

	"github.com/botforce/unity/internal/domain/shared"
)

// EventRecorder captures published domain events. It satisfies both
// shared.EventPublisher and shared.EventHandler so it can replace the bus or
// subscribe to it.
type EventRecorder struct {
	mu     sync.Mutex
	types  []string
	events []shared.DomainEvent
	err    error
}

// NewEventRecorder creates a recorder. As a handler it subscribes to
// eventTypes, or to everything when none are given.
func NewEventRecorder(eventTypes ...string) *EventRecorder {
	return &EventRecorder{types: eventTypes}
}

// Publish records events in order
func (r *EventRecorder) Publish(_ context.Context, events ...shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return r.err
}

// Handle records a single delivered event
func (r *EventRecorder) Handle(ctx context.Context, event shared.DomainEvent) error {
	return r.Publish(ctx, event)
}

func (r *EventRecorder) EventTypes() []string {
	return r.types
}

// FailWith makes subsequent Publish calls return err after recording
func (r *EventRecorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Events returns a copy of everything recorded
func (r *EventRecorder) Events() []shared.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]shared.DomainEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the recorded event types in order
func (r *EventRecorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}

// Count returns how many events of eventType were recorded
func (r *EventRecorder) Count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.EventType() == eventType {
			n++
		}
	}
	return n
}

// Reset forgets recorded events and any configured error
func (r *EventRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
	r.err = nil
}

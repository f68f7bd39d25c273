package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of mutation an Event describes.
type EventType string

const (
	EventTypeEntityCreated EventType = "ENTITY_CREATED"
	EventTypeEntityUpdated EventType = "ENTITY_UPDATED"
	EventTypeEntityDeleted EventType = "ENTITY_DELETED"
)

// Event is a domain event raised by a command after it mutated shared state.
type Event struct {
	ID         uuid.UUID
	Type       EventType
	EntityKind EntityKind
	EntityID   string
	Entity     Entity
	OccurredAt time.Time
}

// BuildEntityEvent creates an Event describing the given entity.
func BuildEntityEvent(eventType EventType, entity Entity) Event {
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		EntityKind: entity.EntityKind(),
		EntityID:   entity.EntityID(),
		Entity:     entity,
		OccurredAt: time.Now(),
	}
}

// EventDispatcher is the capability commands use to publish events.
// Commands always call Dispatch; a disabled dispatcher drops the event.
type EventDispatcher interface {
	Dispatch(ctx context.Context, event Event) error
}

type disabledEventDispatcher struct{}

func (disabledEventDispatcher) Dispatch(context.Context, Event) error { return nil }

// DisabledEventDispatcher returns an EventDispatcher that drops all events.
func DisabledEventDispatcher() EventDispatcher {
	return disabledEventDispatcher{}
}

// EventDispatcherFor returns dispatcher when enabled is true, otherwise a disabled one.
func EventDispatcherFor(enabled bool, dispatcher EventDispatcher) EventDispatcher {
	if !enabled || dispatcher == nil {
		return DisabledEventDispatcher()
	}

	return dispatcher
}

// EventListener receives dispatched events.
type EventListener interface {
	OnEvent(ctx context.Context, event Event) error
}

// EventListenerFunc adapts a function to EventListener.
type EventListenerFunc func(ctx context.Context, event Event) error

// OnEvent calls f.
func (f EventListenerFunc) OnEvent(ctx context.Context, event Event) error {
	return f(ctx, event)
}

type registeredListener struct {
	listener EventListener
	types    []EventType
}

// ListenerEventDispatcher synchronously fans events out to registered listeners.
// Listener errors are joined and returned, which aborts the unit of work.
type ListenerEventDispatcher struct {
	mu        sync.RWMutex
	listeners []registeredListener
}

// NewListenerEventDispatcher creates a ListenerEventDispatcher without listeners.
func NewListenerEventDispatcher() *ListenerEventDispatcher {
	return &ListenerEventDispatcher{}
}

// AddListener registers a listener for the given event types, or for all types if none are given.
func (d *ListenerEventDispatcher) AddListener(listener EventListener, types ...EventType) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.listeners = append(d.listeners, registeredListener{listener: listener, types: types})
}

// Dispatch delivers the event to every matching listener in registration order.
func (d *ListenerEventDispatcher) Dispatch(ctx context.Context, event Event) error {
	d.mu.RLock()
	listeners := make([]registeredListener, len(d.listeners))
	copy(listeners, d.listeners)
	d.mu.RUnlock()

	var errs []error

	for _, l := range listeners {
		if !l.accepts(event.Type) {
			continue
		}

		if err := l.listener.OnEvent(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (l registeredListener) accepts(eventType EventType) bool {
	if len(l.types) == 0 {
		return true
	}

	for _, t := range l.types {
		if t == eventType {
			return true
		}
	}

	return false
}

package helper

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/process-engine-kernel/engine"
)

// EventDispatcherSpy is an engine.EventDispatcher that captures dispatched events.
type EventDispatcherSpy struct {
	mu     sync.Mutex
	events []engine.Event
	err    error
}

func NewEventDispatcherSpy() *EventDispatcherSpy {
	return &EventDispatcherSpy{}
}

// FailingWith makes every Dispatch call return err, the event is still captured.
func (s *EventDispatcherSpy) FailingWith(err error) *EventDispatcherSpy {
	s.err = err

	return s
}

func (s *EventDispatcherSpy) Dispatch(_ context.Context, event engine.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, event)

	return s.err
}

// Events returns a copy of the captured events.
func (s *EventDispatcherSpy) Events() []engine.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := make([]engine.Event, len(s.events))
	copy(events, s.events)

	return events
}

func (s *EventDispatcherSpy) EventCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.events)
}

package helper

import (
	"sync"

	"github.com/AntonStoeckl/process-engine-kernel/engine"
)

// VariableTypesSpy wraps an engine.VariableTypes and counts the lookups.
type VariableTypesSpy struct {
	delegate           engine.VariableTypes
	mu                 sync.Mutex
	findCalls          int
	resolveCalls       int
	OnFindVariableType func()
}

func NewVariableTypesSpy(delegate engine.VariableTypes) *VariableTypesSpy {
	return &VariableTypesSpy{delegate: delegate}
}

func (s *VariableTypesSpy) Resolve(typeName string) (engine.VariableType, bool) {
	s.mu.Lock()
	s.resolveCalls++
	s.mu.Unlock()

	return s.delegate.Resolve(typeName)
}

func (s *VariableTypesSpy) FindVariableType(value any) (engine.VariableType, error) {
	s.mu.Lock()
	s.findCalls++
	s.mu.Unlock()

	if s.OnFindVariableType != nil {
		s.OnFindVariableType()
	}

	return s.delegate.FindVariableType(value)
}

func (s *VariableTypesSpy) FindCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.findCalls
}

func (s *VariableTypesSpy) ResolveCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.resolveCalls
}

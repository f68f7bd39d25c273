package helper

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/process-engine-kernel/engine"
)

// InMemoryUnitOfWork wraps an InMemoryCommandContext with commit and rollback bookkeeping.
type InMemoryUnitOfWork struct {
	*InMemoryCommandContext

	factory     *InMemoryUnitOfWorkFactory
	Consistency engine.ConsistencyLevel
}

func (u *InMemoryUnitOfWork) Commit(context.Context) error {
	u.factory.mu.Lock()
	defer u.factory.mu.Unlock()

	u.factory.commits++

	return u.factory.CommitErr
}

func (u *InMemoryUnitOfWork) Rollback(context.Context) error {
	u.factory.mu.Lock()
	defer u.factory.mu.Unlock()

	u.factory.rollbacks++

	return nil
}

// InMemoryUnitOfWorkFactory opens InMemoryUnitOfWork instances sharing one InMemoryCommandContext.
type InMemoryUnitOfWorkFactory struct {
	mu        sync.Mutex
	Context   *InMemoryCommandContext
	OpenErr   error
	CommitErr error
	opened    []*InMemoryUnitOfWork
	commits   int
	rollbacks int
}

func NewInMemoryUnitOfWorkFactory(commandContext *InMemoryCommandContext) *InMemoryUnitOfWorkFactory {
	return &InMemoryUnitOfWorkFactory{Context: commandContext}
}

func (f *InMemoryUnitOfWorkFactory) Open(ctx context.Context) (*InMemoryUnitOfWork, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.OpenErr != nil {
		return nil, f.OpenErr
	}

	uow := &InMemoryUnitOfWork{
		InMemoryCommandContext: f.Context,
		factory:                f,
		Consistency:            engine.GetConsistencyLevel(ctx),
	}
	f.opened = append(f.opened, uow)

	return uow, nil
}

// Opened returns the units of work opened so far.
func (f *InMemoryUnitOfWorkFactory) Opened() []*InMemoryUnitOfWork {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]*InMemoryUnitOfWork(nil), f.opened...)
}

func (f *InMemoryUnitOfWorkFactory) Commits() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.commits
}

func (f *InMemoryUnitOfWorkFactory) Rollbacks() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.rollbacks
}

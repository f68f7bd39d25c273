package commandexecutor

import (
	"context"
	"errors"
	"time"

	"github.com/AntonStoeckl/process-engine-kernel/engine"
)

// ErrNilUnitOfWorkFactory is returned when NewCommandExecutor gets no factory.
var ErrNilUnitOfWorkFactory = errors.New("unit of work factory must not be nil")

// UnitOfWork is the command context of one command, ended by exactly one Commit or Rollback.
type UnitOfWork interface {
	engine.CommandContext
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UnitOfWorkFactory opens units of work. The consistency level in ctx selects how.
type UnitOfWorkFactory interface {
	OpenUnitOfWork(ctx context.Context) (UnitOfWork, error)
}

type unitOfWorkFactoryFunc[U UnitOfWork] func(ctx context.Context) (U, error)

func (f unitOfWorkFactoryFunc[U]) OpenUnitOfWork(ctx context.Context) (UnitOfWork, error) {
	uow, err := f(ctx)
	if err != nil {
		return nil, err
	}

	return uow, nil
}

// FactoryFor adapts a function returning a concrete unit of work, e.g., postgresengine.Engine.OpenUnitOfWork.
func FactoryFor[U UnitOfWork](open func(ctx context.Context) (U, error)) UnitOfWorkFactory {
	return unitOfWorkFactoryFunc[U](open)
}

// CommandExecutor executes commands within units of work.
type CommandExecutor struct {
	factory          UnitOfWorkFactory
	logger           engine.Logger
	contextualLogger engine.ContextualLogger
	metricsCollector engine.MetricsCollector
	tracingCollector engine.TracingCollector
	retryOptions     []RetryOption
}

// Option configures a CommandExecutor.
type Option func(*CommandExecutor) error

// WithLogger sets the logger for command start, completion and failure.
func WithLogger(logger engine.Logger) Option {
	return func(e *CommandExecutor) error {
		e.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger, which receives the same messages as the Logger.
func WithContextualLogger(logger engine.ContextualLogger) Option {
	return func(e *CommandExecutor) error {
		e.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for command durations, calls and retries.
func WithMetrics(collector engine.MetricsCollector) Option {
	return func(e *CommandExecutor) error {
		e.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector. Every command becomes a span, parent of the persistence spans.
func WithTracing(collector engine.TracingCollector) Option {
	return func(e *CommandExecutor) error {
		e.tracingCollector = collector
		return nil
	}
}

// WithRetryOptions sets the default retry configuration of ExecuteWithRetry.
func WithRetryOptions(options ...RetryOption) Option {
	return func(e *CommandExecutor) error {
		if _, err := newRetryConfig(options...); err != nil {
			return err
		}

		e.retryOptions = options

		return nil
	}
}

// NewCommandExecutor creates a CommandExecutor opening units of work from factory.
func NewCommandExecutor(factory UnitOfWorkFactory, options ...Option) (*CommandExecutor, error) {
	if factory == nil {
		return nil, ErrNilUnitOfWorkFactory
	}

	executor := &CommandExecutor{factory: factory}

	for _, option := range options {
		if err := option(executor); err != nil {
			return nil, err
		}
	}

	return executor, nil
}

// Execute runs command in a new unit of work.
//
// The unit of work is committed when the command succeeds and rolled back otherwise. Command errors
// are returned unchanged. On any error the zero value of R is returned.
func Execute[R any](ctx context.Context, executor *CommandExecutor, command engine.Command[R]) (R, error) {
	var zero R

	commandType := command.CommandType()
	ctx = withConsistencyFor(ctx, command)

	ctx, span := executor.startSpan(ctx, commandType)
	start := time.Now()
	executor.logStarted(ctx, commandType)

	uow, openErr := executor.factory.OpenUnitOfWork(ctx)
	if openErr != nil {
		executor.finish(ctx, span, commandType, start, openErr)
		return zero, openErr
	}

	result, execErr := command.Execute(ctx, uow)
	if execErr != nil {
		if rollbackErr := uow.Rollback(ctx); rollbackErr != nil {
			executor.logError(ctx, logMsgRollbackFailed, rollbackErr, logAttrCommandType, commandType)
		}

		executor.finish(ctx, span, commandType, start, execErr)

		return zero, execErr
	}

	if commitErr := uow.Commit(ctx); commitErr != nil {
		executor.finish(ctx, span, commandType, start, commitErr)
		return zero, commitErr
	}

	executor.finish(ctx, span, commandType, start, nil)

	return result, nil
}

func withConsistencyFor[R any](ctx context.Context, command engine.Command[R]) context.Context {
	if readOnly, ok := command.(engine.ReadOnlyCommand); ok && readOnly.ReadOnly() {
		return engine.WithEventualConsistency(ctx)
	}

	return engine.WithStrongConsistency(ctx)
}

package commandexecutor_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/process-engine-kernel/engine"
	"github.com/AntonStoeckl/process-engine-kernel/engine/commandexecutor"
	. "github.com/AntonStoeckl/process-engine-kernel/testutil/helper" //nolint:revive
)

// fakeCommand records the context it ran with and returns the configured outcome.
type fakeCommand struct {
	engine.Lifecycle

	readOnly    bool
	result      string
	err         error
	consistency engine.ConsistencyLevel
	executed    bool
}

func (c *fakeCommand) CommandType() string { return "FakeCommand" }

func (c *fakeCommand) ReadOnly() bool { return c.readOnly }

func (c *fakeCommand) Execute(ctx context.Context, _ engine.CommandContext) (string, error) {
	if err := c.Begin(); err != nil {
		return "", err
	}

	c.executed = true
	c.consistency = engine.GetConsistencyLevel(ctx)

	if c.err != nil {
		return "", c.Fail(c.err)
	}

	c.Complete()

	return c.result, nil
}

func givenExecutor(
	t *testing.T,
	factory *InMemoryUnitOfWorkFactory,
	options ...commandexecutor.Option,
) *commandexecutor.CommandExecutor {

	t.Helper()

	executor, err := commandexecutor.NewCommandExecutor(commandexecutor.FactoryFor(factory.Open), options...)
	require.NoError(t, err, "error in arranging test data")

	return executor
}

func givenFactory(t *testing.T) *InMemoryUnitOfWorkFactory {
	t.Helper()

	return NewInMemoryUnitOfWorkFactory(NewInMemoryCommandContext(GivenEngineConfiguration(t)))
}

func Test_NewCommandExecutor_RejectsNilFactory(t *testing.T) {
	_, err := commandexecutor.NewCommandExecutor(nil)

	assert.ErrorIs(t, err, commandexecutor.ErrNilUnitOfWorkFactory)
}

func Test_Execute_CommitsSuccessfulCommandWithStrongConsistency(t *testing.T) {
	// arrange
	factory := givenFactory(t)
	executor := givenExecutor(t, factory)
	command := &fakeCommand{result: "done"}

	// act
	result, err := commandexecutor.Execute(engine.WithEventualConsistency(context.Background()), executor, command)

	// assert
	require.NoError(t, err)
	assert.Equal(t, "done", result)
	assert.Equal(t, engine.StrongConsistency, command.consistency)
	assert.Equal(t, 1, factory.Commits())
	assert.Zero(t, factory.Rollbacks())
	require.Len(t, factory.Opened(), 1)
	assert.Equal(t, engine.StrongConsistency, factory.Opened()[0].Consistency)
}

func Test_Execute_RunsReadOnlyCommandsWithEventualConsistency(t *testing.T) {
	// arrange
	factory := givenFactory(t)
	executor := givenExecutor(t, factory)
	command := &fakeCommand{readOnly: true}

	// act
	_, err := commandexecutor.Execute(context.Background(), executor, command)

	// assert
	require.NoError(t, err)
	assert.Equal(t, engine.EventualConsistency, command.consistency)
	assert.Equal(t, engine.EventualConsistency, factory.Opened()[0].Consistency)
}

func Test_Execute_RollsBackAndReturnsCommandErrorUnchanged(t *testing.T) {
	// arrange
	factory := givenFactory(t)
	executor := givenExecutor(t, factory)
	commandErr := engine.NewNotFoundError(engine.KindDeployment, "d-1")
	command := &fakeCommand{result: "ignored", err: commandErr}

	// act
	result, err := commandexecutor.Execute(context.Background(), executor, command)

	// assert
	assert.Same(t, commandErr, err)
	assert.Empty(t, result)
	assert.Equal(t, 1, factory.Rollbacks())
	assert.Zero(t, factory.Commits())
	assert.Equal(t, engine.StateFailed, command.State())
}

func Test_Execute_ReturnsCommitFailure(t *testing.T) {
	// arrange
	factory := givenFactory(t)
	factory.CommitErr = assert.AnError
	executor := givenExecutor(t, factory)

	// act
	result, err := commandexecutor.Execute(context.Background(), executor, &fakeCommand{result: "done"})

	// assert
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, result)
}

func Test_Execute_DoesNotRunCommandWhenUnitOfWorkCannotBeOpened(t *testing.T) {
	// arrange
	factory := givenFactory(t)
	factory.OpenErr = assert.AnError
	executor := givenExecutor(t, factory)
	command := &fakeCommand{}

	// act
	_, err := commandexecutor.Execute(context.Background(), executor, command)

	// assert
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, command.executed)
}

func Test_Execute_RejectsReusedCommand(t *testing.T) {
	// arrange
	factory := givenFactory(t)
	executor := givenExecutor(t, factory)
	command := &fakeCommand{}

	_, err := commandexecutor.Execute(context.Background(), executor, command)
	require.NoError(t, err)

	// act
	_, err = commandexecutor.Execute(context.Background(), executor, command)

	// assert
	assert.ErrorIs(t, err, engine.ErrCommandAlreadyExecuted)
	assert.Equal(t, 1, factory.Rollbacks())
}

func Test_Execute_IsObserved(t *testing.T) {
	// arrange
	factory := givenFactory(t)
	logHandler := NewLogHandlerSpy(false)
	contextualLogger := NewContextualLoggerSpy()
	metricsSpy := NewMetricsCollectorSpy()
	tracingSpy := NewTracingCollectorSpy()
	executor := givenExecutor(t, factory,
		commandexecutor.WithLogger(slog.New(logHandler)),
		commandexecutor.WithContextualLogger(contextualLogger),
		commandexecutor.WithMetrics(metricsSpy),
		commandexecutor.WithTracing(tracingSpy),
	)

	// act
	_, okErr := commandexecutor.Execute(context.Background(), executor, &fakeCommand{})
	_, failErr := commandexecutor.Execute(context.Background(), executor, &fakeCommand{err: engine.NewInvalidArgumentError("category is null")})

	// assert
	require.NoError(t, okErr)
	require.Error(t, failErr)

	assert.True(t, logHandler.HasMessage(slog.LevelDebug, "command started"))
	assert.True(t, logHandler.HasMessage(slog.LevelInfo, "command completed"))
	assert.True(t, logHandler.HasMessage(slog.LevelError, "command failed"))
	assert.True(t, logHandler.HasAttribute("command failed", "error_type"))
	assert.True(t, contextualLogger.HasRecord("error", "command failed"))

	assert.True(t, metricsSpy.HasDurationRecordForMetric(commandexecutor.CommandDurationMetric).
		WithLabel("command_type", "FakeCommand").WithStatus(commandexecutor.StatusSuccess).Assert())
	assert.True(t, metricsSpy.HasCounterRecordForMetric(commandexecutor.CommandCallsMetric).
		WithStatus(commandexecutor.StatusError).Assert())

	assert.True(t, tracingSpy.HasSpanWithStatus("process_engine.command.FakeCommand", commandexecutor.StatusSuccess))
	assert.True(t, tracingSpy.HasSpanWithStatus("process_engine.command.FakeCommand", commandexecutor.StatusError))
}

func Test_ExecuteWithRetry_RetriesConcurrencyConflictsWithFreshCommands(t *testing.T) {
	// arrange
	factory := givenFactory(t)
	metricsSpy := NewMetricsCollectorSpy()
	executor := givenExecutor(t, factory, commandexecutor.WithMetrics(metricsSpy))

	var built []*fakeCommand
	newCommand := func() engine.Command[string] {
		command := &fakeCommand{result: "done"}
		if len(built) < 2 {
			command.err = errors.Join(engine.ErrConcurrencyConflict, errors.New("deployment d-1"))
		}

		built = append(built, command)

		return command
	}

	// act
	result, err := commandexecutor.ExecuteWithRetry(context.Background(), executor, newCommand,
		commandexecutor.WithBaseDelay(time.Millisecond),
		commandexecutor.WithJitterFactor(0),
	)

	// assert
	require.NoError(t, err)
	assert.Equal(t, "done", result)
	assert.Len(t, built, 3)
	assert.Equal(t, 2, factory.Rollbacks())
	assert.Equal(t, 1, factory.Commits())
	assert.Equal(t, 2, metricsSpy.HasCounterRecordForMetric(commandexecutor.CommandRetriesMetric).Count())
	assert.Equal(t, 2, metricsSpy.HasDurationRecordForMetric(commandexecutor.CommandRetryDelayMetric).Count())
}

func Test_ExecuteWithRetry_FailsFastOnOtherErrors(t *testing.T) {
	// arrange
	executor := givenExecutor(t, givenFactory(t))
	attempts := 0
	newCommand := func() engine.Command[string] {
		attempts++
		return &fakeCommand{err: assert.AnError}
	}

	// act
	_, err := commandexecutor.ExecuteWithRetry(context.Background(), executor, newCommand)

	// assert
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, attempts)
}

func Test_ExecuteWithRetry_ReturnsLastConflictAfterMaxAttempts(t *testing.T) {
	// arrange
	metricsSpy := NewMetricsCollectorSpy()
	executor := givenExecutor(t, givenFactory(t),
		commandexecutor.WithMetrics(metricsSpy),
		commandexecutor.WithRetryOptions(commandexecutor.WithMaxAttempts(3), commandexecutor.WithBaseDelay(0)),
	)
	attempts := 0
	newCommand := func() engine.Command[string] {
		attempts++
		return &fakeCommand{err: engine.ErrConcurrencyConflict}
	}

	// act
	_, err := commandexecutor.ExecuteWithRetry(context.Background(), executor, newCommand)

	// assert
	assert.ErrorIs(t, err, engine.ErrConcurrencyConflict)
	assert.Equal(t, 3, attempts)
	assert.True(t, metricsSpy.HasCounterRecordForMetric(commandexecutor.CommandMaxRetriesReachedMetric).
		WithLabel("final_error_type", "concurrency_conflict").Assert())
}

func Test_ExecuteWithRetry_StopsWhenContextIsCanceledDuringBackoff(t *testing.T) {
	// arrange
	executor := givenExecutor(t, givenFactory(t))
	ctx, cancel := context.WithCancel(context.Background())
	newCommand := func() engine.Command[string] {
		cancel()
		return &fakeCommand{err: engine.ErrConcurrencyConflict}
	}

	// act
	_, err := commandexecutor.ExecuteWithRetry(ctx, executor, newCommand, commandexecutor.WithBaseDelay(time.Hour))

	// assert
	assert.ErrorIs(t, err, context.Canceled)
}

func Test_RetryOptions_RejectInvalidValues(t *testing.T) {
	factory := givenFactory(t)

	for _, option := range []commandexecutor.RetryOption{
		commandexecutor.WithMaxAttempts(0),
		commandexecutor.WithBaseDelay(-time.Millisecond),
		commandexecutor.WithJitterFactor(1.5),
	} {
		_, err := commandexecutor.NewCommandExecutor(
			commandexecutor.FactoryFor(factory.Open),
			commandexecutor.WithRetryOptions(option),
		)
		assert.Error(t, err)
	}
}

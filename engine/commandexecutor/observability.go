package commandexecutor

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/AntonStoeckl/process-engine-kernel/engine"
)

const (
	// CommandDurationMetric tracks command execution duration including commit.
	CommandDurationMetric = "process_engine_command_duration_seconds"
	// CommandCallsMetric counts executed commands by type and status.
	CommandCallsMetric = "process_engine_command_calls_total"
	// CommandRetriesMetric counts retried attempts.
	CommandRetriesMetric = "process_engine_command_retries_total"
	// CommandRetryDelayMetric tracks the backoff delay before a retry.
	CommandRetryDelayMetric = "process_engine_command_retry_delay_seconds"
	// CommandMaxRetriesReachedMetric counts commands that failed after the last attempt.
	CommandMaxRetriesReachedMetric = "process_engine_command_max_retries_reached_total"

	StatusSuccess = "success"
	StatusError   = "error"

	spanNamePrefix = "process_engine.command."

	logMsgCommandStarted   = "command started"
	logMsgCommandCompleted = "command completed"
	logMsgCommandFailed    = "command failed"
	logMsgRollbackFailed   = "rolling back unit of work failed"

	logAttrCommandType  = "command_type"
	logAttrStatus       = "status"
	logAttrDurationMS   = "duration_ms"
	logAttrError        = "error"
	logAttrErrorType    = "error_type"
	logAttrConsistency  = "consistency"
	logAttrAttempt      = "attempt_number"
	logAttrFinalErrType = "final_error_type"
)

func (e *CommandExecutor) startSpan(ctx context.Context, commandType string) (context.Context, engine.SpanContext) {
	if e.tracingCollector == nil {
		return ctx, nil
	}

	return e.tracingCollector.StartSpan(ctx, spanNamePrefix+commandType, map[string]string{
		logAttrCommandType: commandType,
		logAttrConsistency: engine.GetConsistencyLevel(ctx).String(),
	})
}

// finish records span, metrics and the completion or failure log line of one command.
func (e *CommandExecutor) finish(
	ctx context.Context,
	span engine.SpanContext,
	commandType string,
	start time.Time,
	err error,
) {

	duration := time.Since(start)
	status := StatusSuccess

	if err != nil {
		status = StatusError
	}

	labels := map[string]string{logAttrCommandType: commandType, logAttrStatus: status}
	e.recordDuration(ctx, CommandDurationMetric, duration, labels)
	e.incrementCounter(ctx, CommandCallsMetric, labels)

	if e.tracingCollector != nil && span != nil {
		attrs := map[string]string{logAttrDurationMS: strconv.FormatFloat(toMilliseconds(duration), 'f', 3, 64)}
		if err != nil {
			attrs[logAttrErrorType] = errorType(err)
		}

		e.tracingCollector.FinishSpan(span, status, attrs)
	}

	if err != nil {
		e.logError(ctx, logMsgCommandFailed, err,
			logAttrCommandType, commandType,
			logAttrErrorType, errorType(err),
			logAttrDurationMS, toMilliseconds(duration),
		)

		return
	}

	e.logInfo(ctx, logMsgCommandCompleted, logAttrCommandType, commandType, logAttrDurationMS, toMilliseconds(duration))
}

func (e *CommandExecutor) recordDuration(ctx context.Context, metric string, d time.Duration, labels map[string]string) {
	if e.metricsCollector == nil {
		return
	}

	if contextual, ok := e.metricsCollector.(engine.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metric, d, labels)
	} else {
		e.metricsCollector.RecordDuration(metric, d, labels)
	}
}

func (e *CommandExecutor) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if e.metricsCollector == nil {
		return
	}

	if contextual, ok := e.metricsCollector.(engine.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
	} else {
		e.metricsCollector.IncrementCounter(metric, labels)
	}
}

func (e *CommandExecutor) logStarted(ctx context.Context, commandType string) {
	args := []any{logAttrCommandType, commandType, logAttrConsistency, engine.GetConsistencyLevel(ctx).String()}

	if e.logger != nil {
		e.logger.Debug(logMsgCommandStarted, args...)
	}

	if e.contextualLogger != nil {
		e.contextualLogger.DebugContext(ctx, logMsgCommandStarted, args...)
	}
}

func (e *CommandExecutor) logInfo(ctx context.Context, msg string, args ...any) {
	if e.logger != nil {
		e.logger.Info(msg, args...)
	}

	if e.contextualLogger != nil {
		e.contextualLogger.InfoContext(ctx, msg, args...)
	}
}

func (e *CommandExecutor) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	if e.logger != nil {
		e.logger.Error(msg, allArgs...)
	}

	if e.contextualLogger != nil {
		e.contextualLogger.ErrorContext(ctx, msg, allArgs...)
	}
}

// errorType classifies err for metric labels and log attributes.
func errorType(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, engine.ErrConcurrencyConflict):
		return "concurrency_conflict"
	case errors.Is(err, engine.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, engine.ErrNotFound):
		return "not_found"
	case errors.Is(err, engine.ErrConfiguration):
		return "configuration"
	case errors.Is(err, context.Canceled):
		return "context_canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "context_deadline_exceeded"
	default:
		return "other"
	}
}

func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

package commandexecutor

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/AntonStoeckl/process-engine-kernel/engine"
)

const (
	defaultMaxAttempts  = 5
	defaultBaseDelay    = 10 * time.Millisecond
	defaultJitterFactor = 0.3
)

var (
	ErrInvalidMaxAttempts  = errors.New("max attempts must be positive")
	ErrNegativeBaseDelay   = errors.New("base delay must not be negative")
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")
)

type retryConfig struct {
	maxAttempts  int
	baseDelay    time.Duration
	jitterFactor float64
}

// RetryOption configures ExecuteWithRetry.
type RetryOption func(*retryConfig) error

// WithMaxAttempts sets the number of attempts including the first one.
func WithMaxAttempts(attempts int) RetryOption {
	return func(config *retryConfig) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}

		config.maxAttempts = attempts

		return nil
	}
}

// WithBaseDelay sets the delay before the first retry. It doubles for every further retry.
func WithBaseDelay(delay time.Duration) RetryOption {
	return func(config *retryConfig) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}

		config.baseDelay = delay

		return nil
	}
}

// WithJitterFactor sets the random share, 0.0 to 1.0, added on top of each backoff delay.
func WithJitterFactor(factor float64) RetryOption {
	return func(config *retryConfig) error {
		if factor < 0.0 || factor > 1.0 {
			return ErrInvalidJitterFactor
		}

		config.jitterFactor = factor

		return nil
	}
}

func newRetryConfig(options ...RetryOption) (retryConfig, error) {
	config := retryConfig{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
	}

	for _, option := range options {
		if err := option(&config); err != nil {
			return retryConfig{}, err
		}
	}

	return config, nil
}

func (c retryConfig) backoff(attempt int) time.Duration {
	delay := c.baseDelay * time.Duration(1<<(attempt-1))
	jitter := rand.Float64() * float64(delay) * c.jitterFactor //nolint:gosec

	return delay + time.Duration(jitter)
}

// ExecuteWithRetry executes a fresh command from newCommand per attempt and retries attempts that
// failed with engine.ErrConcurrencyConflict, with exponential backoff and jitter.
// Options override the executor's retry defaults. All other errors are returned at once.
func ExecuteWithRetry[R any](
	ctx context.Context,
	executor *CommandExecutor,
	newCommand func() engine.Command[R],
	options ...RetryOption,
) (R, error) {

	var zero R

	config, err := newRetryConfig(append(append([]RetryOption{}, executor.retryOptions...), options...)...)
	if err != nil {
		return zero, err
	}

	var lastErr error
	var commandType string

	for attempt := 0; attempt < config.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := config.backoff(attempt)
			executor.recordDuration(ctx, CommandRetryDelayMetric, delay, map[string]string{
				logAttrCommandType: commandType,
				logAttrAttempt:     strconv.Itoa(attempt),
			})

			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			}
		}

		command := newCommand()
		commandType = command.CommandType()

		result, execErr := Execute(ctx, executor, command)
		if execErr == nil {
			return result, nil
		}

		lastErr = execErr

		if !errors.Is(execErr, engine.ErrConcurrencyConflict) {
			return zero, execErr
		}

		if attempt < config.maxAttempts-1 {
			executor.incrementCounter(ctx, CommandRetriesMetric, map[string]string{
				logAttrCommandType: commandType,
				logAttrAttempt:     strconv.Itoa(attempt + 1),
				logAttrErrorType:   errorType(execErr),
			})
		}
	}

	executor.incrementCounter(ctx, CommandMaxRetriesReachedMetric, map[string]string{
		logAttrCommandType:  commandType,
		logAttrFinalErrType: errorType(lastErr),
	})

	return zero, lastErr
}

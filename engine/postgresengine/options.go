package postgresengine

import (
	"github.com/AntonStoeckl/process-engine-kernel/engine"
)

// Option defines a functional option for configuring Engine.
type Option func(*Engine) error

// WithHistoricVariableTableName sets the table holding historic variable instances.
func WithHistoricVariableTableName(tableName string) Option {
	return func(e *Engine) error {
		if tableName == "" {
			return engine.ErrEmptyTableName
		}

		e.historicVariableTableName = tableName

		return nil
	}
}

// WithDeploymentTableName sets the table holding deployments.
func WithDeploymentTableName(tableName string) Option {
	return func(e *Engine) error {
		if tableName == "" {
			return engine.ErrEmptyTableName
		}

		e.deploymentTableName = tableName

		return nil
	}
}

// WithProcessDefinitionTableName sets the table holding process definitions.
func WithProcessDefinitionTableName(tableName string) Option {
	return func(e *Engine) error {
		if tableName == "" {
			return engine.ErrEmptyTableName
		}

		e.processDefinitionTableName = tableName

		return nil
	}
}

// WithEngineConfiguration sets the configuration handed to commands.
// Without it, the Engine uses the default variable types, resolving entity variables through itself.
func WithEngineConfiguration(configuration engine.EngineConfiguration) Option {
	return func(e *Engine) error {
		e.configuration = &configuration

		return nil
	}
}

// WithEventDispatcher sets the event dispatcher handed to commands. The default drops all events.
func WithEventDispatcher(dispatcher engine.EventDispatcher) Option {
	return func(e *Engine) error {
		if dispatcher == nil {
			return engine.ErrNilEventDispatcher
		}

		e.eventDispatcher = dispatcher

		return nil
	}
}

// WithLogger sets the logger for the Engine.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: Row counts, durations, concurrency conflicts (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger engine.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Engine.
// It receives the same messages as the Logger, together with the context for trace correlation.
func WithContextualLogger(logger engine.ContextualLogger) Option {
	return func(e *Engine) error {
		e.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Engine.
// It receives query and update durations, returned row counts, database errors and concurrency conflicts.
func WithMetrics(collector engine.MetricsCollector) Option {
	return func(e *Engine) error {
		e.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Engine.
// Every database operation becomes a span.
func WithTracing(collector engine.TracingCollector) Option {
	return func(e *Engine) error {
		e.tracingCollector = collector
		return nil
	}
}

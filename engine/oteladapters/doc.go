// Package oteladapters provides OpenTelemetry implementations of the engine observability interfaces.
//
// MetricsCollector, TracingCollector and the two contextual loggers can be handed to
// postgresengine and commandexecutor options without implementing the interfaces yourself.
package oteladapters

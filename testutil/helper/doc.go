// Package helper provides test doubles and fixtures for the engine packages:
// in-memory entity managers and command context, spies for event dispatch, variable type lookups,
// metrics, tracing and logging.
package helper

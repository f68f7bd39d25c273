// Package config loads the process engine configuration and turns it into running collaborators.
//
// Load merges, from lowest to highest precedence, the built-in defaults, an optional YAML file,
// environment variables with the ENGINE_ prefix (nested keys separated by "__", e.g.
// ENGINE_POSTGRES__DSN) and explicitly set command line flags.
//
// OpenEngine creates a postgresengine.Engine over one of the supported drivers (pgx, sql, sqlx),
// SetupTracing installs an OTLP/HTTP tracer provider when an endpoint is configured and NewLogger
// creates the slog.Logger used by the engine and the command executor.
package config

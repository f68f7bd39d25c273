package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	// EnvPrefix is the prefix of all environment variables read by Load.
	EnvPrefix = "ENGINE_"

	envNestingSeparator = "__"
	keyDelimiter        = "."
)

const (
	DriverPGX  = "pgx"
	DriverSQL  = "sql"
	DriverSQLX = "sqlx"
)

var (
	ErrLoadingConfigFailed = errors.New("loading configuration failed")
	ErrInvalidConfig       = errors.New("invalid configuration")
)

// Config is the complete process engine configuration.
type Config struct {
	Postgres PostgresConfig `koanf:"postgres"`
	Tables   TablesConfig   `koanf:"tables"`
	Events   EventsConfig   `koanf:"events"`
	Logging  LoggingConfig  `koanf:"logging"`
	Tracing  TracingConfig  `koanf:"tracing"`
}

// PostgresConfig selects the driver and the connection pools.
// ReplicaDSN is optional and only supported by the pgx driver.
type PostgresConfig struct {
	DSN             string        `koanf:"dsn"`
	ReplicaDSN      string        `koanf:"replica_dsn"`
	Driver          string        `koanf:"driver"`
	MaxConns        int           `koanf:"max_conns"`
	MinConns        int           `koanf:"min_conns"`
	MaxConnLifetime time.Duration `koanf:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `koanf:"max_conn_idle_time"`
	ConnectTimeout  time.Duration `koanf:"connect_timeout"`
}

// TablesConfig holds the table names used by the postgres engine.
type TablesConfig struct {
	HistoricVariables  string `koanf:"historic_variables"`
	Deployments        string `koanf:"deployments"`
	ProcessDefinitions string `koanf:"process_definitions"`
}

// EventsConfig switches entity event dispatching on or off.
type EventsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// LoggingConfig holds the minimum log level and the output format ("text" or "json").
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// TracingConfig configures the OTLP/HTTP trace exporter. Tracing is off without an endpoint.
type TracingConfig struct {
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	ServiceName  string `koanf:"service_name"`
}

func defaults() map[string]any {
	return map[string]any{
		"postgres.driver":             DriverPGX,
		"postgres.max_conns":          50,
		"postgres.min_conns":          2,
		"postgres.max_conn_lifetime":  time.Hour,
		"postgres.max_conn_idle_time": 5 * time.Minute,
		"postgres.connect_timeout":    5 * time.Second,
		"tables.historic_variables":   "historic_variables",
		"tables.deployments":          "deployments",
		"tables.process_definitions":  "process_definitions",
		"events.enabled":              true,
		"logging.level":               "info",
		"logging.format":              "text",
		"tracing.service_name":        "process-engine",
		"tracing.otlp_endpoint":       "",
		"postgres.dsn":                "",
		"postgres.replica_dsn":        "",
	}
}

// Load reads the configuration. An empty path skips the YAML file.
// Only flags that were explicitly set are applied, a flag named "postgres-dsn" sets postgres.dsn.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(keyDelimiter)

	if err := k.Load(confmap.Provider(defaults(), keyDelimiter), nil); err != nil {
		return Config{}, errors.Join(ErrLoadingConfigFailed, fmt.Errorf("defaults: %w", err))
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, errors.Join(ErrLoadingConfigFailed, fmt.Errorf("config file %s: %w", path, err))
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, keyDelimiter, envKey), nil); err != nil {
		return Config{}, errors.Join(ErrLoadingConfigFailed, fmt.Errorf("environment: %w", err))
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, keyDelimiter, k, flagKey(flags)), nil); err != nil {
			return Config{}, errors.Join(ErrLoadingConfigFailed, fmt.Errorf("flags: %w", err))
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, errors.Join(ErrLoadingConfigFailed, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// envKey maps ENGINE_POSTGRES__REPLICA_DSN to postgres.replica_dsn.
func envKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))

	return strings.ReplaceAll(key, envNestingSeparator, keyDelimiter)
}

// flagKey maps the flag "postgres-replica-dsn" to postgres.replica_dsn, splitting at the first dash.
func flagKey(flags *pflag.FlagSet) func(f *pflag.Flag) (string, any) {
	return func(f *pflag.Flag) (string, any) {
		if !f.Changed {
			return "", nil
		}

		section, name, found := strings.Cut(f.Name, "-")
		if !found {
			return "", nil
		}

		return section + keyDelimiter + strings.ReplaceAll(name, "-", "_"), posflag.FlagVal(flags, f)
	}
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.Join(ErrInvalidConfig, fmt.Errorf(format, args...))
	}

	switch c.Postgres.Driver {
	case DriverPGX, DriverSQL, DriverSQLX:
	default:
		return invalid("postgres.driver must be one of %s, %s, %s but is '%s'", DriverPGX, DriverSQL, DriverSQLX, c.Postgres.Driver)
	}

	if c.Postgres.ReplicaDSN != "" && c.Postgres.Driver != DriverPGX {
		return invalid("postgres.replica_dsn is only supported by the %s driver", DriverPGX)
	}

	if c.Postgres.MaxConns < 1 {
		return invalid("postgres.max_conns must be positive")
	}

	if c.Postgres.MinConns < 0 || c.Postgres.MinConns > c.Postgres.MaxConns {
		return invalid("postgres.min_conns must be between 0 and postgres.max_conns")
	}

	if c.Tables.HistoricVariables == "" || c.Tables.Deployments == "" || c.Tables.ProcessDefinitions == "" {
		return invalid("table names must not be empty")
	}

	if _, err := c.Logging.SlogLevel(); err != nil {
		return invalid("logging.level: %w", err)
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return invalid("logging.format must be text or json but is '%s'", c.Logging.Format)
	}

	return nil
}

// SlogLevel parses Level, e.g. "debug" or "warn".
func (c LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo, err
	}

	return level, nil
}

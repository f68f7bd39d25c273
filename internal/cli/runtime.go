package cli

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"

	"github.com/AntonStoeckl/process-engine-kernel/config"
	"github.com/AntonStoeckl/process-engine-kernel/engine/commandexecutor"
	"github.com/AntonStoeckl/process-engine-kernel/engine/oteladapters"
	"github.com/AntonStoeckl/process-engine-kernel/engine/postgresengine"
)

const instrumentationName = "github.com/AntonStoeckl/process-engine-kernel/enginectl"

// Runtime bundles the collaborators a subcommand needs.
type Runtime struct {
	Engine   *postgresengine.Engine
	Executor *commandexecutor.CommandExecutor
	closers  []func()
}

// RuntimeOpener creates the Runtime for a loaded configuration. Log output goes to logOutput.
type RuntimeOpener func(ctx context.Context, cfg config.Config, logOutput io.Writer) (*Runtime, error)

// NewRuntime creates a Runtime whose executor opens units of work on pg.
func NewRuntime(pg *postgresengine.Engine, options ...commandexecutor.Option) (*Runtime, error) {
	executor, err := commandexecutor.NewCommandExecutor(commandexecutor.FactoryFor(pg.OpenUnitOfWork), options...)
	if err != nil {
		return nil, err
	}

	return &Runtime{Engine: pg, Executor: executor}, nil
}

// Close releases connections and flushes telemetry, in reverse order of acquisition.
func (r *Runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// OpenRuntime is the default RuntimeOpener. It wires logging, OTLP tracing, otel metrics and the
// configured postgres driver.
func OpenRuntime(ctx context.Context, cfg config.Config, logOutput io.Writer) (*Runtime, error) {
	logger := config.NewLogger(cfg.Logging, logOutput)

	tracerProvider, shutdownTracing, err := config.SetupTracing(ctx, cfg.Tracing)
	if err != nil {
		return nil, err
	}

	tracing := oteladapters.NewTracingCollector(tracerProvider.Tracer(instrumentationName))
	metrics := oteladapters.NewMetricsCollector(otel.Meter(instrumentationName))

	pg, closeEngine, err := config.OpenEngine(ctx, cfg, nil,
		postgresengine.WithLogger(logger),
		postgresengine.WithMetrics(metrics),
		postgresengine.WithTracing(tracing),
	)
	if err != nil {
		_ = shutdownTracing(ctx)
		return nil, err
	}

	runtime, err := NewRuntime(pg,
		commandexecutor.WithLogger(logger),
		commandexecutor.WithMetrics(metrics),
		commandexecutor.WithTracing(tracing),
	)
	if err != nil {
		closeEngine()
		_ = shutdownTracing(ctx)
		return nil, err
	}

	runtime.closers = append(runtime.closers,
		func() { _ = shutdownTracing(context.WithoutCancel(ctx)) },
		closeEngine,
	)

	return runtime, nil
}

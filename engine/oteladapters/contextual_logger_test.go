package oteladapters_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/embedded"
	"go.opentelemetry.io/otel/log/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/AntonStoeckl/process-engine-kernel/engine/oteladapters"
)

// recordingLogger is a log.Logger that keeps emitted records.
type recordingLogger struct {
	embedded.Logger

	mu       sync.Mutex
	minLevel log.Severity
	records  []log.Record
	contexts []context.Context
}

func (l *recordingLogger) Emit(ctx context.Context, record log.Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, record)
	l.contexts = append(l.contexts, ctx)
}

func (l *recordingLogger) Enabled(_ context.Context, param log.EnabledParameters) bool {
	return param.Severity >= l.minLevel
}

func attributesOf(record log.Record) map[string]log.Value {
	attrs := map[string]log.Value{}
	record.WalkAttributes(func(kv log.KeyValue) bool {
		attrs[kv.Key] = kv.Value
		return true
	})

	return attrs
}

func Test_SlogBridgeLoggerWithHandler_WritesAllLevels(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := context.Background()

	// act
	logger.DebugContext(ctx, "debug message", "operation", "historic_variables_list")
	logger.InfoContext(ctx, "info message")
	logger.WarnContext(ctx, "warn message")
	logger.ErrorContext(ctx, "error message")

	// assert
	output := buf.String()
	assert.Contains(t, output, `"level":"DEBUG","msg":"debug message","operation":"historic_variables_list"`)
	assert.Contains(t, output, `"msg":"info message"`)
	assert.Contains(t, output, `"msg":"warn message"`)
	assert.Contains(t, output, `"msg":"error message"`)
}

func Test_SlogBridgeLogger_WithProviderDoesNotPanic(t *testing.T) {
	logger := oteladapters.NewSlogBridgeLoggerWithProvider("test", noop.NewLoggerProvider())

	tracerProvider := sdktrace.NewTracerProvider()
	defer func() { _ = tracerProvider.Shutdown(context.Background()) }()

	ctx, span := tracerProvider.Tracer("test").Start(context.Background(), "command")
	defer span.End()

	assert.NotPanics(t, func() {
		logger.InfoContext(ctx, "correlated message", "command_type", "SetDeploymentCategory")
	})
}

func Test_OTelLogger_EmitsTypedAttributes(t *testing.T) {
	// arrange
	recorder := &recordingLogger{minLevel: log.SeverityDebug}
	logger := oteladapters.NewOTelLogger(recorder)

	// act
	logger.InfoContext(context.Background(), "process engine operation: deployment_update",
		"entity_id", "d-1",
		"row_count", int64(1),
		"duration_ms", 1.5,
		"retried", false,
		"error", errors.New("boom"),
		"dangling",
	)

	// assert
	require.Len(t, recorder.records, 1)

	record := recorder.records[0]
	assert.Equal(t, log.SeverityInfo, record.Severity())
	assert.Equal(t, "process engine operation: deployment_update", record.Body().AsString())

	attrs := attributesOf(record)
	assert.Len(t, attrs, 5)
	assert.Equal(t, "d-1", attrs["entity_id"].AsString())
	assert.Equal(t, int64(1), attrs["row_count"].AsInt64())
	assert.InDelta(t, 1.5, attrs["duration_ms"].AsFloat64(), 0.0001)
	assert.False(t, attrs["retried"].AsBool())
	assert.Equal(t, "boom", attrs["error"].AsString())
}

func Test_OTelLogger_MapsSeveritiesAndHonorsEnabled(t *testing.T) {
	// arrange
	recorder := &recordingLogger{minLevel: log.SeverityWarn}
	logger := oteladapters.NewOTelLogger(recorder)
	ctx := context.Background()

	// act
	logger.DebugContext(ctx, "debug")
	logger.InfoContext(ctx, "info")
	logger.WarnContext(ctx, "warn")
	logger.ErrorContext(ctx, "error")

	// assert
	require.Len(t, recorder.records, 2)
	assert.Equal(t, log.SeverityWarn, recorder.records[0].Severity())
	assert.Equal(t, log.SeverityError, recorder.records[1].Severity())
}

package helper

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LogHandlerSpy is a slog.Handler that captures log records.
// Switchable to also log to stdout, which helps when debugging tests.
type LogHandlerSpy struct {
	mu          sync.Mutex
	records     []slog.Record
	logToStdout bool
}

func NewLogHandlerSpy(logToStdout bool) *LogHandlerSpy {
	return &LogHandlerSpy{logToStdout: logToStdout}
}

func (s *LogHandlerSpy) Handle(ctx context.Context, record slog.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record.Clone())

	if s.logToStdout {
		_ = slog.NewJSONHandler(os.Stdout, nil).Handle(ctx, record)
	}

	return nil
}

func (s *LogHandlerSpy) Enabled(context.Context, slog.Level) bool { return true }
func (s *LogHandlerSpy) WithAttrs([]slog.Attr) slog.Handler       { return s }
func (s *LogHandlerSpy) WithGroup(string) slog.Handler            { return s }

func (s *LogHandlerSpy) RecordCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
}

// HasMessage reports whether a record at the level contains msg.
func (s *LogHandlerSpy) HasMessage(level slog.Level, msg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.Level == level && strings.Contains(r.Message, msg) {
			return true
		}
	}

	return false
}

// HasAttribute reports whether a record containing msg carries the attribute key.
func (s *LogHandlerSpy) HasAttribute(msg, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if !strings.Contains(r.Message, msg) {
			continue
		}

		found := false
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == key {
				found = true

				return false
			}

			return true
		})

		if found {
			return true
		}
	}

	return false
}

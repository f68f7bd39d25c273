package helper

import (
	"context"
	"strings"
	"sync"
)

// SpyContextualLogRecord is one captured contextual log call.
type SpyContextualLogRecord struct {
	Level   string
	Message string
	Args    []any
	Context context.Context
}

// ContextualLoggerSpy is an engine.ContextualLogger that captures all calls.
type ContextualLoggerSpy struct {
	mu      sync.Mutex
	records []SpyContextualLogRecord
}

func NewContextualLoggerSpy() *ContextualLoggerSpy {
	return &ContextualLoggerSpy{}
}

func (s *ContextualLoggerSpy) DebugContext(ctx context.Context, msg string, args ...any) {
	s.add(ctx, "debug", msg, args)
}

func (s *ContextualLoggerSpy) InfoContext(ctx context.Context, msg string, args ...any) {
	s.add(ctx, "info", msg, args)
}

func (s *ContextualLoggerSpy) WarnContext(ctx context.Context, msg string, args ...any) {
	s.add(ctx, "warn", msg, args)
}

func (s *ContextualLoggerSpy) ErrorContext(ctx context.Context, msg string, args ...any) {
	s.add(ctx, "error", msg, args)
}

func (s *ContextualLoggerSpy) add(ctx context.Context, level, msg string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, SpyContextualLogRecord{Level: level, Message: msg, Args: args, Context: ctx})
}

// Records returns a copy of the captured calls.
func (s *ContextualLoggerSpy) Records() []SpyContextualLogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SpyContextualLogRecord, len(s.records))
	copy(out, s.records)

	return out
}

// HasRecord reports whether a call at the level contains msg.
func (s *ContextualLoggerSpy) HasRecord(level, msg string) bool {
	for _, r := range s.Records() {
		if r.Level == level && strings.Contains(r.Message, msg) {
			return true
		}
	}

	return false
}

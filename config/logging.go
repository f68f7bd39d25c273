package config

import (
	"io"
	"log/slog"
)

// NewLogger creates the slog.Logger for the configured level and format.
// It satisfies both engine.Logger and engine.ContextualLogger.
func NewLogger(c LoggingConfig, w io.Writer) *slog.Logger {
	level, err := c.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}

	handlerOptions := &slog.HandlerOptions{Level: level}

	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOptions))
	}

	return slog.New(slog.NewTextHandler(w, handlerOptions))
}

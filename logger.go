package semago

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with semago-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithVocabulary adds a vocabulary label field to the logger.
func (l *Logger) WithVocabulary(label string) *Logger {
	return &Logger{
		Logger: l.Logger.With("vocabulary", label),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// LogConnect logs an effect-routing statement.
func (l *Logger) LogConnect(sink string, err error) {
	if err != nil {
		l.Error("connect failed",
			"sink", sink,
			"error", err,
		)
	} else {
		l.Debug("connect completed",
			"sink", sink,
		)
	}
}

// LogActionSelection logs the compilation of an action selection.
func (l *Logger) LogActionSelection(rules int, err error) {
	if err != nil {
		l.Error("action selection failed",
			"rules", rules,
			"error", err,
		)
	} else {
		l.Info("action selection compiled",
			"rules", rules,
		)
	}
}

// LogVocabulary logs the creation of a vocabulary.
func (l *Logger) LogVocabulary(label string, dim int) {
	l.Debug("vocabulary created",
		"vocabulary", label,
		"dimension", dim,
	)
}

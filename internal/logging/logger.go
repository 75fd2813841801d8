// Package logging wraps log/slog with output format selection and
// credential redaction for everything the engine logs around generation
// calls.
package logging

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// Logger wraps slog.Logger with redaction and domain field helpers.
type Logger struct {
	*slog.Logger
	redactor *Redactor
}

// Config configures the logger.
type Config struct {
	Level     string
	Format    string // auto, text, json
	Output    io.Writer
	AddSource bool
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "auto",
		Output: os.Stdout,
	}
}

// New creates a new logger. With format "auto" a TTY gets the pretty
// handler and everything else gets JSON.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	level := parseLevel(cfg.Level)
	redactor := NewRedactor()

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(cfg.Output, &slog.HandlerOptions{
			Level:     level,
			AddSource: cfg.AddSource,
		})
	case "text":
		handler = slog.NewTextHandler(cfg.Output, &slog.HandlerOptions{
			Level:     level,
			AddSource: cfg.AddSource,
		})
	default: // auto
		if isTerminal(cfg.Output) {
			handler = NewPrettyHandler(cfg.Output, level)
		} else {
			handler = slog.NewJSONHandler(cfg.Output, &slog.HandlerOptions{
				Level:     level,
				AddSource: cfg.AddSource,
			})
		}
	}

	return &Logger{
		Logger:   slog.New(NewRedactingHandler(handler, redactor)),
		redactor: redactor,
	}
}

// NewNop creates a no-op logger for tests.
func NewNop() *Logger {
	return &Logger{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		redactor: NewRedactor(),
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// WithRun returns a logger with run context.
func (l *Logger) WithRun(runID string) *Logger {
	return &Logger{
		Logger:   l.Logger.With("run_id", runID),
		redactor: l.redactor,
	}
}

// WithNode returns a logger with node context.
func (l *Logger) WithNode(nodeID string) *Logger {
	return &Logger{
		Logger:   l.Logger.With("node_id", nodeID),
		redactor: l.redactor,
	}
}

// WithFlow returns a logger with flow context.
func (l *Logger) WithFlow(name string) *Logger {
	return &Logger{
		Logger:   l.Logger.With("flow", name),
		redactor: l.redactor,
	}
}

// With returns a logger with custom fields.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger:   l.Logger.With(args...),
		redactor: l.redactor,
	}
}

// Redact redacts credentials from a string using the logger's redactor.
func (l *Logger) Redact(input string) string {
	return l.redactor.Redact(input)
}

// Package logger provides structured logging for Nova.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"go.opentelemetry.io/otel/trace"
)

// Level represents logging levels.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel parses a level string, defaulting to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Config holds logger configuration.
type Config struct {
	Level  Level
	Format string // "json" or "text"
	Output string // "stdout", "stderr", or file path
}

// Logger is the interface for structured logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)

	With(args ...any) Logger

	SetLevel(level Level)
	GetLevel() Level

	// Close releases resources held by the logger (file handles).
	Close() error
}

// SlogLogger is a Logger implementation backed by log/slog.
type SlogLogger struct {
	logger  *slog.Logger
	level   *slog.LevelVar
	current Level
	mu      sync.Mutex
	closer  io.Closer
}

var (
	globalMu sync.RWMutex
	global   Logger
)

func init() {
	global = New(&Config{Level: InfoLevel, Format: "text", Output: "stdout"})
}

// SetGlobal replaces the process-wide logger.
func SetGlobal(l Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = l
}

// Global returns the process-wide logger.
func Global() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global
}

// Convenience functions on the global logger.

func Debug(msg string, args ...any) { Global().Debug(msg, args...) }
func Info(msg string, args ...any)  { Global().Info(msg, args...) }
func Warn(msg string, args ...any)  { Global().Warn(msg, args...) }
func Error(msg string, args ...any) { Global().Error(msg, args...) }

// New creates a new Logger with the given configuration.
func New(cfg *Config) Logger {
	if cfg == nil {
		cfg = &Config{Level: InfoLevel, Format: "json", Output: "stdout"}
	}

	levelVar := &slog.LevelVar{}
	levelVar.Set(slogLevel(cfg.Level))

	opts := &slog.HandlerOptions{
		Level: levelVar,
	}

	writer, closer := newWriter(cfg.Output)

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(writer, opts)
	} else {
		handler = slog.NewJSONHandler(writer, opts)
	}

	return &SlogLogger{
		logger:  slog.New(handler),
		level:   levelVar,
		current: cfg.Level,
		closer:  closer,
	}
}

// newWriter resolves the output destination. The closer is nil for
// stdout/stderr since those are not owned by the logger.
func newWriter(output string) (io.Writer, io.Closer) {
	switch output {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return os.Stdout, nil
		}
		return f, f
	}
}

func slogLevel(l Level) slog.Level {
	switch l {
	case DebugLevel:
		return slog.LevelDebug
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Debug logs a debug message.
func (l *SlogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }

// Info logs an info message.
func (l *SlogLogger) Info(msg string, args ...any) { l.logger.Info(msg, args...) }

// Warn logs a warning message.
func (l *SlogLogger) Warn(msg string, args ...any) { l.logger.Warn(msg, args...) }

// Error logs an error message.
func (l *SlogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

// DebugContext logs a debug message enriched with trace identity.
func (l *SlogLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.logger.DebugContext(ctx, msg, appendTraceFields(ctx, args...)...)
}

// InfoContext logs an info message enriched with trace identity.
func (l *SlogLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, appendTraceFields(ctx, args...)...)
}

// WarnContext logs a warning message enriched with trace identity.
func (l *SlogLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, appendTraceFields(ctx, args...)...)
}

// ErrorContext logs an error message enriched with trace identity.
func (l *SlogLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, msg, appendTraceFields(ctx, args...)...)
}

// With returns a derived Logger with the given attributes attached.
func (l *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{
		logger:  l.logger.With(args...),
		level:   l.level,
		current: l.current,
		// derived loggers don't own the closer
		closer: nil,
	}
}

// SetLevel dynamically changes the logging level.
func (l *SlogLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current = level
	l.level.Set(slogLevel(level))
}

// GetLevel returns the current logging level.
func (l *SlogLogger) GetLevel() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Close flushes and closes any file output owned by the logger.
func (l *SlogLogger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// appendTraceFields attaches trace_id/span_id when the context carries a
// recording span, so log lines can be correlated with traces.
func appendTraceFields(ctx context.Context, args ...any) []any {
	span := trace.SpanFromContext(ctx)
	sc := span.SpanContext()
	if !sc.IsValid() {
		return args
	}
	return append(args,
		"trace_id", sc.TraceID().String(),
		"span_id", sc.SpanID().String(),
	)
}

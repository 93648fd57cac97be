// Package logger wraps log/slog behind a small structured-logging façade:
// configurable level, JSON or text formatting, and stdout/stderr/file
// sinks. The long-lived components in chronoflow (scheduler, reconciler,
// execution log, worker pool) take one of these by constructor injection
// instead of reaching for a package-level default.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config selects the logger's level, encoding, and destination.
type Config struct {
	Level  string // debug, info, warn (or warning), error (or critical)
	Format string // json, text
	Output string // stdout, stderr, or a file path
}

// Logger is a thin wrapper around *slog.Logger with a Field-based API.
type Logger struct {
	slog *slog.Logger
}

// Field is one structured key/value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

// New builds a Logger from cfg, creating the destination directory when
// Output names a file path.
func New(cfg Config) (*Logger, error) {
	level, ok := parseLevel(cfg.Level)
	if !ok {
		return nil, fmt.Errorf("invalid log level: %s (expected: debug, info, warn, warning, error, critical)", cfg.Level)
	}

	writer, err := openSink(cfg.Output)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(writer, opts)
	case "text":
		handler = slog.NewTextHandler(writer, opts)
	default:
		return nil, fmt.Errorf("invalid log format: %s (expected: json, text)", cfg.Format)
	}

	return &Logger{slog: slog.New(handler)}, nil
}

// openSink resolves an Output string to an io.Writer: the two well-known
// names, or a filesystem path (with "~/" expanded), creating parent
// directories and opening the file for append.
func openSink(output string) (io.Writer, error) {
	switch strings.ToLower(output) {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}

	path := output
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	path = filepath.Clean(path)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, nil
}

func parseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error", "critical":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.slog.Debug(msg, toAny(fields)...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.slog.Info(msg, toAny(fields)...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.slog.Warn(msg, toAny(fields)...) }

// Error logs msg at error level with err attached as the "error" field.
func (l *Logger) Error(msg string, err error, fields ...Field) {
	l.slog.Error(msg, toAny(withError(err, fields))...)
}

func (l *Logger) DebugCtx(ctx context.Context, msg string, fields ...Field) {
	l.slog.DebugContext(ctx, msg, toAny(fields)...)
}

func (l *Logger) InfoCtx(ctx context.Context, msg string, fields ...Field) {
	l.slog.InfoContext(ctx, msg, toAny(fields)...)
}

func (l *Logger) WarnCtx(ctx context.Context, msg string, fields ...Field) {
	l.slog.WarnContext(ctx, msg, toAny(fields)...)
}

func (l *Logger) ErrorCtx(ctx context.Context, msg string, err error, fields ...Field) {
	l.slog.ErrorContext(ctx, msg, toAny(withError(err, fields))...)
}

func withError(err error, fields []Field) []Field {
	return append([]Field{{Key: "error", Value: err}}, fields...)
}

func toAny(fields []Field) []any {
	out := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		out = append(out, f.Key, f.Value)
	}
	return out
}

// With returns a child Logger with fields permanently attached to every
// subsequent call.
func (l *Logger) With(fields ...Field) *Logger {
	return &Logger{slog: l.slog.With(toAny(fields)...)}
}

// StdLogger exposes the underlying *slog.Logger for libraries that expect
// one directly (e.g. http.Server.ErrorLog via slog.NewLogLogger).
func (l *Logger) StdLogger() *slog.Logger {
	return l.slog
}

// Default returns the process-wide slog default, for code that runs
// before a Logger has been constructed (e.g. flag-parsing errors).
func Default() *slog.Logger {
	return slog.Default()
}

// SetDefault installs l as the process-wide slog default.
func SetDefault(l *Logger) {
	slog.SetDefault(l.slog)
}

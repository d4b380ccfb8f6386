// Package logging defines a minimal structured-logging interface used across
// the project, with slog and zap backed implementations.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "starting server", "addr", addr, "mode", mode)
type Logger interface {
	// Debug logs a diagnostic message.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Supported values for the log_format setting.
const (
	FormatSlog = "slog"
	FormatZap  = "zap"
)

// New builds a Logger writing JSON lines to w using the requested backend.
// The returned sync function flushes buffered output and is safe to call
// for every backend.
func New(format string, w io.Writer) (Logger, func() error, error) {
	switch format {
	case "", FormatSlog:
		l := slog.New(slog.NewJSONHandler(w, nil))
		return NewSlogLogger(l), func() error { return nil }, nil
	case FormatZap:
		z := newZapCore(w)
		return NewZapLogger(z), z.Sync, nil
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", format)
	}
}

// Nop returns a Logger that discards everything. Handy in tests.
func Nop() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

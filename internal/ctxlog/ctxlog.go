// Package ctxlog provides a context key for safely passing a slog.Logger
// instance through context.Context.
package ctxlog

import (
	"context"
	"log/slog"
)

// key is an unexported type to prevent collisions with context keys from other packages.
type key struct{}

// loggerKey is the key for the slog.Logger in a context.Context.
var loggerKey = key{}

// WithLogger returns a new context with the provided logger embedded.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// WithFields returns a context whose logger is the current one enriched
// with args, the way build.Build scopes every log line emitted while
// processing a target to that target's name: callers further down the
// call chain (materializer, executor) pick up the fields for free just
// by calling FromContext.
func WithFields(ctx context.Context, args ...any) context.Context {
	return WithLogger(ctx, FromContext(ctx).With(args...))
}

// FromContext extracts the slog.Logger from a context. There is no
// fallback to a default logger: every entrypoint into this driver is
// expected to seed the context with one before calling into any of its
// packages (cmd/xbdriver's run does this right after parsing flags,
// before loading the scenario), so a missing logger means a caller skipped that setup, and
// panicking surfaces that immediately rather than silently logging
// through a logger nobody configured.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	panic("ctxlog: logger missing from context")
}

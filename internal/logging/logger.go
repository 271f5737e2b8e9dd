// Package logging defines the structured-logging interface used across the
// client. SlogLogger wraps log/slog and LogrusLogger wraps logrus; New picks
// one from configuration.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "stream connected", "server_id", id, "topic", topic)
type Logger interface {
	// Debug logs diagnostic detail such as individual frames.
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

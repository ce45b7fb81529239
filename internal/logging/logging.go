// Package logging builds the debug logger used by the CLI.
//
// User-facing output stays on plain stdout/stderr; the zap logger only
// carries ambient trace (sources opened, lines skipped, webhook results)
// and is a no-op unless --debug is set.
package logging

import (
	"context"

	"go.uber.org/zap"
)

// New returns the process logger: a console-encoded debug logger on
// stderr when debug is set, a no-op logger otherwise.
func New(debug bool) *zap.Logger {
	if !debug {
		return zap.NewNop()
	}

	logger, err := zap.NewDevelopmentConfig().Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

type contextKey struct{}

// NewContext returns a context carrying the logger.
func NewContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger carried by ctx, or a no-op logger when
// none is present.
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

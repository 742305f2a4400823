package logging

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// ErrNoLogger is returned when a context carries no logger.
var ErrNoLogger = errors.New("context carries no logger")

type loggerContextKey struct{}

// ContextWithLogger returns a child context carrying log, for handing the
// application logger through cli and fx boundaries.
func ContextWithLogger(ctx context.Context, log *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, log)
}

// LoggerFromContext extracts the logger stored by ContextWithLogger.
func LoggerFromContext(ctx context.Context) (*zap.Logger, error) {
	log, ok := ctx.Value(loggerContextKey{}).(*zap.Logger)
	if !ok {
		return nil, ErrNoLogger
	}

	return log, nil
}

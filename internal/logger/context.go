package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type ctxKey struct{}

// requestScope carries the request logger and the fields collected for the
// request's canonical log line.
type requestScope struct {
	logger *zap.Logger

	mu     sync.Mutex
	fields []zap.Field
}

// ContextWithLogger stores a logger in the context and starts an empty
// annotation set for it.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, &requestScope{logger: logger})
}

// FromContext extracts a logger from the context.
// Returns zap.NewNop() if no logger is found.
func FromContext(ctx context.Context) *zap.Logger {
	if s, ok := ctx.Value(ctxKey{}).(*requestScope); ok && s.logger != nil {
		return s.logger
	}
	return zap.NewNop()
}

// Annotate adds fields to the request's canonical log line.
// No-op without a scope from ContextWithLogger.
func Annotate(ctx context.Context, fields ...zap.Field) {
	s, ok := ctx.Value(ctxKey{}).(*requestScope)
	if !ok {
		return
	}
	s.mu.Lock()
	s.fields = append(s.fields, fields...)
	s.mu.Unlock()
}

// Annotations returns a copy of the fields added with Annotate.
func Annotations(ctx context.Context) []zap.Field {
	s, ok := ctx.Value(ctxKey{}).(*requestScope)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]zap.Field(nil), s.fields...)
}

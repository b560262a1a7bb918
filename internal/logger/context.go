package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey string

const (
	requestIDKey  ctxKey = "request_id"
	terminalIDKey ctxKey = "terminal_id"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithTerminalID tags the context with the cash register the request belongs to.
func WithTerminalID(ctx context.Context, terminalID string) context.Context {
	return context.WithValue(ctx, terminalIDKey, terminalID)
}

func TerminalIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(terminalIDKey).(string); ok {
		return v
	}
	return ""
}

// FromCtx returns logger with request_id and terminal_id automatically added
func FromCtx(ctx context.Context) *zap.Logger {
	l := L()
	if reqID := RequestIDFrom(ctx); reqID != "" {
		l = l.With(zap.String("request_id", reqID))
	}
	if terminalID := TerminalIDFrom(ctx); terminalID != "" {
		l = l.With(zap.String("terminal_id", terminalID))
	}
	return l
}

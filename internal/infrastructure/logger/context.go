package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	userZIDKey   contextKey = "zid"
)

// WithContext attaches l to ctx
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger stored in ctx, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID stores the request id and returns the enriched logger alongside
func WithRequestID(ctx context.Context, l *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	l = l.With(zap.String("request_id", requestID))
	return WithContext(ctx, l), l
}

// WithUserZID stores the caller's zid and returns the enriched logger alongside
func WithUserZID(ctx context.Context, l *zap.Logger, zid string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, userZIDKey, zid)
	l = l.With(zap.String("zid", zid))
	return WithContext(ctx, l), l
}

// GetRequestID returns the request id stored in ctx
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// GetUserZID returns the caller zid stored in ctx
func GetUserZID(ctx context.Context) string {
	v, _ := ctx.Value(userZIDKey).(string)
	return v
}

// L returns the context logger with trace_id and span_id attached when a
// valid span is active.
//
//	logger.L(ctx).Info("meeting completed", zap.Int64("meeting_id", id))
func L(ctx context.Context) *zap.Logger {
	l := FromContext(ctx)
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return l
	}
	return l.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}

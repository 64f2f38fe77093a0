package logger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, ParseLevel(in))
		})
	}
}

func TestNew_TeesExtraCores(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	l := New(&Config{Level: "info", Format: "json", Output: filepath.Join(t.TempDir(), "out.log"), Service: "teamhub"}, core)

	l.Info("hello")

	require.Len(t, recorded.All(), 1)
	assert.Equal(t, "teamhub", recorded.All()[0].ContextMap()["service"])
}

func TestNew_NilConfigUsesDefaults(t *testing.T) {
	assert.NotNil(t, New(nil))
}

func TestContextHelpers(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	ctx, _ := WithRequestID(context.Background(), base, "req-1")
	ctx, _ = WithUserZID(ctx, FromContext(ctx), "z1234567")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "z1234567", GetUserZID(ctx))

	L(ctx).Info("done")
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "z1234567", fields["zid"])
	assert.NotContains(t, fields, "trace_id")
}

func TestL_AddsTraceFields(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3},
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(WithContext(context.Background(), zap.New(core)), sc)

	L(ctx).Info("traced")

	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, sc.TraceID().String(), fields["trace_id"])
	assert.Equal(t, sc.SpanID().String(), fields["span_id"])
}

func TestFromContext_Missing(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
	assert.Empty(t, GetRequestID(context.Background()))
}

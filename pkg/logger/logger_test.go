package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Levels(t *testing.T) {
	l := New("debug", "json")
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l = New("warn", "console")
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	l = New("nonsense", "json")
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestContextLogger_AddsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cl := NewContextLogger(zap.New(core))

	ctx := WithRequestID(context.Background(), "req-1")
	cl.LogWarn(ctx, "denied", zap.String("reason", "invalid key"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "denied", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "invalid key", fields["reason"])
	assert.NotContains(t, fields, "trace_id")
}

func TestContextLogger_LogRequest(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	cl := NewContextLogger(zap.New(core))

	cl.LogRequest(context.Background(), "POST", "/oven/admission", 200, 3)
	cl.LogDebug(context.Background(), "dropped below level")

	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, int64(200), fields["status_code"])
	assert.Equal(t, 1, logs.Len())
}

func TestRequestIDFromContext_Missing(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))
}

package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "ovenctrl", cfg.ServiceName)
	assert.Equal(t, "http://localhost:14268/api/traces", cfg.JaegerURL)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestInit_Disabled(t *testing.T) {
	tp, err := Init(DefaultConfig())
	require.NoError(t, err)
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestStartSpan_NoProvider(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "test.operation")
	require.NotNil(t, span)
	defer span.End()

	// Must not panic on a non-recording span.
	AddSpanAttributes(ctx, attribute.String("test.key", "test.value"))
	RecordError(ctx, errors.New("boom"))
	assert.Empty(t, TraceIDFromContext(ctx))
}

func TestTraceAdmission_RecordsAttributes(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := tracesdk.NewTracerProvider(tracesdk.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ctx, span := TraceAdmission(context.Background())
	AddSpanAttributes(ctx, AllowedKey.Bool(true))
	assert.NotEmpty(t, TraceIDFromContext(ctx))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "admission.decide", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), AllowedKey.Bool(true))
}

func TestTraceHTTPRequestAndJoin(t *testing.T) {
	_, span := TraceHTTPRequest(context.Background(), "POST", "/oven/admission")
	require.NotNil(t, span)
	span.End()

	_, span = TraceJoin(context.Background(), "roomA")
	require.NotNil(t, span)
	span.End()
}

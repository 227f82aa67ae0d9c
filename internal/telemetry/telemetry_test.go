// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitDisabled(t *testing.T) {
	cleanup, err := Init(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, cleanup)
	cleanup()
}

func TestGetTracerUsesGlobalProvider(t *testing.T) {
	prev := otel.GetTracerProvider()
	defer otel.SetTracerProvider(prev)

	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	otel.SetTracerProvider(tp)

	_, span := GetTracer().Start(context.Background(), "annotate")
	span.End()

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "annotate", spans[0].Name())
	assert.Equal(t, tracerName, spans[0].InstrumentationScope().Name)
}

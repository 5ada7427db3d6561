package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetupDisabled(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Setup("fintable-test", false, &buf)
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
	assert.Zero(t, buf.Len())
}

func TestSetupWritesSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	shutdown, err := Setup("fintable-test", true, &buf)
	require.NoError(t, err)

	_, span := Tracer().Start(context.Background(), "unit.span")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "unit.span")
	assert.Contains(t, buf.String(), "fintable-test")
}

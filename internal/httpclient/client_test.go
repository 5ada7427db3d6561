package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exp := tracetest.NewInMemoryExporter()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return exp
}

func statusOf(span tracetest.SpanStub) (int64, bool) {
	for _, kv := range span.Attributes {
		if kv.Key == attribute.Key("http.response.status_code") {
			return kv.Value.AsInt64(), true
		}
	}
	return 0, false
}

func TestRoundTripIsTraced(t *testing.T) {
	exp := recordSpans(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	resp, err := New(time.Second).Get(srv.URL + "/fetch_data")
	require.NoError(t, err)
	resp.Body.Close()

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "HTTP GET", spans[0].Name)
	status, ok := statusOf(spans[0])
	require.True(t, ok)
	assert.EqualValues(t, http.StatusTeapot, status)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}

func TestRoundTripErrorIsTraced(t *testing.T) {
	exp := recordSpans(t)
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	_, err := New(time.Second).Get(srv.URL)
	require.Error(t, err)

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	_, ok := statusOf(spans[0])
	assert.False(t, ok)
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := New(50 * time.Millisecond).Get(srv.URL)
	assert.Error(t, err)
}

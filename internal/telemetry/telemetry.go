// Package telemetry configures OpenTelemetry tracing for fintable.
package telemetry

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentation = "github.com/bighogz/fintable"

// Tracer returns the tracer used across the module. It follows whatever
// provider is globally installed, so it is a no-op until Setup enables tracing.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentation)
}

// Setup installs a tracer provider that writes finished spans to w as JSON.
// When enabled is false nothing is installed and the returned shutdown is a no-op.
func Setup(service string, enabled bool, w io.Writer) (func(context.Context) error, error) {
	if !enabled {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", service))),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

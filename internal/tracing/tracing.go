package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
)

// Configure installs a batching OTLP/gRPC span exporter as the process's
// global tracer provider, tagged with res. It is meant to be called once,
// early in main.
func Configure(ctx context.Context, res *resource.Resource) error {
	spanExporter, err := otlptracegrpc.New(ctx)
	if err != nil {
		return err
	}

	traceProvider := trace.NewTracerProvider(
		trace.WithSpanProcessor(trace.NewBatchSpanProcessor(spanExporter)),
		trace.WithSampler(trace.AlwaysSample()),
		trace.WithResource(res),
	)

	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return nil
}

package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/rhazelina/qr-absence-sub000/core"
)

func noop(context.Context) error { return nil }

// Setup installs the global tracer provider exporting to the configured OTLP endpoint.
// Tracing stays disabled without an endpoint. The returned func flushes and stops the exporter.
func Setup(serviceName string, conf *core.Config, logger core.Logger) func(context.Context) error {
	if conf.Telemetry.OTLPEndpoint == "" {
		return noop
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(conf.Telemetry.OTLPEndpoint)}
	if conf.Telemetry.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(context.Background(), opts...)
	if err != nil {
		logger.Error(fmt.Sprintf("otel exporter: %v", err), err)
		return noop
	}

	res, err := resource.New(context.Background(), resource.WithAttributes(
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(conf.Build),
		semconv.DeploymentEnvironment(conf.Env),
	))
	if err != nil {
		logger.Warn(fmt.Sprintf("otel resource: %v", err), err)
	}

	provider := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return provider.Shutdown
}

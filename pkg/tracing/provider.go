package tracing

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/Namra404/secunda/pkg/tracing/exporters"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type Config struct {
	ServiceName string
	Protocol    string // grpc, http or console
	Endpoint    string
	Insecure    bool
}

// Setup installs a global tracer provider and returns its shutdown func.
func Setup(ctx context.Context, config Config, logger ectologger.Logger) (func(context.Context) error, error) {
	var exporter sdktrace.SpanExporter
	switch config.Protocol {
	case "console":
		exporter = exporters.NewConsoleExporter(logger)
	case "grpc", "http":
		otlpConfig := exporters.DefaultOTLPConfig()
		otlpConfig.Protocol = config.Protocol
		otlpConfig.Insecure = config.Insecure
		if config.Endpoint != "" {
			otlpConfig.Endpoint = config.Endpoint
		}
		otlpExporter, err := exporters.NewOTLPExporter(ctx, otlpConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		exporter = otlpExporter
	default:
		return nil, fmt.Errorf("unsupported tracing protocol: %s", config.Protocol)
	}

	res := resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(config.ServiceName))

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	SetTracer(provider.Tracer(config.ServiceName))

	logger.WithFields(map[string]any{
		"protocol": config.Protocol,
		"endpoint": config.Endpoint,
	}).Info("Tracing enabled")

	return provider.Shutdown, nil
}

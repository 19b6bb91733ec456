package exporters

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http"
)

type OTLPConfig struct {
	// Endpoint is host:port of the collector, 4317 for gRPC and 4318 for HTTP by convention.
	Endpoint string
	Protocol string
	// Insecure disables TLS towards the collector.
	Insecure bool
	Timeout  time.Duration
}

func DefaultOTLPConfig() OTLPConfig {
	return OTLPConfig{
		Endpoint: "localhost:4317",
		Protocol: ProtocolGRPC,
		Insecure: true,
		Timeout:  10 * time.Second,
	}
}

func NewOTLPExporter(ctx context.Context, config OTLPConfig) (*otlptrace.Exporter, error) {
	switch config.Protocol {
	case ProtocolGRPC:
		return otlptracegrpc.New(ctx, grpcOptions(config)...)
	case ProtocolHTTP:
		return otlptracehttp.New(ctx, httpOptions(config)...)
	}
	return nil, fmt.Errorf("unsupported OTLP protocol %q, expected %q or %q", config.Protocol, ProtocolGRPC, ProtocolHTTP)
}

func grpcOptions(config OTLPConfig) []otlptracegrpc.Option {
	options := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(config.Endpoint),
		otlptracegrpc.WithTimeout(config.Timeout),
	}
	if config.Insecure {
		options = append(options,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}
	return options
}

func httpOptions(config OTLPConfig) []otlptracehttp.Option {
	options := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(config.Endpoint),
		otlptracehttp.WithTimeout(config.Timeout),
	}
	if config.Insecure {
		options = append(options, otlptracehttp.WithInsecure())
	}
	return options
}

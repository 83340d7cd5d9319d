package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/omnichannel-catalog/pkg/logger"
)

// DefaultJaegerEndpoint is the collector endpoint of a local Jaeger
const DefaultJaegerEndpoint = "http://localhost:14268/api/traces"

// Options describes the service the tracer reports for
type Options struct {
	ServiceName    string
	Version        string
	Environment    string
	JaegerEndpoint string
	// SampleRatio is the fraction of root traces kept; zero or above one keeps all
	SampleRatio float64
}

func (o Options) sampler() sdktrace.Sampler {
	if o.SampleRatio <= 0 || o.SampleRatio >= 1 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(o.SampleRatio))
}

// InitTracer exports spans to Jaeger and installs the provider globally
func InitTracer(opts Options) (trace.TracerProvider, error) {
	if opts.JaegerEndpoint == "" {
		opts.JaegerEndpoint = DefaultJaegerEndpoint
	}

	logger.Logger.Info().
		Str("service", opts.ServiceName).
		Str("endpoint", opts.JaegerEndpoint).
		Float64("sample_ratio", opts.SampleRatio).
		Msg("Initializing tracer")

	exporter, err := jaeger.New(
		jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(opts.JaegerEndpoint)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Jaeger exporter: %w", err)
	}

	tp, err := NewProvider(opts, sdktrace.WithBatcher(exporter))
	if err != nil {
		return nil, err
	}
	otel.SetTracerProvider(tp)
	SetPropagator()
	return tp, nil
}

// NewProvider builds a tracer provider carrying the service resource.
// Span processors are supplied by the caller.
func NewProvider(opts Options, processors ...sdktrace.TracerProviderOption) (*sdktrace.TracerProvider, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(opts.ServiceName),
		semconv.ServiceVersion(opts.Version),
	}
	if opts.Environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(opts.Environment))
	}
	res, err := resource.New(context.Background(), resource.WithAttributes(attrs...))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	providerOpts := append([]sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(opts.sampler()),
	}, processors...)
	return sdktrace.NewTracerProvider(providerOpts...), nil
}

// SetPropagator installs the W3C trace context and baggage propagators used
// on HTTP, gRPC and Kafka headers
func SetPropagator() {
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)
}

// Shutdown flushes pending spans and stops the provider
func Shutdown(ctx context.Context, tp trace.TracerProvider) error {
	if provider, ok := tp.(*sdktrace.TracerProvider); ok {
		return provider.Shutdown(ctx)
	}
	return nil
}

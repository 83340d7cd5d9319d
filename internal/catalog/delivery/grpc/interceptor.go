package grpc

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	oteltrace "go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tair/omnichannel-catalog/pkg/logger"
)

// gRPC Prometheus metrics
var (
	grpcRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_service_grpc_requests_total",
			Help: "Total number of gRPC requests",
		},
		[]string{"method", "status_code"},
	)

	grpcRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_service_grpc_request_duration_seconds",
			Help:    "Duration of gRPC requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	grpcRequestSummary = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "catalog_service_grpc_request_duration_summary",
			Help: "Summary of gRPC request durations with percentiles",
			Objectives: map[float64]float64{
				0.5:  0.05,
				0.9:  0.01,
				0.95: 0.01,
				0.99: 0.001,
			},
			MaxAge: 10 * time.Minute,
		},
		[]string{"method"},
	)
)

func init() {
	prometheus.MustRegister(grpcRequestsTotal)
	prometheus.MustRegister(grpcRequestDuration)
	prometheus.MustRegister(grpcRequestSummary)
}

// MetricsInterceptor collects Prometheus metrics for gRPC calls
func MetricsInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	start := time.Now()

	resp, err := handler(ctx, req)

	duration := time.Since(start).Seconds()
	statusCode := status.Code(err).String()

	grpcRequestsTotal.WithLabelValues(info.FullMethod, statusCode).Inc()
	grpcRequestDuration.WithLabelValues(info.FullMethod).Observe(duration)
	grpcRequestSummary.WithLabelValues(info.FullMethod).Observe(duration)

	return resp, err
}

// LoggingInterceptor logs gRPC requests with structured logging. Rejected
// commands are logged at info, everything else that fails at error.
func LoggingInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	start := time.Now()

	traceID := "no-trace"
	if span := oteltrace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		traceID = span.SpanContext().TraceID().String()
	}

	resp, err := handler(ctx, req)
	duration := time.Since(start)

	code := status.Code(err)
	switch code {
	case codes.OK:
		logger.Info(ctx).
			Str("method", info.FullMethod).
			Str("protocol", "grpc").
			Dur("duration", duration).
			Str("trace_id", traceID).
			Msg("gRPC request completed")
	case codes.NotFound, codes.FailedPrecondition, codes.InvalidArgument:
		logger.Info(ctx).
			Str("method", info.FullMethod).
			Str("protocol", "grpc").
			Dur("duration", duration).
			Str("trace_id", traceID).
			Str("grpc_status", code.String()).
			Str("reason", status.Convert(err).Message()).
			Msg("gRPC request rejected")
	default:
		logger.Error(ctx).
			Str("method", info.FullMethod).
			Str("protocol", "grpc").
			Dur("duration", duration).
			Str("trace_id", traceID).
			Str("grpc_status", code.String()).
			Err(err).
			Msg("gRPC request failed")
	}

	return resp, err
}

// RecoveryInterceptor turns a handler panic into codes.Internal
func RecoveryInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx).
				Str("method", info.FullMethod).
				Interface("panic", r).
				Msg("gRPC handler panicked")
			err = status.Error(codes.Internal, "internal error")
		}
	}()
	return handler(ctx, req)
}

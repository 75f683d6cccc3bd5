package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the global tracer used for the application.
var Tracer trace.Tracer = otel.Tracer("agora-api")

// TracingConfig holds configuration for initializing the tracer.
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Enabled        bool
	Exporter       string // "stdout" or "otlp"
	OTLPEndpoint   string
	SamplerRatio   float64
	// DBSystem is reported as db.system on repository spans ("postgresql", "sqlite").
	DBSystem string
}

var dbSystem = "postgresql"

// InitTracing installs the global tracer provider and returns its shutdown function.
// With tracing disabled the no-op provider stays in place.
func InitTracing(cfg TracingConfig) (func(context.Context) error, error) {
	if cfg.DBSystem != "" {
		dbSystem = cfg.DBSystem
	}
	if !cfg.Enabled {
		Tracer = otel.Tracer(cfg.ServiceName)
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := newExporter(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracing exporter: %w", err)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			attribute.String("environment", cfg.Environment),
			attribute.String("db.system", dbSystem),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(samplerFor(cfg.SamplerRatio)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	Tracer = tp.Tracer(cfg.ServiceName)

	return tp.Shutdown, nil
}

func newExporter(cfg TracingConfig) (sdktrace.SpanExporter, error) {
	if cfg.Exporter == "otlp" {
		if cfg.OTLPEndpoint == "" {
			return nil, fmt.Errorf("otlp exporter requires an endpoint")
		}
		return otlptracehttp.New(context.Background(),
			otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
			otlptracehttp.WithInsecure(),
		)
	}
	return stdouttrace.New(stdouttrace.WithPrettyPrint())
}

// samplerFor samples every trace at ratio >= 1 and otherwise follows the parent
// decision, falling back to the ratio for root spans. A ratio <= 0 samples nothing.
func samplerFor(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.AlwaysSample()
	case ratio <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}

// TraceLayer provides helpers to start spans for repository, Redis and service calls.
type TraceLayer struct {
	tracer   trace.Tracer
	dbSystem string
}

// NewTraceLayer returns a new TraceLayer for the given tracer and database system.
func NewTraceLayer(tracer trace.Tracer, dbSystem string) *TraceLayer {
	if dbSystem == "" {
		dbSystem = "postgresql"
	}
	return &TraceLayer{tracer: tracer, dbSystem: dbSystem}
}

// TraceRepositoryMethod starts a span for a repository method call.
func (l *TraceLayer) TraceRepositoryMethod(ctx context.Context, methodName, tableName string) (context.Context, trace.Span) {
	ctx, span := l.tracer.Start(ctx, "repository."+methodName,
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	span.SetAttributes(
		attribute.String("db.system", l.dbSystem),
		attribute.String("db.operation", methodName),
		attribute.String("db.table", tableName),
	)
	return ctx, span
}

// TraceRedisOperation starts a span for a Redis operation.
func (l *TraceLayer) TraceRedisOperation(ctx context.Context, operation string) (context.Context, trace.Span) {
	ctx, span := l.tracer.Start(ctx, "redis."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		attribute.String("db.system", "redis"),
		attribute.String("db.operation", operation),
	)
	return ctx, span
}

// TraceServiceToRepository starts a span for a service-to-repository call.
func (l *TraceLayer) TraceServiceToRepository(ctx context.Context, repoName, method string) (context.Context, trace.Span) {
	ctx, span := l.tracer.Start(ctx, repoName+"."+method,
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	span.SetAttributes(
		attribute.String("repo.name", repoName),
		attribute.String("repo.method", method),
	)
	return ctx, span
}

// GetTraceLayer returns a TraceLayer using the global Tracer.
func GetTraceLayer() *TraceLayer {
	return NewTraceLayer(Tracer, dbSystem)
}

// RecordErrorInContext records the error on the span in ctx.
func RecordErrorInContext(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

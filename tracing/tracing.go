// Package tracing wires OpenTelemetry into the server: one span per tool
// invocation and a client span for every Currents API call made under it.
package tracing

import (
	"context"
	"os"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerName doubles as the default service name
const TracerName = "currents-mcp-server"

// Environment variables read by FromEnv
const (
	EnvEnabled     = "OTEL_ENABLED"
	EnvEndpoint    = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvInsecure    = "OTEL_EXPORTER_OTLP_INSECURE"
	EnvEnvironment = "OTEL_ENVIRONMENT"
	EnvSampleRate  = "OTEL_TRACES_SAMPLER_ARG"
)

// Config controls exporter selection and sampling
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Enabled        bool
	OTLPEndpoint   string // empty means pretty-printed spans on stderr
	Insecure       bool
	SampleRate     float64
}

// FromEnv builds the Config for serviceVersion. Tracing stays off unless
// OTEL_ENABLED is "true" or an OTLP endpoint is set.
func FromEnv(serviceVersion string) Config {
	endpoint := os.Getenv(EnvEndpoint)
	return Config{
		ServiceName:    TracerName,
		ServiceVersion: serviceVersion,
		Environment:    getEnvOrDefault(EnvEnvironment, "development"),
		Enabled:        os.Getenv(EnvEnabled) == "true" || endpoint != "",
		OTLPEndpoint:   endpoint,
		Insecure:       os.Getenv(EnvInsecure) != "false",
		SampleRate:     sampleRateFromEnv(),
	}
}

// Setup installs the global tracer provider and returns its shutdown func.
// A disabled Config installs nothing and returns a no-op.
func Setup(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		attribute.String("deployment.environment.name", cfg.Environment),
	))
	if err != nil {
		return nil, err
	}

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(newSampler(cfg.SampleRate))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

func newExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	if cfg.OTLPEndpoint == "" {
		// stdout belongs to the stdio transport
		return stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return otlptracehttp.New(ctx, opts...)
}

func newSampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// Tracer returns the server's tracer from the global provider
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// StartSpan starts a span on the server's tracer
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// StartToolSpan starts the span covering one tool invocation
func StartToolSpan(ctx context.Context, tool, category, invocationID string, readOnly bool) (context.Context, trace.Span) {
	return StartSpan(ctx, "mcp.tool."+tool,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(ToolAttributes(tool, category, invocationID, readOnly)...),
	)
}

// StartProviderSpan starts a client span for one Currents API request
func StartProviderSpan(ctx context.Context, endpoint string, params map[string]string) (context.Context, trace.Span) {
	return StartSpan(ctx, "currents"+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(ProviderAttributes(endpoint, params)...),
	)
}

// ToolAttributes describes a tool invocation
func ToolAttributes(tool, category, invocationID string, readOnly bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("mcp.tool.name", tool),
		attribute.String("mcp.tool.category", category),
		attribute.String("mcp.tool.invocation_id", invocationID),
		attribute.Bool("mcp.tool.readonly", readOnly),
	}
}

// ProviderAttributes describes a Currents API request. Empty params are
// not sent upstream, so they are left out here too.
func ProviderAttributes(endpoint string, params map[string]string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String("currents.api.endpoint", endpoint)}
	for k, v := range params {
		if v != "" {
			attrs = append(attrs, attribute.String("currents.api.param."+k, v))
		}
	}
	return attrs
}

// RecordError records err on span and marks the span failed. A nil err is ignored.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func sampleRateFromEnv() float64 {
	if v := os.Getenv(EnvSampleRate); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			return rate
		}
	}
	return 1.0
}

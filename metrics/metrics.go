// Package metrics provides Prometheus metrics for the Currents MCP server.
// It tracks tool calls, provider API calls, schema violations and panics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const (
	Namespace = "currents_mcp"
)

var (
	// RequestsTotal counts total MCP tool calls by tool name and status
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "requests_total",
		Help:      "Total number of MCP tool calls",
	}, []string{"tool", "status"})

	// RequestDuration measures request latency distribution
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "request_duration_seconds",
		Help:      "Request latency distribution by tool",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"tool"})

	// RequestInFlight tracks currently executing requests
	RequestInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "requests_in_flight",
		Help:      "Number of requests currently being processed",
	}, []string{"tool"})

	// ProviderAPILatency measures Currents API call latency by endpoint
	ProviderAPILatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "provider_api_latency_seconds",
		Help:      "Currents API call latency by endpoint",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})

	// ProviderAPIRequestsTotal counts Currents API requests
	ProviderAPIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "provider_api_requests_total",
		Help:      "Total Currents API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	// ProviderAPIErrors counts Currents API errors by error code
	ProviderAPIErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "provider_api_errors_total",
		Help:      "Currents API errors by endpoint and error code",
	}, []string{"endpoint", "error_code"})

	// SchemaViolations counts provider responses that failed schema validation
	SchemaViolations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "schema_violations_total",
		Help:      "Provider responses that did not match the declared schema",
	}, []string{"schema"})

	// PanicsRecovered counts recovered panics
	PanicsRecovered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "panics_recovered_total",
		Help:      "Number of panics recovered in tool handlers",
	}, []string{"tool"})

	// HTTPRequestsTotal counts requests on the HTTP transports
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method and status",
	}, []string{"method", "status"})
)

// RecordRequest records a completed tool call with its duration and status
func RecordRequest(tool string, duration float64, success bool) {
	RequestsTotal.WithLabelValues(tool, status(success)).Inc()
	RequestDuration.WithLabelValues(tool).Observe(duration)
}

// RecordAPICall records a Currents API call
func RecordAPICall(endpoint string, duration float64, success bool, errorCode string) {
	ProviderAPIRequestsTotal.WithLabelValues(endpoint, status(success)).Inc()
	ProviderAPILatency.WithLabelValues(endpoint).Observe(duration)
	if errorCode != "" {
		ProviderAPIErrors.WithLabelValues(endpoint, errorCode).Inc()
	}
}

// RecordSchemaViolation records a response that failed validation
func RecordSchemaViolation(schema string) {
	SchemaViolations.WithLabelValues(schema).Inc()
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

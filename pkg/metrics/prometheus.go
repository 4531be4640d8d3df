// Package metrics provides Prometheus metrics for the delivery ETA service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Prediction pipeline
	predictions       *prometheus.CounterVec
	predictionLatency prometheus.Histogram
	predictionErrors  *prometheus.CounterVec
	predictedHours    prometheus.Histogram

	// Model server
	modelLatency      prometheus.Histogram
	modelErrors       *prometheus.CounterVec
	modelBreakerState prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	errorLatency        *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "eta",
		subsystem:        "delivery",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
		Buckets:     buckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.predictions = auto.NewCounterVec(
		m.counterOpts("predictions_total", "Total number of predictions served, by tier"),
		[]string{"tier"},
	)
	m.predictionLatency = auto.NewHistogram(
		m.histogramOpts("prediction_latency_milliseconds", "End-to-end prediction latency in milliseconds", m.histogramBuckets),
	)
	m.predictionErrors = auto.NewCounterVec(
		m.counterOpts("prediction_errors_total", "Total number of failed predictions, by pipeline stage"),
		[]string{"stage"},
	)
	m.predictedHours = auto.NewHistogram(
		m.histogramOpts("predicted_hours", "Distribution of predicted delivery durations in hours",
			[]float64{24, 48, 72, 96, 120, 144, 168, 192, 216, 240, 336}),
	)

	m.modelLatency = auto.NewHistogram(
		m.histogramOpts("model_latency_milliseconds", "Latency of successful model server calls in milliseconds", m.histogramBuckets),
	)
	m.modelErrors = auto.NewCounterVec(
		m.counterOpts("model_errors_total", "Total number of failed model server calls, by kind"),
		[]string{"kind"},
	)
	m.modelBreakerState = auto.NewGauge(
		m.gaugeOpts("model_breaker_state", "Model circuit breaker state (0 closed, 1 half-open, 2 open)"),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Total number of errors by type"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorLatency = auto.NewHistogramVec(
		m.histogramOpts("error_latency_milliseconds", "Latency of operations that resulted in errors", m.histogramBuckets),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// RecordPrediction counts a served prediction and observes its value and latency.
func (m *Manager) RecordPrediction(tier string, hours, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.predictions.WithLabelValues(tier).Inc()
	m.predictedHours.Observe(hours)
	m.predictionLatency.Observe(latencyMs)
}

// RecordPredictionError counts a failed prediction at the given stage.
func (m *Manager) RecordPredictionError(stage string) {
	if !m.enabled {
		return
	}
	m.predictionErrors.WithLabelValues(stage).Inc()
}

// RecordModelLatency observes a successful model call.
func (m *Manager) RecordModelLatency(latencyMs float64) {
	if !m.enabled {
		return
	}
	m.modelLatency.Observe(latencyMs)
}

// RecordModelError counts a failed model call.
func (m *Manager) RecordModelError(kind string) {
	if !m.enabled {
		return
	}
	m.modelErrors.WithLabelValues(kind).Inc()
}

// UpdateModelBreakerState sets the breaker state gauge.
func (m *Manager) UpdateModelBreakerState(state int) {
	if !m.enabled {
		return
	}
	m.modelBreakerState.Set(float64(state))
}

// RecordHTTPRequest counts an HTTP request and observes its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByType records an error with type and severity labels.
func (m *Manager) RecordErrorByType(errorType, severity string) {
	if !m.enabled {
		return
	}
	m.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method and error type labels.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !m.enabled {
		return
	}
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func (m *Manager) RecordErrorLatency(component, errorType string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystem sets the memory and goroutine gauges and observes the average GC pause.
func (m *Manager) UpdateSystem(memBytes uint64, goroutines int, avgGCPauseMs float64) {
	if !m.enabled {
		return
	}
	m.systemMemoryUsage.Set(float64(memBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
	if avgGCPauseMs > 0 {
		m.systemGCPauseTime.Observe(avgGCPauseMs)
	}
}

// RefreshInterval is how often system gauges should be refreshed.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// Package-level helpers record on the global manager.

// RecordPrediction counts a served prediction on the global manager.
func RecordPrediction(tier string, hours, latencyMs float64) {
	globalManager.RecordPrediction(tier, hours, latencyMs)
}

// RecordPredictionError counts a failed prediction on the global manager.
func RecordPredictionError(stage string) { globalManager.RecordPredictionError(stage) }

// RecordModelLatency observes a successful model call on the global manager.
func RecordModelLatency(latencyMs float64) { globalManager.RecordModelLatency(latencyMs) }

// RecordModelError counts a failed model call on the global manager.
func RecordModelError(kind string) { globalManager.RecordModelError(kind) }

// UpdateModelBreakerState sets the breaker state gauge on the global manager.
func UpdateModelBreakerState(state int) { globalManager.UpdateModelBreakerState(state) }

// RecordHTTPRequest records an HTTP request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordErrorByType records an error by type on the global manager.
func RecordErrorByType(errorType, severity string) {
	globalManager.RecordErrorByType(errorType, severity)
}

// RecordErrorByEndpoint records an error by endpoint on the global manager.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}

// RecordErrorLatency records error latency on the global manager.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.RecordErrorLatency(component, errorType, latencyMs)
}

// UpdateSystem refreshes the system gauges on the global manager.
func UpdateSystem(memBytes uint64, goroutines int, avgGCPauseMs float64) {
	globalManager.UpdateSystem(memBytes, goroutines, avgGCPauseMs)
}

// RefreshInterval returns the global manager's refresh interval.
func RefreshInterval() time.Duration { return globalManager.RefreshInterval() }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

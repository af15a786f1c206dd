// Package metrics provides Prometheus metrics for the Encore
// recommendation service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the Encore service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Resolution Metrics - Which path served each request
	resolutionPersonal    prometheus.Counter
	resolutionDefault     prometheus.Counter
	resolutionBlended     prometheus.Counter
	resolutionUnavailable prometheus.Counter
	tracksServed          prometheus.Counter

	// Table Metrics - State of the loaded recommendation tables
	tableRows         *prometheus.GaugeVec
	tableLoadedUnix   *prometheus.GaugeVec
	tableLoadDuration prometheus.Histogram
	tableLoadErrors   *prometheus.CounterVec

	// Refresh Metrics - Artifact reload pipeline
	refreshQueueSize        prometheus.Gauge
	refreshQueueCapacity    prometheus.Gauge
	refreshQueueUtilization prometheus.Gauge
	refreshEnqueued         *prometheus.CounterVec
	refreshEnqueueErrors    prometheus.Counter
	refreshSkipped          *prometheus.CounterVec
	loaderWorkerCount       prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics - Detailed error tracking
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "encore",
		subsystem:        "recommend",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Resolution Metrics - Mirror the engine's usage counters
	m.resolutionPersonal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "resolution_personal_total",
		Help:      "Total requests served from a user-indexed table (final_ranked or personal_als)",
	})

	m.resolutionDefault = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "resolution_default_total",
		Help:      "Total requests served from the global top_popular table",
	})

	m.resolutionBlended = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "resolution_blended_total",
		Help:      "Total requests that invoked online/offline blending",
	})

	m.resolutionUnavailable = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "resolution_unavailable_total",
		Help:      "Total requests answered empty because no table was loaded (degraded state)",
	})

	m.tracksServed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tracks_served_total",
		Help:      "Total track ids returned to callers",
	})

	// Table Metrics - State of the loaded recommendation tables
	m.tableRows = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "table_rows",
			Help:      "Number of rows in a loaded recommendation table",
		},
		[]string{"table"},
	)

	m.tableLoadedUnix = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "table_loaded_unix",
			Help:      "Unix timestamp of the last successful load of a table",
		},
		[]string{"table"},
	)

	m.tableLoadDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "table_load_duration_milliseconds",
		Help:      "Fetch and decode duration for one table load in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.tableLoadErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "table_load_errors_total",
			Help:      "Total failed table loads; the previous table content is kept",
		},
		[]string{"table"},
	)

	// Refresh Metrics - Artifact reload pipeline
	m.refreshQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_queue_size",
		Help:      "Current number of pending refresh jobs",
	})

	m.refreshQueueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_queue_capacity",
		Help:      "Maximum refresh queue capacity",
	})

	m.refreshQueueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_queue_utilization_ratio",
		Help:      "Refresh queue utilization ratio (current size / capacity)",
	})

	m.refreshEnqueued = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "refresh_enqueued_total",
			Help:      "Total refresh jobs enqueued, by trigger",
		},
		[]string{"trigger"},
	)

	m.refreshEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_enqueue_errors_total",
		Help:      "Total refresh jobs rejected by a full or closed queue",
	})

	m.refreshSkipped = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "refresh_skipped_total",
			Help:      "Total refresh jobs skipped because the table was already reloading",
		},
		[]string{"table"},
	)

	m.loaderWorkerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "loader_worker_count",
		Help:      "Number of refresh loader workers",
	})

	// HTTP Performance Metrics - User experience indicators
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// Error Metrics - Detailed error tracking
	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_type_total",
			Help:      "Total number of errors by type",
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total number of errors by endpoint",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "error_latency_milliseconds",
			Help:      "Latency of operations that resulted in errors",
			Buckets:   m.histogramBuckets,
		},
		[]string{"component", "error_type"},
	)

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// Resolution Metrics Functions.

// RecordPersonalResolution increments the personal resolution counter.
func RecordPersonalResolution() {
	globalManager.resolutionPersonal.Inc()
}

// RecordDefaultResolution increments the default resolution counter.
func RecordDefaultResolution() {
	globalManager.resolutionDefault.Inc()
}

// RecordBlendedResolution increments the blended resolution counter.
func RecordBlendedResolution() {
	globalManager.resolutionBlended.Inc()
}

// RecordResolutionUnavailable increments the degraded no-tables counter.
func RecordResolutionUnavailable() {
	globalManager.resolutionUnavailable.Inc()
}

// RecordTracksServed adds the number of track ids returned to a caller.
func RecordTracksServed(count int) {
	globalManager.tracksServed.Add(float64(count))
}

// Table Metrics Functions.

// UpdateTableRows sets the row count for a loaded table.
func UpdateTableRows(table string, rows int) {
	globalManager.tableRows.WithLabelValues(table).Set(float64(rows))
}

// UpdateTableLoadedUnix sets the last successful load time for a table.
func UpdateTableLoadedUnix(table string, unix int64) {
	globalManager.tableLoadedUnix.WithLabelValues(table).Set(float64(unix))
}

// RecordTableLoadDuration records one table load duration in milliseconds.
func RecordTableLoadDuration(durationMs float64) {
	globalManager.tableLoadDuration.Observe(durationMs)
}

// RecordTableLoadError increments the failed-load counter for a table.
func RecordTableLoadError(table string) {
	globalManager.tableLoadErrors.WithLabelValues(table).Inc()
}

// Refresh Metrics Functions.

// UpdateRefreshQueueSize sets the current refresh queue size.
func UpdateRefreshQueueSize(size int) {
	globalManager.refreshQueueSize.Set(float64(size))
}

// UpdateRefreshQueueCapacity sets the maximum refresh queue capacity.
func UpdateRefreshQueueCapacity(capacity int) {
	globalManager.refreshQueueCapacity.Set(float64(capacity))
}

// UpdateRefreshQueueUtilization sets the refresh queue utilization ratio.
func UpdateRefreshQueueUtilization(utilization float64) {
	globalManager.refreshQueueUtilization.Set(utilization)
}

// RecordRefreshEnqueued increments the enqueued counter for a trigger.
func RecordRefreshEnqueued(trigger string) {
	globalManager.refreshEnqueued.WithLabelValues(trigger).Inc()
}

// RecordRefreshEnqueueError increments the enqueue error counter.
func RecordRefreshEnqueueError() {
	globalManager.refreshEnqueueErrors.Inc()
}

// RecordRefreshSkipped increments the skipped counter for a table.
func RecordRefreshSkipped(table string) {
	globalManager.refreshSkipped.WithLabelValues(table).Inc()
}

// UpdateLoaderWorkerCount sets the number of refresh loader workers.
func UpdateLoaderWorkerCount(count int) {
	globalManager.loaderWorkerCount.Set(float64(count))
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package metrics provides Prometheus metrics for the scouting report service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Connectivity states exported through the connectivity gauge.
var connectivityStates = []string{"connecting", "ok", "error"} //nolint:gochecknoglobals // fixed label set

// Manager manages all Prometheus metrics for the scouting service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Draft Metrics - What the scouts are doing right now
	draftsOpen     prometheus.Gauge
	draftMutations *prometheus.CounterVec

	// Autosave Metrics - Debounce and single-flight behaviour
	autosaveScheduled  prometheus.Counter
	autosaveDispatched *prometheus.CounterVec
	autosaveSkipped    prometheus.Counter

	// Write Metrics - Remote persistence outcomes
	reportWrites   *prometheus.CounterVec
	writeLatency   prometheus.Histogram
	reportsDeleted prometheus.Counter

	// Repository Metrics - Backend latency and snapshot fan-out
	repositoryLatency  *prometheus.HistogramVec
	snapshotsPublished prometheus.Counter
	snapshotsCoalesced prometheus.Counter
	snapshotsDelivered prometheus.Counter
	subscriptionErrors prometheus.Counter
	reportsTotal       prometheus.Gauge
	connectivity       *prometheus.GaugeVec

	// Export Metrics
	exports       *prometheus.CounterVec
	exportLatency prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// Queue Metrics - Save job backlog
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker Metrics
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter
	workerMessagesPerSecond prometheus.Gauge

	errorRateByComponent *prometheus.CounterVec
	systemGoroutineCount prometheus.Gauge
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
		namespace:        "scout",
		subsystem:        "reports",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		constLabels:      make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogram(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.draftsOpen = auto.NewGauge(m.gauge("drafts_open", "Number of drafts currently open as tabs"))
	m.draftMutations = auto.NewCounterVec(
		m.counter("draft_mutations_total", "Draft mutations by operation"),
		[]string{"op"},
	)

	m.autosaveScheduled = auto.NewCounter(m.counter("autosave_scheduled_total", "Debounce timers armed by edits"))
	m.autosaveDispatched = auto.NewCounterVec(
		m.counter("autosave_dispatched_total", "Save jobs dispatched by trigger (debounce or manual)"),
		[]string{"trigger"},
	)
	m.autosaveSkipped = auto.NewCounter(m.counter("autosave_skipped_total", "Save attempts skipped because a write was already in flight"))

	m.reportWrites = auto.NewCounterVec(
		m.counter("writes_total", "Remote report writes by operation and result"),
		[]string{"op", "result"},
	)
	m.writeLatency = auto.NewHistogram(m.histogram("write_latency_milliseconds", "Remote report write latency in milliseconds"))
	m.reportsDeleted = auto.NewCounter(m.counter("deleted_total", "Persisted reports deleted after confirmation"))

	m.repositoryLatency = auto.NewHistogramVec(
		m.histogram("repository_latency_milliseconds", "Repository operation latency in milliseconds"),
		[]string{"backend", "op"},
	)
	m.snapshotsPublished = auto.NewCounter(m.counter("snapshots_published_total", "Snapshots published by repository backends"))
	m.snapshotsCoalesced = auto.NewCounter(m.counter("snapshots_coalesced_total", "Snapshots replaced before a slow subscriber consumed them"))
	m.snapshotsDelivered = auto.NewCounter(m.counter("snapshots_delivered_total", "Snapshots delivered to the service subscription"))
	m.subscriptionErrors = auto.NewCounter(m.counter("subscription_errors_total", "Errors reported by the live subscription"))
	m.reportsTotal = auto.NewGauge(m.gauge("reports_total", "Number of reports in the latest snapshot"))
	m.connectivity = auto.NewGaugeVec(
		m.gauge("connectivity", "Current connectivity state (1 for the active state)"),
		[]string{"state"},
	)

	m.exports = auto.NewCounterVec(
		m.counter("exports_total", "Document exports by kind and result"),
		[]string{"kind", "result"},
	)
	m.exportLatency = auto.NewHistogram(m.histogram("export_latency_milliseconds", "Document export latency in milliseconds"))

	m.httpRequests = auto.NewCounterVec(
		m.counter("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogram("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counter("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.queueSize = auto.NewGauge(m.gauge("queue_size", "Current number of queued save jobs"))
	m.queueCapacity = auto.NewGauge(m.gauge("queue_capacity", "Maximum save queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gauge("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)"))
	m.queueEnqueueRate = auto.NewCounter(m.counter("queue_enqueue_total", "Total number of save jobs enqueued"))
	m.queueDequeueRate = auto.NewCounter(m.counter("queue_dequeue_total", "Total number of save jobs dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counter("queue_enqueue_errors_total", "Total number of rejected enqueues"))

	m.workerActiveCount = auto.NewGauge(m.gauge("worker_active_count", "Number of save workers"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogram("worker_processing_latency_milliseconds", "Save job processing latency in milliseconds"))
	m.workerErrorRate = auto.NewCounter(m.counter("worker_errors_total", "Total number of failed save jobs"))
	m.workerMessagesPerSecond = auto.NewGauge(m.gauge("worker_jobs_per_second", "Average save jobs processed per second"))

	m.errorRateByComponent = auto.NewCounterVec(
		m.counter("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.systemGoroutineCount = auto.NewGauge(m.gauge("system_goroutine_count", "Number of goroutines"))
}

// Draft Metrics Functions.

// UpdateDraftsOpen sets the number of open drafts.
func UpdateDraftsOpen(count int) {
	globalManager.draftsOpen.Set(float64(count))
}

// RecordDraftMutation counts a draft mutation by operation name.
func RecordDraftMutation(op string) {
	globalManager.draftMutations.WithLabelValues(op).Inc()
}

// Autosave Metrics Functions.

// RecordAutosaveScheduled counts an armed debounce timer.
func RecordAutosaveScheduled() {
	globalManager.autosaveScheduled.Inc()
}

// RecordAutosaveDispatched counts a dispatched save job.
func RecordAutosaveDispatched(trigger string) {
	globalManager.autosaveDispatched.WithLabelValues(trigger).Inc()
}

// RecordAutosaveSkipped counts a save attempt dropped due to an in-flight write.
func RecordAutosaveSkipped() {
	globalManager.autosaveSkipped.Inc()
}

// Write Metrics Functions.

// RecordReportWrite counts a remote write. op is create or update, result is ok or error.
func RecordReportWrite(op, result string) {
	globalManager.reportWrites.WithLabelValues(op, result).Inc()
}

// RecordWriteLatency records remote write latency in milliseconds.
func RecordWriteLatency(latencyMs float64) {
	globalManager.writeLatency.Observe(latencyMs)
}

// RecordReportDeleted counts a confirmed delete.
func RecordReportDeleted() {
	globalManager.reportsDeleted.Inc()
}

// Repository Metrics Functions.

// RecordRepositoryLatency records a backend operation latency in milliseconds.
func RecordRepositoryLatency(backend, op string, latencyMs float64) {
	globalManager.repositoryLatency.WithLabelValues(backend, op).Observe(latencyMs)
}

// RecordSnapshotPublished counts a snapshot published by a backend.
func RecordSnapshotPublished() {
	globalManager.snapshotsPublished.Inc()
}

// RecordSnapshotCoalesced counts a pending snapshot replaced by a newer one.
func RecordSnapshotCoalesced() {
	globalManager.snapshotsCoalesced.Inc()
}

// RecordSnapshotDelivered counts a snapshot received by the service.
func RecordSnapshotDelivered() {
	globalManager.snapshotsDelivered.Inc()
}

// RecordSubscriptionError counts a subscription error.
func RecordSubscriptionError() {
	globalManager.subscriptionErrors.Inc()
}

// UpdateReportsTotal sets the number of reports in the latest snapshot.
func UpdateReportsTotal(count int) {
	globalManager.reportsTotal.Set(float64(count))
}

// UpdateConnectivity marks state as the active connectivity state.
func UpdateConnectivity(state string) {
	for _, s := range connectivityStates {
		v := 0.0
		if s == state {
			v = 1
		}
		globalManager.connectivity.WithLabelValues(s).Set(v)
	}
}

// Export Metrics Functions.

// RecordExport counts a document export.
func RecordExport(kind, result string) {
	globalManager.exports.WithLabelValues(kind, result).Inc()
}

// RecordExportLatency records export latency in milliseconds.
func RecordExportLatency(latencyMs float64) {
	globalManager.exportLatency.Observe(latencyMs)
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

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// Worker Metrics Functions.

// UpdateWorkerActiveCount sets the number of workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records job processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// UpdateWorkerMessagesPerSecond sets the average jobs processed per second.
func UpdateWorkerMessagesPerSecond(rate float64) {
	globalManager.workerMessagesPerSecond.Set(rate)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector used by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Ledger
	xpAwarded          *prometheus.CounterVec
	badgesAwarded      prometheus.Counter
	tasksCompleted     prometheus.Counter
	taskAwards         *prometheus.CounterVec
	awardLatency       prometheus.Histogram
	idempotentReplays  prometheus.Counter
	candidatesTotal    prometheus.Gauge
	leaderboardQueries *prometheus.CounterVec
	leaderboardLatency prometheus.Histogram
	certificates       prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Repository
	repositoryLatency *prometheus.HistogramVec
	repositoryErrors  *prometheus.CounterVec

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers and publishers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter
	eventsPublished         *prometheus.CounterVec
	publishErrors           *prometheus.CounterVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "internxp",
		subsystem:        "ledger",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	// Ledger
	m.xpAwarded = m.counterVec("xp_awarded_total", "Total XP points written to candidate ledgers", "source")
	m.badgesAwarded = m.counter("badges_awarded_total", "Total number of badges granted")
	m.tasksCompleted = m.counter("tasks_completed_total", "Total number of tasks transitioned to completed")
	m.taskAwards = m.counterVec("task_awards_total", "Per-candidate task award outcomes", "outcome")
	m.awardLatency = m.histogram("award_latency_milliseconds", "Latency of a single ledger award in milliseconds", m.histogramBuckets)
	m.idempotentReplays = m.counter("idempotent_replays_total", "Manual awards rejected because their idempotency key was seen before")
	m.candidatesTotal = m.gauge("candidates_total", "Number of candidates known to the store")
	m.leaderboardQueries = m.counterVec("leaderboard_queries_total", "Leaderboard queries by scope", "scope")
	m.leaderboardLatency = m.histogram("leaderboard_latency_milliseconds", "Leaderboard ranking latency in milliseconds", m.histogramBuckets)
	m.certificates = m.counter("certificates_generated_total", "Total number of certificates rendered")

	// HTTP
	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		"endpoint", "method", "status_code")

	// Repository
	m.repositoryLatency = m.histogramVec("repository_latency_milliseconds", "Repository operation latency in milliseconds", "operation")
	m.repositoryErrors = m.counterVec("repository_errors_total", "Repository operation failures", "operation")

	// Queue
	m.queueSize = m.gauge("queue_size", "Current size of the award event queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)")
	m.queueEnqueueRate = m.counter("queue_enqueue_total", "Total number of events enqueued")
	m.queueDequeueRate = m.counter("queue_dequeue_total", "Total number of events dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of enqueue errors")

	// Workers and publishers
	m.workerCount = m.gauge("worker_count", "Current number of publisher workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Worker processing latency in milliseconds", m.histogramBuckets)
	m.workerErrorRate = m.counter("worker_errors_total", "Total number of worker errors")
	m.eventsPublished = m.counterVec("events_published_total", "Award events handed to a publisher", "publisher")
	m.publishErrors = m.counterVec("publish_errors_total", "Award events a publisher failed to deliver", "publisher")

	// Errors
	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component", "component", "error_type")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Total number of errors by endpoint", "endpoint", "method", "error_type")

	// System
	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordXPAwarded adds points to the per-source XP counter. Negative corrections are not counted.
func RecordXPAwarded(source string, points int) {
	if points <= 0 {
		return
	}
	globalManager.xpAwarded.WithLabelValues(source).Add(float64(points))
}

// RecordBadgeAwarded increments the badge counter.
func RecordBadgeAwarded() {
	globalManager.badgesAwarded.Inc()
}

// RecordTaskCompleted increments the completed task counter.
func RecordTaskCompleted() {
	globalManager.tasksCompleted.Inc()
}

// RecordTaskAward records a per-candidate fan-out outcome (awarded, skipped, failed).
func RecordTaskAward(outcome string) {
	globalManager.taskAwards.WithLabelValues(outcome).Inc()
}

// RecordAwardLatency records the latency of a single ledger award.
func RecordAwardLatency(latencyMs float64) {
	globalManager.awardLatency.Observe(latencyMs)
}

// RecordIdempotentReplay increments the replay counter.
func RecordIdempotentReplay() {
	globalManager.idempotentReplays.Inc()
}

// UpdateCandidatesTotal sets the number of stored candidates.
func UpdateCandidatesTotal(count int) {
	globalManager.candidatesTotal.Set(float64(count))
}

// RecordLeaderboardQuery records a leaderboard query and its latency.
func RecordLeaderboardQuery(scope string, latencyMs float64) {
	globalManager.leaderboardQueries.WithLabelValues(scope).Inc()
	globalManager.leaderboardLatency.Observe(latencyMs)
}

// RecordCertificateGenerated increments the certificate counter.
func RecordCertificateGenerated() {
	globalManager.certificates.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRepositoryLatency records the latency of a repository operation.
func RecordRepositoryLatency(operation string, latencyMs float64) {
	globalManager.repositoryLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordRepositoryError increments the failure counter for a repository operation.
func RecordRepositoryError(operation string) {
	globalManager.repositoryErrors.WithLabelValues(operation).Inc()
}

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

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// RecordEventPublished increments the per-publisher delivery counter.
func RecordEventPublished(publisher string) {
	globalManager.eventsPublished.WithLabelValues(publisher).Inc()
}

// RecordPublishError increments the per-publisher failure counter.
func RecordPublishError(publisher string) {
	globalManager.publishErrors.WithLabelValues(publisher).Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

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

// Package metrics provides Prometheus metrics for the matchreel assembly
// service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Assembly pipeline metrics.
	contestsAssembled    prometheus.Counter
	assemblyLatency      prometheus.Histogram
	validationVerdicts   *prometheus.CounterVec
	timelineEvents       *prometheus.CounterVec
	boundariesConfirmed  *prometheus.CounterVec
	boundariesSuppressed *prometheus.CounterVec
	momentsPublished     prometheus.Histogram
	inputAnomalies       *prometheus.CounterVec

	// Ingest metrics.
	submissionsAccepted  prometheus.Counter
	submissionsDuplicate prometheus.Counter

	// Queue metrics.
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueues      prometheus.Counter
	queueDequeues      prometheus.Counter
	queueEnqueueErrors *prometheus.CounterVec

	// Worker metrics.
	workerActiveCount prometheus.Gauge
	workerLatency     prometheus.Histogram
	workerErrors      prometheus.Counter

	// Repository metrics.
	runsStored       prometheus.Gauge
	failuresRetained prometheus.Gauge

	// HTTP metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
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
		namespace:        "matchreel",
		subsystem:        "assembly",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.contestsAssembled = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "contests_assembled_total",
		Help:      "Total number of contest assembly runs completed",
	})
	m.assemblyLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "latency_milliseconds",
		Help:      "Histogram of full pipeline latency per contest in milliseconds",
		Buckets:   m.histogramBuckets,
	})
	m.validationVerdicts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "validation_verdicts_total",
		Help:      "Validation verdicts by outcome",
	}, []string{"verdict"})
	m.timelineEvents = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "timeline_events_total",
		Help:      "Timeline events produced by source type",
	}, []string{"type"})
	m.boundariesConfirmed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "boundaries_confirmed_total",
		Help:      "Confirmed segmentation boundaries by kind",
	}, []string{"kind"})
	m.boundariesSuppressed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "boundaries_suppressed_total",
		Help:      "Suppressed boundary candidates by reason (gating audit)",
	}, []string{"reason"})
	m.momentsPublished = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "moments_per_contest",
		Help:      "Histogram of published moment counts per contest",
		Buckets:   []float64{5, 10, 15, 20, 25, 30, 40},
	})
	m.inputAnomalies = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "input_anomalies_total",
		Help:      "Tolerated input anomalies by kind (data quality signal)",
	}, []string{"kind"})

	m.submissionsAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_accepted_total",
		Help:      "Total accepted contest submissions",
	})
	m.submissionsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_duplicate_total",
		Help:      "Total duplicate contest submissions detected",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current number of queued assembly jobs",
	})
	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured assembly queue capacity",
	})
	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization",
		Help:      "Queue utilization ratio (0.0 to 1.0)",
	})
	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueues_total",
		Help:      "Total jobs enqueued",
	})
	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeues_total",
		Help:      "Total jobs dequeued",
	})
	m.queueEnqueueErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Enqueue failures by cause",
	}, []string{"cause"})

	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_active_count",
		Help:      "Number of running assembly workers",
	})
	m.workerLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_latency_milliseconds",
		Help:      "Histogram of per-job worker latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})
	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total worker job failures",
	})

	m.runsStored = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_stored",
		Help:      "Published runs currently held in the store",
	})
	m.failuresRetained = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "failures_retained",
		Help:      "Failed validation reports currently held for inspection",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method, and status code",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration by endpoint and method",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method"})
}

// Package-level helpers operating on the global manager.

// RecordContestAssembled increments the completed assembly counter.
func RecordContestAssembled() { globalManager.contestsAssembled.Inc() }

// RecordAssemblyLatency observes full pipeline latency in milliseconds.
func RecordAssemblyLatency(ms float64) { globalManager.assemblyLatency.Observe(ms) }

// RecordValidationVerdict counts one validation outcome.
func RecordValidationVerdict(verdict string) {
	globalManager.validationVerdicts.WithLabelValues(verdict).Inc()
}

// RecordTimelineEvents adds produced events for one source type.
func RecordTimelineEvents(eventType string, n int) {
	globalManager.timelineEvents.WithLabelValues(eventType).Add(float64(n))
}

// RecordBoundaryConfirmed counts one confirmed boundary.
func RecordBoundaryConfirmed(kind string) {
	globalManager.boundariesConfirmed.WithLabelValues(kind).Inc()
}

// RecordBoundarySuppressed counts one suppressed boundary candidate.
func RecordBoundarySuppressed(reason string) {
	globalManager.boundariesSuppressed.WithLabelValues(reason).Inc()
}

// RecordMomentsPublished observes the published moment count of one run.
func RecordMomentsPublished(count int) { globalManager.momentsPublished.Observe(float64(count)) }

// RecordInputAnomalies adds tolerated anomalies of one kind.
func RecordInputAnomalies(kind string, n int) {
	if n > 0 {
		globalManager.inputAnomalies.WithLabelValues(kind).Add(float64(n))
	}
}

// RecordSubmissionAccepted increments the accepted submission counter.
func RecordSubmissionAccepted() { globalManager.submissionsAccepted.Inc() }

// RecordSubmissionDuplicate increments the duplicate submission counter.
func RecordSubmissionDuplicate() { globalManager.submissionsDuplicate.Inc() }

// UpdateQueueSize sets the current queue depth.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the configured queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(u float64) { globalManager.queueUtilization.Set(u) }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueues.Inc() }

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() { globalManager.queueDequeues.Inc() }

// RecordQueueEnqueueError counts one enqueue failure by cause.
func RecordQueueEnqueueError(cause string) {
	globalManager.queueEnqueueErrors.WithLabelValues(cause).Inc()
}

// UpdateWorkerActiveCount sets the running worker gauge.
func UpdateWorkerActiveCount(count int) { globalManager.workerActiveCount.Set(float64(count)) }

// RecordWorkerLatency observes per-job worker latency in milliseconds.
func RecordWorkerLatency(ms float64) { globalManager.workerLatency.Observe(ms) }

// RecordWorkerError increments the worker failure counter.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// UpdateRunsStored sets the published run gauge.
func UpdateRunsStored(count int) { globalManager.runsStored.Set(float64(count)) }

// UpdateFailuresRetained sets the retained failure report gauge.
func UpdateFailuresRetained(count int) { globalManager.failuresRetained.Set(float64(count)) }

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes one HTTP request duration in
// milliseconds.
func RecordHTTPRequestDuration(endpoint, method string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method).Observe(ms)
}

// GetRegistry returns the custom registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Handler returns the HTTP handler serving the custom registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}

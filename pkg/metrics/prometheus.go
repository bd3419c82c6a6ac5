// Package metrics provides Prometheus metrics for the climadash service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Controller states as exported by the controller_state gauge.
const (
	StateIdle      = 0
	StateComputing = 1
	StateError     = 2
)

var defaultMillisecondBuckets = []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500}

// Manager owns every metric of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// UI events
	eventsReceived  *prometheus.CounterVec
	eventsDuplicate *prometheus.CounterVec
	eventsRejected  *prometheus.CounterVec
	eventsCoalesced *prometheus.CounterVec
	animationTicks  prometheus.Counter

	// Pipeline
	computations       *prometheus.CounterVec
	computationLatency *prometheus.HistogramVec
	controllerState    *prometheus.GaugeVec
	publications       *prometheus.CounterVec
	publicationsStored prometheus.Gauge
	chartRenders       *prometheus.CounterVec

	// Datasets
	datasetRows         *prometheus.GaugeVec
	datasetLoadDuration *prometheus.GaugeVec

	// Queue
	queueDepth *prometheus.GaugeVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the package-level recorders

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // scraped by /healthz

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a manager and registers its metrics.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "climadash",
		subsystem:        "dashboard",
		histogramBuckets: defaultMillisecondBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		Buckets: m.histogramBuckets, ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.eventsReceived = m.counterVec("events_received_total", "UI events accepted per page and kind", "page", "kind")
	m.eventsDuplicate = m.counterVec("events_duplicate_total", "UI events dropped as duplicates", "page")
	m.eventsRejected = m.counterVec("events_rejected_total", "UI events rejected before queueing", "page", "reason")
	m.eventsCoalesced = m.counterVec("events_coalesced_total", "UI events folded into another event's computation", "page")
	m.animationTicks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "animation_ticks_total",
		Help: "Animation ticks sent to animated pages", ConstLabels: m.customLabels,
	})

	m.computations = m.counterVec("computations_total", "Pipeline runs per page and outcome", "page", "outcome")
	m.computationLatency = m.histogramVec("computation_latency_milliseconds", "Pipeline latency in milliseconds", "page")
	m.controllerState = m.gaugeVec("controller_state", "Controller state per page (0 idle, 1 computing, 2 error)", "page")
	m.publications = m.counterVec("publications_total", "Publications per page", "page")
	m.publicationsStored = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "publications_stored",
		Help: "Publications held in memory across all pages", ConstLabels: m.customLabels,
	})
	m.chartRenders = m.counterVec("chart_renders_total", "PNG chart renders per family and outcome", "family", "outcome")

	m.datasetRows = m.gaugeVec("dataset_rows", "Records loaded per source", "source")
	m.datasetLoadDuration = m.gaugeVec("dataset_load_milliseconds", "Time spent loading each source", "source")

	m.queueDepth = m.gaugeVec("queue_depth", "Events waiting in each page mailbox", "page")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request latency in milliseconds",
		"endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Errors per component and type", "component", "error_type")
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors per HTTP endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system", Name: "memory_usage_bytes",
		Help: "Heap memory in use", ConstLabels: m.customLabels,
	})
	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system", Name: "goroutines",
		Help: "Number of goroutines", ConstLabels: m.customLabels,
	})
}

// Manager-level recorders. Every recorder is a no-op when disabled.

func (m *Manager) RecordEventReceived(page, kind string) {
	if m.enabled {
		m.eventsReceived.WithLabelValues(page, kind).Inc()
	}
}

func (m *Manager) RecordEventDuplicate(page string) {
	if m.enabled {
		m.eventsDuplicate.WithLabelValues(page).Inc()
	}
}

func (m *Manager) RecordEventRejected(page, reason string) {
	if m.enabled {
		m.eventsRejected.WithLabelValues(page, reason).Inc()
	}
}

func (m *Manager) RecordEventsCoalesced(page string, n int) {
	if m.enabled && n > 0 {
		m.eventsCoalesced.WithLabelValues(page).Add(float64(n))
	}
}

func (m *Manager) RecordComputation(page, outcome string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.computations.WithLabelValues(page, outcome).Inc()
	m.computationLatency.WithLabelValues(page).Observe(latencyMs)
}

func (m *Manager) UpdateControllerState(page string, state int) {
	if m.enabled {
		m.controllerState.WithLabelValues(page).Set(float64(state))
	}
}

func (m *Manager) RecordPublication(page string) {
	if m.enabled {
		m.publications.WithLabelValues(page).Inc()
	}
}

func (m *Manager) UpdatePublicationsStored(n int) {
	if m.enabled {
		m.publicationsStored.Set(float64(n))
	}
}

func (m *Manager) RecordChartRender(family, outcome string) {
	if m.enabled {
		m.chartRenders.WithLabelValues(family, outcome).Inc()
	}
}

func (m *Manager) UpdateDatasetRows(source string, rows int) {
	if m.enabled {
		m.datasetRows.WithLabelValues(source).Set(float64(rows))
	}
}

func (m *Manager) RecordDatasetLoad(source string, durationMs float64) {
	if m.enabled {
		m.datasetLoadDuration.WithLabelValues(source).Set(durationMs)
	}
}

func (m *Manager) UpdateQueueDepth(page string, depth int) {
	if m.enabled {
		m.queueDepth.WithLabelValues(page).Set(float64(depth))
	}
}

func (m *Manager) RecordAnimationTick() {
	if m.enabled {
		m.animationTicks.Inc()
	}
}

func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string) {
	if m.enabled {
		m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

func (m *Manager) RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if m.enabled {
		m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

func (m *Manager) RecordErrorByComponent(component, errorType string) {
	if m.enabled {
		m.errorsByComponent.WithLabelValues(component, errorType).Inc()
	}
}

func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	if m.enabled {
		m.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

func (m *Manager) UpdateSystemMemoryUsage(bytes uint64) {
	if m.enabled {
		m.systemMemoryUsage.Set(float64(bytes))
	}
}

func (m *Manager) UpdateSystemGoroutineCount(count int) {
	if m.enabled {
		m.systemGoroutineCount.Set(float64(count))
	}
}

// Package-level recorders against the global manager.

func RecordEventReceived(page, kind string)   { globalManager.RecordEventReceived(page, kind) }
func RecordEventDuplicate(page string)        { globalManager.RecordEventDuplicate(page) }
func RecordEventRejected(page, reason string) { globalManager.RecordEventRejected(page, reason) }
func RecordEventsCoalesced(page string, n int) {
	globalManager.RecordEventsCoalesced(page, n)
}
func RecordComputation(page, outcome string, latencyMs float64) {
	globalManager.RecordComputation(page, outcome, latencyMs)
}
func UpdateControllerState(page string, state int)    { globalManager.UpdateControllerState(page, state) }
func RecordPublication(page string)                   { globalManager.RecordPublication(page) }
func UpdatePublicationsStored(n int)                  { globalManager.UpdatePublicationsStored(n) }
func RecordChartRender(family, outcome string)        { globalManager.RecordChartRender(family, outcome) }
func UpdateDatasetRows(source string, rows int)       { globalManager.UpdateDatasetRows(source, rows) }
func RecordDatasetLoad(source string, ms float64)     { globalManager.RecordDatasetLoad(source, ms) }
func UpdateQueueDepth(page string, depth int)         { globalManager.UpdateQueueDepth(page, depth) }
func RecordAnimationTick()                            { globalManager.RecordAnimationTick() }
func RecordHTTPRequest(endpoint, method, code string) { globalManager.RecordHTTPRequest(endpoint, method, code) }
func RecordHTTPRequestDuration(endpoint, method, code string, ms float64) {
	globalManager.RecordHTTPRequestDuration(endpoint, method, code, ms)
}
func RecordErrorByComponent(component, errorType string) {
	globalManager.RecordErrorByComponent(component, errorType)
}
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.UpdateSystemMemoryUsage(bytes) }
func UpdateSystemGoroutineCount(count int) { globalManager.UpdateSystemGoroutineCount(count) }

// GetRegistry returns the registry scraped by /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

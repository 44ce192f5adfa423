// Package metrics provides Prometheus metrics for the flowboard service.
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

// Manager manages all Prometheus metrics for the flowboard service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Core Business Metrics - Board activity
	cardsAdded    prometheus.Counter
	cardsMoved    prometheus.Counter
	movesRejected *prometheus.CounterVec
	bulkMoves     prometheus.Counter
	commentsAdded prometheus.Counter
	tagActions    *prometheus.CounterVec

	// Board State Metrics
	boardsTotal  prometheus.Gauge
	cardsTotal   prometheus.Gauge
	wipCards     prometheus.Gauge
	blockedCards prometheus.Gauge

	// Prioritization Metrics
	priorityEvaluations prometheus.Counter
	priorityLatency     prometheus.Histogram

	// Flow Analytics Metrics
	flowReports     prometheus.Counter
	bottlenecksSeen *prometheus.CounterVec

	// Persistence Metrics - Board store durability
	storeSaves        prometheus.Counter
	storeSaveErrors   prometheus.Counter
	storeSaveRetries  prometheus.Counter
	storeSaveDuration prometheus.Histogram
	storeLoads        prometheus.Counter

	// Notification Metrics - Item-state collaborator delivery
	notifyEnqueued       prometheus.Counter
	notifyDropped        prometheus.Counter
	notifyDelivered      prometheus.Counter
	notifyDeliveryErrors prometheus.Counter
	notifyQueueSize      prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Enhanced Error Metrics - Detailed error tracking
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Registry returns the custom registry carrying all flowboard metrics.
func Registry() *prometheus.Registry {
	return customRegistry
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "flowboard",
		subsystem:        "board",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
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

	// Core Business Metrics - Board activity
	m.cardsAdded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cards_added_total",
		Help:      "Total number of cards added to boards",
	})

	m.cardsMoved = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cards_moved_total",
		Help:      "Total number of successful card moves",
	})

	m.movesRejected = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "moves_rejected_total",
			Help:      "Total number of rejected card moves by reason",
		},
		[]string{"reason"},
	)

	m.bulkMoves = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "bulk_moves_total",
		Help:      "Total number of bulk move batches processed",
	})

	m.commentsAdded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "comments_added_total",
		Help:      "Total number of comments appended to cards",
	})

	m.tagActions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "tag_actions_total",
			Help:      "Total number of tag-triggered side effects by action",
		},
		[]string{"action"},
	)

	// Board State Metrics
	m.boardsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "boards_total",
		Help:      "Total number of boards in the store",
	})

	m.cardsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cards_total",
		Help:      "Total number of cards across all boards",
	})

	m.wipCards = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "wip_cards",
		Help:      "Number of cards currently in progress",
	})

	m.blockedCards = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "blocked_cards",
		Help:      "Number of cards currently flagged as blocked",
	})

	// Prioritization Metrics
	m.priorityEvaluations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "priority_evaluations_total",
		Help:      "Total number of priority score evaluations",
	})

	m.priorityLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "priority_latency_milliseconds",
		Help:      "Histogram of backlog prioritization latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// Flow Analytics Metrics
	m.flowReports = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "flow_reports_total",
		Help:      "Total number of lean flow metric reports computed",
	})

	m.bottlenecksSeen = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "bottlenecks_seen_total",
			Help:      "Total number of bottleneck detections by severity",
		},
		[]string{"severity"},
	)

	// Persistence Metrics - Board store durability
	m.storeSaves = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_saves_total",
		Help:      "Total number of board store save operations",
	})

	m.storeSaveErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_save_errors_total",
		Help:      "Total number of board store save failures after retries",
	})

	m.storeSaveRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_save_retries_total",
		Help:      "Total number of board store save retry attempts",
	})

	m.storeSaveDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_save_duration_milliseconds",
		Help:      "Board store save duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeLoads = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_loads_total",
		Help:      "Total number of board store load operations",
	})

	// Notification Metrics - Item-state collaborator delivery
	m.notifyEnqueued = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notify_enqueued_total",
		Help:      "Total number of transition events enqueued for delivery",
	})

	m.notifyDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notify_dropped_total",
		Help:      "Total number of transition events dropped on backpressure",
	})

	m.notifyDelivered = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notify_delivered_total",
		Help:      "Total number of transition events delivered to the collaborator",
	})

	m.notifyDeliveryErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notify_delivery_errors_total",
		Help:      "Total number of transition event delivery failures (best-effort, not retried)",
	})

	m.notifyQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notify_queue_size",
		Help:      "Current size of the transition event queue",
	})

	// HTTP Performance Metrics
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

	// Enhanced Error Metrics - Detailed error tracking
	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
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
}

// RecordCardAdded increments the cards added counter.
func RecordCardAdded() {
	globalManager.cardsAdded.Inc()
}

// RecordCardMoved increments the successful moves counter.
func RecordCardMoved() {
	globalManager.cardsMoved.Inc()
}

// RecordMoveRejected increments the rejected moves counter for a reason.
func RecordMoveRejected(reason string) {
	globalManager.movesRejected.WithLabelValues(reason).Inc()
}

// RecordBulkMove increments the bulk move batch counter.
func RecordBulkMove() {
	globalManager.bulkMoves.Inc()
}

// RecordCommentAdded increments the comments counter.
func RecordCommentAdded() {
	globalManager.commentsAdded.Inc()
}

// RecordTagAction increments the tag side-effect counter for an action.
func RecordTagAction(action string) {
	globalManager.tagActions.WithLabelValues(action).Inc()
}

// UpdateBoardsTotal sets the board count gauge.
func UpdateBoardsTotal(count int) {
	globalManager.boardsTotal.Set(float64(count))
}

// UpdateCardsTotal sets the card count gauge.
func UpdateCardsTotal(count int) {
	globalManager.cardsTotal.Set(float64(count))
}

// UpdateWipCards sets the in-progress card gauge.
func UpdateWipCards(count int) {
	globalManager.wipCards.Set(float64(count))
}

// UpdateBlockedCards sets the blocked card gauge.
func UpdateBlockedCards(count int) {
	globalManager.blockedCards.Set(float64(count))
}

// RecordPriorityEvaluation increments the priority evaluation counter.
func RecordPriorityEvaluation() {
	globalManager.priorityEvaluations.Inc()
}

// RecordPriorityLatency records backlog prioritization latency in milliseconds.
func RecordPriorityLatency(latencyMs float64) {
	globalManager.priorityLatency.Observe(latencyMs)
}

// RecordFlowReport increments the flow report counter.
func RecordFlowReport() {
	globalManager.flowReports.Inc()
}

// RecordBottleneck increments the bottleneck counter for a severity.
func RecordBottleneck(severity string) {
	globalManager.bottlenecksSeen.WithLabelValues(severity).Inc()
}

// RecordStoreSave increments the store save counter.
func RecordStoreSave() {
	globalManager.storeSaves.Inc()
}

// RecordStoreSaveError increments the store save error counter.
func RecordStoreSaveError() {
	globalManager.storeSaveErrors.Inc()
}

// RecordStoreSaveRetry increments the store save retry counter.
func RecordStoreSaveRetry() {
	globalManager.storeSaveRetries.Inc()
}

// RecordStoreSaveDuration records store save duration in milliseconds.
func RecordStoreSaveDuration(durationMs float64) {
	globalManager.storeSaveDuration.Observe(durationMs)
}

// RecordStoreLoad increments the store load counter.
func RecordStoreLoad() {
	globalManager.storeLoads.Inc()
}

// RecordNotifyEnqueued increments the notification enqueue counter.
func RecordNotifyEnqueued() {
	globalManager.notifyEnqueued.Inc()
}

// RecordNotifyDropped increments the notification drop counter.
func RecordNotifyDropped() {
	globalManager.notifyDropped.Inc()
}

// RecordNotifyDelivered increments the notification delivery counter.
func RecordNotifyDelivered() {
	globalManager.notifyDelivered.Inc()
}

// RecordNotifyDeliveryError increments the notification delivery error counter.
func RecordNotifyDeliveryError() {
	globalManager.notifyDeliveryErrors.Inc()
}

// UpdateNotifyQueueSize sets the transition event queue size gauge.
func UpdateNotifyQueueSize(size int) {
	globalManager.notifyQueueSize.Set(float64(size))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent increments the error counter for a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint increments the error counter for an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

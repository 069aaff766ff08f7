// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Indexing metrics
	SweepsTotal         *prometheus.CounterVec
	TransactionsIndexed prometheus.Counter
	SwapsDetected       prometheus.Counter
	LastSuccessfulSweep prometheus.Gauge

	// RPC metrics
	RPCRequests       *prometheus.CounterVec
	RPCErrors         *prometheus.CounterVec
	RPCRetries        *prometheus.CounterVec
	RPCCallLatency    *prometheus.HistogramVec
	RequestQueueDepth prometheus.Gauge

	// Event bus metrics
	EventsEmitted *prometheus.CounterVec
	HandlerErrors *prometheus.CounterVec
	EventBusDepth prometheus.Gauge

	// Notification metrics
	NotificationsTotal *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "agent007"
	}

	return &Metrics{
		SweepsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "sweeps_total",
			Help:      "Total number of account sweeps by status",
		}, []string{"status"}),
		TransactionsIndexed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "transactions_indexed_total",
			Help:      "Total number of transactions indexed",
		}),
		SwapsDetected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "swaps_detected_total",
			Help:      "Total number of swaps reconstructed from transactions",
		}),
		LastSuccessfulSweep: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "last_successful_sweep_timestamp",
			Help:      "Unix timestamp of the last successful sweep",
		}),

		RPCRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_requests_total",
			Help:      "Total number of RPC requests by method",
		}, []string{"method"}),
		RPCErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_errors_total",
			Help:      "Total number of failed RPC requests by method",
		}, []string{"method"}),
		RPCRetries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_retries_total",
			Help:      "Total number of RPC retries by reason",
		}, []string{"reason"}),
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		RequestQueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "request_queue_depth",
			Help:      "Current number of calls waiting in the request queue",
		}),

		EventsEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eventbus",
			Name:      "events_emitted_total",
			Help:      "Total number of events emitted by kind",
		}, []string{"kind"}),
		HandlerErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eventbus",
			Name:      "handler_errors_total",
			Help:      "Total number of handler failures by event kind",
		}, []string{"kind"}),
		EventBusDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "eventbus",
			Name:      "queue_depth",
			Help:      "Current number of emits waiting in the bus queue",
		}),

		NotificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifier",
			Name:      "notifications_total",
			Help:      "Total number of notification deliveries by status",
		}, []string{"status"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordSweep records a finished sweep by status ("ok" or "error").
func RecordSweep(status string) {
	DefaultMetrics.SweepsTotal.WithLabelValues(status).Inc()
}

// SetLastSuccessfulSweep updates the last successful sweep timestamp.
func SetLastSuccessfulSweep(unix int64) {
	DefaultMetrics.LastSuccessfulSweep.Set(float64(unix))
}

// RecordTransactionIndexed increments the transactions indexed counter.
func RecordTransactionIndexed() {
	DefaultMetrics.TransactionsIndexed.Inc()
}

// RecordSwapDetected increments the swaps detected counter.
func RecordSwapDetected() {
	DefaultMetrics.SwapsDetected.Inc()
}

// RecordRPCCall records one RPC request with its latency and outcome.
func RecordRPCCall(method string, seconds float64, err error) {
	DefaultMetrics.RPCRequests.WithLabelValues(method).Inc()
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
	if err != nil {
		DefaultMetrics.RPCErrors.WithLabelValues(method).Inc()
	}
}

// RecordRPCRetry records a retried call by reason.
func RecordRPCRetry(reason string) {
	DefaultMetrics.RPCRetries.WithLabelValues(reason).Inc()
}

// SetRequestQueueDepth updates the request queue depth gauge.
func SetRequestQueueDepth(n int) {
	DefaultMetrics.RequestQueueDepth.Set(float64(n))
}

// RecordEventEmitted increments the emitted events counter for a kind.
func RecordEventEmitted(kind string) {
	DefaultMetrics.EventsEmitted.WithLabelValues(kind).Inc()
}

// RecordHandlerError records a failed event handler by kind.
func RecordHandlerError(kind string) {
	DefaultMetrics.HandlerErrors.WithLabelValues(kind).Inc()
}

// SetEventBusDepth updates the bus queue depth gauge.
func SetEventBusDepth(n int) {
	DefaultMetrics.EventBusDepth.Set(float64(n))
}

// RecordNotification records a notification delivery by status.
func RecordNotification(status string) {
	DefaultMetrics.NotificationsTotal.WithLabelValues(status).Inc()
}

// Package metrics provides Prometheus instrumentation for the ledger engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// LedgerEntriesTotal counts appended ledger entries, partitioned by type.
	LedgerEntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clubledger_entries_total",
		Help: "Total number of ledger entries appended",
	}, []string{"type"})

	// RoundsCreated counts prediction rounds created.
	RoundsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clubledger_rounds_created_total",
		Help: "Total number of prediction rounds created",
	})

	// RoundsSettled counts successful settlements.
	RoundsSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clubledger_rounds_settled_total",
		Help: "Total number of prediction rounds settled",
	})

	// SettlementConflicts counts duplicate settlement attempts rejected by
	// the store's at-most-once guard.
	SettlementConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clubledger_settlement_conflicts_total",
		Help: "Settlement attempts rejected as already settled",
	})

	// LimitRejections counts rounds rejected by the commit limiter.
	LimitRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clubledger_limit_rejections_total",
		Help: "Round creations rejected by commit exposure limits",
	})

	// PublishFailures counts lifecycle events that could not be delivered
	// to the broker.
	PublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clubledger_event_publish_failures_total",
		Help: "Lifecycle events that failed to publish",
	})

	// SettlementLatency tracks settlement transaction latency.
	SettlementLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "clubledger_settlement_latency_seconds",
		Help:    "Settlement transaction latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "clubledger_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clubledger_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "clubledger_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Use the raw path for the label; route cardinality is bounded.
		path := r.URL.Path
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

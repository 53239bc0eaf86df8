// Package observability provides Prometheus collectors and OpenTelemetry
// tracing setup.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "olma_redis_error_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// OfferTransitions counts offer status transitions by target status.
	OfferTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "olma_offer_transitions_total",
		Help: "Total number of meeting offer status transitions",
	}, []string{"to_status"})

	// OffersExpired counts offers moved to denied by the expiration sweeper.
	OffersExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "olma_offers_expired_total",
		Help: "Total number of pending offers expired by the sweeper",
	})

	// SweepRuns counts sweeper invocations by trigger (read, endpoint).
	SweepRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "olma_offer_sweep_runs_total",
		Help: "Total number of expiration sweep runs by trigger",
	}, []string{"trigger"})

	// ReportsCreated counts meeting reports by category.
	ReportsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "olma_meeting_reports_total",
		Help: "Total number of meeting reports by category",
	}, []string{"category"})

	// NotifyFailures counts best-effort notification publishes that failed.
	NotifyFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "olma_notify_failures_total",
		Help: "Total number of failed best-effort notification publishes",
	}, []string{"kind"})

	// WebSocketConnections is the gauge of active notification stream connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "olma_websocket_connections",
		Help: "Number of active WebSocket notification connections",
	})
)

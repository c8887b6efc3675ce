// CoalMine-B - Mine Safety Management and Real-Time Monitoring
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aryam2121/CoalMine-B

// Package metrics provides Prometheus instrumentation for the realtime
// gateway, the facility state store, and the HTTP surface.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebSocket / gateway metrics

	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gateway_active_connections",
			Help: "Current number of authenticated WebSocket connections",
		},
	)

	RoomMembers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gateway_room_members",
			Help: "Current number of connections joined to each facility room",
		},
		[]string{"mine_id"},
	)

	InboundEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_inbound_events_total",
			Help: "Total inbound events received, by event type and outcome",
		},
		[]string{"event", "outcome"}, // outcome: ok, validation_error, persistence_error, rate_limited
	)

	BroadcastsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_broadcasts_total",
			Help: "Total outbound broadcasts, by event type and scope",
		},
		[]string{"event", "scope"}, // scope: room, all, user
	)

	DroppedClients = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_dropped_clients_total",
			Help: "Connections dropped because their send queue was full",
		},
	)

	// Alert / emergency metrics

	AlertsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_created_total",
			Help: "Total alerts created, by severity and origin",
		},
		[]string{"severity", "origin"}, // origin: equipment, environment, user, emergency
	)

	AlertsResolved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alerts_resolved_total",
			Help: "Total alerts resolved",
		},
	)

	EmergenciesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emergencies_created_total",
			Help: "Total emergencies created, by hazard type",
		},
		[]string{"type"},
	)

	// Persistence metrics

	StoreWriteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_write_duration_seconds",
			Help:    "Duration of facility snapshot and ledger writes",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_errors_total",
			Help: "Total persistence errors, by operation",
		},
		[]string{"operation"},
	)

	// HTTP API metrics

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)
)

// RecordAPIRequest records a completed HTTP request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordInboundEvent records an inbound gateway event and its outcome.
func RecordInboundEvent(event, outcome string) {
	InboundEvents.WithLabelValues(event, outcome).Inc()
}

// RecordBroadcast records an outbound broadcast.
func RecordBroadcast(event, scope string) {
	BroadcastsSent.WithLabelValues(event, scope).Inc()
}

// RecordStoreWrite records the duration and outcome of a persistence write.
func RecordStoreWrite(operation string, duration time.Duration, err error) {
	StoreWriteDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		StoreErrors.WithLabelValues(operation).Inc()
	}
}

// FormatStatusCode converts an HTTP status to its metric label.
func FormatStatusCode(code int) string {
	return strconv.Itoa(code)
}

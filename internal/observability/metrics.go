// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthFailures counts rejected requests at the auth gate by reason.
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_auth_failures_total",
		Help: "Total number of requests rejected by the auth gate",
	}, []string{"reason"})

	// CommentsCreated counts persisted comments by kind (top_level, reply).
	CommentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_comments_created_total",
		Help: "Total number of comments created",
	}, []string{"kind"})

	// CascadeDeletes counts comments removed by a cascade, by trigger.
	CascadeDeletes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_cascade_deleted_comments_total",
		Help: "Total number of comments removed by cascading deletes",
	}, []string{"trigger"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records repository latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// FeedConnections is the gauge of live feed websocket connections.
	FeedConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "inkwell_feed_connections",
		Help: "Number of active live feed WebSocket connections",
	})

	// FeedEvents counts live feed events fanned out, by type.
	FeedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_feed_events_total",
		Help: "Total live feed events delivered to the hub",
	}, []string{"event_type"})

	// FeedBackpressureDrops counts messages dropped because a client's send buffer was full.
	FeedBackpressureDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_feed_backpressure_drops_total",
		Help: "Total number of live feed messages dropped due to backpressure",
	})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

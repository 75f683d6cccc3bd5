package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agora_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ReactionToggles counts applied like/dislike toggles by target kind and outcome.
	ReactionToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_reaction_toggles_total",
		Help: "Total number of reaction toggles by target kind and outcome",
	}, []string{"target_kind", "outcome"})

	// ReactionConflicts counts toggles abandoned after a concurrent insert won the unique key.
	ReactionConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_reaction_conflicts_total",
		Help: "Total number of reaction toggles that lost a concurrent write",
	}, []string{"target_kind"})

	// FeedLatency records how long it takes to assemble a ranked feed page.
	FeedLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agora_feed_latency_seconds",
		Help:    "Feed assembly latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"feed"})

	// RateLimitRejections counts requests rejected by the rate limiter per resource.
	RateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_rate_limit_rejections_total",
		Help: "Total number of requests rejected by the rate limiter",
	}, []string{"resource"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		ObserveQuery(operation, table, start)
	}
}

// TrackFeed returns a function that records feed latency when called.
func TrackFeed(feed string) func() {
	start := time.Now()
	return func() {
		FeedLatency.WithLabelValues(feed).Observe(time.Since(start).Seconds())
	}
}

// RecordReactionToggle increments the toggle counter for an applied outcome.
func RecordReactionToggle(targetKind, outcome string) {
	ReactionToggles.WithLabelValues(targetKind, outcome).Inc()
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by command.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"operation"})

	// LedgerTransitions counts edge creations and removals by ledger and outcome.
	// ledger is one of follow, like, retweet, reply_like; action is create or remove;
	// outcome is ok, conflict or absent.
	LedgerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_ledger_transitions_total",
		Help: "Edge create/remove attempts by ledger, action and outcome",
	}, []string{"ledger", "action", "outcome"})

	// ContentEvents counts tweet and reply creations and deletions.
	ContentEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_content_events_total",
		Help: "Tweets and replies created or deleted",
	}, []string{"kind", "action"})

	// BadgeChanges counts admin badge grants and revocations.
	BadgeChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_badge_changes_total",
		Help: "Badge grants and revocations by badge",
	}, []string{"badge", "action"})

	// StorageRetries counts retried storage calls after transient failures.
	StorageRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chirp_storage_retries_total",
		Help: "Storage calls retried after a transient failure",
	})

	// SearchLatency records search latency by search type.
	SearchLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chirp_search_latency_seconds",
		Help:    "Search latency in seconds by type",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})

	// TrendingFallbacks counts trending responses served from the default list.
	TrendingFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_trending_fallbacks_total",
		Help: "Trending responses served from the default list by reason",
	}, []string{"reason"})

	// RegistrationsTotal counts completed registrations.
	RegistrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chirp_registrations_total",
		Help: "Completed account registrations",
	})
)

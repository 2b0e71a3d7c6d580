// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the collection and ranking service.
var (
	// Counters.
	RankRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rank_refreshes_total",
			Help: "Total number of collector rank refresh operations",
		},
		[]string{"status"},
	)

	RankComputationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rank_computations_total",
			Help: "Total number of collector rank computations by resulting tier",
		},
		[]string{"tier"},
	)

	CollectionMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collection_mutations_total",
			Help: "Total number of collection add/remove/toggle operations",
		},
		[]string{"operation", "status"},
	)

	DiscogsRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discogs_requests_total",
			Help: "Total number of Discogs API requests by HTTP status",
		},
		[]string{"status"},
	)

	PriceCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "price_cache_lookups_total",
			Help: "Total number of price cache lookups by outcome",
		},
		[]string{"result"},
	)

	// Gauges.
	UsersPerTier = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "users_per_tier",
			Help: "Current number of ranked users at each collector tier",
		},
		[]string{"tier"},
	)

	// Histograms.
	CollectionSizeAlbums = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "collection_size_albums",
			Help:    "Album counts observed during rank refreshes",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1 to ~2k albums
		},
	)

	CollectionValueAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "collection_value_amount",
			Help:    "Collection valuations observed during rank refreshes",
			Buckets: prometheus.ExponentialBuckets(10, 2, 14), // 10 to ~80k
		},
	)

	// Scheduler metrics.
	BackfillRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_backfill_runs_total",
			Help: "Total ranking backfill job executions",
		},
		[]string{"status"},
	)

	BackfillUsersProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ranking_backfill_users_processed_total",
			Help: "Total users processed by the ranking backfill job",
		},
	)
)

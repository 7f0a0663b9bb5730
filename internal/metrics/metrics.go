// Package metrics holds the prometheus collectors shared across the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FollowMutations counts follow/unfollow calls by outcome (changed, noop, rejected, error).
	FollowMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenvin_follow_mutations_total",
		Help: "Follow and unfollow calls by operation and outcome",
	}, []string{"operation", "outcome"})

	// CounterEvents counts follow events handled by the reconciler.
	CounterEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenvin_counter_events_total",
		Help: "Follow events processed by the counter reconciler",
	}, []string{"outcome"})

	FeedAssemblyLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tenvin_feed_assembly_seconds",
		Help:    "Time spent assembling a feed",
		Buckets: prometheus.DefBuckets,
	})

	FeedBatches = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tenvin_feed_batches",
		Help:    "Author batches queried per feed",
		Buckets: []float64{1, 2, 3, 5, 10, 20, 50},
	})

	SearchCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenvin_search_cache_lookups_total",
		Help: "User search cache lookups by result",
	}, []string{"result"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tenvin_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

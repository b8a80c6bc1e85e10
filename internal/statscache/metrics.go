package statscache

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// CacheRequests counts lookups by cache kind and result.
	CacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metaviz_stats_cache_requests_total",
			Help: "Stats cache lookups by kind and result (hit, negative_hit, miss)",
		},
		[]string{"kind", "result"},
	)

	// FetchFailures counts statistics documents that could not be loaded.
	FetchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metaviz_stats_fetch_failures_total",
			Help: "Statistics documents that failed to load and were cached as absent",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(CacheRequests)
	prometheus.MustRegister(FetchFailures)
}

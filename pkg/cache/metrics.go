package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts responses served from cache, by freshness state.
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapi_cache_hits_total",
			Help: "Total number of responses served from the cache",
		},
		[]string{"state"}, // "fresh", "revalidated"
	)

	// CacheMisses counts lookups that found nothing.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "swapi_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// StoredBytes counts bytes written to Redis.
	StoredBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "swapi_cache_stored_bytes_total",
			Help: "Total number of bytes written to the cache",
		},
	)

	// ConditionalRequests counts requests sent with If-None-Match or If-Modified-Since.
	ConditionalRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "swapi_cache_conditional_requests_total",
			Help: "Total number of conditional requests sent to the API",
		},
	)

	// CacheErrors counts failed cache operations.
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapi_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)

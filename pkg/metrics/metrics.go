// Package metrics exposes the Prometheus registry the swfleet packages
// register into. Metrics are defined next to the code that updates them
// (client, cache, ratelimit, fetch); this package serves them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer all metrics are added to via promauto.
var Registry = prometheus.DefaultRegisterer

// Gatherer reads back what Registry holds.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Fetch Metrics (pkg/fetch):
//   - swfleet_fetches_total{kind, outcome} (Counter): resource fetches by kind and outcome (ok, error)
//   - swfleet_dedup_hits_total{kind} (Counter): references satisfied by an existing reservation
//   - swfleet_aggregate_duration_seconds (Histogram): FetchAll wall time
//
// Quota Metrics (pkg/ratelimit):
//   - swapi_quota_remaining (Gauge): requests left in the upstream quota window
//   - swapi_quota_blocks_total (Counter): requests blocked on an exhausted quota
//
// Cache Metrics (pkg/cache):
//   - swapi_cache_hits_total{state} (Counter): fresh, stale or revalidated hits
//   - swapi_cache_misses_total (Counter): cache misses
//   - swapi_cache_stored_bytes_total (Counter): bytes written to Redis
//   - swapi_cache_conditional_requests_total (Counter): revalidations sent
//   - swapi_cache_errors_total{operation} (Counter): Redis failures
//
// Request Metrics (pkg/client):
//   - swapi_requests_total{endpoint, status} (Counter): requests by collection and status
//   - swapi_request_duration_seconds{endpoint} (Histogram): request latency
//   - swapi_errors_total{class} (Counter): failures by class (client, server, quota, network)
//
// Retry Metrics (pkg/client):
//   - swapi_retries_total{error_class} (Counter)
//   - swapi_retry_backoff_seconds{error_class} (Histogram)
//   - swapi_retry_exhausted_total{error_class} (Counter)
//
// Example Prometheus Queries:
//
//   # Deduplication ratio
//   sum(rate(swfleet_dedup_hits_total[5m])) /
//   (sum(rate(swfleet_dedup_hits_total[5m])) + sum(rate(swfleet_fetches_total{kind="starships"}[5m])))
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(swapi_request_duration_seconds_bucket[5m]))

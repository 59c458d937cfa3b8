// Package cache provides an optional Redis-backed cache for raw API responses
// with ETag / Last-Modified revalidation.
//
// The cache sits below the record repositories: it stores response bodies by
// request path, not assembled records, and is only active when a Redis client
// is configured.
//
// # Basic Usage
//
//	manager := cache.NewManager(redisClient, cache.DefaultTTL)
//
//	key := cache.KeyForRequest(req)
//	entry, err := manager.Get(ctx, key)
//	switch {
//	case err == cache.ErrCacheMiss:
//		// fetch from the API
//	case entry.Fresh():
//		resp := cache.ToResponse(entry, req)
//	default:
//		cache.AddConditionalHeaders(req, entry) // API may answer 304
//	}
//
// # Freshness
//
// Freshness comes from Cache-Control max-age, then Expires, then the
// manager's default TTL. Cache-Control no-store responses are never stored.
// Stale entries are kept for StaleGrace so they can still be revalidated.
//
// # Metrics
//
//   - swapi_cache_hits_total{state="fresh|revalidated"}
//   - swapi_cache_misses_total
//   - swapi_cache_stored_bytes_total
//   - swapi_cache_conditional_requests_total
//   - swapi_cache_errors_total{operation}
package cache

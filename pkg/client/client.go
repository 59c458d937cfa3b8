// Package client provides the HTTP client for the Star Wars API with quota
// tracking, optional response caching and typed resource decoding.
package client

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/SobhanAbedi/swfleet/pkg/cache"
	"github.com/SobhanAbedi/swfleet/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for API requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swapi_requests_total",
		Help: "Total API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "swapi_request_duration_seconds",
		Help:    "API request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swapi_errors_total",
		Help: "Total API errors by class",
	}, []string{"class"})
)

// DefaultBaseURL is the public Star Wars API.
const DefaultBaseURL = "https://swapi.dev/api/"

// Client talks to one base address: the public API or a static mirror of it.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	quota      *ratelimit.Tracker
	cache      *cache.Manager
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the address prefix resources are resolved against.
	BaseURL string

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout for a single HTTP round trip.
	Timeout time.Duration

	// Redis enables the response cache and shares quota state when set.
	Redis *redis.Client

	// CacheTTL is the freshness lifetime for responses without cache headers.
	CacheTTL time.Duration

	// Retry configures transport retries. MaxAttempts 1 disables them.
	Retry RetryConfig

	// HTTPClient overrides the default HTTP client (Timeout is then ignored).
	HTTPClient *http.Client
}

// DefaultConfig returns a configuration with caching off and no retries.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:   baseURL,
		UserAgent: "swfleet/0.1.0",
		Timeout:   30 * time.Second,
		CacheTTL:  cache.DefaultTTL,
		Retry:     DefaultRetryConfig(),
	}
}

// New creates a new API client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https (got %q)", cfg.BaseURL)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("base url must include a host (got %q)", cfg.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.HTTPClient == nil && cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive (got %s)", cfg.Timeout)
	}

	if cfg.Retry.MaxAttempts < 1 {
		return nil, fmt.Errorf("retry max attempts must be >= 1 (got %d)", cfg.Retry.MaxAttempts)
	}

	logger := log.With().Str("component", "swapi-client").Logger()

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	c := &Client{
		httpClient: httpClient,
		baseURL:    base,
		config:     cfg,
		logger:     logger,
	}

	if cfg.Redis != nil {
		c.cache = cache.NewManager(cfg.Redis, cfg.CacheTTL)
		c.quota = ratelimit.NewTracker(ratelimit.NewRedisStore(cfg.Redis), logger)
	} else {
		c.quota = ratelimit.NewTracker(ratelimit.NewMemoryStore(), logger)
	}

	return c, nil
}

// BaseURL returns the normalized base address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Do performs a GET-style request through the quota gate and the cache.
// Any non-2xx outcome is returned as an *APIError.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	path := req.URL.Path
	endpoint := endpointLabel(c.baseURL.Path, path)

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	// Step 1: quota gate
	allowed, err := c.quota.ShouldAllowRequest(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("Quota check failed")
		return nil, &APIError{Class: ErrorClassQuota, Path: path, Message: "quota check failed", Err: err}
	}
	if !allowed {
		requestsTotal.WithLabelValues(endpoint, "quota_blocked").Inc()
		errorsTotal.WithLabelValues(string(ErrorClassQuota)).Inc()
		return nil, &APIError{Class: ErrorClassQuota, Path: path, Message: "upstream quota exhausted"}
	}

	// Step 2: cache lookup
	var cached *cache.Entry
	var cacheKey cache.Key
	if c.cache != nil {
		cacheKey = cache.KeyForRequest(req)
		cached, err = c.cache.Get(ctx, cacheKey)
		if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("path", path).Msg("Cache get error")
		}
		if cached != nil && cached.Fresh() {
			cache.CacheHits.WithLabelValues("fresh").Inc()
			c.logger.Debug().Str("path", path).Dur("ttl", cached.TTL()).Msg("Serving fresh cache entry")
			return cache.ToResponse(cached, req), nil
		}
		if cached != nil && cache.AddConditionalHeaders(req, cached) {
			c.logger.Debug().Str("path", path).Str("etag", cached.ETag).Msg("Making conditional request")
		}
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("path", path).Str("method", req.Method).Msg("Executing request")

	// Step 3: execute with retry
	var resp *http.Response
	retryErr := retryWithBackoff(ctx, c.config.Retry, func() (ErrorClass, error) {
		r, reqErr := c.httpClient.Do(req)
		if reqErr != nil {
			c.logger.Error().Err(reqErr).Str("path", path).Msg("HTTP request failed")
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			return ErrorClassNetwork, &APIError{Class: ErrorClassNetwork, Path: path, Message: "request failed", Err: reqErr}
		}

		if err := c.quota.UpdateFromHeaders(ctx, r.StatusCode, r.Header); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to update quota from headers")
		}
		requestsTotal.WithLabelValues(endpoint, strconv.Itoa(r.StatusCode)).Inc()

		if r.StatusCode == http.StatusNotModified && cached != nil {
			resp = r
			return "", nil
		}

		if r.StatusCode < 200 || r.StatusCode >= 300 {
			class := classifyStatus(r.StatusCode)
			errorsTotal.WithLabelValues(string(class)).Inc()
			c.logger.Warn().
				Str("path", path).
				Int("status", r.StatusCode).
				Str("error_class", string(class)).
				Msg("API request error")
			r.Body.Close()
			return class, &APIError{StatusCode: r.StatusCode, Class: class, Path: path, Message: r.Status}
		}

		resp = r
		return "", nil
	})
	if retryErr != nil {
		return nil, retryErr
	}

	// Step 4: 304 Not Modified reuses the cached body
	if resp.StatusCode == http.StatusNotModified {
		resp.Body.Close()
		cache.CacheHits.WithLabelValues("revalidated").Inc()
		expires := cache.FreshUntil(resp.Header, c.cache.DefaultTTL())
		if err := c.cache.Refresh(ctx, cacheKey, cached, expires); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to refresh cache entry")
		}
		c.logger.Debug().Str("path", path).Msg("304 Not Modified - using cache")
		return cache.ToResponse(cached, req), nil
	}

	// Step 5: store fresh responses
	if c.cache != nil && resp.StatusCode == http.StatusOK {
		entry, err := cache.FromResponse(resp, c.cache.DefaultTTL())
		switch {
		case errors.Is(err, cache.ErrNotCacheable):
		case err != nil:
			c.logger.Warn().Err(err).Msg("Failed to create cache entry")
		default:
			if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to cache response")
			}
		}
	}

	return resp, nil
}

// endpointLabel reduces a request path to its collection name so metric
// cardinality stays bounded, e.g. "/api/films/4/" becomes "films".
func endpointLabel(basePath, path string) string {
	rel := strings.TrimPrefix(path, basePath)
	rel = strings.Trim(rel, "/")
	if rel == "" {
		return "root"
	}
	if i := strings.IndexByte(rel, '/'); i >= 0 {
		rel = rel[:i]
	}
	return rel
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Quota returns the quota tracker.
func (c *Client) Quota() *ratelimit.Tracker {
	return c.quota
}

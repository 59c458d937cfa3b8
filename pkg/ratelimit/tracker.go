package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Reset values above this are read as Unix timestamps rather than seconds from now.
const epochThreshold = 1_000_000_000

var (
	quotaRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "swapi_quota_remaining",
		Help: "Requests remaining in the current upstream quota window",
	})

	quotaBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swapi_quota_blocks_total",
		Help: "Total number of requests blocked because the upstream quota was exhausted",
	})
)

// Tracker gates requests on the upstream quota.
type Tracker struct {
	store  StateStore
	logger zerolog.Logger
}

// NewTracker creates a tracker. A nil store keeps the state in memory.
func NewTracker(store StateStore, logger zerolog.Logger) *Tracker {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Tracker{
		store:  store,
		logger: logger,
	}
}

// State returns the last recorded quota.
func (t *Tracker) State(ctx context.Context) (State, error) {
	return t.store.Load(ctx)
}

// ShouldAllowRequest returns false while the quota is exhausted.
func (t *Tracker) ShouldAllowRequest(ctx context.Context) (bool, error) {
	state, err := t.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("get quota state: %w", err)
	}

	if state.Exhausted() {
		t.logger.Error().
			Int("remaining", state.Remaining).
			Dur("wait_duration", state.TimeUntilReset()).
			Msg("Upstream quota exhausted - blocking request")
		quotaBlocksTotal.Inc()
		return false, nil
	}

	return true, nil
}

// UpdateFromHeaders records the quota reported by a response. Responses
// without quota headers leave the state untouched.
func (t *Tracker) UpdateFromHeaders(ctx context.Context, statusCode int, headers http.Header) error {
	now := time.Now()

	if statusCode == http.StatusTooManyRequests {
		if retry := headers.Get(HeaderRetryAfter); retry != "" {
			resetAt, err := parseRetryAfter(retry, now)
			if err != nil {
				return err
			}
			return t.save(ctx, State{Known: true, Remaining: 0, ResetAt: resetAt, LastUpdate: now})
		}
	}

	remainStr := headers.Get(HeaderRemaining)
	if remainStr == "" {
		return nil
	}

	remaining, err := strconv.Atoi(strings.TrimSpace(remainStr))
	if err != nil {
		return fmt.Errorf("parse %s header: %w", HeaderRemaining, err)
	}

	state := State{Known: true, Remaining: remaining, LastUpdate: now}

	if limitStr := headers.Get(HeaderLimit); limitStr != "" {
		if limit, err := strconv.Atoi(strings.TrimSpace(limitStr)); err == nil {
			state.Limit = limit
		}
	}

	resetStr := headers.Get(HeaderReset)
	if resetStr == "" {
		return fmt.Errorf("%s header missing", HeaderReset)
	}
	reset, err := strconv.ParseInt(strings.TrimSpace(resetStr), 10, 64)
	if err != nil {
		return fmt.Errorf("parse %s header: %w", HeaderReset, err)
	}
	if reset > epochThreshold {
		state.ResetAt = time.Unix(reset, 0)
	} else {
		state.ResetAt = now.Add(time.Duration(reset) * time.Second)
	}

	return t.save(ctx, state)
}

func (t *Tracker) save(ctx context.Context, state State) error {
	if err := t.store.Save(ctx, state); err != nil {
		return err
	}

	quotaRemaining.Set(float64(state.Remaining))

	switch {
	case state.Exhausted():
		t.logger.Error().
			Int("remaining", state.Remaining).
			Time("reset_at", state.ResetAt).
			Msg("Upstream quota CRITICAL - requests will be blocked")
	case state.Low():
		t.logger.Warn().
			Int("remaining", state.Remaining).
			Time("reset_at", state.ResetAt).
			Msg("Upstream quota low")
	default:
		t.logger.Debug().
			Int("remaining", state.Remaining).
			Time("reset_at", state.ResetAt).
			Msg("Upstream quota updated")
	}

	return nil
}

func parseRetryAfter(value string, now time.Time) (time.Time, error) {
	if secs, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		return now.Add(time.Duration(secs) * time.Second), nil
	}
	at, err := http.ParseTime(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s header: %w", HeaderRetryAfter, err)
	}
	return at, nil
}

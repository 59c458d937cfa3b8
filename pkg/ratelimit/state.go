// Package ratelimit tracks the upstream request quota advertised by the API
// in X-RateLimit-* and Retry-After headers and gates requests once it is spent.
package ratelimit

import "time"

// Response headers read by the tracker.
const (
	HeaderRemaining  = "X-RateLimit-Remaining"
	HeaderLimit      = "X-RateLimit-Limit"
	HeaderReset      = "X-RateLimit-Reset"
	HeaderRetryAfter = "Retry-After"
)

// Quota thresholds.
const (
	// QuotaCritical blocks requests while fewer requests than this remain
	// before the reset time.
	QuotaCritical = 2

	// QuotaWarning logs a warning while fewer requests than this remain.
	QuotaWarning = 20
)

// State is the last quota reported by the API.
type State struct {
	// Known is false until a response carried quota headers.
	Known bool `json:"known"`

	// Remaining is the number of requests left in the current window.
	Remaining int `json:"remaining"`

	// Limit is the window size, 0 when the API does not report it.
	Limit int `json:"limit"`

	// ResetAt is when the window resets.
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is when the state was recorded.
	LastUpdate time.Time `json:"last_update"`
}

// Exhausted reports whether requests must be blocked now.
func (s *State) Exhausted() bool {
	return s.Known && s.Remaining < QuotaCritical && s.TimeUntilReset() > 0
}

// Low reports whether the quota is in the warning band.
func (s *State) Low() bool {
	return s.Known && s.Remaining < QuotaWarning && !s.Exhausted()
}

// TimeUntilReset returns the wait until the window resets, or 0 if it has passed.
func (s *State) TimeUntilReset() time.Duration {
	if d := time.Until(s.ResetAt); d > 0 {
		return d
	}
	return 0
}

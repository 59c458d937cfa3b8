package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestTracker() *Tracker {
	return NewTracker(nil, zerolog.Nop())
}

func TestUpdateFromHeaders(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		headers       map[string]string
		wantErr       bool
		wantKnown     bool
		wantRemaining int
		wantLimit     int
	}{
		{
			name:      "no quota headers",
			status:    http.StatusOK,
			headers:   map[string]string{},
			wantKnown: false,
		},
		{
			name:          "relative reset",
			status:        http.StatusOK,
			headers:       map[string]string{HeaderRemaining: "9990", HeaderLimit: "10000", HeaderReset: "3600"},
			wantKnown:     true,
			wantRemaining: 9990,
			wantLimit:     10000,
		},
		{
			name:          "epoch reset",
			status:        http.StatusOK,
			headers:       map[string]string{HeaderRemaining: "5", HeaderReset: strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10)},
			wantKnown:     true,
			wantRemaining: 5,
		},
		{
			name:          "too many requests with retry-after",
			status:        http.StatusTooManyRequests,
			headers:       map[string]string{HeaderRetryAfter: "30"},
			wantKnown:     true,
			wantRemaining: 0,
		},
		{
			name:    "invalid remaining",
			status:  http.StatusOK,
			headers: map[string]string{HeaderRemaining: "lots", HeaderReset: "60"},
			wantErr: true,
		},
		{
			name:    "missing reset",
			status:  http.StatusOK,
			headers: map[string]string{HeaderRemaining: "10"},
			wantErr: true,
		},
		{
			name:    "invalid retry-after",
			status:  http.StatusTooManyRequests,
			headers: map[string]string{HeaderRetryAfter: "soon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := newTestTracker()
			ctx := context.Background()

			headers := http.Header{}
			for k, v := range tt.headers {
				headers.Set(k, v)
			}

			err := tracker.UpdateFromHeaders(ctx, tt.status, headers)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			state, err := tracker.State(ctx)
			if err != nil {
				t.Fatalf("State() error = %v", err)
			}
			if state.Known != tt.wantKnown {
				t.Errorf("Known = %v, want %v", state.Known, tt.wantKnown)
			}
			if state.Remaining != tt.wantRemaining {
				t.Errorf("Remaining = %d, want %d", state.Remaining, tt.wantRemaining)
			}
			if state.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", state.Limit, tt.wantLimit)
			}
			if tt.wantKnown && state.TimeUntilReset() <= 0 {
				t.Error("ResetAt should be in the future")
			}
		})
	}
}

func TestShouldAllowRequest(t *testing.T) {
	tests := []struct {
		name      string
		remaining string
		reset     string
		allowed   bool
	}{
		{name: "healthy", remaining: "100", reset: "60", allowed: true},
		{name: "low but allowed", remaining: "10", reset: "60", allowed: true},
		{name: "exhausted", remaining: "1", reset: "60", allowed: false},
		{name: "exhausted window already reset", remaining: "0", reset: "0", allowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := newTestTracker()
			ctx := context.Background()

			headers := http.Header{}
			headers.Set(HeaderRemaining, tt.remaining)
			headers.Set(HeaderReset, tt.reset)
			if err := tracker.UpdateFromHeaders(ctx, http.StatusOK, headers); err != nil {
				t.Fatalf("UpdateFromHeaders() error = %v", err)
			}

			allowed, err := tracker.ShouldAllowRequest(ctx)
			if err != nil {
				t.Fatalf("ShouldAllowRequest() error = %v", err)
			}
			if allowed != tt.allowed {
				t.Errorf("ShouldAllowRequest() = %v, want %v", allowed, tt.allowed)
			}
		})
	}
}

func TestShouldAllowRequest_UnknownState(t *testing.T) {
	allowed, err := newTestTracker().ShouldAllowRequest(context.Background())
	if err != nil {
		t.Fatalf("ShouldAllowRequest() error = %v", err)
	}
	if !allowed {
		t.Error("requests should be allowed before any quota is known")
	}
}

package client

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/SobhanAbedi/swfleet/pkg/models"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorClass
	}{
		{http.StatusBadRequest, ErrorClassClient},
		{http.StatusNotFound, ErrorClassClient},
		{http.StatusTooManyRequests, ErrorClassQuota},
		{http.StatusInternalServerError, ErrorClassServer},
		{http.StatusBadGateway, ErrorClassServer},
		{http.StatusServiceUnavailable, ErrorClassServer},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			if got := classifyStatus(tt.status); got != tt.want {
				t.Errorf("classifyStatus(%d) = %s, want %s", tt.status, got, tt.want)
			}
		})
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		class ErrorClass
		want  bool
	}{
		{ErrorClassServer, true},
		{ErrorClassNetwork, true},
		{ErrorClassClient, false},
		{ErrorClassQuota, false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.class), func(t *testing.T) {
			if got := shouldRetry(tt.class); got != tt.want {
				t.Errorf("shouldRetry(%q) = %v, want %v", tt.class, got, tt.want)
			}
		})
	}
}

func TestAPIError(t *testing.T) {
	cause := errors.New("connection reset")
	err := &APIError{
		StatusCode: 0,
		Class:      ErrorClassNetwork,
		Path:       "/api/films/1/",
		Message:    "request failed",
		Err:        cause,
	}

	want := "swapi network error (status 0) for /api/films/1/: request failed: connection reset"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Error("APIError should unwrap to its cause")
	}
	if !errors.Is(err, models.ErrNetwork) {
		t.Error("APIError should match models.ErrNetwork")
	}
	if errors.Is(err, models.ErrParse) {
		t.Error("APIError should not match models.ErrParse")
	}

	wrapped := fmt.Errorf("fetch film 1: %w", &APIError{StatusCode: 404, Class: ErrorClassClient, Path: "/films/1/", Message: "404 Not Found"})
	if !errors.Is(wrapped, models.ErrNetwork) {
		t.Error("wrapped APIError should match models.ErrNetwork")
	}
}

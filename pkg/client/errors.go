package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/SobhanAbedi/swfleet/pkg/models"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry backoff.
	ErrContextCancelled = errors.New("context cancelled")
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx responses other than 429.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx responses.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassQuota represents 429 responses and requests blocked by the quota tracker.
	ErrorClassQuota ErrorClass = "quota"

	// ErrorClassNetwork represents transport failures and timeouts.
	ErrorClassNetwork ErrorClass = "network"
)

// APIError is a failed request to the remote API. It matches models.ErrNetwork.
type APIError struct {
	StatusCode int
	Class      ErrorClass
	Path       string
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("swapi %s error (status %d) for %s: %s: %v",
			e.Class, e.StatusCode, e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("swapi %s error (status %d) for %s: %s",
		e.Class, e.StatusCode, e.Path, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is reports APIError as models.ErrNetwork.
func (e *APIError) Is(target error) bool {
	return target == models.ErrNetwork
}

// classifyStatus maps a non-success status code to an error class.
func classifyStatus(status int) ErrorClass {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorClassQuota
	case status >= 500:
		return ErrorClassServer
	default:
		return ErrorClassClient
	}
}

// shouldRetry determines if an error class is worth another attempt.
func shouldRetry(class ErrorClass) bool {
	switch class {
	case ErrorClassServer, ErrorClassNetwork:
		return true
	default:
		// 4xx will not change on retry; quota waits for the reset window
		return false
	}
}

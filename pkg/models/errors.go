package models

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every error surfaced by swfleet matches one of these with errors.Is.
var (
	// ErrInvalidIDType is returned when an identifier is neither text nor a number.
	ErrInvalidIDType = errors.New("invalid id type")

	// ErrInvalidIDRange is returned when an identifier is numeric but out of range.
	ErrInvalidIDRange = errors.New("invalid id range")

	// ErrNetwork is returned when the remote API could not be reached or
	// answered with a non-success status.
	ErrNetwork = errors.New("network error")

	// ErrParse is returned when a response field or locator is missing or malformed.
	ErrParse = errors.New("parse error")

	// ErrNotFound is returned when a lookup targets a record that is not populated.
	ErrNotFound = errors.New("not found")
)

// ParseError describes a field or locator that could not be parsed.
type ParseError struct {
	Field string
	Value string
	Err   error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("parse %s %q", e.Field, e.Value)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports ParseError as ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

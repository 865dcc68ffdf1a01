package bank

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned by the store when a write loses a uniqueness race.
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("bank store unavailable")
)

const (
	CodeInvalidIntervalHours = "invalid_interval_hours"
	CodeInvalidEnabled       = "invalid_enabled"
	CodeProviderRequired     = "provider_required"
	CodeUnknownProvider      = "unknown_provider"
)

// ValidationError rejects caller input before any store access.
type ValidationError struct {
	Code  string
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: invalid %s", e.Code, e.Field)
	}

	return fmt.Sprintf("%s: invalid %s: %v", e.Code, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(code, field string, err error) *ValidationError {
	return &ValidationError{Code: code, Field: field, Err: err}
}

// Degradable reports whether err is a store outage the bank endpoints paper over.
func Degradable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded)
}

package transaction

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("transaction not found")
	// ErrUnavailable marks failures reaching or querying the backing store.
	ErrUnavailable = errors.New("transaction store unavailable")
)

// Validation error codes.
const (
	CodeInvalidDate        = "invalid_date"
	CodeInvalidType        = "invalid_type"
	CodeInvalidMinAmount   = "invalid_min_amount"
	CodeInvalidMaxAmount   = "invalid_max_amount"
	CodeInvalidPage        = "invalid_page"
	CodeInvalidPageSize    = "invalid_page_size"
	CodeInvalidAmount      = "invalid_amount"
	CodeInvalidCategory    = "invalid_category"
	CodeInvalidDescription = "invalid_description"
)

// ValidationError reports bad caller input. It is raised before any store access.
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

// Degradable reports whether err belongs to the store failure category that read
// paths recover from: an unreachable store or an expired store deadline.
func Degradable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded)
}

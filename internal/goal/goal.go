package goal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DefaultImage = "/vercel.svg"

// Goal is a savings target.
type Goal struct {
	ID            uuid.UUID
	UserID        int64
	Title         string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	DueDate       *time.Time // calendar date, UTC midnight
	Description   string
	Image         string
	CreatedAt     time.Time
}

var ErrUnavailable = errors.New("goal store unavailable")

type ValidationError struct {
	Code  string
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid %s: %v", e.Code, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func Degradable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded)
}

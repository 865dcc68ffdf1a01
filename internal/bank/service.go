package bank

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists schedules and connections.
//
//go:generate mockgen -source=service.go -destination=repository_mock.go -package=bank
type Repository interface {
	// GetSchedule returns ErrNotFound when the user has no schedule yet.
	GetSchedule(ctx context.Context, userID int64) (*Schedule, error)
	// InsertScheduleIfAbsent stores s and fills in its ID, or returns ErrConflict
	// when the user already has a schedule. It never creates a second row.
	InsertScheduleIfAbsent(ctx context.Context, s *Schedule) error
	UpdateSchedule(ctx context.Context, s *Schedule) error
	// DueSchedules returns enabled schedules whose next run is at or before now.
	DueSchedules(ctx context.Context, now time.Time, limit int) ([]*Schedule, error)
	// ClaimSchedule moves next_run_at from prev to next only if it still equals
	// prev. It reports whether this caller won the claim.
	ClaimSchedule(ctx context.Context, id uuid.UUID, prev, next time.Time) (bool, error)

	ListConnections(ctx context.Context, userID int64) ([]*Connection, error)
	CreateConnection(ctx context.Context, c *Connection) error
	GetConnection(ctx context.Context, userID int64, id uuid.UUID) (*Connection, error)
	UpdateConnection(ctx context.Context, c *Connection) error
}

// DefaultStoreTimeout applies when Options.StoreTimeout is not set.
const DefaultStoreTimeout = 3 * time.Second

// Options configures the schedule and connection services.
type Options struct {
	StoreTimeout time.Duration
	Now          func() time.Time
}

func (o Options) withDefaults() Options {
	if o.StoreTimeout <= 0 {
		o.StoreTimeout = DefaultStoreTimeout
	}

	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}

	return o
}

package bank

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// maxCreateAttempts bounds the fetch/insert loop in GetOrCreate. Two attempts
// suffice unless the winning row is deleted in between.
const maxCreateAttempts = 3

// ScheduleManager reads and updates per-user sync schedules.
type ScheduleManager struct {
	repo    Repository
	timeout time.Duration
	now     func() time.Time
}

func NewScheduleManager(repo Repository, opts Options) *ScheduleManager {
	opts = opts.withDefaults()

	return &ScheduleManager{
		repo:    repo,
		timeout: opts.StoreTimeout,
		now:     opts.Now,
	}
}

// GetOrCreate returns the user's schedule, creating the default one on first
// access. Concurrent first calls for the same user all return the same row.
// When the store is unreachable a transient default is returned instead.
func (m *ScheduleManager) GetOrCreate(ctx context.Context, userID int64) (*Schedule, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	s, err := m.getOrCreate(ctx, userID)
	if err != nil {
		if !Degradable(err) {
			return nil, err
		}

		slog.Warn("schedule degraded to transient default", "user_id", userID, "error", err)

		return DefaultSchedule(userID), nil
	}

	return s, nil
}

func (m *ScheduleManager) getOrCreate(ctx context.Context, userID int64) (*Schedule, error) {
	for range maxCreateAttempts {
		s, err := m.repo.GetSchedule(ctx, userID)
		if err == nil {
			return s, nil
		}

		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("getting schedule: %w", err)
		}

		s = DefaultSchedule(userID)

		err = m.repo.InsertScheduleIfAbsent(ctx, s)
		if err == nil {
			return s, nil
		}

		if !errors.Is(err, ErrConflict) {
			return nil, fmt.Errorf("creating schedule: %w", err)
		}
	}

	return nil, fmt.Errorf("creating schedule for user %d: %w", userID, ErrConflict)
}

// SetSchedule enables or disables automatic sync. Enabling sets the next run
// one interval from now; disabling clears it.
func (m *ScheduleManager) SetSchedule(ctx context.Context, userID int64, enabled bool, intervalHours int) (*Schedule, error) {
	if intervalHours <= 0 {
		return nil, invalid(CodeInvalidIntervalHours, "intervalHours",
			fmt.Errorf("must be positive, got %d", intervalHours))
	}

	if intervalHours > MaxIntervalHours {
		return nil, invalid(CodeInvalidIntervalHours, "intervalHours",
			fmt.Errorf("must be at most %d, got %d", MaxIntervalHours, intervalHours))
	}

	s, err := m.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.apply(enabled, intervalHours, m.now())

	if s.Transient() {
		return s, nil
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if err := m.repo.UpdateSchedule(ctx, s); err != nil {
		if !Degradable(err) {
			return nil, fmt.Errorf("updating schedule: %w", err)
		}

		slog.Warn("schedule update not persisted", "user_id", userID, "error", err)

		s.ID = uuid.Nil
	}

	return s, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetflow/internal/bank"
	"github.com/MrJamesThe3rd/budgetflow/internal/database"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func storeErr(op string, err error) error {
	switch {
	case database.IsUniqueViolation(err):
		return fmt.Errorf("%s: %w: %w", op, bank.ErrConflict, err)
	case database.IsUnavailable(err):
		return fmt.Errorf("%s: %w: %w", op, bank.ErrUnavailable, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}

const selectScheduleColumns = `id, user_id, enabled, interval_hours, next_run_at`

func scanSchedule(s scanner) (*bank.Schedule, error) {
	var (
		sched bank.Schedule
		next  sql.NullTime
	)

	if err := s.Scan(&sched.ID, &sched.UserID, &sched.Enabled, &sched.IntervalHours, &next); err != nil {
		return nil, err
	}

	if next.Valid {
		t := next.Time.UTC()
		sched.NextRunAt = &t
	}

	return &sched, nil
}

func (s *Store) GetSchedule(ctx context.Context, userID int64) (*bank.Schedule, error) {
	query := `SELECT ` + selectScheduleColumns + ` FROM bank_sync_schedules WHERE user_id = $1`

	sched, err := scanSchedule(s.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, bank.ErrNotFound
		}

		return nil, storeErr("getting schedule", err)
	}

	return sched, nil
}

// InsertScheduleIfAbsent relies on the UNIQUE (user_id) constraint: when a row
// already exists nothing is inserted and no row is returned.
func (s *Store) InsertScheduleIfAbsent(ctx context.Context, sched *bank.Schedule) error {
	query := `
		INSERT INTO bank_sync_schedules (user_id, enabled, interval_hours, next_run_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id) DO NOTHING
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		sched.UserID,
		sched.Enabled,
		sched.IntervalHours,
		sched.NextRunAt,
	).Scan(&sched.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return bank.ErrConflict
		}

		return storeErr("inserting schedule", err)
	}

	return nil
}

func (s *Store) UpdateSchedule(ctx context.Context, sched *bank.Schedule) error {
	query := `
		UPDATE bank_sync_schedules
		SET enabled = $1, interval_hours = $2, next_run_at = $3, updated_at = NOW()
		WHERE id = $4
	`

	res, err := s.db.ExecContext(ctx, query, sched.Enabled, sched.IntervalHours, sched.NextRunAt, sched.ID)
	if err != nil {
		return storeErr("updating schedule", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return bank.ErrNotFound
	}

	return nil
}

func (s *Store) DueSchedules(ctx context.Context, now time.Time, limit int) ([]*bank.Schedule, error) {
	query := `SELECT ` + selectScheduleColumns + `
		FROM bank_sync_schedules
		WHERE enabled AND next_run_at <= $1
		ORDER BY next_run_at ASC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, storeErr("listing due schedules", err)
	}
	defer rows.Close()

	var due []*bank.Schedule

	for rows.Next() {
		sched, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning schedule: %w", err)
		}

		due = append(due, sched)
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating schedule rows", err)
	}

	return due, nil
}

func (s *Store) ClaimSchedule(ctx context.Context, id uuid.UUID, prev, next time.Time) (bool, error) {
	query := `
		UPDATE bank_sync_schedules
		SET next_run_at = $1, updated_at = NOW()
		WHERE id = $2 AND enabled AND next_run_at = $3
	`

	res, err := s.db.ExecContext(ctx, query, next, id, prev)
	if err != nil {
		return false, storeErr("claiming schedule", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading claim result: %w", err)
	}

	return n == 1, nil
}

const selectConnectionColumns = `id, user_id, provider_id, provider_name, status, last_synced_at, created_at`

func scanConnection(s scanner) (*bank.Connection, error) {
	var (
		c      bank.Connection
		status string
		synced sql.NullTime
	)

	if err := s.Scan(&c.ID, &c.UserID, &c.ProviderID, &c.ProviderName, &status, &synced, &c.CreatedAt); err != nil {
		return nil, err
	}

	c.Status = bank.Status(status)

	if synced.Valid {
		t := synced.Time.UTC()
		c.LastSyncedAt = &t
	}

	return &c, nil
}

func (s *Store) ListConnections(ctx context.Context, userID int64) ([]*bank.Connection, error) {
	query := `SELECT ` + selectConnectionColumns + `
		FROM bank_connections
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, storeErr("listing connections", err)
	}
	defer rows.Close()

	conns := []*bank.Connection{}

	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning connection: %w", err)
		}

		conns = append(conns, c)
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating connection rows", err)
	}

	return conns, nil
}

func (s *Store) CreateConnection(ctx context.Context, c *bank.Connection) error {
	query := `
		INSERT INTO bank_connections (user_id, provider_id, provider_name, status, last_synced_at, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		c.UserID,
		c.ProviderID,
		c.ProviderName,
		c.Status,
		c.LastSyncedAt,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return storeErr("creating connection", err)
	}

	return nil
}

func (s *Store) GetConnection(ctx context.Context, userID int64, id uuid.UUID) (*bank.Connection, error) {
	query := `SELECT ` + selectConnectionColumns + ` FROM bank_connections WHERE id = $1 AND user_id = $2`

	c, err := scanConnection(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, bank.ErrNotFound
		}

		return nil, storeErr("getting connection", err)
	}

	return c, nil
}

func (s *Store) UpdateConnection(ctx context.Context, c *bank.Connection) error {
	query := `
		UPDATE bank_connections
		SET status = $1, last_synced_at = $2
		WHERE id = $3 AND user_id = $4
	`

	res, err := s.db.ExecContext(ctx, query, c.Status, c.LastSyncedAt, c.ID, c.UserID)
	if err != nil {
		return storeErr("updating connection", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return bank.ErrNotFound
	}

	return nil
}

package memstore

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetflow/internal/bank"
)

func copySchedule(s *bank.Schedule) *bank.Schedule {
	c := *s
	if s.NextRunAt != nil {
		t := *s.NextRunAt
		c.NextRunAt = &t
	}

	return &c
}

func copyConnection(c *bank.Connection) *bank.Connection {
	out := *c
	if c.LastSyncedAt != nil {
		t := *c.LastSyncedAt
		out.LastSyncedAt = &t
	}

	return &out
}

func (s *Store) GetSchedule(ctx context.Context, userID int64) (*bank.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx, bank.ErrUnavailable); err != nil {
		return nil, err
	}

	sched, ok := s.schedules[userID]
	if !ok {
		return nil, bank.ErrNotFound
	}

	return copySchedule(sched), nil
}

func (s *Store) InsertScheduleIfAbsent(ctx context.Context, sched *bank.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx, bank.ErrUnavailable); err != nil {
		return err
	}

	if _, ok := s.schedules[sched.UserID]; ok {
		return bank.ErrConflict
	}

	sched.ID = uuid.New()
	s.schedules[sched.UserID] = copySchedule(sched)

	return nil
}

func (s *Store) UpdateSchedule(ctx context.Context, sched *bank.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx, bank.ErrUnavailable); err != nil {
		return err
	}

	cur, ok := s.schedules[sched.UserID]
	if !ok || cur.ID != sched.ID {
		return bank.ErrNotFound
	}

	s.schedules[sched.UserID] = copySchedule(sched)

	return nil
}

func (s *Store) DueSchedules(ctx context.Context, now time.Time, limit int) ([]*bank.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx, bank.ErrUnavailable); err != nil {
		return nil, err
	}

	var due []*bank.Schedule

	for _, sched := range s.schedules {
		if sched.Enabled && sched.NextRunAt != nil && !sched.NextRunAt.After(now) {
			due = append(due, copySchedule(sched))
		}
	}

	slices.SortFunc(due, func(a, b *bank.Schedule) int {
		return a.NextRunAt.Compare(*b.NextRunAt)
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	return due, nil
}

func (s *Store) ClaimSchedule(ctx context.Context, id uuid.UUID, prev, next time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx, bank.ErrUnavailable); err != nil {
		return false, err
	}

	for _, sched := range s.schedules {
		if sched.ID != id {
			continue
		}

		if !sched.Enabled || sched.NextRunAt == nil || !sched.NextRunAt.Equal(prev) {
			return false, nil
		}

		sched.NextRunAt = &next

		return true, nil
	}

	return false, nil
}

func (s *Store) ListConnections(ctx context.Context, userID int64) ([]*bank.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx, bank.ErrUnavailable); err != nil {
		return nil, err
	}

	conns := []*bank.Connection{}

	for _, c := range s.connections {
		if c.UserID == userID {
			conns = append(conns, copyConnection(c))
		}
	}

	slices.SortFunc(conns, func(a, b *bank.Connection) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}

		return compareIDs(b.ID, a.ID)
	})

	return conns, nil
}

func compareIDs(a, b uuid.UUID) int {
	return slices.Compare(a[:], b[:])
}

func (s *Store) CreateConnection(ctx context.Context, c *bank.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx, bank.ErrUnavailable); err != nil {
		return err
	}

	c.ID = uuid.New()
	c.CreatedAt = s.now()
	s.connections[c.ID] = copyConnection(c)

	return nil
}

func (s *Store) GetConnection(ctx context.Context, userID int64, id uuid.UUID) (*bank.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx, bank.ErrUnavailable); err != nil {
		return nil, err
	}

	c, ok := s.connections[id]
	if !ok || c.UserID != userID {
		return nil, bank.ErrNotFound
	}

	return copyConnection(c), nil
}

func (s *Store) UpdateConnection(ctx context.Context, c *bank.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx, bank.ErrUnavailable); err != nil {
		return err
	}

	cur, ok := s.connections[c.ID]
	if !ok || cur.UserID != c.UserID {
		return bank.ErrNotFound
	}

	s.connections[c.ID] = copyConnection(c)

	return nil
}

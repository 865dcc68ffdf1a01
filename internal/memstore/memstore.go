// Package memstore keeps every aggregate in process memory. It backs
// STORE_DRIVER=memory and the end-to-end handler tests.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetflow/internal/bank"
	"github.com/MrJamesThe3rd/budgetflow/internal/goal"
	"github.com/MrJamesThe3rd/budgetflow/internal/transaction"
)

type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	down bool

	transactions []*transaction.Transaction
	goals        []*goal.Goal
	connections  map[uuid.UUID]*bank.Connection
	schedules    map[int64]*bank.Schedule // one per user
}

func New() *Store {
	return &Store{
		now:         func() time.Time { return time.Now().UTC() },
		connections: make(map[uuid.UUID]*bank.Connection),
		schedules:   make(map[int64]*bank.Schedule),
	}
}

// WithClock replaces the clock used for created_at stamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// SetUnavailable makes every call fail as if the database were unreachable.
func (s *Store) SetUnavailable(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.down = down
}

// Ping reports the simulated availability.
func (s *Store) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.down {
		return fmt.Errorf("memstore: %w", transaction.ErrUnavailable)
	}

	return nil
}

func (s *Store) check(ctx context.Context, unavailable error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.down {
		return fmt.Errorf("memstore: %w", unavailable)
	}

	return nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx, transaction.ErrUnavailable); err != nil {
		return err
	}

	tx.ID = uuid.New()
	tx.CreatedAt = s.now()

	stored := *tx
	s.transactions = append(s.transactions, &stored)

	return nil
}

// matching returns copies of the user's transactions that satisfy filter,
// newest first. Callers hold the read lock.
func (s *Store) matching(userID int64, filter transaction.Filter) []*transaction.Transaction {
	var out []*transaction.Transaction

	for _, tx := range s.transactions {
		if tx.UserID != userID || !filter.Match(tx) {
			continue
		}

		c := *tx
		out = append(out, &c)
	}

	slices.SortFunc(out, transaction.Newer)

	return out
}

func (s *Store) FindTransactions(
	ctx context.Context, userID int64, filter transaction.Filter, window transaction.Window,
) ([]*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx, transaction.ErrUnavailable); err != nil {
		return nil, err
	}

	out := transaction.Slice(s.matching(userID, filter), window)
	if out == nil {
		out = []*transaction.Transaction{}
	}

	return out, nil
}

func (s *Store) CountTransactions(ctx context.Context, userID int64, filter transaction.Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx, transaction.ErrUnavailable); err != nil {
		return 0, err
	}

	return len(s.matching(userID, filter)), nil
}

func (s *Store) SumByType(ctx context.Context, userID int64) (map[transaction.Type]decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx, transaction.ErrUnavailable); err != nil {
		return nil, err
	}

	totals := make(map[transaction.Type]decimal.Decimal)

	for _, tx := range s.transactions {
		if tx.UserID != userID {
			continue
		}

		totals[tx.Type] = totals[tx.Type].Add(tx.Amount)
	}

	return totals, nil
}

func (s *Store) CreateGoal(ctx context.Context, g *goal.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx, goal.ErrUnavailable); err != nil {
		return err
	}

	g.ID = uuid.New()
	g.CreatedAt = s.now()

	stored := *g
	s.goals = append(s.goals, &stored)

	return nil
}

func (s *Store) ListGoals(ctx context.Context, userID int64) ([]*goal.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx, goal.ErrUnavailable); err != nil {
		return nil, err
	}

	out := []*goal.Goal{}

	for i := len(s.goals) - 1; i >= 0; i-- {
		if g := s.goals[i]; g.UserID == userID {
			c := *g
			out = append(out, &c)
		}
	}

	return out, nil
}

package memstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetflow/internal/bank"
	"github.com/MrJamesThe3rd/budgetflow/internal/memstore"
	"github.com/MrJamesThe3rd/budgetflow/internal/transaction"
)

func steppingClock(start time.Time, step time.Duration) func() time.Time {
	next := start

	return func() time.Time {
		t := next
		next = next.Add(step)

		return t
	}
}

func TestStore_FindTransactions(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := memstore.New().WithClock(steppingClock(start, time.Hour))

	for i := range 10 {
		typ := transaction.TypeExpense
		if i%2 == 0 {
			typ = transaction.TypeIncome
		}

		require.NoError(t, store.CreateTransaction(ctx, &transaction.Transaction{
			UserID:   1,
			Type:     typ,
			Amount:   decimal.NewFromInt(int64(i)),
			Category: "misc",
		}))
	}

	require.NoError(t, store.CreateTransaction(ctx, &transaction.Transaction{
		UserID: 2, Type: transaction.TypeIncome, Amount: decimal.NewFromInt(1000), Category: "misc",
	}))

	all, err := store.FindTransactions(ctx, 1, transaction.Filter{}, transaction.Window{})
	require.NoError(t, err)
	require.Len(t, all, 10)

	for i := 1; i < len(all); i++ {
		assert.True(t, all[i-1].CreatedAt.After(all[i].CreatedAt))
	}

	page, err := store.FindTransactions(ctx, 1, transaction.Filter{}, transaction.Window{Offset: 8, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	income := transaction.TypeIncome

	n, err := store.CountTransactions(ctx, 1, transaction.Filter{Type: &income})
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	totals, err := store.SumByType(ctx, 1)
	require.NoError(t, err)
	assert.True(t, totals[transaction.TypeIncome].Equal(decimal.NewFromInt(20)))
	assert.True(t, totals[transaction.TypeExpense].Equal(decimal.NewFromInt(25)))
}

func TestStore_ReturnedRowsAreCopies(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	require.NoError(t, store.CreateTransaction(ctx, &transaction.Transaction{
		UserID: 1, Type: transaction.TypeIncome, Amount: decimal.NewFromInt(1), Category: "a",
	}))

	got, err := store.FindTransactions(ctx, 1, transaction.Filter{}, transaction.Window{})
	require.NoError(t, err)

	got[0].Category = "mutated"

	again, err := store.FindTransactions(ctx, 1, transaction.Filter{}, transaction.Window{})
	require.NoError(t, err)
	assert.Equal(t, "a", again[0].Category)
}

func TestStore_InsertScheduleIfAbsent(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	first := bank.DefaultSchedule(1)
	require.NoError(t, store.InsertScheduleIfAbsent(ctx, first))

	second := bank.DefaultSchedule(1)
	assert.ErrorIs(t, store.InsertScheduleIfAbsent(ctx, second), bank.ErrConflict)

	got, err := store.GetSchedule(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestStore_ClaimSchedule(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	due := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &bank.Schedule{UserID: 1, Enabled: true, IntervalHours: 1, NextRunAt: &due}
	require.NoError(t, store.InsertScheduleIfAbsent(ctx, s))

	next := due.Add(time.Hour)

	ok, err := store.ClaimSchedule(ctx, s.ID, due, next)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.ClaimSchedule(ctx, s.ID, due, next)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	store.SetUnavailable(true)

	_, err := store.CountTransactions(ctx, 1, transaction.Filter{})
	assert.ErrorIs(t, err, transaction.ErrUnavailable)

	_, err = store.GetSchedule(ctx, 1)
	assert.ErrorIs(t, err, bank.ErrUnavailable)

	assert.Error(t, store.Ping(ctx))
}

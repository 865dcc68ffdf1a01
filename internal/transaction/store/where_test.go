package store

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/budgetflow/internal/transaction"
)

func TestWhere(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	expense := transaction.TypeExpense
	minAmount := decimal.NewFromInt(5)

	type testCase struct {
		name      string
		filter    transaction.Filter
		wantQuery string
		wantArgs  []any
	}

	tests := []testCase{
		{
			name:      "UserOnly",
			filter:    transaction.Filter{},
			wantQuery: " WHERE user_id = $1",
			wantArgs:  []any{int64(4)},
		},
		{
			name: "PlaceholdersFollowPresentFields",
			filter: transaction.Filter{
				DateFrom:   &from,
				Categories: []string{"food", "rent"},
				Type:       &expense,
				MinAmount:  &minAmount,
			},
			wantQuery: " WHERE user_id = $1 AND created_at >= $2 AND category = ANY($3) AND type = $4 AND amount >= $5",
			wantArgs:  []any{int64(4), from, []string{"food", "rent"}, "expense", minAmount},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := where(4, tt.filter)

			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

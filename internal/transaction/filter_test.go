package transaction_test

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetflow/internal/transaction"
)

func TestParseFilter(t *testing.T) {
	type args struct {
		query url.Values
	}

	type testCase struct {
		name     string
		args     args
		verify   func(t *testing.T, f transaction.Filter)
		wantCode string
	}

	tests := []testCase{
		{
			name: "Empty",
			args: args{query: url.Values{}},
			verify: func(t *testing.T, f transaction.Filter) {
				assert.Equal(t, transaction.Filter{}, f)
			},
		},
		{
			name: "DateOnlyBoundsExpandToWholeDay",
			args: args{query: url.Values{"date_from": {"2024-03-05"}, "date_to": {"2024-03-05"}}},
			verify: func(t *testing.T, f transaction.Filter) {
				require.NotNil(t, f.DateFrom)
				require.NotNil(t, f.DateTo)
				assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), *f.DateFrom)
				assert.Equal(t, time.Date(2024, 3, 5, 23, 59, 59, 0, time.UTC), *f.DateTo)
			},
		},
		{
			name: "FullDateTime",
			args: args{query: url.Values{"date_from": {"2024-03-05T10:30:00+02:00"}, "date_to": {"2024-03-06T08:00:00"}}},
			verify: func(t *testing.T, f transaction.Filter) {
				assert.Equal(t, time.Date(2024, 3, 5, 8, 30, 0, 0, time.UTC), *f.DateFrom)
				assert.Equal(t, time.Date(2024, 3, 6, 8, 0, 0, 0, time.UTC), *f.DateTo)
			},
		},
		{
			name: "ReversedDatesAreAccepted",
			args: args{query: url.Values{"date_from": {"2024-04-01"}, "date_to": {"2024-03-01"}}},
			verify: func(t *testing.T, f transaction.Filter) {
				assert.True(t, f.DateFrom.After(*f.DateTo))
			},
		},
		{
			name:     "InvalidDate",
			args:     args{query: url.Values{"date_from": {"yesterday"}}},
			wantCode: transaction.CodeInvalidDate,
		},
		{
			name:     "InvalidDateOnly",
			args:     args{query: url.Values{"date_to": {"2024-13-45"}}},
			wantCode: transaction.CodeInvalidDate,
		},
		{
			name: "CategoriesTrimmedAndBlankDropped",
			args: args{query: url.Values{"categories": {" food, ,rent ,,"}}},
			verify: func(t *testing.T, f transaction.Filter) {
				assert.Equal(t, []string{"food", "rent"}, f.Categories)
			},
		},
		{
			name: "OnlyBlankCategoriesMeansNoRestriction",
			args: args{query: url.Values{"categories": {" , ,"}}},
			verify: func(t *testing.T, f transaction.Filter) {
				assert.Nil(t, f.Categories)
			},
		},
		{
			name: "Type",
			args: args{query: url.Values{"type": {"expense"}}},
			verify: func(t *testing.T, f transaction.Filter) {
				require.NotNil(t, f.Type)
				assert.Equal(t, transaction.TypeExpense, *f.Type)
			},
		},
		{
			name:     "InvalidType",
			args:     args{query: url.Values{"type": {"transfer"}}},
			wantCode: transaction.CodeInvalidType,
		},
		{
			name: "AmountBounds",
			args: args{query: url.Values{"min_amount": {"10.5"}, "max_amount": {"0"}}},
			verify: func(t *testing.T, f transaction.Filter) {
				assert.True(t, f.MinAmount.Equal(decimal.RequireFromString("10.50")))
				assert.True(t, f.MaxAmount.IsZero())
			},
		},
		{
			name:     "InvalidMinAmount",
			args:     args{query: url.Values{"min_amount": {"abc"}}},
			wantCode: transaction.CodeInvalidMinAmount,
		},
		{
			name:     "NegativeMaxAmount",
			args:     args{query: url.Values{"max_amount": {"-1"}}},
			wantCode: transaction.CodeInvalidMaxAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := transaction.ParseFilter(tt.args.query)

			if tt.wantCode != "" {
				var vErr *transaction.ValidationError
				require.True(t, errors.As(err, &vErr), "expected ValidationError, got %v", err)
				assert.Equal(t, tt.wantCode, vErr.Code)

				return
			}

			require.NoError(t, err)

			if tt.verify != nil {
				tt.verify(t, got)
			}
		})
	}
}

func TestFilter_MatchIsIntersectionOfDimensions(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	types := []transaction.Type{transaction.TypeIncome, transaction.TypeExpense}
	categories := []string{"food", "rent", "salary"}

	var txs []*transaction.Transaction

	for i := range 30 {
		txs = append(txs, &transaction.Transaction{
			ID:        uuid.New(),
			Type:      types[i%2],
			Amount:    decimal.NewFromInt(int64(i * 10)),
			Category:  categories[i%3],
			CreatedAt: base.AddDate(0, 0, i),
		})
	}

	from := base.AddDate(0, 0, 5)
	to := base.AddDate(0, 0, 20)
	expense := transaction.TypeExpense
	minAmount := decimal.NewFromInt(50)
	maxAmount := decimal.NewFromInt(250)

	dimensions := map[string]transaction.Filter{
		"date":     {DateFrom: &from, DateTo: &to},
		"category": {Categories: []string{"food", "rent"}},
		"type":     {Type: &expense},
		"amount":   {MinAmount: &minAmount, MaxAmount: &maxAmount},
	}

	combined := transaction.Filter{
		DateFrom:   &from,
		DateTo:     &to,
		Categories: []string{"food", "rent"},
		Type:       &expense,
		MinAmount:  &minAmount,
		MaxAmount:  &maxAmount,
	}

	matched := 0

	for _, tx := range txs {
		want := true
		for _, f := range dimensions {
			want = want && f.Match(tx)
		}

		assert.Equal(t, want, combined.Match(tx), "transaction created %s", tx.CreatedAt)
		assert.True(t, transaction.Filter{}.Match(tx))

		if want {
			matched++
		}
	}

	assert.Positive(t, matched)
}

package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type represents the type of transaction (income or expense).
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// Valid reports whether t is one of the known transaction types.
func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

const (
	MaxCategoryLen    = 150
	MaxDescriptionLen = 255
)

// Transaction represents a single income or expense entry owned by a user.
type Transaction struct {
	ID          uuid.UUID
	UserID      int64
	Type        Type
	Amount      decimal.Decimal // 2 decimal places, never negative
	Category    string
	Description string
	CreatedAt   time.Time
}

// Summary holds the per-user totals by type.
type Summary struct {
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Net          decimal.Decimal
}

func newSummary(income, expense decimal.Decimal) Summary {
	return Summary{
		TotalIncome:  income,
		TotalExpense: expense,
		Net:          income.Sub(expense),
	}
}

package view

import (
	"context"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetflow/internal/transaction"
)

const dbTimeout = 5 * time.Second

// FormatAmount renders an amount with two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatSigned prefixes an amount with + for income and - for expense.
func FormatSigned(t transaction.Type, d decimal.Decimal) string {
	if t == transaction.TypeIncome {
		return "+" + FormatAmount(d)
	}

	return "-" + FormatAmount(d)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func errorStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(s)
}

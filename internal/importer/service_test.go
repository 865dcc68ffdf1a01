package importer_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetflow/internal/cache"
	"github.com/MrJamesThe3rd/budgetflow/internal/importer"
	"github.com/MrJamesThe3rd/budgetflow/internal/memstore"
	"github.com/MrJamesThe3rd/budgetflow/internal/transaction"
)

func newImporter(store *memstore.Store) *importer.Service {
	txs := transaction.NewService(store, cache.NewMemory[transaction.Summary](time.Minute), transaction.Options{})

	return importer.NewService(txs)
}

func TestService_Import(t *testing.T) {
	store := memstore.New()

	csv := strings.Join([]string{
		"type;amount;category;description",
		"income;2100.00;salary;",
		"expense;50.00;food;groceries",
		"transfer;10.00;misc;",
		"expense;5.001;food;",
		"expense;x;food;",
		"",
	}, "\n")

	report, err := newImporter(store).Import(context.Background(), 9, strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, "typed", report.Profile)
	assert.Equal(t, 2, report.Imported)
	require.Len(t, report.Transactions, 2)

	lines := make([]int, 0, len(report.Errors))
	for _, e := range report.Errors {
		lines = append(lines, e.Line)
	}

	assert.ElementsMatch(t, []int{4, 5, 6}, lines)

	n, err := store.CountTransactions(context.Background(), 9, transaction.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestService_Import_StoreDown(t *testing.T) {
	store := memstore.New()
	store.SetUnavailable(true)

	_, err := newImporter(store).Import(context.Background(), 1,
		strings.NewReader("amount;category\n-3;food\n"))

	assert.ErrorIs(t, err, transaction.ErrUnavailable)
}

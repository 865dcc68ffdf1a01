package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/budgetflow/internal/transaction"
)

// Header is the first CSV row. It matches the typed import layout, so an
// exported file can be imported back; the date column is ignored on import.
var Header = []string{"date", "type", "amount", "category", "description"}

const dateLayout = "2006-01-02"

// Lister returns every transaction of a user matching a filter.
type Lister interface {
	All(ctx context.Context, userID int64, filter transaction.Filter) ([]*transaction.Transaction, error)
}

// Service handles the export of transactions.
type Service struct {
	transactions Lister
}

// NewService creates a new export Service.
func NewService(transactions Lister) *Service {
	return &Service{transactions: transactions}
}

// Export writes the user's transactions matching filter to w as semicolon
// separated CSV, newest first. It returns the number of data rows written.
func (s *Service) Export(ctx context.Context, w io.Writer, userID int64, filter transaction.Filter) (int, error) {
	txs, err := s.transactions.All(ctx, userID, filter)
	if err != nil {
		return 0, fmt.Errorf("listing transactions: %w", err)
	}

	if err := WriteCSV(w, txs); err != nil {
		return 0, err
	}

	return len(txs), nil
}

// ExportToDir writes the user's transactions matching filter to a dated file
// in dir, creating dir if needed. It returns the file path and the exported
// transactions.
func (s *Service) ExportToDir(ctx context.Context, dir string, userID int64, filter transaction.Filter, now time.Time) (string, []*transaction.Transaction, error) {
	txs, err := s.transactions.All(ctx, userID, filter)
	if err != nil {
		return "", nil, fmt.Errorf("listing transactions: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("creating export directory: %w", err)
	}

	path := filepath.Join(dir, Filename(now))

	f, err := os.Create(path)
	if err != nil {
		return "", nil, fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, txs); err != nil {
		return "", nil, err
	}

	if err := f.Close(); err != nil {
		return "", nil, fmt.Errorf("closing export file: %w", err)
	}

	return path, txs, nil
}

// WriteCSV writes txs to w in export layout.
func WriteCSV(w io.Writer, txs []*transaction.Transaction) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, tx := range txs {
		record := []string{
			tx.CreatedAt.UTC().Format(dateLayout),
			string(tx.Type),
			tx.Amount.StringFixed(2),
			tx.Category,
			tx.Description,
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing transaction %s: %w", tx.ID, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	return nil
}

// Filename is the suggested attachment name for an export made at now.
func Filename(now time.Time) string {
	return fmt.Sprintf("transactions_%s.csv", now.UTC().Format("20060102"))
}

// GenerateSummary creates a plain text listing of txs, one line each.
func GenerateSummary(txs []*transaction.Transaction) string {
	var sb strings.Builder

	for _, tx := range txs {
		sign := "-"
		if tx.Type == transaction.TypeIncome {
			sign = "+"
		}

		desc := tx.Description
		if desc == "" {
			desc = "(no description)"
		}

		fmt.Fprintf(&sb, "* %s | %s | %s | %s%s\n",
			tx.CreatedAt.UTC().Format(dateLayout), tx.Category, desc, sign, tx.Amount.StringFixed(2))
	}

	return sb.String()
}

package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/MrJamesThe3rd/budgetflow/internal/transaction"
)

// Creator stores one validated transaction.
type Creator interface {
	Create(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error)
}

type Service struct {
	txs Creator
}

func NewService(txs Creator) *Service {
	return &Service{txs: txs}
}

// Report summarises an import. Rows rejected by parsing or validation are
// listed in Errors; the remaining rows are created.
type Report struct {
	Profile      string
	Imported     int
	Transactions []*transaction.Transaction
	Errors       []RowError
}

// Import parses r and creates every valid row for userID. A failing store
// aborts the import and returns the error; rows created before the failure
// stay created.
func (s *Service) Import(ctx context.Context, userID int64, r io.Reader) (*Report, error) {
	res, err := Parse(r)
	if err != nil {
		return nil, err
	}

	slog.Info("importing transactions",
		"user_id", userID,
		"profile", res.Profile,
		"charset", res.Charset,
		"rows", len(res.Rows),
	)

	report := &Report{
		Profile:      res.Profile,
		Transactions: []*transaction.Transaction{},
		Errors:       res.Errors,
	}

	for _, row := range res.Rows {
		params := row.Params
		params.UserID = userID

		tx, err := s.txs.Create(ctx, params)
		if err != nil {
			var vErr *transaction.ValidationError
			if errors.As(err, &vErr) {
				report.Errors = append(report.Errors, RowError{Line: row.Line, Message: vErr.Error()})
				continue
			}

			return nil, fmt.Errorf("importing line %d: %w", row.Line, err)
		}

		report.Transactions = append(report.Transactions, tx)
	}

	report.Imported = len(report.Transactions)

	return report, nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetflow/internal/database"
	"github.com/MrJamesThe3rd/budgetflow/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, user_id, type, amount, category, description, created_at
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	var typeStr string

	if err := s.Scan(
		&tx.ID, &tx.UserID, &typeStr, &tx.Amount, &tx.Category, &tx.Description, &tx.CreatedAt,
	); err != nil {
		return nil, err
	}

	tx.Type = transaction.Type(typeStr)

	return &tx, nil
}

const selectTransactionColumns = `id, user_id, type, amount, category, description, created_at`

// storeErr tags err with transaction.ErrUnavailable when the database could
// not serve the call, so the service can degrade instead of failing.
func storeErr(op string, err error) error {
	if database.IsUnavailable(err) {
		return fmt.Errorf("%s: %w: %w", op, transaction.ErrUnavailable, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}

func (s *Store) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (user_id, type, amount, category, description, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		tx.UserID,
		tx.Type,
		tx.Amount,
		tx.Category,
		tx.Description,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return storeErr("creating transaction", err)
	}

	return nil
}

// where renders the filter as a WHERE clause scoped to userID. Every value is
// passed as a placeholder argument.
func where(userID int64, filter transaction.Filter) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{userID}

	argIdx := 2

	add := func(cond string, arg any) {
		conds = append(conds, fmt.Sprintf(cond, argIdx))
		args = append(args, arg)
		argIdx++
	}

	if filter.DateFrom != nil {
		add("created_at >= $%d", *filter.DateFrom)
	}

	if filter.DateTo != nil {
		add("created_at <= $%d", *filter.DateTo)
	}

	if len(filter.Categories) > 0 {
		add("category = ANY($%d)", filter.Categories)
	}

	if filter.Type != nil {
		add("type = $%d", string(*filter.Type))
	}

	if filter.MinAmount != nil {
		add("amount >= $%d", *filter.MinAmount)
	}

	if filter.MaxAmount != nil {
		add("amount <= $%d", *filter.MaxAmount)
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *Store) FindTransactions(
	ctx context.Context, userID int64, filter transaction.Filter, window transaction.Window,
) ([]*transaction.Transaction, error) {
	clause, args := where(userID, filter)

	query := `SELECT ` + selectTransactionColumns + ` FROM transactions` + clause +
		` ORDER BY created_at DESC, id DESC`

	if window.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)

		args = append(args, window.Limit)
	}

	if window.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", len(args)+1)

		args = append(args, window.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("listing transactions", err)
	}
	defer rows.Close()

	txs := []*transaction.Transaction{}

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating transaction rows", err)
	}

	return txs, nil
}

func (s *Store) CountTransactions(ctx context.Context, userID int64, filter transaction.Filter) (int, error) {
	clause, args := where(userID, filter)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`+clause, args...).Scan(&total); err != nil {
		return 0, storeErr("counting transactions", err)
	}

	return total, nil
}

func (s *Store) SumByType(ctx context.Context, userID int64) (map[transaction.Type]decimal.Decimal, error) {
	query := `
		SELECT type, COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1
		GROUP BY type
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, storeErr("summing transactions", err)
	}
	defer rows.Close()

	totals := make(map[transaction.Type]decimal.Decimal, 2)

	for rows.Next() {
		var (
			typeStr string
			sum     decimal.Decimal
		)

		if err := rows.Scan(&typeStr, &sum); err != nil {
			return nil, fmt.Errorf("scanning totals: %w", err)
		}

		totals[transaction.Type(typeStr)] = sum
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating totals", err)
	}

	return totals, nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MrJamesThe3rd/budgetflow/internal/database"
	"github.com/MrJamesThe3rd/budgetflow/internal/goal"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func storeErr(op string, err error) error {
	if database.IsUnavailable(err) {
		return fmt.Errorf("%s: %w: %w", op, goal.ErrUnavailable, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}

func (s *Store) CreateGoal(ctx context.Context, g *goal.Goal) error {
	query := `
		INSERT INTO goals (user_id, title, target_amount, current_amount, due_date, description, image, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		g.UserID,
		g.Title,
		g.TargetAmount,
		g.CurrentAmount,
		g.DueDate,
		g.Description,
		g.Image,
	).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		return storeErr("creating goal", err)
	}

	return nil
}

func (s *Store) ListGoals(ctx context.Context, userID int64) ([]*goal.Goal, error) {
	query := `
		SELECT id, user_id, title, target_amount, current_amount, due_date, description, image, created_at
		FROM goals
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, storeErr("listing goals", err)
	}
	defer rows.Close()

	goals := []*goal.Goal{}

	for rows.Next() {
		var (
			g   goal.Goal
			due sql.NullTime
		)

		if err := rows.Scan(
			&g.ID, &g.UserID, &g.Title, &g.TargetAmount, &g.CurrentAmount, &due, &g.Description, &g.Image, &g.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning goal: %w", err)
		}

		if due.Valid {
			d := due.Time.UTC()
			g.DueDate = &d
		}

		goals = append(goals, &g)
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating goal rows", err)
	}

	return goals, nil
}

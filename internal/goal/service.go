package goal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=goal
type Repository interface {
	CreateGoal(ctx context.Context, g *Goal) error
	ListGoals(ctx context.Context, userID int64) ([]*Goal, error)
}

type Service struct {
	repo     Repository
	timeout  time.Duration
	validate *validator.Validate
}

func NewService(repo Repository, storeTimeout time.Duration) *Service {
	if storeTimeout <= 0 {
		storeTimeout = 3 * time.Second
	}

	return &Service{
		repo:     repo,
		timeout:  storeTimeout,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

type CreateParams struct {
	UserID        int64           `validate:"gt=0"`
	Title         string          `validate:"required,max=100"`
	TargetAmount  decimal.Decimal `validate:"-"`
	CurrentAmount decimal.Decimal `validate:"-"`
	DueDate       *time.Time
	Description   string `validate:"max=255"`
	Image         string `validate:"max=255"`
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Goal, error) {
	params.Title = strings.TrimSpace(params.Title)

	if err := s.validateCreate(params); err != nil {
		return nil, err
	}

	g := &Goal{
		UserID:        params.UserID,
		Title:         params.Title,
		TargetAmount:  params.TargetAmount,
		CurrentAmount: params.CurrentAmount,
		Description:   params.Description,
		Image:         params.Image,
	}

	if g.Image == "" {
		g.Image = DefaultImage
	}

	if params.DueDate != nil {
		d := params.DueDate.UTC().Truncate(24 * time.Hour)
		g.DueDate = &d
	}

	if err := s.repo.CreateGoal(ctx, g); err != nil {
		return nil, fmt.Errorf("creating goal: %w", err)
	}

	return g, nil
}

func (s *Service) validateCreate(params CreateParams) error {
	if err := s.validate.Struct(params); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return fmt.Errorf("validating goal: %w", err)
		}

		fe := fieldErrs[0]
		field := strings.ToLower(fe.Field())

		return &ValidationError{Code: "invalid_" + field, Field: field, Err: fmt.Errorf("failed %q rule", fe.Tag())}
	}

	if !params.TargetAmount.IsPositive() {
		return &ValidationError{Code: "invalid_target_amount", Field: "target_amount", Err: errors.New("must be positive")}
	}

	if params.CurrentAmount.IsNegative() {
		return &ValidationError{Code: "invalid_current_amount", Field: "current_amount", Err: errors.New("must not be negative")}
	}

	amounts := []struct {
		field  string
		amount decimal.Decimal
	}{
		{"target_amount", params.TargetAmount},
		{"current_amount", params.CurrentAmount},
	}

	for _, a := range amounts {
		if !a.amount.Equal(a.amount.Round(2)) {
			return &ValidationError{Code: "invalid_" + a.field, Field: a.field, Err: errors.New("at most 2 decimal places")}
		}
	}

	return nil
}

// List returns the user's goals, newest first. An unreachable store yields an
// empty list.
func (s *Service) List(ctx context.Context, userID int64) ([]*Goal, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	goals, err := s.repo.ListGoals(ctx, userID)
	if err != nil {
		if !Degradable(err) {
			return nil, fmt.Errorf("listing goals: %w", err)
		}

		slog.Warn("goal list degraded to empty", "user_id", userID, "error", err)

		return []*Goal{}, nil
	}

	return goals, nil
}

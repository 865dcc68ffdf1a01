package transaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/MrJamesThe3rd/budgetflow/internal/cache"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	FindTransactions(ctx context.Context, userID int64, filter Filter, window Window) ([]*Transaction, error)
	CountTransactions(ctx context.Context, userID int64, filter Filter) (int, error)
	SumByType(ctx context.Context, userID int64) (map[Type]decimal.Decimal, error)
}

// DefaultStoreTimeout applies when Options.StoreTimeout is not set.
const DefaultStoreTimeout = 3 * time.Second

// Options configures a Service.
type Options struct {
	// StoreTimeout bounds each read-path store call.
	StoreTimeout time.Duration
	PageSize     int
}

// Service queries, creates and summarises transactions.
type Service struct {
	repo      Repository
	summaries cache.Cache[Summary]
	timeout   time.Duration
	pageSize  int
	validate  *validator.Validate
	inflight  singleflight.Group
}

// NewService creates a new transaction Service.
func NewService(repo Repository, summaries cache.Cache[Summary], opts Options) *Service {
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = DefaultStoreTimeout
	}

	if opts.PageSize < 1 || opts.PageSize > MaxPageSize {
		opts.PageSize = DefaultPageSize
	}

	return &Service{
		repo:      repo,
		summaries: summaries,
		timeout:   opts.StoreTimeout,
		pageSize:  opts.PageSize,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// PageSize is the page size used when a request does not specify one.
func (s *Service) PageSize() int { return s.pageSize }

// CreateParams holds the input of Create.
type CreateParams struct {
	UserID      int64           `validate:"gt=0"`
	Type        Type            `validate:"required,oneof=income expense"`
	Amount      decimal.Decimal `validate:"-"`
	Category    string          `validate:"required,max=150"`
	Description string          `validate:"max=255"`
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	params.Category = strings.TrimSpace(params.Category)

	if err := s.validateCreate(params); err != nil {
		return nil, err
	}

	tx := &Transaction{
		UserID:      params.UserID,
		Type:        params.Type,
		Amount:      params.Amount,
		Category:    params.Category,
		Description: params.Description,
	}
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("creating transaction: %w", err)
	}

	return tx, nil
}

func (s *Service) validateCreate(params CreateParams) error {
	if err := s.validate.Struct(params); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return fmt.Errorf("validating transaction: %w", err)
		}

		fe := fieldErrs[0]

		return invalid(createErrorCode(fe.Field()), strings.ToLower(fe.Field()),
			fmt.Errorf("failed %q rule", fe.Tag()))
	}

	if params.Amount.IsNegative() {
		return invalid(CodeInvalidAmount, "amount", errors.New("must not be negative"))
	}

	if !params.Amount.Equal(params.Amount.Round(2)) {
		return invalid(CodeInvalidAmount, "amount", errors.New("at most 2 decimal places"))
	}

	return nil
}

func createErrorCode(field string) string {
	switch field {
	case "Type":
		return CodeInvalidType
	case "Category":
		return CodeInvalidCategory
	case "Description":
		return CodeInvalidDescription
	}

	return "invalid_" + strings.ToLower(field)
}

// Query validates raw filter and pagination parameters, then lists the page.
// Validation failures are returned before the store is touched.
func (s *Service) Query(ctx context.Context, userID int64, v Values) (PageResult, error) {
	filter, err := ParseFilter(v)
	if err != nil {
		return PageResult{}, err
	}

	page, err := ParsePage(v.Get("page"), v.Get("page_size"), s.pageSize)
	if err != nil {
		return PageResult{}, err
	}

	return s.List(ctx, userID, filter, page)
}

// List returns one page of the user's transactions, newest first. An unreachable
// or slow store yields an empty page instead of an error.
func (s *Service) List(ctx context.Context, userID int64, filter Filter, page Page) (PageResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	total, err := s.repo.CountTransactions(ctx, userID, filter)
	if err != nil {
		return degradedPage(userID, err)
	}

	var items []*Transaction

	window := page.Window()
	if window.Offset < total {
		items, err = s.repo.FindTransactions(ctx, userID, filter, window)
		if err != nil {
			return degradedPage(userID, err)
		}
	}

	return NewPageResult(items, total, page), nil
}

func degradedPage(userID int64, err error) (PageResult, error) {
	if !Degradable(err) {
		return PageResult{}, fmt.Errorf("listing transactions: %w", err)
	}

	slog.Warn("transaction list degraded to empty page", "user_id", userID, "error", err)

	return PageResult{Items: []*Transaction{}}, nil
}

// All returns every transaction matching filter, newest first. Like List it
// degrades to an empty result when the store is unavailable.
func (s *Service) All(ctx context.Context, userID int64, filter Filter) ([]*Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	txs, err := s.repo.FindTransactions(ctx, userID, filter, Window{})
	if err != nil {
		if !Degradable(err) {
			return nil, fmt.Errorf("listing transactions: %w", err)
		}

		slog.Warn("transaction export degraded to empty result", "user_id", userID, "error", err)

		return []*Transaction{}, nil
	}

	return txs, nil
}

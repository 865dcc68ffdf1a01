package transaction_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/budgetflow/internal/transaction"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestService_Summary(t *testing.T) {
	type testCase struct {
		name        string
		totals      map[transaction.Type]decimal.Decimal
		err         error
		wantIncome  string
		wantExpense string
		wantNet     string
		wantErr     bool
	}

	tests := []testCase{
		{
			name: "IncomeAndExpense",
			totals: map[transaction.Type]decimal.Decimal{
				transaction.TypeIncome:  dec("2100.00"),
				transaction.TypeExpense: dec("2250.00"),
			},
			wantIncome:  "2100",
			wantExpense: "2250",
			wantNet:     "-150",
		},
		{
			name:        "MissingGroupReadsAsZero",
			totals:      map[transaction.Type]decimal.Decimal{transaction.TypeIncome: dec("10.25")},
			wantIncome:  "10.25",
			wantExpense: "0",
			wantNet:     "10.25",
		},
		{
			name: "UnknownLabelIgnored",
			totals: map[transaction.Type]decimal.Decimal{
				transaction.TypeExpense: dec("4"),
				transaction.Type("refund"): dec("99"),
			},
			wantIncome:  "0",
			wantExpense: "4",
			wantNet:     "-4",
		},
		{
			name:        "UnavailableYieldsZero",
			err:         transaction.ErrUnavailable,
			wantIncome:  "0",
			wantExpense: "0",
			wantNet:     "0",
		},
		{
			name:        "TimeoutYieldsZero",
			err:         context.DeadlineExceeded,
			wantIncome:  "0",
			wantExpense: "0",
			wantNet:     "0",
		},
		{
			name:    "OtherErrorPropagates",
			err:     errors.New("scanning totals: bad numeric"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			repo.EXPECT().SumByType(gomock.Any(), int64(1)).Return(tt.totals, tt.err)

			got, err := newService(repo).Summary(context.Background(), 1)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.True(t, got.TotalIncome.Equal(dec(tt.wantIncome)), "income %s", got.TotalIncome)
			assert.True(t, got.TotalExpense.Equal(dec(tt.wantExpense)), "expense %s", got.TotalExpense)
			assert.True(t, got.Net.Equal(dec(tt.wantNet)), "net %s", got.Net)
		})
	}
}

func TestService_Summary_CachedWithinTTL(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().
		SumByType(gomock.Any(), int64(5)).
		Return(map[transaction.Type]decimal.Decimal{transaction.TypeIncome: dec("100")}, nil).
		Times(1)

	svc := newService(repo)

	first, err := svc.Summary(context.Background(), 5)
	require.NoError(t, err)

	second, err := svc.Summary(context.Background(), 5)
	require.NoError(t, err)

	assert.True(t, first.Net.Equal(second.Net))
}

func TestService_Summary_ZeroResultIsCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().
		SumByType(gomock.Any(), int64(5)).
		Return(nil, transaction.ErrUnavailable).
		Times(1)

	svc := newService(repo)

	for range 3 {
		got, err := svc.Summary(context.Background(), 5)
		require.NoError(t, err)
		assert.True(t, got.Net.IsZero())
	}
}

func TestService_Summary_PerUserKeys(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().
		SumByType(gomock.Any(), int64(1)).
		Return(map[transaction.Type]decimal.Decimal{transaction.TypeIncome: dec("1")}, nil)
	repo.EXPECT().
		SumByType(gomock.Any(), int64(2)).
		Return(map[transaction.Type]decimal.Decimal{transaction.TypeExpense: dec("2")}, nil)

	svc := newService(repo)

	one, err := svc.Summary(context.Background(), 1)
	require.NoError(t, err)

	two, err := svc.Summary(context.Background(), 2)
	require.NoError(t, err)

	assert.True(t, one.Net.Equal(dec("1")))
	assert.True(t, two.Net.Equal(dec("-2")))
}

func TestService_Summary_ConcurrentMissesShareOneAggregation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	release := make(chan struct{})

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().
		SumByType(gomock.Any(), int64(9)).
		DoAndReturn(func(context.Context, int64) (map[transaction.Type]decimal.Decimal, error) {
			<-release
			return map[transaction.Type]decimal.Decimal{transaction.TypeExpense: dec("3")}, nil
		}).
		Times(1)

	svc := newService(repo)

	const callers = 8

	var wg sync.WaitGroup

	results := make([]transaction.Summary, callers)

	for i := range callers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			sum, err := svc.Summary(context.Background(), 9)
			assert.NoError(t, err)

			results[i] = sum
		}()
	}

	// Give every caller time to join the in-flight aggregation.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.True(t, r.TotalExpense.Equal(dec("3")))
	}
}

func TestService_Summary_CancelledCallerDoesNotFailOthers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	release := make(chan struct{})

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().
		SumByType(gomock.Any(), int64(4)).
		DoAndReturn(func(ctx context.Context, _ int64) (map[transaction.Type]decimal.Decimal, error) {
			select {
			case <-release:
				return map[transaction.Type]decimal.Decimal{transaction.TypeIncome: dec("7")}, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}).
		Times(1)

	svc := newService(repo)

	first, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()

	var (
		wg        sync.WaitGroup
		secondSum transaction.Summary
		secondErr error
	)

	wg.Add(2)

	go func() {
		defer wg.Done()

		_, _ = svc.Summary(first, 4)
	}()

	time.Sleep(20 * time.Millisecond)

	go func() {
		defer wg.Done()

		secondSum, secondErr = svc.Summary(context.Background(), 4)
	}()

	time.Sleep(20 * time.Millisecond)
	cancelFirst()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	require.NoError(t, secondErr)
	assert.True(t, secondSum.TotalIncome.Equal(dec("7")))
}

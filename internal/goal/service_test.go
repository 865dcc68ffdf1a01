package goal_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/budgetflow/internal/goal"
)

func TestService_Create(t *testing.T) {
	due := time.Date(2025, 6, 30, 15, 4, 5, 0, time.UTC)

	valid := goal.CreateParams{
		UserID:       1,
		Title:        " Holiday ",
		TargetAmount: decimal.RequireFromString("1500.00"),
		DueDate:      &due,
	}

	with := func(mut func(p *goal.CreateParams)) goal.CreateParams {
		p := valid
		mut(&p)

		return p
	}

	type args struct {
		params goal.CreateParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *goal.MockRepository)
		verify    func(t *testing.T, g *goal.Goal)
		wantCode  string
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{params: valid},
			setupMock: func(m *goal.MockRepository) {
				m.EXPECT().CreateGoal(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, g *goal.Goal) error {
					g.ID = uuid.New()
					return nil
				})
			},
			verify: func(t *testing.T, g *goal.Goal) {
				assert.Equal(t, "Holiday", g.Title)
				assert.Equal(t, goal.DefaultImage, g.Image)
				assert.True(t, g.CurrentAmount.IsZero())
				require.NotNil(t, g.DueDate)
				assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), *g.DueDate)
			},
		},
		{
			name:     "MissingTitle",
			args:     args{params: with(func(p *goal.CreateParams) { p.Title = " " })},
			wantCode: "invalid_title",
		},
		{
			name:     "TitleTooLong",
			args:     args{params: with(func(p *goal.CreateParams) { p.Title = strings.Repeat("t", 101) })},
			wantCode: "invalid_title",
		},
		{
			name:     "ZeroTarget",
			args:     args{params: with(func(p *goal.CreateParams) { p.TargetAmount = decimal.Zero })},
			wantCode: "invalid_target_amount",
		},
		{
			name:     "NegativeCurrent",
			args:     args{params: with(func(p *goal.CreateParams) { p.CurrentAmount = decimal.NewFromInt(-5) })},
			wantCode: "invalid_current_amount",
		},
		{
			name:     "TargetTooPrecise",
			args:     args{params: with(func(p *goal.CreateParams) { p.TargetAmount = decimal.RequireFromString("10.001") })},
			wantCode: "invalid_target_amount",
		},
		{
			name: "StoreUnavailable",
			args: args{params: valid},
			setupMock: func(m *goal.MockRepository) {
				m.EXPECT().CreateGoal(gomock.Any(), gomock.Any()).Return(fmt.Errorf("creating goal: %w", goal.ErrUnavailable))
			},
			wantErr: goal.ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := goal.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := goal.NewService(repo, time.Second).Create(context.Background(), tt.args.params)

			if tt.wantCode != "" {
				var vErr *goal.ValidationError
				require.True(t, errors.As(err, &vErr), "expected ValidationError, got %v", err)
				assert.Equal(t, tt.wantCode, vErr.Code)

				return
			}

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			tt.verify(t, got)
		})
	}
}

func TestService_List(t *testing.T) {
	type testCase struct {
		name    string
		goals   []*goal.Goal
		err     error
		wantLen int
		wantErr bool
	}

	tests := []testCase{
		{name: "Success", goals: []*goal.Goal{{Title: "a"}, {Title: "b"}}, wantLen: 2},
		{name: "UnavailableDegrades", err: goal.ErrUnavailable, wantLen: 0},
		{name: "TimeoutDegrades", err: context.DeadlineExceeded, wantLen: 0},
		{name: "OtherError", err: errors.New("scanning goal: bad date"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := goal.NewMockRepository(ctrl)
			repo.EXPECT().ListGoals(gomock.Any(), int64(1)).Return(tt.goals, tt.err)

			got, err := goal.NewService(repo, time.Second).List(context.Background(), 1)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

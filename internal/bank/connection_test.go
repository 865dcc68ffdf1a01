package bank_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/budgetflow/internal/bank"
	"github.com/MrJamesThe3rd/budgetflow/internal/memstore"
)

func TestProviders(t *testing.T) {
	got := bank.Providers()

	require.Len(t, got, 3)
	assert.Equal(t, bank.Provider{ID: "mockbank", Name: "Mock Bank"}, got[0])

	got[0].Name = "changed"
	assert.Equal(t, "Mock Bank", bank.Providers()[0].Name)
}

func TestConnectionService_Connect(t *testing.T) {
	type testCase struct {
		name     string
		provider string
		down     bool
		wantCode string
		persists bool
	}

	tests := []testCase{
		{name: "Success", provider: "monobank", persists: true},
		{name: "Missing", provider: " ", wantCode: bank.CodeProviderRequired},
		{name: "Unknown", provider: "chase", wantCode: bank.CodeUnknownProvider},
		{name: "StoreDownGivesEphemeralID", provider: "mockbank", down: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memstore.New()
			store.SetUnavailable(tt.down)

			svc := bank.NewConnectionService(store, opts())

			id, err := svc.Connect(context.Background(), 1, tt.provider)

			if tt.wantCode != "" {
				var vErr *bank.ValidationError
				require.True(t, errors.As(err, &vErr))
				assert.Equal(t, tt.wantCode, vErr.Code)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, id)

			store.SetUnavailable(false)

			conns, err := svc.List(context.Background(), 1)
			require.NoError(t, err)

			if !tt.persists {
				assert.Empty(t, conns)
				return
			}

			require.Len(t, conns, 1)
			assert.Equal(t, id, conns[0].ID)
			assert.Equal(t, bank.StatusConnected, conns[0].Status)
			assert.Equal(t, "Monobank", conns[0].ProviderName)
		})
	}
}

func TestConnectionService_SyncNowAndDisconnect(t *testing.T) {
	store := memstore.New()
	svc := bank.NewConnectionService(store, opts())
	ctx := context.Background()

	id, err := svc.Connect(ctx, 1, "privatbank")
	require.NoError(t, err)

	require.NoError(t, svc.SyncNow(ctx, 1, id))
	require.NoError(t, svc.SyncNow(ctx, 1, id))

	conn, err := store.GetConnection(ctx, 1, id)
	require.NoError(t, err)
	require.NotNil(t, conn.LastSyncedAt)
	assert.Equal(t, fixedNow, *conn.LastSyncedAt)
	assert.Equal(t, bank.StatusConnected, conn.Status)

	require.NoError(t, svc.Disconnect(ctx, 1, id))

	conn, err = store.GetConnection(ctx, 1, id)
	require.NoError(t, err)
	assert.Equal(t, bank.StatusDisconnected, conn.Status)

	// Another user's connection is invisible.
	assert.ErrorIs(t, svc.SyncNow(ctx, 2, id), bank.ErrNotFound)
	assert.ErrorIs(t, svc.Disconnect(ctx, 1, uuid.New()), bank.ErrNotFound)
}

func TestConnectionService_StoreDownReportsSuccess(t *testing.T) {
	store := memstore.New()
	store.SetUnavailable(true)

	svc := bank.NewConnectionService(store, opts())

	assert.NoError(t, svc.SyncNow(context.Background(), 1, uuid.New()))
	assert.NoError(t, svc.Disconnect(context.Background(), 1, uuid.New()))

	conns, err := svc.List(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, conns)
	assert.Empty(t, conns)
}

func TestConnectionService_UnexpectedErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := bank.NewMockRepository(ctrl)
	repo.EXPECT().GetConnection(gomock.Any(), int64(1), gomock.Any()).Return(nil, errors.New("scanning connection: boom"))
	repo.EXPECT().ListConnections(gomock.Any(), int64(1)).Return(nil, errors.New("scanning connection: boom"))

	svc := bank.NewConnectionService(repo, opts())

	err := svc.SyncNow(context.Background(), 1, uuid.New())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, bank.ErrNotFound)

	_, err = svc.List(context.Background(), 1)
	assert.Error(t, err)
}

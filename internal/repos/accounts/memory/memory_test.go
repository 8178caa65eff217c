package memory

import (
	"context"
	"testing"

	"github.com/fastprodman/playerledger/internal/account"
	"github.com/fastprodman/playerledger/internal/repos/accounts"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadSave(t *testing.T) {
	t.Parallel()

	store := New(account.Record{UserID: 1, BankBalance: 10})

	rec, err := store.Load(t.Context(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(10), rec.BankBalance)

	_, err = store.Load(t.Context(), 2)
	require.ErrorIs(t, err, accounts.ErrAccountNotFound)

	err = store.Save(t.Context(), account.Record{UserID: 2, BankBalance: 99, IsVip: true})
	require.NoError(t, err)

	rec, err = store.Load(t.Context(), 2)
	require.NoError(t, err)
	require.Equal(t, account.Record{UserID: 2, BankBalance: 99, IsVip: true}, rec)
}

func TestStore_RejectsMissingUserID(t *testing.T) {
	t.Parallel()

	err := New().Save(t.Context(), account.Record{})
	require.ErrorIs(t, err, accounts.ErrInvalidRecord)
}

func TestStore_HonorsCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := New().Load(ctx, 1)
	require.ErrorIs(t, err, context.Canceled)

	err = New().Save(ctx, account.Record{UserID: 1})
	require.ErrorIs(t, err, context.Canceled)
}

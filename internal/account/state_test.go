package account

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestState_DefaultsToUnidentified(t *testing.T) {
	t.Parallel()

	s := NewState()

	require.False(t, s.IsIdentified())
	require.False(t, s.IsRegistered())
	require.Zero(t, s.BankBalance())
	require.Equal(t, LevelPlayer, s.Level())
}

func TestState_InitializeAndRecord(t *testing.T) {
	t.Parallel()

	rec := Record{
		UserID:       42,
		BankBalance:  100_000,
		IsRegistered: true,
		Level:        LevelAdministrator,
		IsVip:        true,
		GangID:       7,
	}

	s := NewState()
	s.InitializeFromRecord(rec)

	require.True(t, s.IsIdentified())
	require.Equal(t, uint64(42), s.UserID())
	require.Equal(t, int64(100_000), s.BankBalance())
	require.Equal(t, rec, s.Record())
}

func TestState_TemporaryLevelIsNotPersisted(t *testing.T) {
	t.Parallel()

	s := NewState()
	s.InitializeFromRecord(Record{UserID: 1})
	s.SetLevel(LevelManagement, true)

	require.Equal(t, LevelManagement, s.Level())
	require.True(t, s.LevelIsTemporary())
	require.Equal(t, LevelPlayer, s.Record().Level)

	s.SetLevel(LevelAdministrator, false)
	require.False(t, s.LevelIsTemporary())
	require.Equal(t, LevelAdministrator, s.Record().Level)

	s.SetLevel(LevelManagement, true)
	require.Equal(t, LevelAdministrator, s.Record().Level, "stored level survives a temporary elevation")
}

func TestState_UpdateBankBalance(t *testing.T) {
	t.Parallel()

	s := NewState()

	err := s.UpdateBankBalance(func(current int64) (int64, error) {
		return current + 250, nil
	})
	require.NoError(t, err)
	require.Equal(t, int64(250), s.BankBalance())

	errRejected := errors.New("rejected")
	err = s.UpdateBankBalance(func(current int64) (int64, error) {
		return current + 1_000, errRejected
	})
	require.ErrorIs(t, err, errRejected)
	require.Equal(t, int64(250), s.BankBalance())
}

func TestLevel_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level Level
		want  string
	}{
		{LevelPlayer, "player"},
		{LevelAdministrator, "administrator"},
		{LevelManagement, "management"},
		{Level(99), "player"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, tt.level.String())
	}
}

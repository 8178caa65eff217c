package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/playerledger/internal/account"
	"github.com/fastprodman/playerledger/internal/repos/accounts"
)

func (r *accountsRepo) Load(ctx context.Context, userID uint64) (account.Record, error) {
	rec := account.Record{UserID: userID}

	var gangID sql.NullInt64

	err := r.db.QueryRowContext(ctx, `
		SELECT bank_balance, is_registered, level, is_vip, gang_id
		FROM accounts
		WHERE user_id = $1
	`, userID).Scan(&rec.BankBalance, &rec.IsRegistered, &rec.Level, &rec.IsVip, &gangID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return account.Record{}, accounts.ErrAccountNotFound
		}

		return account.Record{}, fmt.Errorf("load account: %w", err)
	}

	if gangID.Valid {
		rec.GangID = uint64(gangID.Int64)
	}

	return rec, nil
}

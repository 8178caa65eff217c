package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/playerledger/internal/account"
	"github.com/fastprodman/playerledger/internal/infra/pgutils"
	"github.com/fastprodman/playerledger/internal/repos/accounts"
	"github.com/jackc/pgx/v5/pgconn"
)

// Save upserts the account and appends its bank balance to the history table
// in a single transaction.
func (r *accountsRepo) Save(ctx context.Context, rec account.Record) error {
	if rec.UserID == 0 {
		return fmt.Errorf("save account: missing user id: %w", accounts.ErrInvalidRecord)
	}

	gangID := sql.NullInt64{Int64: int64(rec.GangID), Valid: rec.GangID != 0}

	err := pgutils.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO accounts (user_id, bank_balance, is_registered, level, is_vip, gang_id, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, now())
			ON CONFLICT (user_id) DO UPDATE SET
				bank_balance  = EXCLUDED.bank_balance,
				is_registered = EXCLUDED.is_registered,
				level         = EXCLUDED.level,
				is_vip        = EXCLUDED.is_vip,
				gang_id       = EXCLUDED.gang_id,
				updated_at    = EXCLUDED.updated_at
		`, rec.UserID, rec.BankBalance, rec.IsRegistered, rec.Level, rec.IsVip, gangID)
		if err != nil {
			return fmt.Errorf("upsert account: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO account_balance_history (user_id, bank_balance)
			VALUES ($1, $2)
		`, rec.UserID, rec.BankBalance)
		if err != nil {
			return fmt.Errorf("insert balance history: %w", err)
		}

		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23514" { // check_violation
			return fmt.Errorf("save account %d: %w", rec.UserID, accounts.ErrInvalidRecord)
		}

		return fmt.Errorf("save account: %w", err)
	}

	return nil
}

// BalanceHistory returns the saved bank balances of userID, oldest first.
func (r *accountsRepo) BalanceHistory(ctx context.Context, userID uint64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT bank_balance
		FROM account_balance_history
		WHERE user_id = $1
		ORDER BY id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query balance history: %w", err)
	}
	defer rows.Close()

	var out []int64

	for rows.Next() {
		var balance int64

		err = rows.Scan(&balance)
		if err != nil {
			return nil, fmt.Errorf("scan balance history: %w", err)
		}

		out = append(out, balance)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate balance history: %w", err)
	}

	return out, nil
}

package accounts

import (
	"context"
	"errors"

	"github.com/fastprodman/playerledger/internal/account"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrInvalidRecord   = errors.New("invalid account record")
)

// Accounts loads and stores account records keyed by user id.
type Accounts interface {
	Load(ctx context.Context, userID uint64) (account.Record, error)
	Save(ctx context.Context, rec account.Record) error
}

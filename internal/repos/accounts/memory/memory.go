// Package memory is an in-process account store for development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/fastprodman/playerledger/internal/account"
	"github.com/fastprodman/playerledger/internal/repos/accounts"
)

var _ accounts.Accounts = (*Store)(nil)

type Store struct {
	mu      sync.RWMutex
	records map[uint64]account.Record
}

func New(seed ...account.Record) *Store {
	s := &Store{records: make(map[uint64]account.Record, len(seed))}
	for _, rec := range seed {
		s.records[rec.UserID] = rec
	}

	return s
}

func (s *Store) Load(ctx context.Context, userID uint64) (account.Record, error) {
	err := ctx.Err()
	if err != nil {
		return account.Record{}, fmt.Errorf("load account: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[userID]
	if !ok {
		return account.Record{}, accounts.ErrAccountNotFound
	}

	return rec, nil
}

func (s *Store) Save(ctx context.Context, rec account.Record) error {
	err := ctx.Err()
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}

	if rec.UserID == 0 {
		return fmt.Errorf("save account: missing user id: %w", accounts.ErrInvalidRecord)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.UserID] = rec

	return nil
}

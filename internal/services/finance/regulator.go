// Package finance keeps the books on player money: cash carried by connected
// sessions and the balance of their bank accounts.
package finance

import (
	"fmt"
	"sync"

	"github.com/fastprodman/playerledger/internal/sessions"
	"github.com/google/uuid"
)

// Regulator owns all cash and bank mutations. Cash lives only in memory and
// is dropped when the session disconnects; the bank balance lives on the
// session's account state and is persisted by the account manager.
type Regulator struct {
	sessions.BaseObserver

	notifier Notifier
	natives  NativeCalls

	mu   sync.Mutex
	cash map[uuid.UUID]int64
}

func NewRegulator(notifier Notifier, natives NativeCalls) *Regulator {
	return &Regulator{
		notifier: notifier,
		natives:  natives,
		cash:     make(map[uuid.UUID]int64),
	}
}

// --- Bank account ---

// GetBankBalance returns the current bank balance of s.
func (r *Regulator) GetBankBalance(s *sessions.Session) int64 {
	if s == nil {
		return 0
	}

	return s.Account().BankBalance()
}

// Deposit adds amount to the bank account of s. Nothing changes on error.
func (r *Regulator) Deposit(s *sessions.Session, amount int64) error {
	if s == nil {
		return nil
	}

	if amount < 0 {
		return fmt.Errorf("deposit %d: %w", amount, ErrInvalidAmount)
	}

	return s.Account().UpdateBankBalance(func(current int64) (int64, error) {
		if MaximumBankAmount-current < amount {
			return 0, fmt.Errorf("deposit %d onto %d: %w", amount, current, ErrLimitExceeded)
		}

		return current + amount, nil
	})
}

// Withdraw takes amount from the bank account of s. Nothing changes on error.
func (r *Regulator) Withdraw(s *sessions.Session, amount int64) error {
	if s == nil {
		return nil
	}

	if amount < 0 {
		return fmt.Errorf("withdraw %d: %w", amount, ErrInvalidAmount)
	}

	return s.Account().UpdateBankBalance(func(current int64) (int64, error) {
		if current-MinimumBankAmount < amount {
			return 0, fmt.Errorf("withdraw %d from %d: %w", amount, current, ErrInsufficientFundsOrLimit)
		}

		return current - amount, nil
	})
}

// --- Cash ---

// GetCash returns the cash s is carrying.
func (r *Regulator) GetCash(s *sessions.Session) int64 {
	if s == nil {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.cash[s.ID()]
}

// SetCash sets the cash s is carrying, saturating at the cash bounds. Unless
// isAdjustment is set, the notifier and the game engine are told about the
// difference. Adjustments align our books with the engine and must stay silent.
func (r *Regulator) SetCash(s *sessions.Session, amount int64, isAdjustment bool) {
	if s == nil {
		return
	}

	amount = min(max(amount, MinimumCashAmount), MaximumCashAmount)

	var delta int64

	r.mu.Lock()
	// No entry may be created for a session that has been torn down.
	if !s.IsConnected() {
		r.mu.Unlock()
		return
	}

	delta = amount - r.cash[s.ID()]
	r.cash[s.ID()] = amount
	r.mu.Unlock()

	if isAdjustment {
		return
	}

	if r.notifier != nil {
		r.notifier.CashChanged(s, delta)
	}

	if r.natives != nil {
		r.natives.GivePlayerMoney(s, delta)
	}
}

// OnSessionDestroyed drops the cash entry of s.
func (r *Regulator) OnSessionDestroyed(s *sessions.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.cash, s.ID())
}

package finance

import "errors"

// Bounds on the cash a player can carry. The game client cannot represent
// more than nine digits.
const (
	MaximumCashAmount int64 = 999_999_999
	MinimumCashAmount int64 = -999_999_999
)

// Absolute bounds on a bank balance. Other systems may impose lower limits.
const (
	MaximumBankAmount int64 = 5_354_228_880
	MinimumBankAmount int64 = 0
)

var (
	ErrInvalidAmount            = errors.New("invalid amount")
	ErrLimitExceeded            = errors.New("bank balance limit exceeded")
	ErrInsufficientFundsOrLimit = errors.New("insufficient funds or bank balance limit")
)

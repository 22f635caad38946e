// Package ledger holds account balances and the persisted pool state.
//
// All value movement happens inside Atomically: either every Transfer and
// SavePool call made by the callback commits, or none of them do.
package ledger

import (
	"context"
	"errors"

	"wagerpool/internal/models"
)

var (
	ErrUnknownAccount    = errors.New("unknown account")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountFrozen     = errors.New("account frozen")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrSelfTransfer      = errors.New("source and destination are the same account")
)

// Tx is the view of the ledger available inside an atomic unit.
type Tx interface {
	// Transfer moves amount from one account to another.
	Transfer(from, to models.AccountID, amount models.Amount) error
	// SavePool replaces the persisted pool state.
	SavePool(snapshot models.PoolSnapshot) error
}

// Ledger is the account and value-custody provider the pool runs on.
type Ledger interface {
	// Atomically runs fn in a single all-or-nothing unit. A non-nil error
	// from fn discards every change it made.
	Atomically(ctx context.Context, fn func(tx Tx) error) error
	// LoadPool returns the persisted pool state. The boolean is false when
	// no pool has been saved yet.
	LoadPool(ctx context.Context) (models.PoolSnapshot, bool, error)
	// Balance returns the current balance of an account.
	Balance(ctx context.Context, id models.AccountID) (models.Amount, error)
	// OpenAccount creates an account with an initial balance. Existing
	// accounts are left untouched.
	OpenAccount(ctx context.Context, id models.AccountID, initial models.Amount) error
}

package ledger

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"wagerpool/internal/models"
)

type memAccount struct {
	balance models.Amount
	frozen  bool
}

// MemoryLedger keeps accounts and pool state in process memory. It is used
// for development and tests.
type MemoryLedger struct {
	mu       sync.RWMutex
	accounts map[models.AccountID]memAccount
	pool     *models.PoolSnapshot
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		accounts: make(map[models.AccountID]memAccount),
	}
}

// Atomically runs fn against a working copy and commits it only when fn
// returns nil.
func (l *MemoryLedger) Atomically(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tx := &memTx{
		accounts: maps.Clone(l.accounts),
		pool:     l.pool,
	}
	if err := fn(tx); err != nil {
		return err
	}

	l.accounts = tx.accounts
	l.pool = tx.pool
	return nil
}

// LoadPool returns the last committed pool state.
func (l *MemoryLedger) LoadPool(ctx context.Context) (models.PoolSnapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.PoolSnapshot{}, false, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.pool == nil {
		return models.PoolSnapshot{}, false, nil
	}
	return l.pool.Clone(), true, nil
}

// Balance returns the balance of an account.
func (l *MemoryLedger) Balance(ctx context.Context, id models.AccountID) (models.Amount, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	acct, ok := l.accounts[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownAccount, id)
	}
	return acct.balance, nil
}

// OpenAccount creates the account if it does not exist yet.
func (l *MemoryLedger) OpenAccount(ctx context.Context, id models.AccountID, initial models.Amount) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if initial < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, initial)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.accounts[id]; !ok {
		l.accounts[id] = memAccount{balance: initial}
	}
	return nil
}

// SetFrozen freezes or thaws an account. Transfers touching a frozen account
// are refused.
func (l *MemoryLedger) SetFrozen(ctx context.Context, id models.AccountID, frozen bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, id)
	}
	acct.frozen = frozen
	l.accounts[id] = acct
	return nil
}

type memTx struct {
	accounts map[models.AccountID]memAccount
	pool     *models.PoolSnapshot
}

func (tx *memTx) Transfer(from, to models.AccountID, amount models.Amount) error {
	if amount <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	if from == to {
		return fmt.Errorf("%w: %s", ErrSelfTransfer, from)
	}

	src, ok := tx.accounts[from]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, from)
	}
	dst, ok := tx.accounts[to]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, to)
	}
	if src.frozen {
		return fmt.Errorf("%w: %s", ErrAccountFrozen, from)
	}
	if dst.frozen {
		return fmt.Errorf("%w: %s", ErrAccountFrozen, to)
	}
	if src.balance < amount {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientFunds, from, src.balance, amount)
	}

	src.balance -= amount
	dst.balance += amount
	tx.accounts[from] = src
	tx.accounts[to] = dst
	return nil
}

func (tx *memTx) SavePool(snapshot models.PoolSnapshot) error {
	saved := snapshot.Clone()
	tx.pool = &saved
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/coder/quartz"
	"github.com/google/logger"
	"github.com/google/uuid"

	"wagerpool/internal/entropy"
	"wagerpool/internal/ledger"
	"wagerpool/internal/models"
)

// DefaultCustodyAccount is the ledger account that holds pooled stakes.
const DefaultCustodyAccount models.AccountID = "pool"

// PoolService is the pool ledger: it admits participants, holds their stakes
// in a custody account and pays the whole pot to one of them on demand.
type PoolService struct {
	// mu serializes Enter and PickWinner. Readers never take it.
	mu    sync.Mutex
	state atomic.Pointer[models.PoolSnapshot]

	ledger  ledger.Ledger
	entropy entropy.Source
	custody models.AccountID
	clock   quartz.Clock
	metrics *Metrics
}

// Option configures a PoolService.
type Option func(*PoolService)

// WithCustodyAccount sets the account that holds pooled stakes.
func WithCustodyAccount(id models.AccountID) Option {
	return func(s *PoolService) { s.custody = id }
}

// WithClock sets the clock used to timestamp settlements.
func WithClock(clock quartz.Clock) Option {
	return func(s *PoolService) { s.clock = clock }
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(s *PoolService) { s.metrics = m }
}

// OpenPool restores the pool persisted in l, or creates an empty one owned by
// operator if none exists. A stored pool with a different operator is an
// error: the operator never changes for the lifetime of a pool.
func OpenPool(ctx context.Context, l ledger.Ledger, src entropy.Source, operator models.AccountID, opts ...Option) (*PoolService, error) {
	if operator == "" {
		return nil, fmt.Errorf("%w: operator", ErrInvalidCaller)
	}

	s := &PoolService{
		ledger:  l,
		entropy: src,
		custody: DefaultCustodyAccount,
		clock:   quartz.NewReal(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.custody == "" || s.custody == operator {
		return nil, fmt.Errorf("%w: custody account %q", ErrReservedAccount, s.custody)
	}

	if err := l.OpenAccount(ctx, s.custody, 0); err != nil {
		return nil, fmt.Errorf("open custody account: %w", err)
	}

	snapshot, found, err := l.LoadPool(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pool: %w", err)
	}
	if found {
		if snapshot.Operator != operator {
			return nil, fmt.Errorf("%w: stored %q, configured %q", ErrOperatorMismatch, snapshot.Operator, operator)
		}
		logger.Infof("pool: restored with %d entries, balance %s", len(snapshot.Participants), snapshot.Balance)
	} else {
		snapshot = models.PoolSnapshot{Operator: operator, Participants: []models.AccountID{}}
		if err := l.Atomically(ctx, func(tx ledger.Tx) error { return tx.SavePool(snapshot) }); err != nil {
			return nil, fmt.Errorf("create pool: %w", err)
		}
		logger.Infof("pool: created for operator %s", operator)
	}

	s.state.Store(&snapshot)
	s.metrics.observeState(&snapshot)
	return s, nil
}

// Enter deposits stake from caller into the pool and records caller as a
// participant. Nothing changes if the stake is too small or the ledger
// refuses the deposit.
func (s *PoolService) Enter(ctx context.Context, caller models.AccountID, stake models.Amount) error {
	err := s.enter(ctx, caller, stake)
	if err != nil {
		s.metrics.observeRejection("enter", err)
		logger.Warningf("pool: entry by %s rejected: %v", caller, err)
	}
	return err
}

func (s *PoolService) enter(ctx context.Context, caller models.AccountID, stake models.Amount) error {
	if caller == "" {
		return ErrInvalidCaller
	}
	if caller == s.custody {
		return fmt.Errorf("%w: %s", ErrReservedAccount, caller)
	}
	if stake < models.MinimumStake {
		return fmt.Errorf("%w: got %s, need %s", ErrInsufficientStake, stake, models.MinimumStake)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.state.Load()
	if cur.Balance > math.MaxInt64-stake {
		return fmt.Errorf("%w: balance %s, stake %s", ErrBalanceOverflow, cur.Balance, stake)
	}

	next := cur.Clone()
	next.Participants = append(next.Participants, caller)
	next.Balance += stake

	err := s.ledger.Atomically(ctx, func(tx ledger.Tx) error {
		if err := tx.Transfer(caller, s.custody, stake); err != nil {
			return fmt.Errorf("%w: deposit from %s: %w", ErrTransferFailed, caller, err)
		}
		return tx.SavePool(next)
	})
	if err != nil {
		return err
	}

	s.state.Store(&next)
	s.metrics.observeEntry(stake)
	s.metrics.observeState(&next)
	logger.Infof("pool: %s entered with %s (entries=%d, balance=%s)", caller, stake, len(next.Participants), next.Balance)
	return nil
}

// PickWinner selects a participant using the entropy source, pays them the
// whole balance and resets the pool. Only the operator may call it. Payout
// and reset commit together or not at all.
func (s *PoolService) PickWinner(ctx context.Context, caller models.AccountID) (models.Settlement, error) {
	settlement, err := s.pickWinner(ctx, caller)
	if err != nil {
		s.metrics.observeRejection("pick_winner", err)
		logger.Warningf("pool: winner selection by %s rejected: %v", caller, err)
	}
	return settlement, err
}

func (s *PoolService) pickWinner(ctx context.Context, caller models.AccountID) (models.Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.state.Load()
	if caller != cur.Operator {
		return models.Settlement{}, fmt.Errorf("%w: %s", ErrUnauthorized, caller)
	}
	entries := len(cur.Participants)
	if entries == 0 {
		return models.Settlement{}, ErrEmptyPool
	}

	seed, err := s.entropy.Seed(ctx, entropy.Draw{
		Participants: cur.Clone().Participants,
		Balance:      cur.Balance,
	})
	if err != nil {
		return models.Settlement{}, fmt.Errorf("%w: %w", ErrEntropyUnavailable, err)
	}
	index, err := entropy.SelectIndex(seed, entries)
	if err != nil {
		return models.Settlement{}, fmt.Errorf("%w: %w", ErrEntropyUnavailable, err)
	}
	winner := cur.Participants[index]

	next := models.PoolSnapshot{Operator: cur.Operator, Participants: []models.AccountID{}}
	err = s.ledger.Atomically(ctx, func(tx ledger.Tx) error {
		if err := tx.Transfer(s.custody, winner, cur.Balance); err != nil {
			return fmt.Errorf("%w: payout to %s: %w", ErrTransferFailed, winner, err)
		}
		return tx.SavePool(next)
	})
	if err != nil {
		return models.Settlement{}, err
	}

	s.state.Store(&next)

	settlement := models.Settlement{
		ID:        uuid.NewString(),
		Winner:    winner,
		Index:     index,
		Entries:   entries,
		Payout:    cur.Balance,
		SettledAt: s.clock.Now("pool", "settle"),
	}
	s.metrics.observeSettlement(settlement.Payout)
	s.metrics.observeState(&next)
	logger.Infof("pool: settlement %s paid %s to %s (index %d of %d)", settlement.ID, settlement.Payout, winner, index, entries)
	return settlement, nil
}

// GetPlayers returns the current participants in entry order.
func (s *PoolService) GetPlayers() []models.AccountID {
	return s.state.Load().Clone().Participants
}

// Snapshot returns a copy of the full pool state.
func (s *PoolService) Snapshot() models.PoolSnapshot {
	return s.state.Load().Clone()
}

// Operator returns the account allowed to pick a winner.
func (s *PoolService) Operator() models.AccountID {
	return s.state.Load().Operator
}

// Balance returns the pooled balance.
func (s *PoolService) Balance() models.Amount {
	return s.state.Load().Balance
}

// IsRuleViolation reports whether err is a rejection caused by the caller
// breaking a pool rule, as opposed to an infrastructure failure.
func IsRuleViolation(err error) bool {
	return errors.Is(err, ErrInsufficientStake) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrEmptyPool) ||
		errors.Is(err, ErrInvalidCaller) ||
		errors.Is(err, ErrBalanceOverflow) ||
		errors.Is(err, ErrReservedAccount)
}

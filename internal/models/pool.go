package models

import (
	"fmt"
	"time"
)

// AccountID identifies an account on the ledger. It is issued externally and
// treated as opaque.
type AccountID string

// Amount is a count of base currency units.
type Amount int64

const (
	// Coin is the number of base units in one whole coin.
	Coin Amount = 1_000_000

	// MinimumStake is the smallest stake Enter accepts (0.02 of a coin).
	MinimumStake = Coin / 50
)

// String renders the amount as whole coins with six decimals.
func (a Amount) String() string {
	sign := ""
	mag := uint64(a)
	if a < 0 {
		sign = "-"
		// Unsigned negation stays exact for math.MinInt64.
		mag = -mag
	}
	return fmt.Sprintf("%s%d.%06d", sign, mag/uint64(Coin), mag%uint64(Coin))
}

// PoolSnapshot is the full recoverable state of the pool between calls.
type PoolSnapshot struct {
	Operator     AccountID   `json:"operator"`
	Participants []AccountID `json:"participants"`
	Balance      Amount      `json:"balance"`
}

// Clone returns a deep copy, so callers can mutate the result freely.
func (s PoolSnapshot) Clone() PoolSnapshot {
	participants := make([]AccountID, len(s.Participants))
	copy(participants, s.Participants)
	s.Participants = participants
	return s
}

// Settlement is the receipt of a successful winner selection.
type Settlement struct {
	ID        string    `json:"id"`
	Winner    AccountID `json:"winner"`
	Index     int       `json:"index"`
	Entries   int       `json:"entries"`
	Payout    Amount    `json:"payout"`
	SettledAt time.Time `json:"settledAt"`
}

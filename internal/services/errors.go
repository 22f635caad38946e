package services

import "errors"

var (
	ErrInsufficientStake  = errors.New("stake below minimum")
	ErrUnauthorized       = errors.New("caller is not the pool operator")
	ErrEmptyPool          = errors.New("pool has no participants")
	ErrTransferFailed     = errors.New("ledger transfer failed")
	ErrInvalidCaller      = errors.New("caller identity is empty")
	ErrBalanceOverflow    = errors.New("pool balance would overflow")
	ErrReservedAccount    = errors.New("account is reserved for pool custody")
	ErrEntropyUnavailable = errors.New("entropy source unavailable")
	ErrOperatorMismatch   = errors.New("stored pool belongs to a different operator")
)

// RejectReason names the rule an error violated, for logs and metrics.
func RejectReason(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientStake):
		return "insufficient_stake"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrEmptyPool):
		return "empty_pool"
	case errors.Is(err, ErrTransferFailed):
		return "transfer_failed"
	case errors.Is(err, ErrInvalidCaller):
		return "invalid_caller"
	case errors.Is(err, ErrBalanceOverflow):
		return "balance_overflow"
	case errors.Is(err, ErrReservedAccount):
		return "reserved_account"
	case errors.Is(err, ErrEntropyUnavailable):
		return "entropy_unavailable"
	default:
		return "internal"
	}
}

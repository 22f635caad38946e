package models

import (
	"math"
	"testing"
)

func TestAmountString(t *testing.T) {
	tests := []struct {
		amount Amount
		want   string
	}{
		{0, "0.000000"},
		{MinimumStake, "0.020000"},
		{Coin, "1.000000"},
		{-Coin - 1, "-1.000001"},
		{math.MaxInt64, "9223372036854.775807"},
		{math.MinInt64, "-9223372036854.775808"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.amount.String(); got != tt.want {
				t.Errorf("Amount(%d).String() = %q, want %q", int64(tt.amount), got, tt.want)
			}
		})
	}
}

func TestPoolSnapshotClone(t *testing.T) {
	orig := PoolSnapshot{Operator: "op", Participants: []AccountID{"alice"}, Balance: Coin}
	c := orig.Clone()
	c.Participants[0] = "mallory"
	if orig.Participants[0] != "alice" {
		t.Errorf("Clone shares participants with the original: %v", orig.Participants)
	}
}

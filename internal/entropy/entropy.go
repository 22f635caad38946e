// Package entropy supplies the seeds used to pick a winner.
package entropy

import (
	"context"
	"encoding/binary"
	"errors"
	"math/big"
	"sync"

	"wagerpool/internal/models"
)

// ErrEmptySeed is returned by SelectIndex for a zero-length seed.
var ErrEmptySeed = errors.New("empty seed")

// Draw describes the pool at the moment a seed is requested.
type Draw struct {
	Participants []models.AccountID
	Balance      models.Amount
}

// Source produces a seed that the caller cannot predict at call time.
type Source interface {
	Seed(ctx context.Context, draw Draw) ([]byte, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, draw Draw) ([]byte, error)

func (f SourceFunc) Seed(ctx context.Context, draw Draw) ([]byte, error) {
	return f(ctx, draw)
}

// SelectIndex reads seed as an unsigned big-endian integer and reduces it
// modulo n.
func SelectIndex(seed []byte, n int) (int, error) {
	if len(seed) == 0 {
		return 0, ErrEmptySeed
	}
	if n <= 0 {
		return 0, errors.New("no candidates to select from")
	}
	v := new(big.Int).SetBytes(seed)
	return int(v.Mod(v, big.NewInt(int64(n))).Int64()), nil
}

// Fixed returns a Source that always yields seed. It makes selection
// deterministic in tests.
func Fixed(seed uint64) Source {
	return Sequence(seed)
}

// Sequence returns a Source that yields the given seeds in order and then
// repeats the last one.
func Sequence(seeds ...uint64) Source {
	if len(seeds) == 0 {
		seeds = []uint64{0}
	}
	var (
		mu   sync.Mutex
		next int
	)
	return SourceFunc(func(ctx context.Context, _ Draw) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mu.Lock()
		defer mu.Unlock()

		seed := seeds[next]
		if next < len(seeds)-1 {
			next++
		}
		return binary.BigEndian.AppendUint64(nil, seed), nil
	})
}

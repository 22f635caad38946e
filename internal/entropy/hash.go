package entropy

import (
	"context"
	"crypto/cipher"
	"encoding/binary"
	"sync"

	"github.com/coder/quartz"
	"go.dedis.ch/kyber/v4/util/random"
	"golang.org/x/crypto/sha3"
)

const noiseBits = 256

// HashSource derives each seed as a Keccak-256 digest over the previous seed,
// the current time, fresh random noise and the participant list. The noise
// comes from a cryptographic stream, so the operator cannot precompute the
// outcome from the pool contents and the clock alone.
type HashSource struct {
	clock quartz.Clock

	mu     sync.Mutex
	stream cipher.Stream
	prev   []byte
}

// NewHashSource returns a HashSource backed by the system random stream.
func NewHashSource(clock quartz.Clock) *HashSource {
	return &HashSource{
		clock:  clock,
		stream: random.New(),
	}
}

func (s *HashSource) Seed(ctx context.Context, draw Draw) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h := sha3.NewLegacyKeccak256()
	h.Write(s.prev)
	h.Write(binary.BigEndian.AppendUint64(nil, uint64(s.clock.Now("entropy", "seed").UnixNano())))
	h.Write(random.Bits(noiseBits, false, s.stream))
	h.Write(binary.BigEndian.AppendUint64(nil, uint64(len(draw.Participants))))
	h.Write(binary.BigEndian.AppendUint64(nil, uint64(draw.Balance)))
	for _, p := range draw.Participants {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}

	s.prev = h.Sum(nil)
	seed := make([]byte, len(s.prev))
	copy(seed, s.prev)
	return seed, nil
}

package random

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/mcoot/petbattle/internal/model"
)

// SeedSize is the number of bytes returned by a single draw
const SeedSize = 32

// Random provides random bytes that can be mocked for testing
type Random interface {
	// Derive returns SeedSize random bytes bound to the given subject
	Derive(subject []byte) ([SeedSize]byte, error)
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Derive hashes the subject under a fresh random key
func (r *CryptoRandom) Derive(subject []byte) ([SeedSize]byte, error) {
	var key [SeedSize]byte
	if _, err := rand.Read(key[:]); err != nil {
		return [SeedSize]byte{}, fmt.Errorf("%w: %v", model.ErrRandomUnavailable, err)
	}
	return keyedSum(key[:], subject, nil)
}

// SeededRandom derives every draw from a fixed seed and the subject alone.
// Callers make subjects unique, so a restarted process holding the same
// seed and the same stored state continues the sequence instead of
// replaying it.
type SeededRandom struct {
	key [SeedSize]byte
}

// NewSeeded creates a SeededRandom from a seed of any length
func NewSeeded(seed []byte) *SeededRandom {
	return &SeededRandom{key: blake2b.Sum256(seed)}
}

// Derive returns the draw for subject
func (r *SeededRandom) Derive(subject []byte) ([SeedSize]byte, error) {
	return keyedSum(r.key[:], subject, nil)
}

func keyedSum(key, subject, suffix []byte) ([SeedSize]byte, error) {
	var out [SeedSize]byte
	h, err := blake2b.New256(key)
	if err != nil {
		return out, fmt.Errorf("%w: %v", model.ErrRandomUnavailable, err)
	}
	h.Write(subject)
	h.Write(suffix)
	copy(out[:], h.Sum(nil))
	return out, nil
}

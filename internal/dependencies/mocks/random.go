package mocks

import (
	"github.com/mcoot/petbattle/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	// Draws is a queue of results to return from Derive
	Draws     [][random.SeedSize]byte
	drawIndex int

	// Err, when set, is returned by every Derive call
	Err error

	// Subjects records the subject of every Derive call
	Subjects [][]byte
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Derive returns the next queued draw, or all zeroes if none remaining
func (r *MockRandom) Derive(subject []byte) ([random.SeedSize]byte, error) {
	r.Subjects = append(r.Subjects, append([]byte(nil), subject...))
	if r.Err != nil {
		return [random.SeedSize]byte{}, r.Err
	}
	if r.drawIndex >= len(r.Draws) {
		return [random.SeedSize]byte{}, nil
	}
	result := r.Draws[r.drawIndex]
	r.drawIndex++
	return result, nil
}

// QueueDraw adds a draw whose leading bytes are prefix, the rest zero
func (r *MockRandom) QueueDraw(prefix ...byte) {
	var draw [random.SeedSize]byte
	copy(draw[:], prefix)
	r.Draws = append(r.Draws, draw)
}

// QueueRoll queues a registration draw producing the given raw power and
// energy values and facing coin
func (r *MockRandom) QueueRoll(rawPower, rawEnergy uint16, facing byte) {
	r.QueueDraw(byte(rawPower>>8), byte(rawPower), byte(rawEnergy>>8), byte(rawEnergy), facing)
}

// QueueCoin queues a draw whose first byte is coin
func (r *MockRandom) QueueCoin(coin byte) {
	r.QueueDraw(coin)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.Draws = nil
	r.drawIndex = 0
	r.Err = nil
	r.Subjects = nil
}

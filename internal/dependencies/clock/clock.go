package clock

import "time"

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time in UTC so stored timestamps compare cleanly
func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}

// BlocksToDuration converts a block count to wall time for a given block interval
func BlocksToDuration(blocks uint32, blockTime time.Duration) time.Duration {
	return time.Duration(blocks) * blockTime
}

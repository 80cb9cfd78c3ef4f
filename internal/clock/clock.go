// Package clock wraps the time source used to measure regions.
package clock

import (
	"sync"
	"time"
)

// Clock reports the current instant and elapsed durations.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// Monotonic reads the runtime's monotonic clock. time.Now embeds a monotonic
// reading, so subtractions are immune to wall clock adjustments.
type Monotonic struct{}

// Now returns the current time.
func (Monotonic) Now() time.Time { return time.Now() }

// Since returns the time elapsed since t.
func (Monotonic) Since(t time.Time) time.Duration { return time.Since(t) }

// Manual is a clock that only moves when told to. It is used in tests.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual returns a manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the current manual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.now
}

// Since returns the manual time elapsed since t.
func (m *Manual) Since(t time.Time) time.Duration {
	return m.Now().Sub(t)
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

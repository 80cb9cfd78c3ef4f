package clock

import (
	"testing"
	"time"

	"github.com/longbridgeapp/assert"
)

func TestManual_Advance(t *testing.T) {
	start := time.Unix(100, 0)
	manual := NewManual(start)

	mark := manual.Now()
	manual.Advance(250 * time.Millisecond)

	assert.Equal(t, 250*time.Millisecond, manual.Since(mark))
	assert.Equal(t, start.Add(250*time.Millisecond), manual.Now())
}

func TestMonotonic_NeverNegative(t *testing.T) {
	var c Monotonic

	mark := c.Now()
	assert.True(t, c.Since(mark) >= 0)
}

package audio

import (
	"sync"
	"time"
)

// Clock supplies the monotonic time base playback positions are derived
// from. Positions are always reconstructed from clock deltas, never from a
// separately incremented counter, so timer drift cannot desynchronize the
// reported position from the audio output.
type Clock interface {
	// Now returns seconds elapsed since the clock was created.
	Now() float64
}

type monotonicClock struct {
	start time.Time
}

// NewClock returns a wall-time backed Clock starting at zero.
func NewClock() Clock {
	return &monotonicClock{start: time.Now()}
}

func (c *monotonicClock) Now() float64 {
	return time.Since(c.start).Seconds()
}

// ManualClock is a Clock advanced explicitly. Used by tests and offline
// simulation.
type ManualClock struct {
	mu sync.Mutex
	t  float64
}

// NewManualClock returns a ManualClock at zero.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// Now returns the current manual time in seconds.
func (c *ManualClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Advance moves the clock forward by d seconds.
func (c *ManualClock) Advance(d float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t += d
}

// Set jumps the clock to t seconds.
func (c *ManualClock) Set(t float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

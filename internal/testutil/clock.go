package testutil

import (
	"sync"
	"time"
)

// Epoch is the first instant a DeterministicClock reports.
var Epoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// DefaultStep is how far a DeterministicClock advances per reading.
const DefaultStep = time.Millisecond

// DeterministicClock is a thread-safe fake wall clock for tests.
//
// Every call to Now advances the clock by a fixed step, so a run's start
// time and elapsed duration are identical on every execution. Pass Now to
// engine.WithClock.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu    sync.Mutex
	step  time.Duration
	ticks int64
}

// NewDeterministicClock creates a clock starting at Epoch that advances by
// DefaultStep per reading.
//
// The first call to Now() returns Epoch.
func NewDeterministicClock() *DeterministicClock {
	return NewDeterministicClockWithStep(DefaultStep)
}

// NewDeterministicClockWithStep creates a clock with a custom step.
func NewDeterministicClockWithStep(step time.Duration) *DeterministicClock {
	return &DeterministicClock{step: step}
}

// Now returns the current time and advances the clock by one step.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := Epoch.Add(time.Duration(c.ticks) * c.step)
	c.ticks++
	return t
}

// Ticks returns how many times Now has been called.
func (c *DeterministicClock) Ticks() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks
}

// Reset rewinds the clock to Epoch.
//
// Used for test reuse. After Reset(), the next call to Now() returns Epoch.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks = 0
}

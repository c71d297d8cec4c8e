package app

import (
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// PhaseClock schedules the single active phase deadline. Scheduling a new
// deadline unconditionally supersedes the pending callback, so two phase
// timers can never race.
type PhaseClock struct {
	clock clockwork.Clock

	mu       sync.Mutex
	deadline time.Time
	timer    clockwork.Timer
	cancel   chan struct{}
}

// NewPhaseClock creates a phase clock backed by the given time source
func NewPhaseClock(clock clockwork.Clock) *PhaseClock {
	return &PhaseClock{clock: clock}
}

// Schedule arms fn to fire after d, replacing any pending callback
func (c *PhaseClock) Schedule(d time.Duration, fn func()) {
	c.mu.Lock()
	c.stopLocked()

	c.deadline = c.clock.Now().Add(d)
	timer := c.clock.NewTimer(d)
	cancel := make(chan struct{})
	c.timer = timer
	c.cancel = cancel
	c.mu.Unlock()

	go func() {
		select {
		case <-cancel:
			stopAndDrainTimer(timer)
			return
		case <-timer.Chan():
		}
		// The timer may fire in the same instant a new phase supersedes
		// this one; a closed cancel wins.
		select {
		case <-cancel:
			return
		default:
		}
		fn()
	}()
}

// Stop cancels the pending callback and clears the deadline
func (c *PhaseClock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *PhaseClock) stopLocked() {
	if c.cancel != nil {
		close(c.cancel)
		c.cancel = nil
	}
	c.timer = nil
	c.deadline = time.Time{}
}

// Deadline returns the absolute deadline, if one is armed
func (c *PhaseClock) Deadline() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deadline, !c.deadline.IsZero()
}

// RemainingSeconds reports ceil(deadline-now) in whole seconds, clamped at
// zero, so a late joiner can rebuild the countdown from a snapshot alone
func (c *PhaseClock) RemainingSeconds() int {
	c.mu.Lock()
	deadline := c.deadline
	c.mu.Unlock()

	if deadline.IsZero() {
		return 0
	}
	remaining := int(math.Ceil(deadline.Sub(c.clock.Now()).Seconds()))
	if remaining < 0 {
		return 0
	}
	return remaining
}

// stopAndDrainTimer stops a timer and drains its channel if it already
// fired, per the time.Timer.Stop documentation
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}

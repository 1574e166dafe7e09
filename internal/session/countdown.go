package session

// Countdown tracks the time budget of the current session item.
// It is a pure value: ticking is driven externally, so tests run it
// without a real clock.
type Countdown struct {
	limitMs     int
	stepMs      int
	remainingMs int
	expired     bool
}

// NewCountdown creates a countdown with the given budget and tick
// granularity, both in milliseconds
func NewCountdown(limitMs, stepMs int) *Countdown {
	return &Countdown{
		limitMs:     limitMs,
		stepMs:      stepMs,
		remainingMs: limitMs,
	}
}

// Start reinitializes the countdown to its full budget
func (c *Countdown) Start() {
	c.remainingMs = c.limitMs
	c.expired = false
}

// Tick decrements the remaining budget by one step, clamping at zero.
// It returns true exactly once, on the tick that reaches zero. Ticks
// after expiry are ignored until Start is called again.
func (c *Countdown) Tick() bool {
	if c.expired {
		return false
	}

	c.remainingMs -= c.stepMs
	if c.remainingMs <= 0 {
		c.remainingMs = 0
		c.expired = true
		return true
	}

	return false
}

// RemainingMs returns the remaining budget in milliseconds
func (c *Countdown) RemainingMs() int {
	return c.remainingMs
}

// LimitMs returns the full budget in milliseconds
func (c *Countdown) LimitMs() int {
	return c.limitMs
}

// Expired reports whether the budget has run out
func (c *Countdown) Expired() bool {
	return c.expired
}

package kiosk

// Clock is the session countdown: a single number of seconds, decremented
// once per tick and floored at zero. It never repeats and cannot be paused,
// extended or reset mid-session. Reaching zero is the sole trigger for the
// Active → Ending transition.
type Clock struct {
	remaining int
}

// NewClock creates a countdown starting at the given budget in seconds.
func NewClock(seconds int) *Clock {
	if seconds < 0 {
		seconds = 0
	}
	return &Clock{remaining: seconds}
}

// Tick advances the countdown by one second and returns the remaining time.
func (c *Clock) Tick() int {
	if c.remaining > 0 {
		c.remaining--
	}
	return c.remaining
}

// Remaining returns the seconds left.
func (c *Clock) Remaining() int { return c.remaining }

// Expired reports whether the countdown reached zero.
func (c *Clock) Expired() bool { return c.remaining == 0 }

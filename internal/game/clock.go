package game

import "time"

// Clock is the simulation clock shared by every per-tick update in a world.
// While frozen it does not advance and hands out a zero delta.
type Clock struct {
	now    time.Duration
	frozen bool
}

// Advance moves the clock forward and returns the delta callers should simulate.
func (c *Clock) Advance(dt time.Duration) time.Duration {
	if c.frozen || dt <= 0 {
		return 0
	}
	c.now += dt
	return dt
}

// Now returns the simulated time elapsed since the round started.
func (c *Clock) Now() time.Duration { return c.now }

func (c *Clock) Freeze() { c.frozen = true }

func (c *Clock) Frozen() bool { return c.frozen }

package core

import "time"

// Clock measures one span of wall time.
type Clock struct {
	start   time.Time
	elapsed time.Duration
}

func NewClock() *Clock {
	return &Clock{}
}

// Start resets the clock and begins a new span.
func (c *Clock) Start() {
	c.start = time.Now()
	c.elapsed = 0
}

// Stop ends the span. Stopping a clock that was never started does nothing.
func (c *Clock) Stop() {
	if c.start.IsZero() {
		return
	}
	c.elapsed = time.Since(c.start)
	c.start = time.Time{}
}

// Elapsed returns the length of the span in seconds; a running clock reports
// the time since Start.
func (c *Clock) Elapsed() float64 {
	if !c.start.IsZero() {
		return time.Since(c.start).Seconds()
	}
	return c.elapsed.Seconds()
}

// FILE: clock.go
// Package main – Monotonic simulation clock.
//
// Clock is the single time axis the whole kernel runs on.
// It holds an integer millisecond timestamp bounded to [start, end] and only
// ever moves forward: Set and Add both reject any result that does not
// strictly exceed the current value. There is no wall-clock involved — the
// World loop is the only caller that ever advances it.
package main

import "time"

// Clock is a bounded, strictly increasing millisecond timestamp.
type Clock struct {
	start int64
	end   int64
	ts    int64
}

// NewClock creates a Clock positioned at start. start must be >= 0 and
// strictly less than end.
func NewClock(start, end int64) (*Clock, error) {
	if start < 0 {
		return nil, ErrInvalidTime
	}
	if start >= end {
		return nil, ErrInvalidTime
	}
	return &Clock{start: start, end: end, ts: start}, nil
}

// Set moves the clock to t. t must lie within [start, end] and be strictly
// greater than the current value: equal or lesser is rejected.
func (c *Clock) Set(t int64) error {
	if t < c.start || t > c.end {
		return ErrInvalidTime
	}
	if t <= c.ts {
		return ErrInvalidTime
	}
	c.ts = t
	return nil
}

// Add advances the clock by delta, clamped to end. The result must still be
// strictly greater than the current value, or Add fails.
func (c *Clock) Add(delta int64) error {
	next := c.ts + delta
	if next < c.start || next > c.end {
		next = c.end
	}
	if next <= c.ts {
		return ErrInvalidTime
	}
	c.ts = next
	return nil
}

// Now returns the current timestamp in milliseconds.
func (c *Clock) Now() int64 { return c.ts }

// Start returns the lower bound of the simulation window.
func (c *Clock) Start() int64 { return c.start }

// End returns the upper bound of the simulation window.
func (c *Clock) End() int64 { return c.end }

// Time renders the current timestamp as a UTC time.Time, for logging.
func (c *Clock) Time() time.Time { return time.UnixMilli(c.ts).UTC() }

// Before reports whether the clock is strictly before t.
func (c *Clock) Before(t int64) bool { return c.ts < t }

// After reports whether the clock is strictly after t.
func (c *Clock) After(t int64) bool { return c.ts > t }

package shared

import "time"

// Clock abstracts the current time so that validity windows, availability
// filtering, and the reminder look-ahead can be tested deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time in UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock always returns the same instant. Test helper.
type FixedClock struct {
	Time time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return c.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now invokes the wrapped function.
func (f ClockFunc) Now() time.Time {
	return f()
}

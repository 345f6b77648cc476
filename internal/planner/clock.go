package planner

import "time"

// Clock supplies timestamps for transcript entries and elapsed-time fallbacks
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reports wall-clock time in UTC
var SystemClock Clock = ClockFunc(func() time.Time { return time.Now().UTC() })

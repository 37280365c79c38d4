// Package clock pins "today" to a single location so the write path and
// every read path derive the same calendar-day key from the same instant.
package clock

import "time"

// DayFormat is the calendar-day key layout used to partition attendance.
const DayFormat = "2006-01-02"

// Clock yields the current time. Injected so tests can freeze it.
type Clock interface {
	Now() time.Time
}

// System is a Clock reading the wall clock in a fixed location.
type System struct {
	loc *time.Location
}

// NewSystem returns a system clock in loc, or UTC when loc is nil.
func NewSystem(loc *time.Location) System {
	if loc == nil {
		loc = time.UTC
	}
	return System{loc: loc}
}

// Now returns the current time in the clock's location.
func (s System) Now() time.Time {
	return time.Now().In(s.loc)
}

// DayKey formats t as a calendar-day key.
func DayKey(t time.Time) string {
	return t.Format(DayFormat)
}

// ParseDayKey validates a caller-supplied day key.
func ParseDayKey(s string) (time.Time, error) {
	return time.Parse(DayFormat, s)
}

// Fixed is a Clock frozen at a single instant, for tests.
type Fixed struct {
	T time.Time
}

// Now returns the frozen instant.
func (f Fixed) Now() time.Time { return f.T }

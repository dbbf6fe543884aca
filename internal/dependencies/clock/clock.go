package clock

import "time"

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock
type RealClock struct {
	loc *time.Location
}

// New creates a RealClock reporting time in loc. The season cutoff is a
// calendar date, so the location decides when it passes. A nil location
// means UTC.
func New(loc *time.Location) *RealClock {
	if loc == nil {
		loc = time.UTC
	}
	return &RealClock{loc: loc}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Location returns the location times are reported in
func (c *RealClock) Location() *time.Location {
	return c.loc
}

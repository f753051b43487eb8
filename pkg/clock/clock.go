// Package clock abstracts "now" so that time-dependent business logic
// (trial windows, billing periods) can be evaluated at an explicit instant
// in tests instead of reading the wall clock.
package clock

import "time"

// Clock supplies the current instant. Implementations must return UTC.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock.
type System struct{}

func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always returns the same instant. Intended for tests.
type Fixed struct {
	Instant time.Time
}

func (f Fixed) Now() time.Time {
	return f.Instant.UTC()
}

// At returns a Fixed clock pinned to t.
func At(t time.Time) Fixed {
	return Fixed{Instant: t}
}

// Package clock abstracts the current time so persistence timestamps can be
// pinned in tests.
package clock

import "time"

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// Real is the system clock.
type Real struct{}

// Now returns the current UTC time.
func (Real) Now() time.Time {
	return time.Now().UTC()
}

// Mock is a settable clock for tests.
type Mock struct {
	current time.Time
}

// NewMock creates a Mock starting at t.
func NewMock(t time.Time) *Mock {
	return &Mock{current: t}
}

// Now returns the mock time.
func (m *Mock) Now() time.Time {
	return m.current
}

// Set sets the mock time.
func (m *Mock) Set(t time.Time) {
	m.current = t
}

// Advance moves the mock time forward by d.
func (m *Mock) Advance(d time.Duration) {
	m.current = m.current.Add(d)
}

// Copyright (c) 2026 RuneBingo. All rights reserved.

/*
Package clock abstracts the current time so date-sensitive rules can be tested
deterministically.

Production code injects [Real]; tests inject [Fixed] and move it with [FixedClock.Set].
*/
package clock

import (
	"sync"
	"time"
)

// Clock reports the current instant.
type Clock interface {
	Now() time.Time
}

// Real returns a Clock backed by the standard time package, in UTC.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// Today truncates the clock's current instant to a UTC calendar day.
func Today(c Clock) time.Time {
	return Date(c.Now())
}

// Date returns the UTC midnight of t's calendar day.
func Date(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// FixedClock is a Clock frozen at a settable instant.
//
// FixedClock is safe for concurrent use.
type FixedClock struct {
	mutex   sync.RWMutex
	current time.Time
}

// Fixed returns a FixedClock stopped at initial.
func Fixed(initial time.Time) *FixedClock {
	return &FixedClock{current: initial.UTC()}
}

// Now returns the frozen instant.
func (clock *FixedClock) Now() time.Time {
	clock.mutex.RLock()
	defer clock.mutex.RUnlock()
	return clock.current
}

// Set moves the clock to t.
func (clock *FixedClock) Set(t time.Time) {
	clock.mutex.Lock()
	defer clock.mutex.Unlock()
	clock.current = t.UTC()
}

// Advance moves the clock forward by d.
func (clock *FixedClock) Advance(d time.Duration) {
	clock.mutex.Lock()
	defer clock.mutex.Unlock()
	clock.current = clock.current.Add(d)
}

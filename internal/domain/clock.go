package domain

import "time"

// Clock supplies the current time. Classification and arrears logic never
// call time.Now directly; they take a Clock so "today" is injectable in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock implementation used in production wiring.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

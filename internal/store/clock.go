package store

import "time"

// Clock supplies the current time to the store so tests can pin it.
type Clock interface {
	Now() time.Time
}

// RealClock wraps time.Now.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

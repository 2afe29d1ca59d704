// Package testingx contains code useful for testing.
package testingx

import (
	"sync"
	"time"
)

// TimeDeterministic implements time.Now in a deterministic fashion
// such that every call returns a moment in time that occurs a fixed
// step after the moment returned by the previous call.
//
// It's safe to use this struct from multiple goroutine contexts.
type TimeDeterministic struct {
	// counter counts the time passed since the zero time.
	counter time.Duration

	// mu protects fields in this structure from concurrent access.
	mu sync.Mutex

	// step is the amount by which each Now call advances the clock.
	step time.Duration

	// zeroTime is the lazy-initialized zero time. The first call to Now
	// will initialize this field with the current time.
	zeroTime time.Time
}

// NewTimeDeterministic creates a new instance using the given zeroTime
// value and advancing the clock by one second on every call.
func NewTimeDeterministic(zeroTime time.Time) *TimeDeterministic {
	return NewTimeDeterministicWithStep(zeroTime, time.Second)
}

// NewTimeDeterministicWithStep is like NewTimeDeterministic but
// allows to choose by how much each Now call advances the clock.
func NewTimeDeterministicWithStep(zeroTime time.Time, step time.Duration) *TimeDeterministic {
	return &TimeDeterministic{
		counter:  0,
		mu:       sync.Mutex{},
		step:     step,
		zeroTime: zeroTime,
	}
}

// Now is like time.Now but more deterministic. The first call returns the
// configured zeroTime and subsequent calls return moments in time that occur
// exactly one step after the time returned by the previous call.
func (td *TimeDeterministic) Now() time.Time {
	td.mu.Lock()
	defer td.mu.Unlock()
	if td.zeroTime.IsZero() {
		td.zeroTime = time.Now()
	}
	offset := td.counter
	td.counter += td.step
	return td.zeroTime.Add(offset)
}

package board

import (
	"sync/atomic"
	"time"
)

// Delayer waits for a number of microseconds without giving up the core.
type Delayer interface {
	WaitMicroseconds(us uint32)
}

// Timer busy-waits against the monotonic clock. It never yields to the
// scheduler: the running task keeps the processor for the whole wait.
type Timer struct {
	now   func() time.Time
	waits atomic.Int64
	spins atomic.Int64
}

// NewTimer creates a timer reading the system clock.
func NewTimer() *Timer {
	return &Timer{now: time.Now}
}

// WaitMicroseconds spins until us microseconds have passed.
func (t *Timer) WaitMicroseconds(us uint32) {
	deadline := t.now().Add(time.Duration(us) * time.Microsecond)
	for t.now().Before(deadline) {
		t.spins.Add(1)
	}
	t.waits.Add(1)
}

// Waits returns the number of completed waits.
func (t *Timer) Waits() int64 { return t.waits.Load() }

// Spins returns the number of clock polls spent waiting.
func (t *Timer) Spins() int64 { return t.spins.Load() }

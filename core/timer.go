package core

import (
	"sync/atomic"
	"time"
)

// Tick is a point on the node's time base, in microseconds since boot.
type Tick int64

// Add returns t shifted by d.
func (t Tick) Add(d time.Duration) Tick {
	return t + Tick(d/time.Microsecond)
}

// Sub returns the duration t-u.
func (t Tick) Sub(u Tick) time.Duration {
	return time.Duration(t-u) * time.Microsecond
}

// Millis returns t in whole milliseconds.
func (t Tick) Millis() int64 {
	return int64(t) / 1000
}

// TickSource reads the main clock in microseconds.
// The main clock is expected to stop while the CPU is in a low-power mode;
// time spent asleep is accounted separately through TimeBase.AddSleep.
type TickSource func() Tick

var bootTime = time.Now()

// hardwareTicks is the default tick source: monotonic time since package init.
func hardwareTicks() Tick {
	return Tick(time.Since(bootTime) / time.Microsecond)
}

// TimeBase is the node's monotonic clock. It is the sum of the main clock
// and the calibrated durations reported by the sleep controller.
//
// The sleep offset is the only field written outside the cooperative loop's
// normal flow, so it is kept in a single atomically accessed word.
type TimeBase struct {
	src   TickSource
	slept int64 // microseconds, atomic
}

// NewTimeBase creates a time base reading from src. A nil src uses the
// process monotonic clock.
func NewTimeBase(src TickSource) *TimeBase {
	if src == nil {
		src = hardwareTicks
	}
	return &TimeBase{src: src}
}

// Now returns the current tick.
func (tb *TimeBase) Now() Tick {
	return tb.src() + Tick(atomic.LoadInt64(&tb.slept))
}

// AddSleep advances the time base by a sleep duration. Durations passed
// here must already be calibrated.
func (tb *TimeBase) AddSleep(d time.Duration) {
	if d <= 0 {
		return
	}
	atomic.AddInt64(&tb.slept, int64(d/time.Microsecond))
}

// Slept returns the total sleep time accounted so far.
func (tb *TimeBase) Slept() time.Duration {
	return time.Duration(atomic.LoadInt64(&tb.slept)) * time.Microsecond
}

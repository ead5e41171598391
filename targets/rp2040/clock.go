//go:build rp2040

package main

import (
	"device/rp"
	"sync/atomic"

	"tempnode/core"
)

// Microseconds spent inside lowPower.EnterLowPower.
var asleepMicros uint64

// uptimeMicros reads the 64-bit 1 MHz hardware timer.
func uptimeMicros() uint64 {
	for {
		hi := rp.TIMER.TIMERAWH.Get()
		lo := rp.TIMER.TIMERAWL.Get()
		if rp.TIMER.TIMERAWH.Get() == hi {
			return uint64(hi)<<32 | uint64(lo)
		}
	}
}

// awakeTicks is the node's main clock: the hardware timer with the time
// spent asleep removed. The sleep controller adds the calibrated sleep
// duration back through the time base.
func awakeTicks() core.Tick {
	return core.Tick(uptimeMicros() - atomic.LoadUint64(&asleepMicros))
}

//go:build rp2040

package main

import (
	"sync/atomic"
	"time"

	"tempnode/core"
)

// Longest single sleep between watchdog updates.
const sleepChunk = time.Second

// lowPower idles the core for a sleep mode's nominal period. TinyGo's
// scheduler enters WFE while sleeping, so pin interrupts still run.
type lowPower struct {
	wd *watchdog
}

func (l *lowPower) EnterLowPower(mode core.SleepMode) {
	start := uptimeMicros()
	for left := mode.Nominal(); left > 0; left -= sleepChunk {
		d := left
		if d > sleepChunk {
			d = sleepChunk
		}
		time.Sleep(d)
		l.wd.KeepAlive()
	}
	atomic.AddUint64(&asleepMicros, uptimeMicros()-start)
}

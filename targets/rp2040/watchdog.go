//go:build rp2040

package main

import (
	"machine"
	"time"
)

type watchdog struct {
	started bool
}

// startWatchdog arms the hardware watchdog. The RP2040 limit is about 8.3 s.
func startWatchdog(timeout time.Duration) (*watchdog, error) {
	err := machine.Watchdog.Configure(machine.WatchdogConfig{
		TimeoutMillis: uint32(timeout / time.Millisecond),
	})
	if err != nil {
		return nil, err
	}
	if err := machine.Watchdog.Start(); err != nil {
		return nil, err
	}
	return &watchdog{started: true}, nil
}

func (w *watchdog) KeepAlive() {
	if w != nil && w.started {
		machine.Watchdog.Update()
	}
}

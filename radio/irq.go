package radio

import (
	"time"

	"tempnode/core"
)

// deferredIRQ latches radio status-line interrupts. The pin handler only
// marks; the driver's own interrupt handling runs later from a goroutine
// or from Service.
type deferredIRQ struct {
	flags  core.PendingFlags
	handle func()
	poll   time.Duration
}

// mark records a status-line change. Safe from interrupt context.
func (d *deferredIRQ) mark() {
	d.flags.Raise(core.FlagRadio)
}

// service runs the handler once if an interrupt was latched.
func (d *deferredIRQ) service() bool {
	if !d.flags.Take(core.FlagRadio) {
		return false
	}
	if d.handle != nil {
		d.handle()
	}
	return true
}

// during calls fn while servicing latched interrupts every d.poll. The
// poller stops before during returns.
func (d *deferredIRQ) during(fn func() error) error {
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		for {
			select {
			case <-done:
				return
			default:
			}
			d.service()
			time.Sleep(d.poll)
		}
	}()

	err := fn()
	close(done)
	<-exited
	return err
}

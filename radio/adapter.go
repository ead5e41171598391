package radio

import "tempnode/core"

// Adapter routes stack lifecycle events into the node. Every event feeds
// the watchdog and emits a diagnostic line; Joined applies the duty rate and
// TxComplete is forwarded to the pipeline.
type Adapter struct {
	stack    Stack
	watchdog core.WatchdogDriver
	tb       *core.TimeBase

	joinedDutyRate uint8
	onTxComplete   func()

	counts [eventCount]uint32
}

// NewAdapter creates an adapter for stack. Call Attach to start receiving
// events.
func NewAdapter(stack Stack, wd core.WatchdogDriver, tb *core.TimeBase, joinedDutyRate uint8) *Adapter {
	return &Adapter{
		stack:          stack,
		watchdog:       wd,
		tb:             tb,
		joinedDutyRate: joinedDutyRate,
	}
}

// OnTxComplete sets the transmit-complete callback.
func (a *Adapter) OnTxComplete(fn func()) {
	a.onTxComplete = fn
}

// Attach installs the adapter as the stack's event handler.
func (a *Adapter) Attach() {
	a.stack.SetEventHandler(a.Handle)
}

// Handle processes one event.
func (a *Adapter) Handle(ev EventType) {
	if ev >= eventCount {
		ev = EventUnknown
	}
	if a.watchdog != nil {
		a.watchdog.KeepAlive()
	}
	a.counts[ev]++

	now := a.tb.Now()
	core.RecordTiming(core.EvtRadioEvent, 0, now, uint32(ev), a.counts[ev])
	core.Debug(core.LevelDebug, core.Itoa(int(now.Millis()))+": "+ev.String())

	switch ev {
	case EventJoined:
		a.stack.SetDutyRate(a.joinedDutyRate)
	case EventTxComplete:
		if a.onTxComplete != nil {
			a.onTxComplete()
		}
	}
}

// Count returns how many times ev has been handled.
func (a *Adapter) Count(ev EventType) uint32 {
	if ev >= eventCount {
		ev = EventUnknown
	}
	return a.counts[ev]
}

package core

import "time"

// fakeClock is a manually advanced main clock.
type fakeClock struct {
	now Tick
}

func (c *fakeClock) ticks() Tick { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

// fakeLowPower records sleep entries and optionally runs a hook per entry.
type fakeLowPower struct {
	modes []SleepMode
	hook  func(n int)
}

func (f *fakeLowPower) EnterLowPower(mode SleepMode) {
	f.modes = append(f.modes, mode)
	if f.hook != nil {
		f.hook(len(f.modes))
	}
}

func newTestScheduler(capacity int) (*Scheduler, *fakeClock) {
	clk := &fakeClock{}
	return NewScheduler(NewTimeBase(clk.ticks), capacity), clk
}

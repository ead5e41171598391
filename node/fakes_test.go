package node

import (
	"time"

	"tempnode/core"
	"tempnode/radio"
	"tempnode/sensor"
)

type fakeClock struct{ now core.Tick }

func (c *fakeClock) ticks() core.Tick        { return c.now }
func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeLowPower struct {
	entries int
	onEnter func(n int)
}

func (f *fakeLowPower) EnterLowPower(core.SleepMode) {
	f.entries++
	if f.onEnter != nil {
		f.onEnter(f.entries)
	}
}

type fakeWatchdog struct{ kicks int }

func (w *fakeWatchdog) KeepAlive() { w.kicks++ }

type fakeBattery struct {
	raw uint32
	err error
}

func (b *fakeBattery) ReadBattery() (uint32, error) { return b.raw, b.err }

type fakeBus struct {
	addrs    []sensor.Address
	temps    map[sensor.Address]int16
	noAddr   map[int]bool
	requests int
	reqErr   error
}

func newFakeBus(temps ...int16) *fakeBus {
	b := &fakeBus{temps: map[sensor.Address]int16{}, noAddr: map[int]bool{}}
	for i, v := range temps {
		a := sensor.Address{0x28, byte(i + 1)}
		b.addrs = append(b.addrs, a)
		b.temps[a] = v
	}
	return b
}

func (b *fakeBus) RequestConversion() error {
	b.requests++
	return b.reqErr
}

func (b *fakeBus) ConversionLatency(r sensor.Resolution) time.Duration {
	return sensor.ConversionLatency(r)
}

func (b *fakeBus) DeviceCount() int { return len(b.addrs) }

func (b *fakeBus) Address(i int) (sensor.Address, bool) {
	if i < 0 || i >= len(b.addrs) || b.noAddr[i] {
		return sensor.Address{}, false
	}
	return b.addrs[i], true
}

func (b *fakeBus) Read(a sensor.Address) (int16, bool) {
	v, ok := b.temps[a]
	return v, ok
}

type uplink struct {
	port      uint8
	data      []byte
	confirmed bool
	at        core.Tick
}

// fakeStack queues a TxComplete for every accepted uplink and delivers
// events from Service.
type fakeStack struct {
	pending   bool
	submitErr error
	max       int
	dutyRate  uint8

	uplinks []uplink
	queued  []radio.EventType
	handler func(radio.EventType)

	now        func() core.Tick
	wake       func()
	afterEvent func(radio.EventType)
}

func newFakeStack() *fakeStack {
	return &fakeStack{max: 51, now: func() core.Tick { return 0 }}
}

func (s *fakeStack) TxPending() bool { return s.pending }

func (s *fakeStack) SubmitUplink(port uint8, data []byte, confirmed bool) error {
	if s.submitErr != nil {
		return s.submitErr
	}
	s.uplinks = append(s.uplinks, uplink{
		port:      port,
		data:      append([]byte(nil), data...),
		confirmed: confirmed,
		at:        s.now(),
	})
	s.pending = true
	s.queued = append(s.queued, radio.EventTxComplete)
	if s.wake != nil {
		s.wake()
	}
	return nil
}

func (s *fakeStack) MaxPayload() int        { return s.max }
func (s *fakeStack) SetDutyRate(rate uint8) { s.dutyRate = rate }

func (s *fakeStack) Service() {
	evs := s.queued
	s.queued = nil
	for _, ev := range evs {
		if ev == radio.EventTxComplete {
			s.pending = false
		}
		if s.handler != nil {
			s.handler(ev)
		}
		if s.afterEvent != nil {
			s.afterEvent(ev)
		}
	}
}

func (s *fakeStack) SetEventHandler(fn func(radio.EventType)) { s.handler = fn }

func testConfig() Config {
	c := DefaultConfig()
	c.SkipSelfTest = true
	return c
}

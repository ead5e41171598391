package node

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tempnode/core"
	"tempnode/radio"
)

type nodeHarness struct {
	clk   *fakeClock
	lp    *fakeLowPower
	wd    *fakeWatchdog
	bus   *fakeBus
	stack *fakeStack
	n     *Node
}

func newNodeHarness(t *testing.T, cfg Config, temps ...int16) *nodeHarness {
	t.Helper()
	h := &nodeHarness{
		clk:   &fakeClock{},
		lp:    &fakeLowPower{},
		wd:    &fakeWatchdog{},
		bus:   newFakeBus(temps...),
		stack: newFakeStack(),
	}
	n, err := New(cfg, Deps{
		Clock:    h.clk.ticks,
		LowPower: h.lp,
		Watchdog: h.wd,
		Battery:  &fakeBattery{raw: 600},
		Bus:      h.bus,
		Stack:    h.stack,
	})
	require.NoError(t, err)
	h.n = n
	h.stack.now = n.Now
	h.stack.wake = n.RadioISR
	return h
}

// stepUntil runs the main loop, advancing the main clock 1 ms between
// iterations, until cond holds.
func (h *nodeHarness) stepUntil(t *testing.T, limit time.Duration, cond func() bool) {
	t.Helper()
	deadline := h.n.Now().Add(limit)
	for !cond() {
		require.Less(t, int64(h.n.Now()), int64(deadline), "condition not reached within %v", limit)
		h.n.Step()
		h.clk.advance(time.Millisecond)
	}
}

func TestNewRejectsInvalidSetup(t *testing.T) {
	base := func() (Config, Deps) {
		return testConfig(), Deps{
			LowPower: &fakeLowPower{},
			Bus:      newFakeBus(),
			Stack:    newFakeStack(),
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config, *Deps)
	}{
		{"missing stack", func(_ *Config, d *Deps) { d.Stack = nil }},
		{"missing bus", func(_ *Config, d *Deps) { d.Bus = nil }},
		{"zero interval", func(c *Config, _ *Deps) { c.TxIntervalSeconds = 0 }},
		{"bad resolution", func(c *Config, _ *Deps) { c.Resolution = 7 }},
		{"configured sensors exceed payload", func(c *Config, _ *Deps) { c.MaxSensors = 26 }},
		{"discovered sensors exceed payload", func(_ *Config, d *Deps) {
			temps := make([]int16, 26)
			d.Bus = newFakeBus(temps...)
		}},
		{"small frame limit", func(_ *Config, d *Deps) {
			s := newFakeStack()
			s.max = 11
			d.Stack = s
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, d := base()
			tt.mutate(&cfg, &d)
			n, err := New(cfg, d)
			assert.Nil(t, n)
			assert.ErrorIs(t, err, ErrConfig)
		})
	}

	cfg, d := base()
	cfg.MaxSensors = 25
	_, err := New(cfg, d)
	assert.NoError(t, err, "25 sensors fit in 51 bytes")
}

func TestNodeTransmitIntervalEndToEnd(t *testing.T) {
	h := newNodeHarness(t, testConfig(), 2800, 2900)

	var deliveredAt, dueAfter core.Tick
	h.stack.afterEvent = func(ev radio.EventType) {
		if ev == radio.EventTxComplete && deliveredAt == 0 {
			deliveredAt = h.n.Now()
			dueAfter = h.n.Pipeline().Job().Due()
		}
	}

	h.n.Start()
	h.stepUntil(t, 2*time.Second, func() bool { return len(h.stack.uplinks) == 1 })
	first := h.stack.uplinks[0]
	assert.GreaterOrEqual(t, first.at.Sub(0), 750*time.Millisecond)
	assert.Len(t, first.data, 5)

	h.stepUntil(t, 200*time.Second, func() bool { return len(h.stack.uplinks) == 2 })
	require.NotZero(t, deliveredAt)

	assert.Equal(t, deliveredAt.Add(180*time.Second), dueAfter)
	gap := h.stack.uplinks[1].at.Sub(deliveredAt)
	assert.GreaterOrEqual(t, gap, 180*time.Second+750*time.Millisecond)
	assert.Less(t, gap, 180*time.Second+760*time.Millisecond)

	assert.Equal(t, uint32(1), h.n.Adapter().Count(radio.EventTxComplete))
	assert.Greater(t, h.lp.entries, 20, "idle time is spent asleep")
	assert.Greater(t, h.wd.kicks, 0)
}

func TestNodeJoinedSetsDutyRate(t *testing.T) {
	h := newNodeHarness(t, testConfig())
	h.n.Start()

	h.stack.queued = append(h.stack.queued, radio.EventJoining, radio.EventJoined)
	h.n.RadioISR()
	kicks := h.wd.kicks
	h.n.Step()

	assert.Equal(t, uint8(12), h.stack.dutyRate)
	assert.GreaterOrEqual(t, h.wd.kicks, kicks+3, "loop top and each event feed the watchdog")
}

func TestNodeButtonInterruptsSleep(t *testing.T) {
	h := newNodeHarness(t, testConfig(), 2000)
	h.n.Start()
	h.stepUntil(t, 2*time.Second, func() bool { return len(h.stack.uplinks) == 1 })

	h.lp.entries = 0
	h.lp.onEnter = func(n int) {
		if n == 2 {
			h.n.ButtonISR(false)
		}
	}
	h.n.Step() // delivers TxComplete, then sleeps toward the next cycle

	assert.Equal(t, 2, h.lp.entries)
	assert.True(t, h.n.Pipeline().SendRequested())
	assert.Equal(t, h.n.Now(), h.n.Pipeline().Job().Due())
	assert.False(t, h.n.flags.Pending(core.FlagButton))
}

func TestNodePollsButtonAfterEachSleepCycle(t *testing.T) {
	h := newNodeHarness(t, testConfig())
	h.n.deps.Button = func() bool { return false }
	h.n.Start()
	h.n.Step() // begin read, then sleep toward the 750 ms conversion

	assert.Equal(t, 1, h.lp.entries)
	assert.True(t, h.n.Pipeline().SendRequested())
}

func TestConfigErrorKeepsCause(t *testing.T) {
	sched := core.NewScheduler(core.NewTimeBase(nil), 1)
	_, err := sched.NewJob("other")
	require.NoError(t, err)

	_, err = NewPipeline(sched, newFakeBus(), newFakeStack(), nil, &Config{}, PayloadSize(0))
	require.Error(t, err)

	err = configError(err)
	assert.ErrorIs(t, err, ErrConfig)
	assert.ErrorIs(t, err, core.ErrQueueOverflow)
}

func TestNodeButtonISR(t *testing.T) {
	h := newNodeHarness(t, testConfig())

	h.n.ButtonISR(true)
	assert.False(t, h.n.flags.Pending(core.FlagButton), "high level is not a press")

	h.n.ButtonISR(false)
	assert.True(t, h.n.flags.Pending(core.FlagButton))
	h.n.flags.Take(core.FlagButton)

	h.n.Pipeline().ForceSend()
	h.n.ButtonISR(false)
	assert.False(t, h.n.flags.Pending(core.FlagButton), "ignored while a send is requested")

	h.n.RadioISR()
	assert.True(t, h.n.flags.Pending(core.FlagRadio))
	assert.False(t, h.n.flags.Pending(core.FlagButton))
}

func TestNodeSelfTest(t *testing.T) {
	cfg := testConfig()
	cfg.SkipSelfTest = false
	h := newNodeHarness(t, cfg)

	h.n.Start()

	assert.Equal(t, 5, h.lp.entries)
	assert.Equal(t, core.Tick(0).Add(540*time.Millisecond+4320*time.Millisecond+25920*time.Millisecond), h.n.Now())
	assert.True(t, h.n.Pipeline().Job().Pending())
	assert.Equal(t, h.n.Now(), h.n.Pipeline().Job().Due())
}

func TestNodeSelfTestDurations(t *testing.T) {
	h := newNodeHarness(t, testConfig())
	got := h.n.SelfTest()
	assert.Equal(t, []time.Duration{540 * time.Millisecond, 4320 * time.Millisecond, 25920 * time.Millisecond}, got)
	for i, want := range []time.Duration{time.Second, 8 * time.Second, 30 * time.Second} {
		assert.LessOrEqual(t, got[i], want)
	}
}

func TestNodeRunStopsOnCancel(t *testing.T) {
	h := newNodeHarness(t, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, h.n.Run(ctx), context.Canceled)
	assert.Zero(t, h.lp.entries)
}

// Package node ties the scheduler, sleep controller, sensor bus and radio
// stack into the sensor node's main loop.
package node

import (
	"context"
	"fmt"
	"time"

	"tempnode/core"
	"tempnode/radio"
	"tempnode/sensor"
	"tempnode/x/mathx"
)

// jobSlots is the scheduler capacity. The pipeline owns the only job.
const jobSlots = 1

// Deps are the hardware collaborators of a Node.
type Deps struct {
	Clock    core.TickSource // nil uses the process clock
	LowPower core.LowPowerDriver
	Watchdog core.WatchdogDriver
	Battery  core.BatteryDriver
	Bus      sensor.Bus
	Stack    radio.Stack

	// Button samples the wake button; false is pressed. Optional.
	Button func() bool
}

// Node is the sensor node.
type Node struct {
	cfg  Config
	deps Deps

	tb       *core.TimeBase
	flags    core.PendingFlags
	sched    *core.Scheduler
	sleeper  *core.Sleeper
	pipeline *Pipeline
	adapter  *radio.Adapter
}

// New validates cfg against the attached hardware and builds the node.
// Every failure wraps ErrConfig.
func New(cfg Config, d Deps) (*Node, error) {
	if d.Bus == nil || d.Stack == nil || d.LowPower == nil {
		return nil, fmt.Errorf("%w: missing sensor bus, radio stack or low-power driver", ErrConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, _ := cfg.DebugLevel()
	core.SetDebugLevel(level)

	sensors := mathx.Max(cfg.MaxSensors, d.Bus.DeviceCount())
	size := PayloadSize(sensors)
	if limit := d.Stack.MaxPayload(); size > limit {
		return nil, fmt.Errorf("%w: %d sensors need %d payload bytes, stack allows %d",
			ErrConfig, sensors, size, limit)
	}

	n := &Node{cfg: cfg, deps: d}
	n.tb = core.NewTimeBase(d.Clock)
	n.sched = core.NewScheduler(n.tb, jobSlots)

	p, err := NewPipeline(n.sched, d.Bus, d.Stack, d.Battery, &n.cfg, size)
	if err != nil {
		return nil, configError(err)
	}
	n.pipeline = p

	n.sleeper = core.NewSleeper(d.LowPower, n.tb, &n.flags)
	n.sleeper.OnWake = n.pollButton

	n.adapter = radio.NewAdapter(d.Stack, d.Watchdog, n.tb, cfg.JoinedDutyRate)
	n.adapter.OnTxComplete(p.OnTxComplete)
	return n, nil
}

// Start attaches the event adapter, runs the sleep self-test unless
// disabled and queues the first read.
func (n *Node) Start() {
	n.adapter.Attach()
	if !n.cfg.SkipSelfTest {
		n.SelfTest()
	}
	n.pipeline.Start()
}

// Step runs one main-loop iteration: service the radio, run due jobs,
// sleep until the next one and act on a button press.
func (n *Node) Step() {
	n.keepAlive()
	if n.flags.Take(core.FlagRadio) {
		n.deps.Stack.Service()
	}

	if wait := n.sched.RunDue(); wait > 0 {
		n.sleeper.SleepFor(wait)
	}

	if n.flags.Take(core.FlagButton) {
		core.Debug(core.LevelInfo, "Button pressed")
		n.pipeline.ForceSend()
	}
}

// Run steps the node until ctx is cancelled.
func (n *Node) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n.Step()
	}
}

// ButtonISR records a press from the button interrupt. level is the
// sampled pin; only a low level counts. Presses are ignored while a forced
// send is in progress.
func (n *Node) ButtonISR(level bool) {
	if n.pipeline.SendRequested() {
		return
	}
	if !level {
		n.flags.Raise(core.FlagButton)
	}
}

// RadioISR records activity on a radio status line.
func (n *Node) RadioISR() {
	n.flags.Raise(core.FlagRadio)
}

// SelfTest sleeps for 1 s, 8 s and 30 s and reports the time accounted
// for each. A reboot loop is throttled by the same delay.
func (n *Node) SelfTest() []time.Duration {
	var got []time.Duration
	for _, d := range []time.Duration{time.Second, 8 * time.Second, 30 * time.Second} {
		core.Debugv(core.LevelInfo, "Test sleep time for ms ", int64(d/time.Millisecond))
		start := n.tb.Now()
		n.keepAlive()
		n.sleeper.SleepFor(d)
		elapsed := n.tb.Now().Sub(start)
		core.Debugv(core.LevelInfo, "Test Time should be (ms) : ", int64(elapsed/time.Millisecond))
		got = append(got, elapsed)
	}
	return got
}

// Now returns the node's time base.
func (n *Node) Now() core.Tick { return n.tb.Now() }

// Pipeline returns the sense-and-send pipeline.
func (n *Node) Pipeline() *Pipeline { return n.pipeline }

// Scheduler returns the job scheduler.
func (n *Node) Scheduler() *core.Scheduler { return n.sched }

// Adapter returns the radio event adapter.
func (n *Node) Adapter() *radio.Adapter { return n.adapter }

// configError marks err as a startup configuration failure while keeping
// it in the chain.
func configError(err error) error {
	return fmt.Errorf("%w: %w", ErrConfig, err)
}

func (n *Node) pollButton() {
	if n.deps.Button != nil {
		n.ButtonISR(n.deps.Button())
	}
}

func (n *Node) keepAlive() {
	if n.deps.Watchdog != nil {
		n.deps.Watchdog.KeepAlive()
	}
}

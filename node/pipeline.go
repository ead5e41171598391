package node

import (
	"sync/atomic"

	"tempnode/core"
	"tempnode/protocol"
	"tempnode/radio"
	"tempnode/sensor"
	"tempnode/x/mathx"
)

// State is a sense-and-send pipeline state.
type State uint8

const (
	StateIdle State = iota
	StateAcquiringReadings
	StateAwaitingConversion
	StateSending
	StateAwaitingTxComplete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAcquiringReadings:
		return "acquiring"
	case StateAwaitingConversion:
		return "awaiting-conversion"
	case StateSending:
		return "sending"
	case StateAwaitingTxComplete:
		return "awaiting-tx-complete"
	default:
		return "state?"
	}
}

// Trigger is an input to the pipeline.
type Trigger uint8

const (
	// TriggerBeginRead comes from the periodic timer or a forced send.
	TriggerBeginRead Trigger = iota
	TriggerConversionRequested
	TriggerConversionDone
	TriggerBusy
	TriggerSubmitted
	TriggerTxComplete
	// TriggerOversize means the bus reported more sensors than the uplink
	// buffer was sized for.
	TriggerOversize
)

type action uint8

const (
	actNone action = iota
	actRequestConversion
	actScheduleSend
	actSend
	actDefer
	actScheduleNext
)

// transition is the pipeline's state table. Combinations it does not list
// leave the state unchanged.
func transition(s State, tr Trigger) (State, action) {
	switch tr {
	case TriggerBeginRead:
		return StateAcquiringReadings, actRequestConversion
	case TriggerTxComplete:
		return StateIdle, actScheduleNext
	}

	switch {
	case s == StateAcquiringReadings && tr == TriggerConversionRequested:
		return StateAwaitingConversion, actScheduleSend
	case s == StateAwaitingConversion && tr == TriggerConversionDone:
		return StateSending, actSend
	case s == StateSending && tr == TriggerBusy:
		return StateAwaitingConversion, actDefer
	case s == StateSending && tr == TriggerSubmitted:
		return StateAwaitingTxComplete, actNone
	case s == StateSending && tr == TriggerOversize:
		return StateIdle, actScheduleNext
	}
	return s, actNone
}

// Pipeline reads the sensors and submits one uplink per cycle. All of its
// steps share a single scheduler job, so scheduling any step replaces the
// pending one.
type Pipeline struct {
	sched   *core.Scheduler
	job     *core.Job
	bus     sensor.Bus
	stack   radio.Stack
	battery core.BatteryDriver
	cfg     *Config
	out     *protocol.ScratchOutput

	state         State
	sendRequested uint32 // atomic

	submitted  uint32
	collisions uint32
	dropped    uint32
}

// NewPipeline reserves the pipeline's job. payloadCap bounds the uplink
// buffer.
func NewPipeline(sched *core.Scheduler, bus sensor.Bus, stack radio.Stack, battery core.BatteryDriver, cfg *Config, payloadCap int) (*Pipeline, error) {
	job, err := sched.NewJob("sendjob")
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		sched:   sched,
		job:     job,
		bus:     bus,
		stack:   stack,
		battery: battery,
		cfg:     cfg,
		out:     protocol.NewScratchOutput(payloadCap),
	}, nil
}

// Start schedules the first read to run at once.
func (p *Pipeline) Start() {
	p.sched.ScheduleNow(p.job, p.beginRead)
}

// ForceSend replaces whatever step is pending with an immediate read.
func (p *Pipeline) ForceSend() {
	atomic.StoreUint32(&p.sendRequested, 1)
	p.sched.ScheduleNow(p.job, p.beginRead)
}

// SendRequested reports whether a forced send is in progress. Safe from
// interrupt context.
func (p *Pipeline) SendRequested() bool {
	return atomic.LoadUint32(&p.sendRequested) != 0
}

// OnTxComplete ends the cycle and schedules the next read.
func (p *Pipeline) OnTxComplete() {
	p.fire(TriggerTxComplete)
}

// State returns the current state.
func (p *Pipeline) State() State { return p.state }

// Job returns the pipeline's scheduler job.
func (p *Pipeline) Job() *core.Job { return p.job }

// Submitted returns the number of accepted uplinks.
func (p *Pipeline) Submitted() uint32 { return p.submitted }

// Collisions returns the number of deferred sends.
func (p *Pipeline) Collisions() uint32 { return p.collisions }

// Dropped returns the number of cycles abandoned because the payload did
// not fit the uplink buffer.
func (p *Pipeline) Dropped() uint32 { return p.dropped }

func (p *Pipeline) beginRead()      { p.fire(TriggerBeginRead) }
func (p *Pipeline) conversionDone() { p.fire(TriggerConversionDone) }

func (p *Pipeline) fire(tr Trigger) {
	next, act := transition(p.state, tr)
	p.state = next

	switch act {
	case actRequestConversion:
		if err := p.bus.RequestConversion(); err != nil {
			core.Debug(core.LevelDebug, "conversion request failed: "+err.Error())
		}
		p.fire(TriggerConversionRequested)
	case actScheduleSend:
		wait := p.bus.ConversionLatency(p.cfg.SensorResolution())
		p.sched.ScheduleAt(p.job, p.sched.Now().Add(wait), p.conversionDone)
	case actSend:
		p.send()
	case actDefer:
		p.collisions++
		now := p.sched.Now()
		core.RecordTiming(core.EvtCollision, 0, now, p.collisions, 0)
		p.sched.ScheduleAt(p.job, now.Add(p.cfg.TxInterval()), p.conversionDone)
	case actScheduleNext:
		atomic.StoreUint32(&p.sendRequested, 0)
		p.sched.ScheduleAt(p.job, p.sched.Now().Add(p.cfg.TxInterval()), p.beginRead)
	}
}

func (p *Pipeline) send() {
	if p.stack.TxPending() {
		core.Debug(core.LevelInfo, "OpState::TXRXPEND, not sending")
		p.fire(TriggerBusy)
		return
	}

	data := BuildPayload(p.out, p.batteryLevel(), p.bus)
	if p.out.Overflowed() {
		p.dropped++
		want := PayloadSize(p.bus.DeviceCount())
		core.Debugv(core.LevelInfo, "payload too large, not sending: ", int64(want))
		core.RecordTiming(core.EvtOversize, 0, p.sched.Now(), uint32(want), uint32(p.out.Cap()))
		p.fire(TriggerOversize)
		return
	}
	if err := p.stack.SubmitUplink(p.cfg.Port, data, p.cfg.Confirmed); err != nil {
		core.Debug(core.LevelInfo, "uplink rejected: "+err.Error())
		p.fire(TriggerBusy)
		return
	}
	p.submitted++
	core.RecordTiming(core.EvtUplink, 0, p.sched.Now(), uint32(len(data)), p.submitted)
	core.Debug(core.LevelInfo, "Packet queued")
	p.fire(TriggerSubmitted)
}

func (p *Pipeline) batteryLevel() uint8 {
	if p.battery == nil {
		return 0
	}
	raw, err := p.battery.ReadBattery()
	if err != nil {
		core.Debug(core.LevelDebug, "battery read failed: "+err.Error())
		return 0
	}
	return mathx.ScaleU8(raw, p.cfg.BatteryFullScale)
}

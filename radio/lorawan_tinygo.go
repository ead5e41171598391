//go:build tinygo

package radio

import (
	"machine"
	"sync/atomic"
	"time"

	"tinygo.org/x/drivers/lora/lorawan"
	"tinygo.org/x/drivers/lora/lorawan/region"
	"tinygo.org/x/drivers/sx127x"

	"tempnode/core"
	"tempnode/x/mathx"
)

// EU868 DR0 application payload limit.
const loraMaxPayload = 51

// How often latched DIO interrupts are serviced while a MAC call blocks.
const irqPoll = 2 * time.Millisecond

// LoRaWANConfig wires an SX127x module and the OTAA credentials.
type LoRaWANConfig struct {
	SPI      *machine.SPI
	ResetPin machine.Pin
	CSPin    machine.Pin
	DIO0Pin  machine.Pin
	DIO1Pin  machine.Pin

	DevEUI [8]byte
	AppEUI [8]byte
	AppKey [16]byte

	// TxPowerDBm caps the output power on PA_BOOST for every transmission.
	TxPowerDBm int8

	JoinRetry time.Duration
}

// cappedRadio limits the power the MAC may request.
type cappedRadio struct {
	*sx127x.Device
	maxDBm int8
}

func (r cappedRadio) SetTxPower(dbm int8, paBoost bool) {
	r.Device.SetTxPower(mathx.Clamp(dbm, minTxPowerDBm, r.maxDBm), paBoost)
}

// Lowest PA_BOOST output of the SX127x.
const minTxPowerDBm = 2

type uplink struct {
	port      uint8
	data      []byte
	confirmed bool
}

// LoRaWANStack runs the blocking tinygo LoRaWAN MAC calls on a worker
// goroutine. Events are queued and only delivered from Service.
type LoRaWANStack struct {
	cfg     LoRaWANConfig
	dev     *sx127x.Device
	otaa    *lorawan.Otaa
	session *lorawan.Session

	uplinks chan uplink
	events  chan EventType
	handler func(EventType)
	wake    func()
	irq     deferredIRQ

	pending  uint32 // atomic
	dutyRate uint32 // atomic
}

// NewLoRaWANStack creates the stack. wake is called from the worker each
// time an event is queued, and from the radio DIO interrupts.
func NewLoRaWANStack(cfg LoRaWANConfig, wake func()) *LoRaWANStack {
	if cfg.JoinRetry == 0 {
		cfg.JoinRetry = 30 * time.Second
	}
	return &LoRaWANStack{
		cfg:     cfg,
		otaa:    &lorawan.Otaa{},
		session: &lorawan.Session{},
		uplinks: make(chan uplink, 1),
		events:  make(chan EventType, 8),
		wake:    wake,
		irq:     deferredIRQ{poll: irqPoll},
	}
}

// Start resets the radio, installs the DIO interrupt handlers and starts
// the join/uplink worker.
func (s *LoRaWANStack) Start() error {
	s.dev = sx127x.New(s.cfg.SPI, s.cfg.ResetPin)
	rc := sx127x.NewRadioControl(s.cfg.CSPin, s.cfg.DIO0Pin, s.cfg.DIO1Pin)
	if err := s.dev.SetRadioController(rc); err != nil {
		return err
	}
	s.dev.Reset()
	if !s.dev.DetectDevice() {
		return errNoRadio
	}
	s.irq.handle = s.dev.HandleInterrupt
	if err := rc.SetupInterrupts(s.handleDIO); err != nil {
		return err
	}
	rd := cappedRadio{Device: s.dev, maxDBm: mathx.Max(s.cfg.TxPowerDBm, minTxPowerDBm)}
	rd.SetTxPower(rd.maxDBm, true)
	core.Debugv(core.LevelDebug, "tx power dBm ", int64(rd.maxDBm))

	if err := s.otaa.SetDevEUI(s.cfg.DevEUI[:]); err != nil {
		return err
	}
	if err := s.otaa.SetAppEUI(s.cfg.AppEUI[:]); err != nil {
		return err
	}
	if err := s.otaa.SetAppKey(s.cfg.AppKey[:]); err != nil {
		return err
	}

	lorawan.UseRadio(rd)
	lorawan.UseRegionSettings(region.EU868())

	s.queue(EventReset)
	go s.worker()
	return nil
}

// handleDIO runs in interrupt context and only latches the change.
func (s *LoRaWANStack) handleDIO() {
	s.irq.mark()
	if s.wake != nil {
		s.wake()
	}
}

func (s *LoRaWANStack) queue(ev EventType) {
	s.events <- ev
	if s.wake != nil {
		s.wake()
	}
}

func (s *LoRaWANStack) worker() {
	for {
		s.queue(EventJoining)
		err := s.irq.during(func() error { return lorawan.Join(s.otaa, s.session) })
		if err != nil {
			core.Debug(core.LevelDebug, "join: "+err.Error())
			s.queue(EventJoinFailed)
			time.Sleep(s.cfg.JoinRetry)
			continue
		}
		s.queue(EventJoined)
		break
	}

	for up := range s.uplinks {
		if core.DebugLevel() >= core.LevelDebug {
			msg := "uplink port=" + core.Itoa(int(up.port)) + " len=" + core.Itoa(len(up.data))
			if up.confirmed {
				msg += " confirmed"
			}
			core.Debug(core.LevelDebug, msg)
		}
		start := time.Now()
		err := s.irq.during(func() error { return lorawan.SendUplink(up.data, s.session) })
		if err != nil {
			core.Debug(core.LevelDebug, "uplink: "+err.Error())
			s.queue(EventLinkDead)
		}
		airtime := time.Since(start)

		// Duty cycle: keep the channel quiet for (2^rate - 1) airtimes.
		if rate := atomic.LoadUint32(&s.dutyRate); rate > 0 {
			time.Sleep(airtime * time.Duration((1<<rate)-1))
		}
		atomic.StoreUint32(&s.pending, 0)
		s.queue(EventTxComplete)
	}
}

// TxPending implements Stack.
func (s *LoRaWANStack) TxPending() bool {
	return atomic.LoadUint32(&s.pending) != 0
}

// SubmitUplink implements Stack. The tinygo MAC sends unconfirmed frames on
// its own fixed port; port and confirmed are recorded for diagnostics.
func (s *LoRaWANStack) SubmitUplink(port uint8, data []byte, confirmed bool) error {
	if !atomic.CompareAndSwapUint32(&s.pending, 0, 1) {
		return ErrBusy
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	select {
	case s.uplinks <- uplink{port: port, data: buf, confirmed: confirmed}:
		return nil
	default:
		atomic.StoreUint32(&s.pending, 0)
		return ErrBusy
	}
}

// MaxPayload implements Stack.
func (s *LoRaWANStack) MaxPayload() int { return loraMaxPayload }

// SetDutyRate implements Stack.
func (s *LoRaWANStack) SetDutyRate(rate uint8) {
	if rate > 16 {
		rate = 16
	}
	atomic.StoreUint32(&s.dutyRate, uint32(rate))
}

// Service implements Stack. It handles a latched DIO interrupt, then
// delivers queued events.
func (s *LoRaWANStack) Service() {
	s.irq.service()
	for {
		select {
		case ev := <-s.events:
			if s.handler != nil {
				s.handler(ev)
			}
		default:
			return
		}
	}
}

// SetEventHandler implements Stack.
func (s *LoRaWANStack) SetEventHandler(fn func(EventType)) {
	s.handler = fn
}

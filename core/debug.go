package core

// Level gates diagnostic output. Lower is more important; a message is
// emitted when its level is <= the configured level.
type Level uint8

const (
	LevelOff   Level = 0
	LevelInfo  Level = 1
	LevelDebug Level = 2
)

// DebugWriter receives one diagnostic line. Platforms plug in a UART or
// USB writer; the default discards output.
type DebugWriter func(level Level, msg string)

// TimingEvent captures a scheduling event for post-mortem analysis.
type TimingEvent struct {
	EventType uint8  // Event type code
	Slot      uint8  // Job slot, or sleep mode for sleep events
	Clock     uint32 // Low 32 bits of the tick, in milliseconds
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtJobSchedule = 1 // job scheduled; Value1 unused
	EvtJobFire     = 2 // job dispatched; Value1 = due (ms)
	EvtSleep       = 3 // sleep started; Value1 = quantum (ms), Value2 = cycles
	EvtWake        = 4 // sleep ended; Value1 = slept (ms), Value2 = cycles done
	EvtCollision   = 5 // send deferred, stack busy
	EvtUplink      = 6 // payload submitted; Value1 = size
	EvtRadioEvent  = 7 // lifecycle event; Value1 = event code
	EvtOversize    = 8 // payload dropped; Value1 = needed, Value2 = capacity
)

const (
	TimingRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	debugWriter DebugWriter = func(Level, string) {}
	debugLevel              = LevelInfo

	// Timing capture ring buffer; never blocks.
	timingRing     [TimingRingSize]TimingEvent
	timingRingHead uint8
)

// SetDebugWriter sets the platform-specific diagnostic output.
func SetDebugWriter(w DebugWriter) {
	if w == nil {
		w = func(Level, string) {}
	}
	debugWriter = w
}

// SetDebugLevel sets the most verbose level that is emitted.
func SetDebugLevel(l Level) {
	debugLevel = l
}

// DebugLevel returns the configured level.
func DebugLevel() Level {
	return debugLevel
}

// Debug emits msg if level is enabled.
func Debug(level Level, msg string) {
	if level == LevelOff || level > debugLevel {
		return
	}
	debugWriter(level, msg)
}

// Debugv emits msg followed by a decimal value, without fmt.
func Debugv(level Level, msg string, v int64) {
	if level == LevelOff || level > debugLevel {
		return
	}
	debugWriter(level, msg+itoa64(v))
}

// RecordTiming captures an event in the ring buffer.
func RecordTiming(eventType, slot uint8, clock Tick, value1, value2 uint32) {
	idx := timingRingHead
	timingRing[idx] = TimingEvent{
		EventType: eventType,
		Slot:      slot,
		Clock:     uint32(clock.Millis()),
		Value1:    value1,
		Value2:    value2,
	}
	timingRingHead = (idx + 1) % TimingRingSize
}

// TimingEvents returns the recorded events, oldest first.
func TimingEvents() []TimingEvent {
	out := make([]TimingEvent, 0, TimingRingSize)
	start := timingRingHead
	for i := uint8(0); i < TimingRingSize; i++ {
		evt := timingRing[(start+i)%TimingRingSize]
		if evt.EventType == 0 {
			continue
		}
		out = append(out, evt)
	}
	return out
}

// DumpTimingRing writes the ring buffer through the debug writer, regardless
// of the configured level. Firmware calls it before halting or after a
// recovered main-loop panic.
func DumpTimingRing() {
	debugWriter(LevelInfo, "[TIMING] === Timing Ring Dump ===")
	for _, evt := range TimingEvents() {
		debugWriter(LevelInfo, "[TIMING] "+timingName(evt.EventType)+
			" slot="+utoa(uint32(evt.Slot))+
			" clock="+utoa(evt.Clock)+
			" v1="+utoa(evt.Value1)+
			" v2="+utoa(evt.Value2))
	}
	debugWriter(LevelInfo, "[TIMING] === End Dump ===")
}

// ClearTimingRing clears the timing buffer
func ClearTimingRing() {
	for i := range timingRing {
		timingRing[i] = TimingEvent{}
	}
	timingRingHead = 0
}

func timingName(code uint8) string {
	switch code {
	case EvtJobSchedule:
		return "JOB_SCHED"
	case EvtJobFire:
		return "JOB_FIRE"
	case EvtSleep:
		return "SLEEP"
	case EvtWake:
		return "WAKE"
	case EvtCollision:
		return "COLLISION"
	case EvtUplink:
		return "UPLINK"
	case EvtRadioEvent:
		return "RADIO_EV"
	case EvtOversize:
		return "OVERSIZE"
	default:
		return "UNKNOWN"
	}
}

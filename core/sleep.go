package core

import "time"

// SleepMode identifies a hardware low-power period.
type SleepMode uint8

const (
	SleepP250MS SleepMode = iota
	SleepP500MS
	SleepP1S
	SleepP2S
	SleepP4S
	SleepP8S
)

func (m SleepMode) String() string {
	switch m {
	case SleepP250MS:
		return "P250MS"
	case SleepP500MS:
		return "P500MS"
	case SleepP1S:
		return "P1S"
	case SleepP2S:
		return "P2S"
	case SleepP4S:
		return "P4S"
	case SleepP8S:
		return "P8S"
	default:
		return "P?"
	}
}

// Nominal returns the period the hardware is configured for in mode.
func (m SleepMode) Nominal() time.Duration {
	for _, b := range SleepBuckets {
		if b.Mode == m {
			return b.Quantum
		}
	}
	return 0
}

// SleepBucket maps a requested idle duration to a sleep granularity.
type SleepBucket struct {
	Threshold time.Duration // requested duration must exceed this
	Quantum   time.Duration // nominal period of Mode
	Mode      SleepMode
}

// SleepBuckets is ordered largest threshold first. Thresholds were measured
// on hardware.
var SleepBuckets = [...]SleepBucket{
	{Threshold: 8700 * time.Millisecond, Quantum: 8000 * time.Millisecond, Mode: SleepP8S},
	{Threshold: 4600 * time.Millisecond, Quantum: 4000 * time.Millisecond, Mode: SleepP4S},
	{Threshold: 2600 * time.Millisecond, Quantum: 2000 * time.Millisecond, Mode: SleepP2S},
	{Threshold: 1500 * time.Millisecond, Quantum: 1000 * time.Millisecond, Mode: SleepP1S},
	{Threshold: 800 * time.Millisecond, Quantum: 500 * time.Millisecond, Mode: SleepP500MS},
	{Threshold: 500 * time.Millisecond, Quantum: 250 * time.Millisecond, Mode: SleepP250MS},
}

// CalibrationPermil is the low-power oscillator period relative to the main
// clock, in parts per thousand.
const CalibrationPermil = 1080

// Calibrated scales a nominal sleep period to main-clock time.
func Calibrated(d time.Duration) time.Duration {
	return d * CalibrationPermil / 1000
}

// SelectBucket returns the coarsest bucket whose threshold max exceeds.
// Thresholds are compared against the nominal, unscaled max.
func SelectBucket(max time.Duration) (SleepBucket, bool) {
	for _, b := range SleepBuckets {
		if max > b.Threshold {
			return b, true
		}
	}
	return SleepBucket{}, false
}

// Sleeper turns an idle budget into a run of low-power cycles.
type Sleeper struct {
	lp    LowPowerDriver
	tb    *TimeBase
	flags *PendingFlags

	// OnWake runs at every cycle boundary before the flags are checked.
	// The node uses it to sample the button pin.
	OnWake func()
}

// NewSleeper creates a sleep controller.
func NewSleeper(lp LowPowerDriver, tb *TimeBase, flags *PendingFlags) *Sleeper {
	return &Sleeper{lp: lp, tb: tb, flags: flags}
}

// SleepFor sleeps at most max, in whole calibrated quanta, and returns the
// time added to the time base. It returns as soon as a pending flag is seen
// at a cycle boundary, and at once if max is below the smallest threshold.
func (s *Sleeper) SleepFor(max time.Duration) time.Duration {
	b, ok := SelectBucket(max)
	if !ok {
		return 0
	}
	quantum := Calibrated(b.Quantum)
	cycles := int64(max / quantum)

	if debugLevel >= LevelInfo {
		Debug(LevelInfo, "Sleep (ms) :"+itoa64(int64(quantum/time.Millisecond))+"x"+itoa64(cycles))
	}
	RecordTiming(EvtSleep, uint8(b.Mode), s.tb.Now(), uint32(quantum/time.Millisecond), uint32(cycles))

	var slept time.Duration
	done := int64(0)
	for n := cycles; n > 0 && !s.flags.Any(); n-- {
		s.lp.EnterLowPower(b.Mode)
		s.tb.AddSleep(quantum)
		slept += quantum
		done++

		if s.OnWake != nil {
			s.OnWake()
		}
	}

	RecordTiming(EvtWake, uint8(b.Mode), s.tb.Now(), uint32(slept/time.Millisecond), uint32(done))
	Debug(LevelInfo, "Wakeup")
	return slept
}

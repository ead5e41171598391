package core

// LowPowerDriver is the abstract hardware sleep primitive that core code uses.
// Platform-specific implementations enter the real low-power state.
type LowPowerDriver interface {
	// EnterLowPower puts the CPU into the low-power state for mode and
	// returns when that state's wake timer expires (or an interrupt fires).
	EnterLowPower(mode SleepMode)
}

// WatchdogDriver is the abstract watchdog interface.
type WatchdogDriver interface {
	// KeepAlive restarts the watchdog countdown.
	KeepAlive()
}

// BatteryDriver reads the battery voltage divider.
type BatteryDriver interface {
	// ReadBattery performs a one-shot conversion and returns raw ADC counts.
	ReadBattery() (uint32, error)
}

//go:build rp2040

package main

import "machine"

// batteryADC samples the battery divider. Readings are reduced to 10 bits
// so the configured full scale is in the same units on every board.
type batteryADC struct {
	adc machine.ADC
}

func newBatteryADC(pin machine.Pin) *batteryADC {
	machine.InitADC()
	b := &batteryADC{adc: machine.ADC{Pin: pin}}
	b.adc.Configure(machine.ADCConfig{})
	return b
}

func (b *batteryADC) ReadBattery() (uint32, error) {
	return uint32(b.adc.Get() >> 6), nil
}

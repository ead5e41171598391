//go:build tinygo

package sensor

import (
	"errors"
	"machine"
	"time"

	"tinygo.org/x/drivers/ds18b20"
	"tinygo.org/x/drivers/onewire"
)

const (
	cmdConvertT        = 0x44
	cmdWriteScratchpad = 0x4E
)

var errNoDevices = errors.New("sensor: no devices on bus")

// DS18B20Bus is a one-wire bus of DS18B20 sensors on a single pin.
type DS18B20Bus struct {
	ow    onewire.Device
	therm ds18b20.Device
	addrs []Address
	max   int
}

// NewDS18B20Bus creates a bus on pin holding at most max devices.
func NewDS18B20Bus(pin machine.Pin, max int) *DS18B20Bus {
	ow := onewire.New(pin)
	return &DS18B20Bus{
		ow:    ow,
		therm: ds18b20.New(ow),
		max:   max,
	}
}

// Discover searches the bus and sets every device to res.
func (b *DS18B20Bus) Discover(res Resolution) error {
	if !res.Valid() {
		return ErrResolution
	}
	roms, err := b.ow.Search(onewire.ONEWIRE_SEARCH_ROM)
	if err != nil {
		return err
	}
	b.addrs = b.addrs[:0]
	for _, rom := range roms {
		if len(b.addrs) == b.max {
			break
		}
		var a Address
		copy(a[:], rom)
		b.addrs = append(b.addrs, a)
	}
	if len(b.addrs) == 0 {
		return errNoDevices
	}

	// Configuration register: R1R0 in bits 6..5.
	cfg := uint8(res-Resolution9)<<5 | 0x1F
	for i := range b.addrs {
		if err := b.ow.Select(b.addrs[i][:]); err != nil {
			return err
		}
		b.ow.Write(cmdWriteScratchpad)
		b.ow.Write(0x4B) // TH
		b.ow.Write(0x46) // TL
		b.ow.Write(cfg)
	}
	return nil
}

// RequestConversion implements Bus.
func (b *DS18B20Bus) RequestConversion() error {
	if err := b.ow.Reset(); err != nil {
		return err
	}
	b.ow.Skip()
	b.ow.Write(cmdConvertT)
	return nil
}

// ConversionLatency implements Bus.
func (b *DS18B20Bus) ConversionLatency(r Resolution) time.Duration {
	return ConversionLatency(r)
}

// DeviceCount implements Bus.
func (b *DS18B20Bus) DeviceCount() int { return len(b.addrs) }

// Address implements Bus.
func (b *DS18B20Bus) Address(i int) (Address, bool) {
	if i < 0 || i >= len(b.addrs) {
		return Address{}, false
	}
	return b.addrs[i], true
}

// Read implements Bus.
func (b *DS18B20Bus) Read(addr Address) (int16, bool) {
	mc, err := b.therm.ReadTemperature(addr[:])
	if err != nil {
		return DisconnectedRaw, false
	}
	return FromMilliCelsius(mc), true
}

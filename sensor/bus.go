// Package sensor describes the one-wire temperature sensor bus.
package sensor

import (
	"errors"
	"time"
)

// Address is a 64-bit one-wire ROM code.
type Address [8]byte

// String formats the address as hex, family code first.
func (a Address) String() string {
	const digits = "0123456789ABCDEF"
	var buf [16]byte
	for i, b := range a {
		buf[i*2] = digits[b>>4]
		buf[i*2+1] = digits[b&0x0F]
	}
	return string(buf[:])
}

// Resolution is the conversion resolution in bits.
type Resolution uint8

const (
	Resolution9  Resolution = 9
	Resolution10 Resolution = 10
	Resolution11 Resolution = 11
	Resolution12 Resolution = 12
)

// ErrResolution is returned for a resolution outside 9..12 bits.
var ErrResolution = errors.New("sensor: unsupported resolution")

// Valid reports whether r is a supported resolution.
func (r Resolution) Valid() bool {
	return r >= Resolution9 && r <= Resolution12
}

// ConversionLatency is the worst-case conversion time at r: 93.75 ms at 9
// bits, doubling per extra bit.
func ConversionLatency(r Resolution) time.Duration {
	if !r.Valid() {
		return 0
	}
	return (93750 * time.Microsecond) << (r - Resolution9)
}

const (
	// RawUnitsPerDegree is the scale of raw readings (1/128 °C).
	RawUnitsPerDegree = 128

	// DisconnectedRaw is reported for a sensor that did not answer, -127 °C
	// in raw units.
	DisconnectedRaw int16 = -127 * RawUnitsPerDegree
)

// Bus is a set of temperature sensors sharing one conversion trigger.
type Bus interface {
	// RequestConversion starts a conversion on every device.
	RequestConversion() error

	// ConversionLatency returns how long to wait after RequestConversion.
	ConversionLatency(r Resolution) time.Duration

	// DeviceCount returns the number of discovered devices.
	DeviceCount() int

	// Address returns the i'th discovered device.
	Address(i int) (Address, bool)

	// Read returns the last conversion in raw units. ok is false when the
	// device did not answer.
	Read(addr Address) (raw int16, ok bool)
}

// FromMilliCelsius converts a millidegree reading to raw units.
func FromMilliCelsius(mc int32) int16 {
	return int16(mc * RawUnitsPerDegree / 1000)
}

// MilliCelsius converts raw units to millidegrees.
func MilliCelsius(raw int16) int32 {
	return int32(raw) * 1000 / RawUnitsPerDegree
}

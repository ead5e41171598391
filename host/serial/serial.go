// Package serial opens the node's diagnostic UART from the host.
package serial

import "io"

// Port is an open serial device.
type Port interface {
	io.ReadWriteCloser
}

// Config describes the device to open.
type Config struct {
	// Device path, e.g. /dev/ttyUSB0 or COM3.
	Device string

	// Baud must match the node's diagnostic UART.
	Baud int

	// ReadTimeout bounds each Read; 0 blocks.
	ReadTimeout int // milliseconds
}

// DefaultBaud is the node's diagnostic UART rate.
const DefaultBaud = 115200

// DefaultConfig returns a configuration for device at DefaultBaud.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: 200,
	}
}

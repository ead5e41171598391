//go:build rp2040

package main

import (
	"machine"

	"github.com/jangala-dev/tinygo-uartx/uartx"

	"tempnode/core"
	"tempnode/protocol"
)

// diagLink frames diagnostic lines onto UART1.
type diagLink struct {
	uart *uartx.UART
	enc  *protocol.FrameEncoder
}

func newDiagLink(baud uint32) *diagLink {
	d := &diagLink{uart: uartx.UART1, enc: protocol.NewFrameEncoder()}
	_ = d.uart.Configure(uartx.UARTConfig{
		BaudRate: baud,
		TX:       machine.GPIO8,
		RX:       machine.GPIO9,
	})
	return d
}

func (d *diagLink) write(level core.Level, msg string) {
	_, _ = d.uart.Write(d.enc.Encode(uint8(level), msg))
}

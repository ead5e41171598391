package radio

import "errors"

// ErrBusy is returned by SubmitUplink while a previous uplink is in flight.
var ErrBusy = errors.New("radio: transmission pending")

var errNoRadio = errors.New("radio: transceiver not detected")

// Stack is the LoRaWAN protocol stack as seen by the node. Implementations
// deliver events only from within Service, on the caller's goroutine.
type Stack interface {
	// TxPending reports whether an uplink is queued or in flight.
	TxPending() bool

	// SubmitUplink queues data for transmission on port.
	SubmitUplink(port uint8, data []byte, confirmed bool) error

	// MaxPayload is the largest application payload the stack accepts.
	MaxPayload() int

	// SetDutyRate limits airtime to 1/2^rate.
	SetDutyRate(rate uint8)

	// Service runs pending stack work and delivers queued events.
	Service()

	// SetEventHandler installs the lifecycle event callback.
	SetEventHandler(fn func(EventType))
}

package core

import "sync/atomic"

// Flag is one sticky signal raised from interrupt context.
type Flag uint32

const (
	// FlagButton records a wake-button press.
	FlagButton Flag = 1 << iota
	// FlagRadio records a change on one of the radio status lines.
	FlagRadio
)

func (f Flag) String() string {
	switch f {
	case FlagButton:
		return "button"
	case FlagRadio:
		return "radio"
	default:
		return "flags(" + utoa(uint32(f)) + ")"
	}
}

// PendingFlags is a word of sticky bits. Interrupt handlers only Raise;
// cooperative code reads with Pending/Any and consumes with Take.
type PendingFlags struct {
	bits uint32
}

// Raise sets f. Safe to call from interrupt context.
func (p *PendingFlags) Raise(f Flag) {
	for {
		old := atomic.LoadUint32(&p.bits)
		if old&uint32(f) == uint32(f) {
			return
		}
		if atomic.CompareAndSwapUint32(&p.bits, old, old|uint32(f)) {
			return
		}
	}
}

// Pending reports whether f is set.
func (p *PendingFlags) Pending(f Flag) bool {
	return atomic.LoadUint32(&p.bits)&uint32(f) != 0
}

// Any reports whether any flag is set.
func (p *PendingFlags) Any() bool {
	return atomic.LoadUint32(&p.bits) != 0
}

// Take clears f and reports whether it was set.
func (p *PendingFlags) Take(f Flag) bool {
	for {
		old := atomic.LoadUint32(&p.bits)
		if old&uint32(f) == 0 {
			return false
		}
		if atomic.CompareAndSwapUint32(&p.bits, old, old&^uint32(f)) {
			return true
		}
	}
}

//go:build tinygo

package core

import "runtime/interrupt"

// disableInterrupts masks interrupts around job queue mutations and returns
// the previous mask.
func disableInterrupts() interrupt.State {
	return interrupt.Disable()
}

// restoreInterrupts restores a mask saved by disableInterrupts.
func restoreInterrupts(state interrupt.State) {
	interrupt.Restore(state)
}

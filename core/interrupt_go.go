//go:build !tinygo

package core

// State is the saved interrupt mask. Host builds have no interrupts to mask.
type State uintptr

// disableInterrupts is a no-op on host builds, where tests drive the
// "interrupt" entry points from the same goroutine as the loop.
func disableInterrupts() State {
	return 0
}

// restoreInterrupts is a no-op on host builds.
func restoreInterrupts(State) {}

//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"
)

// RP2040 timer peripheral: a free-running 64-bit counter at 1 MHz. The
// control loop only needs the low word; all deadline math in the core is
// wraparound safe.
const (
	timerBase     = 0x40054000
	timerTIMERAWL = timerBase + 0x0C
)

var timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))

// hwClock implements core.Clock from the hardware timer.
type hwClock struct{}

func (hwClock) Micros() uint32 {
	return timerRAWL.Get()
}

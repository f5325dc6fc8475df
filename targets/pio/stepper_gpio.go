//go:build rp2040

package pio

// Direct-GPIO fallback backend: SIO register writes with NOP-timed pulse
// width. Adequate at this instrument's step rates (a few kHz), useful when
// both PIO blocks are taken.

import (
	"device/arm"
	"device/rp"
	"machine"

	"tipetch/core"
)

// StepperGPIO implements core.StepperBackend with direct register access.
type StepperGPIO struct {
	stepPin   machine.Pin
	dirPin    machine.Pin
	enablePin machine.Pin

	stepMask uint32
	dirMask  uint32
}

// NewStepperGPIO creates the fallback backend.
func NewStepperGPIO() *StepperGPIO {
	return &StepperGPIO{}
}

// Init configures the three driver pins.
func (b *StepperGPIO) Init(stepPin, dirPin, enablePin uint8) error {
	b.stepPin = machine.Pin(stepPin)
	b.dirPin = machine.Pin(dirPin)
	b.enablePin = machine.Pin(enablePin)

	b.stepPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	b.stepPin.Low()
	b.dirPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	b.dirPin.Low()
	b.enablePin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	b.enablePin.High()

	b.stepMask = 1 << stepPin
	b.dirMask = 1 << dirPin
	return nil
}

// Enable implements core.StepperBackend. Active low.
func (b *StepperGPIO) Enable(on bool) {
	b.enablePin.Set(!on)
}

// SetDirection implements core.StepperBackend. A few NOPs guarantee the
// dir-to-step setup time the driver datasheet asks for.
func (b *StepperGPIO) SetDirection(dir bool) {
	if dir {
		rp.SIO.GPIO_OUT_SET.Set(b.dirMask)
	} else {
		rp.SIO.GPIO_OUT_CLR.Set(b.dirMask)
	}
	arm.Asm("nop\nnop\nnop")
}

// Step implements core.StepperBackend.
// Pulse width: 13 NOPs, roughly 104 ns at 125 MHz.
func (b *StepperGPIO) Step() {
	rp.SIO.GPIO_OUT_SET.Set(b.stepMask)
	arm.Asm("nop\nnop\nnop\nnop\nnop\nnop\nnop\nnop\nnop\nnop\nnop\nnop\nnop")
	rp.SIO.GPIO_OUT_CLR.Set(b.stepMask)
}

var _ core.StepperBackend = (*StepperGPIO)(nil)

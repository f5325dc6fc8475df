//go:build rp2040

package main

import (
	"machine"

	"tipetch/core"
)

// rpGPIO implements core.GPIODriver over machine.Pin.
type rpGPIO struct{}

func (rpGPIO) ConfigureOutput(pin core.GPIOPin) error {
	p := machine.Pin(pin)
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.Low()
	return nil
}

func (rpGPIO) ConfigureInputPullUp(pin core.GPIOPin) error {
	machine.Pin(pin).Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return nil
}

func (rpGPIO) SetPin(pin core.GPIOPin, value bool) error {
	machine.Pin(pin).Set(value)
	return nil
}

func (rpGPIO) ReadPin(pin core.GPIOPin) bool {
	return machine.Pin(pin).Get()
}

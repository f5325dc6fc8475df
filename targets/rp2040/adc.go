//go:build rp2040

package main

import (
	"machine"

	"tipetch/core"
)

// rpAnalog implements core.AnalogReader on one ADC channel.
type rpAnalog struct {
	adc machine.ADC
}

func newAnalog(channel uint8) (*rpAnalog, error) {
	var pin machine.Pin
	switch channel {
	case 0:
		pin = machine.ADC0
	case 1:
		pin = machine.ADC1
	case 2:
		pin = machine.ADC2
	default:
		pin = machine.ADC3
	}

	a := &rpAnalog{adc: machine.ADC{Pin: pin}}
	if err := a.adc.Configure(machine.ADCConfig{}); err != nil {
		return nil, err
	}
	return a, nil
}

// ReadRaw returns the raw 12-bit conversion (0..4095).
func (a *rpAnalog) ReadRaw() (uint16, bool) {
	return a.adc.Get(), true
}

var _ core.AnalogReader = (*rpAnalog)(nil)

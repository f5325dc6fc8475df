//go:build rp2040

package main

import "tipetch/core"

// Analog keypad: five buttons on a resistor ladder feeding one ADC channel.
// Thresholds are the classic shield values scaled to the 12-bit converter.
const (
	keyCodeRight  = 200
	keyCodeUp     = 1000
	keyCodeDown   = 1800
	keyCodeLeft   = 2600
	keyCodeSelect = 3400
)

// analogKeypad implements core.Keypad with edge detection in Poll.
type analogKeypad struct {
	adc  *rpAnalog
	last core.Key
}

func newAnalogKeypad(adc *rpAnalog) *analogKeypad {
	return &analogKeypad{adc: adc, last: core.KeyNone}
}

func (k *analogKeypad) decode() core.Key {
	raw, ok := k.adc.ReadRaw()
	if !ok {
		return core.KeyNone
	}
	switch {
	case raw < keyCodeRight:
		return core.KeyRight
	case raw < keyCodeUp:
		return core.KeyUp
	case raw < keyCodeDown:
		return core.KeyDown
	case raw < keyCodeLeft:
		return core.KeyLeft
	case raw < keyCodeSelect:
		return core.KeySelect
	}
	return core.KeyNone
}

// Poll returns a key press event: the key once, on the none-to-key edge.
func (k *analogKeypad) Poll() core.Key {
	cur := k.decode()
	if cur == k.last {
		return core.KeyNone
	}
	k.last = cur
	if cur == core.KeyNone {
		return core.KeyNone
	}
	return cur
}

// Held returns the key currently down, debounce-free.
func (k *analogKeypad) Held() core.Key {
	return k.decode()
}

var _ core.Keypad = (*analogKeypad)(nil)

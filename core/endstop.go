package core

// Endstop reads the homing limit switch. The input is configured with a
// pull-up, so with default polarity the switch is triggered when it pulls
// the line low.
type Endstop struct {
	drv    GPIODriver
	pin    GPIOPin
	invert bool
}

// NewEndstop configures the limit-switch input.
func NewEndstop(drv GPIODriver, pin GPIOPin, invert bool) (*Endstop, error) {
	if err := drv.ConfigureInputPullUp(pin); err != nil {
		return nil, err
	}
	return &Endstop{drv: drv, pin: pin, invert: invert}, nil
}

// Triggered reports whether the switch is asserted.
func (e *Endstop) Triggered() bool {
	v := e.drv.ReadPin(e.pin)
	if e.invert {
		return v
	}
	return !v
}

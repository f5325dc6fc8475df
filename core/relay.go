package core

// VoltageRail selects which etch supply is switched onto the tip.
type VoltageRail uint8

const (
	// RailOff is the safe combination: both supplies disconnected.
	RailOff VoltageRail = iota
	// RailPrimary is the high etch voltage used for validation and etching.
	RailPrimary
	// RailSecondary is the low voltage used for the pulse train.
	RailSecondary
)

// Relays drives the two voltage-select outputs. Every mutation writes both
// pins in the same call, so no intermediate pin combination is ever
// observable to the rest of the system. Polarity inversion for active-low
// relay boards belongs to the GPIO driver, not here.
type Relays struct {
	drv          GPIODriver
	pinPrimary   GPIOPin
	pinSecondary GPIOPin
	active       VoltageRail
}

// NewRelays configures both relay pins as outputs and forces the safe
// combination.
func NewRelays(drv GPIODriver, primary, secondary GPIOPin) (*Relays, error) {
	if err := drv.ConfigureOutput(primary); err != nil {
		return nil, err
	}
	if err := drv.ConfigureOutput(secondary); err != nil {
		return nil, err
	}
	r := &Relays{drv: drv, pinPrimary: primary, pinSecondary: secondary}
	r.Select(RailOff)
	return r, nil
}

// Select switches the outputs to the requested rail. RailOff is always safe
// to request, including from exit and abort paths.
func (r *Relays) Select(rail VoltageRail) {
	r.drv.SetPin(r.pinPrimary, rail == RailPrimary)
	r.drv.SetPin(r.pinSecondary, rail == RailSecondary)
	r.active = rail
}

// Active returns the currently selected rail.
func (r *Relays) Active() VoltageRail { return r.active }

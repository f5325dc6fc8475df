package core

import "strconv"

// Manual jogging: hold UP/DOWN to move within the soft travel range,
// SELECT exits. The position readout refreshes a few times per second.

const (
	jogSpeedMM         = 2.0
	jogReadoutPeriodMS = 200
)

// JogProcess lets the operator position the axis by hand.
type JogProcess struct {
	display Display
	keys    Keypad
	stepper *Stepper
	clock   Clock
	params  *Params

	readoutAt uint32
	firstStep bool
}

// NewJogProcess wires the jog machine.
func NewJogProcess(display Display, keys Keypad, stepper *Stepper, clock Clock, params *Params) *JogProcess {
	return &JogProcess{
		display: display,
		keys:    keys,
		stepper: stepper,
		clock:   clock,
		params:  params,
	}
}

// Name implements Process.
func (j *JogProcess) Name() string { return "JOG" }

// OwnsInput marks SELECT as belonging to this process rather than being a
// global exit: we exit ourselves on SELECT.
func (j *JogProcess) OwnsInput() bool { return true }

// Begin implements Process.
func (j *JogProcess) Begin() {
	Title2(j.display, "JOG (UP/DOWN)", "")
	j.stepper.Enable(true)
	j.readoutAt = j.clock.Micros()
	j.firstStep = true
}

// Step implements Process.
func (j *JogProcess) Step() bool {
	k := j.keys.Held()

	// Swallow the SELECT that entered the mode.
	if j.firstStep {
		j.firstStep = false
		if k == KeySelect {
			k = KeyNone
		}
	}

	z := j.stepper.PositionMM()

	switch k {
	case KeyUp:
		if z > j.params.ZMinMM {
			j.stepper.SetSpeed(-jogSpeedMM)
		} else {
			j.stepper.SetSpeed(0)
		}
	case KeyDown:
		if z < j.params.ZMaxMM {
			j.stepper.SetSpeed(+jogSpeedMM)
		} else {
			j.stepper.SetSpeed(0)
		}
	default:
		j.stepper.SetSpeed(0)
	}

	j.stepper.Update()

	now := j.clock.Micros()
	if elapsedAtLeast(now, j.readoutAt, usFromMs(jogReadoutPeriodMS)) {
		j.readoutAt = now
		j.display.SetCursor(0, 1)
		j.display.Print("Z=" + strconv.FormatFloat(float64(j.stepper.PositionMM()), 'f', 2, 32) + " mm ")
	}

	return k == KeySelect
}

// End implements Process.
func (j *JogProcess) End() {
	j.stepper.SetSpeed(0)
	j.stepper.Enable(true)
}

package core

import "strconv"

// Homing plus baseline capture: reference the axis against the limit
// switch, move to the baseline height, then average the no-load RMS current
// for a fixed period and store it as the sensor baseline.

// HomeState enumerates the homing phases.
type HomeState uint8

const (
	// HomeSeeking drives toward the limit switch.
	HomeSeeking HomeState = iota
	// HomeMovingToBaseline travels to the baseline measurement height.
	HomeMovingToBaseline
	// HomeMeasuringBaseline accumulates RMS samples for the baseline mean.
	HomeMeasuringBaseline
	// HomeSettling holds the result on screen before reporting completion.
	HomeSettling
	// HomeDone is terminal.
	HomeDone
)

const (
	homeSeekSpeedMM   = 5.0 // toward the switch
	homeTravelSpeedMM = 5.0 // to the baseline height
	homeSwitchPauseMS = 200
	homeSettleMS      = 2000
)

// HomeProcess is the homing + baseline-capture machine. It is the only
// writer of the sensor baseline.
type HomeProcess struct {
	display Display
	stepper *Stepper
	endstop *Endstop
	sensor  *CurrentSensor
	clock   Clock
	params  *Params

	state      HomeState
	pauseUntil uint32
	moveIssued bool

	measureStart uint32
	sum          float32
	count        uint32

	settleStart uint32
}

// NewHomeProcess wires the homing machine.
func NewHomeProcess(display Display, stepper *Stepper, endstop *Endstop, sensor *CurrentSensor, clock Clock, params *Params) *HomeProcess {
	return &HomeProcess{
		display: display,
		stepper: stepper,
		endstop: endstop,
		sensor:  sensor,
		clock:   clock,
		params:  params,
	}
}

// Name implements Process.
func (h *HomeProcess) Name() string { return "HOME" }

// State returns the current phase.
func (h *HomeProcess) State() HomeState { return h.state }

// Begin implements Process: starts the seek toward the limit switch.
func (h *HomeProcess) Begin() {
	Title2(h.display, "HOMING...", "Seeking switch")

	h.state = HomeSeeking
	h.moveIssued = false
	h.sum = 0
	h.count = 0

	h.stepper.Enable(true)
	h.stepper.SetSpeed(-homeSeekSpeedMM)
}

// Step implements Process.
func (h *HomeProcess) Step() bool {
	h.stepper.Update()
	now := h.clock.Micros()

	switch h.state {
	case HomeSeeking:
		if h.endstop.Triggered() {
			h.stepper.SetSpeed(0)
			h.stepper.SetPosition(0)

			// Let the mechanics relax before reversing.
			h.pauseUntil = now + usFromMs(homeSwitchPauseMS)
			h.moveIssued = false
			h.state = HomeMovingToBaseline

			Title2(h.display, "HOMING", "To baseline Z")
		}

	case HomeMovingToBaseline:
		if !h.moveIssued {
			if !timeReached(now, h.pauseUntil) {
				return false
			}
			h.stepper.MoveTo(h.params.BaselineHeightMM, homeTravelSpeedMM)
			h.moveIssued = true
			return false
		}
		if !h.stepper.IsBusy() {
			h.sensor.SetEnabled(true)
			h.measureStart = now
			h.sum = 0
			h.count = 0
			h.state = HomeMeasuringBaseline

			Title2(h.display, "HOMING", "Measuring I0")
		}

	case HomeMeasuringBaseline:
		// The loop updates the sensor before this tick, so RMS here
		// reflects statistics through the previous window close.
		h.sum += h.sensor.RMS()
		h.count++

		if elapsedAtLeast(now, h.measureStart, usFromSeconds(h.params.BaselineSeconds)) {
			h.sensor.SetEnabled(false)

			var i0 float32
			if h.count > 0 {
				i0 = h.sum / float32(h.count)
			}
			h.sensor.SetBaseline(i0)

			Title2(h.display, "HOME OK",
				"I0="+strconv.FormatFloat(float64(i0), 'f', 3, 32)+" A")

			h.settleStart = now
			h.state = HomeSettling
		}

	case HomeSettling:
		if elapsedAtLeast(now, h.settleStart, usFromMs(homeSettleMS)) {
			h.state = HomeDone
			return true
		}

	case HomeDone:
		return true
	}

	return false
}

// End implements Process.
func (h *HomeProcess) End() {
	h.stepper.SetSpeed(0)
	h.stepper.Enable(true)
	h.sensor.SetEnabled(false)
}

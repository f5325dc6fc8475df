package core

import "strconv"

// Continuous-voltage etch: find the surface by current rise, validate the
// contact under the primary voltage, then etch while slowly retracting until
// the current collapse signals that the neck has separated.

// ContinuousEtchState enumerates the process phases.
type ContinuousEtchState uint8

const (
	// ContSeekingSurface descends while watching the smoothed corrected current.
	ContSeekingSurface ContinuousEtchState = iota
	// ContPostDetectWait pauses after the stop at the detected surface.
	ContPostDetectWait
	// ContPlunge performs the controlled extra descent.
	ContPlunge
	// ContPreValidateWait pauses before the validation pulse.
	ContPreValidateWait
	// ContValidating applies the primary voltage and waits for confirmation.
	ContValidating
	// ContPreEtchHold keeps the voltage on for the fixed pre-etch period.
	ContPreEtchHold
	// ContEtching retracts slowly with the voltage on, watching the long average.
	ContEtching
	// ContFinalLift executes the fixed lift after etching ends.
	ContFinalLift
	// ContDone is terminal.
	ContDone
	// ContAborted is terminal: the soft travel range was violated.
	ContAborted
)

const (
	contSeekSpeedMM   = 1.5 // initial descent
	contReseekSpeedMM = 3.0 // descent after a failed validation
	contPlungeSpeedMM = 1.0

	contDetectWaitMS    = 1000
	contValidateWaitMS  = 1000
	contValidateLimitMS = 500
	contPreEtchHoldMS   = 2000

	contLiftMM      = 30.0
	contLiftSpeedMM = 3.0
)

// Smoothing windows shared by both etch processes: a short window for edge
// detection and a long one for steady-state etch current.
const (
	shortAvgWindow = 20
	longAvgWindow  = 200
)

// ContinuousEtch is the continuous-voltage etch machine.
type ContinuousEtch struct {
	display Display
	stepper *Stepper
	relays  *Relays
	sensor  *CurrentSensor
	clock   Clock
	params  *Params

	longAvg  *MovingAvg
	shortAvg *MovingAvg

	state         ContinuousEtchState
	waitStart     uint32
	validateStart uint32
	holdStart     uint32
}

// NewContinuousEtch wires the machine. The smoothing windows are allocated
// here once; Begin only resets them.
func NewContinuousEtch(display Display, stepper *Stepper, relays *Relays, sensor *CurrentSensor, clock Clock, params *Params) *ContinuousEtch {
	return &ContinuousEtch{
		display:  display,
		stepper:  stepper,
		relays:   relays,
		sensor:   sensor,
		clock:    clock,
		params:   params,
		longAvg:  NewMovingAvg(longAvgWindow),
		shortAvg: NewMovingAvg(shortAvgWindow),
	}
}

// Name implements Process.
func (m *ContinuousEtch) Name() string { return "ETCH" }

// State returns the current phase.
func (m *ContinuousEtch) State() ContinuousEtchState { return m.state }

// Aborted reports whether the run ended on a soft-limit violation.
func (m *ContinuousEtch) Aborted() bool { return m.state == ContAborted }

// Begin implements Process: starts the downward surface search.
func (m *ContinuousEtch) Begin() {
	Title2(m.display, "ETCH: Seeking", "Move down")

	m.relays.Select(RailOff)
	m.state = ContSeekingSurface
	m.longAvg.Reset(0)
	m.shortAvg.Reset(0)

	m.stepper.Enable(true)
	m.stepper.SetSpeed(+contSeekSpeedMM)
	m.sensor.SetEnabled(true)
}

// Step implements Process.
func (m *ContinuousEtch) Step() bool {
	m.stepper.Update()
	now := m.clock.Micros()

	// Soft travel range has priority over every other transition.
	z := m.stepper.PositionMM()
	if z <= m.params.ZMinMM || z >= m.params.ZMaxMM {
		m.abort()
		return true
	}

	switch m.state {
	case ContSeekingSurface:
		i := m.shortAvg.Update(m.sensor.CorrectedRMS())
		if i >= m.params.SurfaceThresholdA {
			m.stepper.SetSpeed(0)
			m.relays.Select(RailOff)

			Title2(m.display, "ETCH: Surface!",
				"I="+strconv.FormatFloat(float64(i), 'f', 4, 32)+" A")

			m.waitStart = now
			m.state = ContPostDetectWait
		}

	case ContPostDetectWait:
		if elapsedAtLeast(now, m.waitStart, usFromMs(contDetectWaitMS)) {
			Title2(m.display, "ETCH: Plunge", "Down...")
			m.stepper.MoveRelative(+m.params.Continuous.PlungeMM, contPlungeSpeedMM)
			m.state = ContPlunge
		}

	case ContPlunge:
		if !m.stepper.IsBusy() {
			m.waitStart = now
			m.state = ContPreValidateWait
		}

	case ContPreValidateWait:
		if elapsedAtLeast(now, m.waitStart, usFromMs(contValidateWaitMS)) {
			m.relays.Select(RailPrimary)

			m.validateStart = now
			m.longAvg.Reset(0)
			m.shortAvg.Reset(0)

			Title2(m.display, "ETCH: Testing", "Validating...")
			m.state = ContValidating
		}

	case ContValidating:
		i := m.shortAvg.Update(m.sensor.CorrectedRMS())

		if i >= m.params.ConfirmThresholdA {
			Title2(m.display, "ETCH: Voltage ON", "Holding...")
			m.holdStart = now
			m.state = ContPreEtchHold
			return false
		}

		// No confirmation inside the window: false surface. Remove the
		// voltage and resume the search.
		if elapsedAtLeast(now, m.validateStart, usFromMs(contValidateLimitMS)) {
			m.relays.Select(RailOff)
			m.stepper.SetSpeed(+contReseekSpeedMM)

			Title2(m.display, "ETCH: Continue", "Seeking...")
			m.state = ContSeekingSurface
		}

	case ContPreEtchHold:
		m.longAvg.Update(m.sensor.CorrectedRMS())

		if elapsedAtLeast(now, m.holdStart, usFromMs(contPreEtchHoldMS)) {
			m.stepper.SetSpeed(-m.params.Continuous.RetractSpeedMM)

			Title2(m.display, "ETCH: Etching", "Rising...")
			m.state = ContEtching
		}

	case ContEtching:
		i := m.longAvg.Update(m.sensor.CorrectedRMS())

		// Current collapse: the neck has separated.
		if i < m.params.Continuous.EtchThresholdA {
			m.stepper.SetSpeed(0)
			m.relays.Select(RailOff)

			m.stepper.MoveRelative(-contLiftMM, contLiftSpeedMM)
			m.state = ContFinalLift
		}

	case ContFinalLift:
		if !m.stepper.IsBusy() {
			m.sensor.SetEnabled(false)
			Title2(m.display, "ETCH: DONE", "")
			m.state = ContDone
			return true
		}

	case ContDone, ContAborted:
		return true
	}

	return false
}

func (m *ContinuousEtch) abort() {
	m.stepper.SetSpeed(0)
	m.sensor.SetEnabled(false)
	m.relays.Select(RailOff)

	Title2(m.display, "ETCH: ABORT", "Z limit reached")
	m.state = ContAborted
}

// End implements Process.
func (m *ContinuousEtch) End() {
	m.stepper.SetSpeed(0)
	m.stepper.Enable(true)
	m.sensor.SetEnabled(false)
	m.relays.Select(RailOff)
}

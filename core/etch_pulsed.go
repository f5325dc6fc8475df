package core

import "strconv"

// Validated + pulsed etch: same contact front end as the continuous
// machine, then a monitored primary-voltage hold, a second plunge, and a
// fixed train of secondary-voltage pulses.

// PulsedEtchState enumerates the process phases.
type PulsedEtchState uint8

const (
	// PulsedSeekingSurface descends while watching the smoothed corrected current.
	PulsedSeekingSurface PulsedEtchState = iota
	// PulsedPostDetectWait pauses after the stop at the detected surface.
	PulsedPostDetectWait
	// PulsedPlunge performs the controlled extra descent.
	PulsedPlunge
	// PulsedPreValidateWait pauses before the validation pulse.
	PulsedPreValidateWait
	// PulsedValidating applies the primary voltage and waits for confirmation.
	PulsedValidating
	// PulsedPrimaryHold holds the primary voltage while the long average settles.
	PulsedPrimaryHold
	// PulsedPostPrimaryWait pauses after the primary voltage is removed.
	PulsedPostPrimaryWait
	// PulsedSecondaryPlunge descends before the pulse train.
	PulsedSecondaryPlunge
	// PulsedPrePulseWait pauses before the first pulse.
	PulsedPrePulseWait
	// PulsedPulseTrain drives the secondary-voltage ON/OFF cycles.
	PulsedPulseTrain
	// PulsedFinalLift executes the fixed lift after the train.
	PulsedFinalLift
	// PulsedDone is terminal.
	PulsedDone
	// PulsedAborted is terminal: the soft travel range was violated.
	PulsedAborted
)

const (
	pulsedSeekSpeedMM   = 3.0
	pulsedPlungeSpeedMM = 1.0

	pulsedDetectWaitMS    = 1000
	pulsedValidateWaitMS  = 1000
	pulsedValidateLimitMS = 500
	pulsedHoldMinMS       = 2000
	pulsedPostPrimaryMS   = 1000
	pulsedPrePulseMS      = 1000

	pulsedLiftMM      = 30.0
	pulsedLiftSpeedMM = 3.0
)

// PulsedEtch is the validated + pulsed etch machine.
type PulsedEtch struct {
	display Display
	stepper *Stepper
	relays  *Relays
	sensor  *CurrentSensor
	clock   Clock
	params  *Params

	longAvg  *MovingAvg
	shortAvg *MovingAvg

	state         PulsedEtchState
	waitStart     uint32
	validateStart uint32
	holdStart     uint32

	pulseStart uint32
	pulseCount int
	pulseOn    bool
}

// NewPulsedEtch wires the machine.
func NewPulsedEtch(display Display, stepper *Stepper, relays *Relays, sensor *CurrentSensor, clock Clock, params *Params) *PulsedEtch {
	return &PulsedEtch{
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
func (m *PulsedEtch) Name() string { return "PULSE" }

// State returns the current phase.
func (m *PulsedEtch) State() PulsedEtchState { return m.state }

// Aborted reports whether the run ended on a soft-limit violation.
func (m *PulsedEtch) Aborted() bool { return m.state == PulsedAborted }

// PulsesDone returns the number of completed ON/OFF cycles.
func (m *PulsedEtch) PulsesDone() int { return m.pulseCount }

// Begin implements Process: starts the downward surface search.
func (m *PulsedEtch) Begin() {
	Title2(m.display, "PULSE: Seeking", "Move down")

	m.relays.Select(RailOff)
	m.state = PulsedSeekingSurface
	m.pulseOn = false
	m.pulseCount = 0
	m.longAvg.Reset(0)
	m.shortAvg.Reset(0)

	m.stepper.Enable(true)
	m.stepper.SetSpeed(+pulsedSeekSpeedMM)
	m.sensor.SetEnabled(true)
}

// Step implements Process.
func (m *PulsedEtch) Step() bool {
	m.stepper.Update()
	now := m.clock.Micros()

	z := m.stepper.PositionMM()
	if z <= m.params.ZMinMM || z >= m.params.ZMaxMM {
		m.abort()
		return true
	}

	switch m.state {
	case PulsedSeekingSurface:
		i := m.shortAvg.Update(m.sensor.CorrectedRMS())
		if i >= m.params.SurfaceThresholdA {
			m.stepper.SetSpeed(0)
			m.relays.Select(RailOff)

			Title2(m.display, "PULSE: Surface!",
				"I="+strconv.FormatFloat(float64(i), 'f', 4, 32)+" A")

			m.waitStart = now
			m.state = PulsedPostDetectWait
		}

	case PulsedPostDetectWait:
		if elapsedAtLeast(now, m.waitStart, usFromMs(pulsedDetectWaitMS)) {
			Title2(m.display, "PULSE: Plunge", "Down...")
			m.stepper.MoveRelative(+m.params.Pulsed.PlungeMM, pulsedPlungeSpeedMM)
			m.state = PulsedPlunge
		}

	case PulsedPlunge:
		if !m.stepper.IsBusy() {
			m.waitStart = now
			m.state = PulsedPreValidateWait
		}

	case PulsedPreValidateWait:
		if elapsedAtLeast(now, m.waitStart, usFromMs(pulsedValidateWaitMS)) {
			m.relays.Select(RailPrimary)

			m.validateStart = now
			m.longAvg.Reset(0)
			m.shortAvg.Reset(0)

			Title2(m.display, "PULSE: Testing", "Validating...")
			m.state = PulsedValidating
		}

	case PulsedValidating:
		i := m.shortAvg.Update(m.sensor.CorrectedRMS())

		if i >= m.params.ConfirmThresholdA {
			Title2(m.display, "PULSE: Voltage", "Holding...")
			m.holdStart = now
			m.state = PulsedPrimaryHold
			return false
		}

		if elapsedAtLeast(now, m.validateStart, usFromMs(pulsedValidateLimitMS)) {
			m.relays.Select(RailOff)
			m.stepper.SetSpeed(+pulsedSeekSpeedMM)

			Title2(m.display, "PULSE: Continue", "Seeking...")
			m.state = PulsedSeekingSurface
		}

	case PulsedPrimaryHold:
		i := m.longAvg.Update(m.sensor.CorrectedRMS())

		if !elapsedAtLeast(now, m.holdStart, usFromMs(pulsedHoldMinMS)) {
			return false
		}

		// Hold ends when the averaged current is at or below the etch
		// threshold.
		if i <= m.params.Pulsed.EtchThresholdA {
			m.relays.Select(RailOff)

			Title2(m.display, "PULSE: Volt OFF",
				"I="+strconv.FormatFloat(float64(i), 'f', 4, 32)+" A")

			m.waitStart = now
			m.state = PulsedPostPrimaryWait
		}

	case PulsedPostPrimaryWait:
		if elapsedAtLeast(now, m.waitStart, usFromMs(pulsedPostPrimaryMS)) {
			Title2(m.display, "PULSE: Plunge", "Down...")
			m.stepper.MoveRelative(+m.params.Pulsed.SecondaryPlungeMM, pulsedPlungeSpeedMM)
			m.state = PulsedSecondaryPlunge
		}

	case PulsedSecondaryPlunge:
		if !m.stepper.IsBusy() {
			m.waitStart = now
			m.state = PulsedPrePulseWait
		}

	case PulsedPrePulseWait:
		if elapsedAtLeast(now, m.waitStart, usFromMs(pulsedPrePulseMS)) {
			// No current decisions during the train.
			m.sensor.SetEnabled(false)

			Title2(m.display, "PULSE: Pulses", "Running...")
			m.pulseStart = now
			m.pulseOn = true
			m.pulseCount = 0
			m.relays.Select(RailSecondary)

			m.state = PulsedPulseTrain
		}

	case PulsedPulseTrain:
		if m.pulseOn {
			if elapsedAtLeast(now, m.pulseStart, usFromSeconds(m.params.Pulsed.PulseOnS)) {
				m.relays.Select(RailOff)
				m.pulseOn = false
				m.pulseStart = now
			}
		} else {
			if elapsedAtLeast(now, m.pulseStart, usFromSeconds(m.params.Pulsed.PulseOffS)) {
				m.pulseCount++
				if m.pulseCount >= m.params.Pulsed.PulseCount {
					Title2(m.display, "PULSE: DONE", "")
					m.stepper.MoveRelative(-pulsedLiftMM, pulsedLiftSpeedMM)
					m.state = PulsedFinalLift
				} else {
					m.relays.Select(RailSecondary)
					m.pulseOn = true
					m.pulseStart = now
				}
			}
		}

	case PulsedFinalLift:
		if !m.stepper.IsBusy() {
			m.relays.Select(RailOff)
			m.state = PulsedDone
			return true
		}

	case PulsedDone, PulsedAborted:
		return true
	}

	return false
}

func (m *PulsedEtch) abort() {
	m.stepper.SetSpeed(0)
	m.sensor.SetEnabled(false)
	m.relays.Select(RailOff)

	Title2(m.display, "PULSE: ABORT", "Z limit reached")
	m.state = PulsedAborted
}

// End implements Process.
func (m *PulsedEtch) End() {
	m.stepper.SetSpeed(0)
	m.stepper.Enable(true)
	m.sensor.SetEnabled(false)
	m.relays.Select(RailOff)
}

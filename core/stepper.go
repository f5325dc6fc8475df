package core

// Non-blocking stepper motion engine for the Z axis.
// Position is dead-reckoned from emitted pulses; there is no encoder, so
// recalibration happens exclusively via homing (SetPosition).

import "github.com/chewxy/math32"

// MotionMode describes how Update schedules steps.
type MotionMode uint8

const (
	MotionIdle MotionMode = iota
	MotionVelocity
	MotionToTarget
)

// minStepRate is the lowest step frequency (steps/s) the engine will emit.
// Below it the period would be enormous; no pulse is issued instead.
const minStepRate = 1.0

// StepperConfig fixes the drive geometry and speed limit at construction.
type StepperConfig struct {
	StepsPerRev float32 // full steps per motor revolution
	Microsteps  int     // microstepping factor
	LeadMM      float32 // screw lead, mm per revolution
	MaxSpeedMM  float32 // maximum linear speed, mm/s
}

// Stepper converts between physical units and step counts and schedules
// step pulses from the control loop. Two motion modes: continuous velocity
// and move-to-target. All timing uses the wraparound-safe microsecond clock.
type Stepper struct {
	backend StepperBackend
	clock   Clock

	stepsPerMM float32
	nominalMM  float32 // default speed for target moves
	maxMM      float32

	posSteps    int32
	speedMM     float32 // signed, mm/s
	dir         bool    // true = positive travel
	mode        MotionMode
	targetSteps int32

	nextStepDue uint32
	timingSet   bool
}

// NewStepper creates the motion engine. The motor is left disabled.
func NewStepper(backend StepperBackend, clock Clock, cfg StepperConfig) *Stepper {
	return &Stepper{
		backend:    backend,
		clock:      clock,
		stepsPerMM: (cfg.StepsPerRev * float32(cfg.Microsteps)) / cfg.LeadMM,
		nominalMM:  cfg.MaxSpeedMM / 2,
		maxMM:      cfg.MaxSpeedMM,
	}
}

// Enable energizes or releases the motor driver.
func (s *Stepper) Enable(on bool) { s.backend.Enable(on) }

// SetSpeed switches to continuous-velocity mode. The sign selects the
// direction, the magnitude is clamped to the configured maximum, and zero
// stops motion. Starting from idle resets step timing so the first pulse is
// not held back by a stale deadline.
func (s *Stepper) SetSpeed(v float32) {
	if v > s.maxMM {
		v = s.maxMM
	}
	if v < -s.maxMM {
		v = -s.maxMM
	}

	wasIdle := s.mode == MotionIdle || s.speedMM == 0

	s.speedMM = v
	if v == 0 {
		s.mode = MotionIdle
	} else {
		s.mode = MotionVelocity
	}

	s.setDirection(v >= 0)

	if v != 0 && wasIdle {
		s.timingSet = false
	}
}

// MoveTo starts a non-blocking move to an absolute position. Direction comes
// from the sign of the remaining travel; a non-positive speed request falls
// back to the nominal speed. The move self-terminates at the target.
func (s *Stepper) MoveTo(posMM, speedMM float32) {
	s.targetSteps = int32(math32.Round(posMM * s.stepsPerMM))
	if s.targetSteps == s.posSteps {
		s.speedMM = 0
		s.mode = MotionIdle
		return
	}

	s.setDirection(s.targetSteps > s.posSteps)

	v := math32.Abs(speedMM)
	if v <= 0 {
		v = s.nominalMM
	}
	if v > s.maxMM {
		v = s.maxMM
	}

	if s.dir {
		s.speedMM = v
	} else {
		s.speedMM = -v
	}
	s.mode = MotionToTarget
	s.timingSet = false
}

// MoveRelative starts a non-blocking move by deltaMM from the current position.
func (s *Stepper) MoveRelative(deltaMM, speedMM float32) {
	s.MoveTo(s.PositionMM()+deltaMM, speedMM)
}

// Update must be called every control-loop tick. It computes the step period
// from the current speed, emits a pulse when one is due and advances the due
// time by exactly one period so jitter never accumulates into drift.
func (s *Stepper) Update() {
	if s.mode == MotionIdle && s.speedMM == 0 {
		s.timingSet = false
		return
	}

	stepsPerSec := math32.Abs(s.speedMM) * s.stepsPerMM
	if stepsPerSec < minStepRate {
		return
	}
	period := uint32(1e6 / stepsPerSec)

	now := s.clock.Micros()
	if !s.timingSet {
		s.nextStepDue = now
		s.timingSet = true
	}

	if timeReached(now, s.nextStepDue) {
		s.nextStepDue += period
		s.stepOnce()

		if s.mode == MotionToTarget {
			s.checkTargetReached()
		}
	}
}

func (s *Stepper) stepOnce() {
	s.backend.Step()
	if s.dir {
		s.posSteps++
	} else {
		s.posSteps--
	}
}

func (s *Stepper) checkTargetReached() {
	if s.dir {
		if s.posSteps >= s.targetSteps {
			s.speedMM = 0
			s.mode = MotionIdle
		}
	} else {
		if s.posSteps <= s.targetSteps {
			s.speedMM = 0
			s.mode = MotionIdle
		}
	}
}

func (s *Stepper) setDirection(dir bool) {
	if dir != s.dir {
		s.dir = dir
		s.backend.SetDirection(dir)
	}
}

// SetPosition recalibrates the step counter without moving. Used after homing.
func (s *Stepper) SetPosition(posMM float32) {
	s.posSteps = int32(math32.Round(posMM * s.stepsPerMM))
}

// PositionMM returns the dead-reckoned position in millimeters.
func (s *Stepper) PositionMM() float32 {
	return float32(s.posSteps) / s.stepsPerMM
}

// IsBusy reports whether a target move is still in progress.
func (s *Stepper) IsBusy() bool { return s.mode == MotionToTarget }

// StepsPerMM returns the mm-to-steps conversion factor.
func (s *Stepper) StepsPerMM() float32 { return s.stepsPerMM }

// NominalSpeed returns the default speed used for target moves.
func (s *Stepper) NominalSpeed() float32 { return s.nominalMM }

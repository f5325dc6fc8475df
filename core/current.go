package core

// Windowed true-RMS current measurement.
// The sense signal carries a DC bias, so the engine computes the RMS of the
// AC component only: sqrt(<v^2> - <v>^2) over each integration window.

import "github.com/chewxy/math32"

// CurrentSensorConfig holds the measurement configuration.
type CurrentSensorConfig struct {
	VRef        float32 // ADC reference voltage (V)
	MaxCode     uint16  // full-scale ADC code (e.g. 1023 for 10-bit)
	Calibration float32 // converts AC-RMS volts to amperes
	WindowUS    uint32  // integration window length (µs)
	IntervalUS  uint32  // spacing between ADC samples (µs)
}

// DefaultCurrentSensorConfig matches the instrument's sense front end:
// one 50 Hz period per window, sampled at 5 kHz.
func DefaultCurrentSensorConfig() CurrentSensorConfig {
	return CurrentSensorConfig{
		VRef:        5.0,
		MaxCode:     1023,
		Calibration: 0.90,
		WindowUS:    20000,
		IntervalUS:  200,
	}
}

// CurrentSensor performs non-blocking windowed RMS measurement. Update must
// be called every control-loop tick; it samples the ADC at the configured
// interval, accumulates per-window statistics and publishes Vpp and Irms
// when the window closes. While disabled the last readings stay frozen.
//
// The baseline (no-load residual current, captured during homing) also lives
// here: the homing process is its only writer, every consumer reads it
// through CorrectedRMS.
type CurrentSensor struct {
	adc   AnalogReader
	clock Clock
	cfg   CurrentSensorConfig

	enabled  bool
	baseline float32

	nextSampleTime uint32
	windowStart    uint32

	minCode int32
	maxCode int32
	sumV    float32
	sumV2   float32
	samples uint32

	vpp  float32
	irms float32
}

// NewCurrentSensor creates the engine. Begin must be called before Update.
func NewCurrentSensor(adc AnalogReader, clock Clock, cfg CurrentSensorConfig) *CurrentSensor {
	return &CurrentSensor{adc: adc, clock: clock, cfg: cfg}
}

// Begin resets timing and all per-window statistics.
func (s *CurrentSensor) Begin() {
	now := s.clock.Micros()
	s.windowStart = now
	s.nextSampleTime = now
	s.resetWindow()
}

func (s *CurrentSensor) resetWindow() {
	s.minCode = int32(s.cfg.MaxCode)
	s.maxCode = 0
	s.sumV = 0
	s.sumV2 = 0
	s.samples = 0
}

// SetEnabled turns measurement on or off. Disabling freezes the last
// readings; nothing decays. Re-enabling reseeds the sample schedule and
// window boundary so a stale deadline cannot trigger a burst of degenerate
// windows.
func (s *CurrentSensor) SetEnabled(on bool) {
	if on && !s.enabled {
		s.Begin()
	}
	s.enabled = on
}

// Enabled reports whether measurement updates are active.
func (s *CurrentSensor) Enabled() bool { return s.enabled }

// Update performs one non-blocking measurement step. A sample is taken only
// once the scheduled sample time has elapsed; the schedule accumulates
// rather than resetting so the sampling rate does not drift. The window
// boundary likewise advances by exactly the window length.
func (s *CurrentSensor) Update() {
	if !s.enabled {
		return
	}
	now := s.clock.Micros()

	if timeReached(now, s.nextSampleTime) {
		s.nextSampleTime += s.cfg.IntervalUS

		if code, ok := s.adc.ReadRaw(); ok {
			c := int32(code)
			if c < s.minCode {
				s.minCode = c
			}
			if c > s.maxCode {
				s.maxCode = c
			}

			// Volts including DC bias; the bias cancels in the variance.
			v := float32(c) * (s.cfg.VRef / float32(s.cfg.MaxCode))
			s.sumV += v
			s.sumV2 += v * v
			s.samples++
		}
	}

	if elapsedAtLeast(now, s.windowStart, s.cfg.WindowUS) {
		s.windowStart += s.cfg.WindowUS
		s.closeWindow()
	}
}

func (s *CurrentSensor) closeWindow() {
	span := s.maxCode - s.minCode
	if span < 0 {
		span = 0
	}
	s.vpp = float32(span) * (s.cfg.VRef / float32(s.cfg.MaxCode))

	// An empty window keeps the previous Irms.
	if s.samples > 0 {
		n := float32(s.samples)
		meanV := s.sumV / n
		meanV2 := s.sumV2 / n

		variance := meanV2 - meanV*meanV
		if variance < 0 {
			variance = 0
		}

		s.irms = s.cfg.Calibration * math32.Sqrt(variance)
	}

	s.resetWindow()
}

// RMS returns the last computed RMS current (A), uncorrected.
func (s *CurrentSensor) RMS() float32 { return s.irms }

// PeakToPeak returns the last computed peak-to-peak sense voltage (V).
func (s *CurrentSensor) PeakToPeak() float32 { return s.vpp }

// SetBaseline stores the no-load residual current. Written once per homing
// cycle by the homing process.
func (s *CurrentSensor) SetBaseline(amps float32) { s.baseline = amps }

// Baseline returns the stored no-load residual current.
func (s *CurrentSensor) Baseline() float32 { return s.baseline }

// CorrectedRMS returns the baseline-corrected RMS current, clamped at zero.
func (s *CurrentSensor) CorrectedRMS() float32 {
	i := s.irms - s.baseline
	if i < 0 {
		return 0
	}
	return i
}

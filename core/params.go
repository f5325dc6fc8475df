package core

import (
	"errors"

	"github.com/chewxy/math32"
)

// ContinuousEtchParams tunes the continuous-voltage etch process.
type ContinuousEtchParams struct {
	PlungeMM       float32 // extra descent after surface detection (mm)
	EtchThresholdA float32 // long-window current below which etching is done (A)
	RetractSpeedMM float32 // upward speed during etching (mm/s)
}

// PulsedEtchParams tunes the validated + pulsed etch process.
type PulsedEtchParams struct {
	PlungeMM          float32 // extra descent after surface detection (mm)
	EtchThresholdA    float32 // long-window current ending the primary hold (A)
	SecondaryPlungeMM float32 // descent before the pulse train (mm)
	PulseCount        int     // number of secondary-voltage pulses
	PulseOnS          float32 // pulse ON duration (s)
	PulseOffS         float32 // pulse OFF duration (s)
}

// Params is the full tunable set. It lives in volatile memory only and is
// mutated between process runs (keypad editor or host console); the process
// machines re-read values at the moment they need them and never cache a
// copy across invocations.
type Params struct {
	SurfaceThresholdA float32 // smoothed corrected current indicating contact (A)
	ConfirmThresholdA float32 // smoothed current confirming contact under voltage (A)

	ZMinMM float32 // soft travel range, lower bound (mm)
	ZMaxMM float32 // soft travel range, upper bound (mm)

	BaselineHeightMM float32 // position for the no-load baseline capture (mm)
	BaselineSeconds  float32 // baseline accumulation duration (s)

	Continuous ContinuousEtchParams
	Pulsed     PulsedEtchParams
}

// DefaultParams returns the instrument's stock tuning.
func DefaultParams() *Params {
	return &Params{
		SurfaceThresholdA: 0.10,
		ConfirmThresholdA: 0.50,
		ZMinMM:            1.5,
		ZMaxMM:            75.0,
		BaselineHeightMM:  30.0,
		BaselineSeconds:   5.0,
		Continuous: ContinuousEtchParams{
			PlungeMM:       4.0,
			EtchThresholdA: 0.05,
			RetractSpeedMM: 0.015,
		},
		Pulsed: PulsedEtchParams{
			PlungeMM:          4.0,
			EtchThresholdA:    0.05,
			SecondaryPlungeMM: 3.0,
			PulseCount:        5,
			PulseOnS:          0.5,
			PulseOffS:         2.0,
		},
	}
}

// ParamValue is one named tunable and its current value.
type ParamValue struct {
	Name  string
	Value float32
}

var errUnknownParam = errors.New("unknown parameter")

type paramField struct {
	name string
	get  func(*Params) float32
	set  func(*Params, float32)
}

// paramFields maps external names to fields. Integer-valued tunables are
// rounded on assignment.
var paramFields = []paramField{
	{"surface_threshold_a",
		func(p *Params) float32 { return p.SurfaceThresholdA },
		func(p *Params, v float32) { p.SurfaceThresholdA = v }},
	{"confirm_threshold_a",
		func(p *Params) float32 { return p.ConfirmThresholdA },
		func(p *Params, v float32) { p.ConfirmThresholdA = v }},
	{"z_min_mm",
		func(p *Params) float32 { return p.ZMinMM },
		func(p *Params, v float32) { p.ZMinMM = v }},
	{"z_max_mm",
		func(p *Params) float32 { return p.ZMaxMM },
		func(p *Params, v float32) { p.ZMaxMM = v }},
	{"baseline_height_mm",
		func(p *Params) float32 { return p.BaselineHeightMM },
		func(p *Params, v float32) { p.BaselineHeightMM = v }},
	{"baseline_seconds",
		func(p *Params) float32 { return p.BaselineSeconds },
		func(p *Params, v float32) { p.BaselineSeconds = v }},
	{"cont.plunge_mm",
		func(p *Params) float32 { return p.Continuous.PlungeMM },
		func(p *Params, v float32) { p.Continuous.PlungeMM = v }},
	{"cont.etch_threshold_a",
		func(p *Params) float32 { return p.Continuous.EtchThresholdA },
		func(p *Params, v float32) { p.Continuous.EtchThresholdA = v }},
	{"cont.retract_speed_mm_s",
		func(p *Params) float32 { return p.Continuous.RetractSpeedMM },
		func(p *Params, v float32) { p.Continuous.RetractSpeedMM = v }},
	{"pulsed.plunge_mm",
		func(p *Params) float32 { return p.Pulsed.PlungeMM },
		func(p *Params, v float32) { p.Pulsed.PlungeMM = v }},
	{"pulsed.etch_threshold_a",
		func(p *Params) float32 { return p.Pulsed.EtchThresholdA },
		func(p *Params, v float32) { p.Pulsed.EtchThresholdA = v }},
	{"pulsed.secondary_plunge_mm",
		func(p *Params) float32 { return p.Pulsed.SecondaryPlungeMM },
		func(p *Params, v float32) { p.Pulsed.SecondaryPlungeMM = v }},
	{"pulsed.pulse_count",
		func(p *Params) float32 { return float32(p.Pulsed.PulseCount) },
		func(p *Params, v float32) { p.Pulsed.PulseCount = int(math32.Round(v)) }},
	{"pulsed.pulse_on_s",
		func(p *Params) float32 { return p.Pulsed.PulseOnS },
		func(p *Params, v float32) { p.Pulsed.PulseOnS = v }},
	{"pulsed.pulse_off_s",
		func(p *Params) float32 { return p.Pulsed.PulseOffS },
		func(p *Params, v float32) { p.Pulsed.PulseOffS = v }},
}

// Set assigns a tunable by name.
func (p *Params) Set(name string, value float32) error {
	for _, f := range paramFields {
		if f.name == name {
			f.set(p, value)
			return nil
		}
	}
	return errUnknownParam
}

// Get reads a tunable by name.
func (p *Params) Get(name string) (float32, error) {
	for _, f := range paramFields {
		if f.name == name {
			return f.get(p), nil
		}
	}
	return 0, errUnknownParam
}

// List returns every tunable with its current value, in a stable order.
func (p *Params) List() []ParamValue {
	out := make([]ParamValue, len(paramFields))
	for i, f := range paramFields {
		out[i] = ParamValue{Name: f.name, Value: f.get(p)}
	}
	return out
}

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHomeFullCycle(t *testing.T) {
	r := newRig(t)
	r.stepper.SetPosition(10.0)
	r.adc.setAmps(0.15)

	h := NewHomeProcess(r.display, r.stepper, r.endstop, r.sensor, r.clock, r.params)
	h.Begin()
	require.Equal(t, HomeSeeking, h.State())
	require.True(t, r.backend.enabled)

	// Descend until the carriage is near the switch, then trip it.
	r.runUntil(t, h, 200, 50_000, func() bool {
		return r.stepper.PositionMM() <= 0.5
	})
	r.gpio.in[testPinEndstop] = false // switch closes to ground
	r.tick(h, 200)
	require.Equal(t, HomeMovingToBaseline, h.State())
	assert.Zero(t, r.stepper.PositionMM())

	// After the pause the carriage travels to the baseline height.
	r.runUntil(t, h, 200, 200_000, func() bool {
		return h.State() == HomeMeasuringBaseline
	})
	assert.InDelta(t, r.params.BaselineHeightMM, r.stepper.PositionMM(), 1.0/400)
	assert.True(t, r.sensor.Enabled())

	// Averaging runs for BaselineSeconds, then the result is stored.
	r.runUntil(t, h, 200, 50_000, func() bool {
		return h.State() == HomeSettling
	})
	assert.False(t, r.sensor.Enabled())
	// The first window of the averaging period reads zero, so the mean
	// sits just under the true level.
	assert.InDelta(t, 0.15, r.sensor.Baseline(), 0.01)

	done := r.runTicks(h, 200, 50_000)
	assert.True(t, done)
	assert.Equal(t, HomeDone, h.State())

	// With the baseline captured the corrected reading nulls out.
	r.sensor.SetEnabled(true)
	runWindows(r, 3)
	assert.InDelta(t, 0.0, r.sensor.CorrectedRMS(), 0.02)
}

func TestHomeSwitchAlreadyTriggered(t *testing.T) {
	r := newRig(t)
	r.stepper.SetPosition(10.0)
	r.gpio.in[testPinEndstop] = false

	h := NewHomeProcess(r.display, r.stepper, r.endstop, r.sensor, r.clock, r.params)
	h.Begin()

	// First tick already sees the switch closed: no downward travel.
	r.tick(h, 200)
	assert.Equal(t, HomeMovingToBaseline, h.State())
	assert.Zero(t, r.stepper.PositionMM())
}

func TestHomeEndLeavesSafeState(t *testing.T) {
	r := newRig(t)
	r.stepper.SetPosition(10.0)

	h := NewHomeProcess(r.display, r.stepper, r.endstop, r.sensor, r.clock, r.params)
	h.Begin()
	r.runTicks(h, 200, 100)

	h.End()
	before := r.backend.steps
	r.clock.advance(1_000_000)
	r.stepper.Update()
	assert.Equal(t, before, r.backend.steps)
	assert.False(t, r.sensor.Enabled())
}

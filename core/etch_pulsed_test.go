package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPulsedRig(t *testing.T) (*rig, *PulsedEtch) {
	r := newRig(t)
	r.stepper.SetPosition(r.params.BaselineHeightMM)
	m := NewPulsedEtch(r.display, r.stepper, r.relays, r.sensor, r.clock, r.params)
	return r, m
}

// advancePulsedToHold walks the machine through detection, plunge and
// validation so the caller starts at the primary-voltage hold.
func advancePulsedToHold(t *testing.T, r *rig, m *PulsedEtch) {
	t.Helper()

	r.runUntil(t, m, 200, 60_000, func() bool {
		return r.stepper.PositionMM() >= 40.0
	})
	r.adc.setAmps(0.3)
	r.runUntil(t, m, 200, 2_000, func() bool {
		return m.State() == PulsedPostDetectWait
	})
	r.adc.setAmps(0.8)
	r.runUntil(t, m, 200, 40_000, func() bool {
		return m.State() == PulsedPrimaryHold
	})
}

func TestPulsedEtchFullRun(t *testing.T) {
	r, m := newPulsedRig(t)
	m.Begin()
	require.Equal(t, PulsedSeekingSurface, m.State())

	advancePulsedToHold(t, r, m)
	assert.Equal(t, RailPrimary, r.relays.Active())

	// The hold persists past its minimum while current stays high, and
	// releases once the long average falls to the etch threshold.
	r.runTicks(m, 200, 15_000)
	assert.Equal(t, PulsedPrimaryHold, m.State())
	r.adc.setAmps(0.0)
	r.runUntil(t, m, 200, 10_000, func() bool {
		return m.State() == PulsedPostPrimaryWait
	})
	assert.True(t, r.relaysSafe())
	zHoldEnd := r.stepper.PositionMM()

	r.runUntil(t, m, 200, 40_000, func() bool {
		return m.State() == PulsedPrePulseWait
	})
	assert.InDelta(t, zHoldEnd+r.params.Pulsed.SecondaryPlungeMM, r.stepper.PositionMM(), 0.01)

	// Count secondary-rail turn-ons through the whole train.
	var onPhases int
	prev := r.relays.Active()
	for m.State() != PulsedFinalLift {
		r.tick(m, 200)
		cur := r.relays.Active()
		if cur != prev {
			require.NotEqual(t, RailPrimary, cur)
			if cur == RailSecondary {
				onPhases++
			}
			prev = cur
		}
		require.Less(t, onPhases, 100, "pulse train does not terminate")
	}
	assert.Equal(t, r.params.Pulsed.PulseCount, onPhases)
	assert.Equal(t, r.params.Pulsed.PulseCount, m.PulsesDone())
	assert.False(t, r.sensor.Enabled())
	zTrainEnd := r.stepper.PositionMM()

	var done bool
	for i := 0; i < 80_000 && !done; i++ {
		done = r.tick(m, 200)
	}
	require.True(t, done)
	assert.Equal(t, PulsedDone, m.State())
	assert.InDelta(t, zTrainEnd-30.0, r.stepper.PositionMM(), 0.01)
	assert.True(t, r.relaysSafe())
}

func TestPulsedEtchPulseTiming(t *testing.T) {
	r, m := newPulsedRig(t)
	m.Begin()
	advancePulsedToHold(t, r, m)
	r.adc.setAmps(0.0)
	r.runUntil(t, m, 200, 60_000, func() bool {
		return m.State() == PulsedPulseTrain
	})

	// First phase is ON; it lasts PulseOnS then switches off for PulseOffS.
	require.Equal(t, RailSecondary, r.relays.Active())

	var onTicks int
	for r.relays.Active() == RailSecondary {
		r.tick(m, 200)
		onTicks++
		require.Less(t, onTicks, 10_000)
	}
	assert.InDelta(t, 0.5/200e-6, float64(onTicks), 5)

	var offTicks int
	for r.relays.Active() == RailOff && m.State() == PulsedPulseTrain {
		r.tick(m, 200)
		offTicks++
		require.Less(t, offTicks, 20_000)
	}
	assert.InDelta(t, 2.0/200e-6, float64(offTicks), 5)
}

func TestPulsedEtchAbortsAtLowerLimit(t *testing.T) {
	r, m := newPulsedRig(t)
	r.stepper.SetPosition(74.9)
	m.Begin()

	var done bool
	for i := 0; i < 5_000 && !done; i++ {
		done = r.tick(m, 200)
	}
	require.True(t, done)
	assert.Equal(t, PulsedAborted, m.State())
	assert.True(t, r.relaysSafe())
	assert.False(t, r.sensor.Enabled())
}

func TestPulsedEtchEndLeavesSafeState(t *testing.T) {
	r, m := newPulsedRig(t)
	m.Begin()
	r.runTicks(m, 200, 1_000)

	m.End()
	assert.True(t, r.relaysSafe())
	assert.False(t, r.sensor.Enabled())

	before := r.backend.steps
	r.clock.advance(1_000_000)
	r.stepper.Update()
	assert.Equal(t, before, r.backend.steps)
}
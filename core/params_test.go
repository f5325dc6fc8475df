package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsSetGet(t *testing.T) {
	p := DefaultParams()

	require.NoError(t, p.Set("cont.etch_threshold_a", 0.08))
	assert.InDelta(t, 0.08, p.Continuous.EtchThresholdA, 1e-6)

	v, err := p.Get("cont.etch_threshold_a")
	require.NoError(t, err)
	assert.InDelta(t, 0.08, v, 1e-6)
}

func TestParamsUnknownName(t *testing.T) {
	p := DefaultParams()

	assert.Error(t, p.Set("no_such_param", 1))
	_, err := p.Get("no_such_param")
	assert.Error(t, err)
}

func TestParamsPulseCountRounds(t *testing.T) {
	p := DefaultParams()

	require.NoError(t, p.Set("pulsed.pulse_count", 6.7))
	assert.Equal(t, 7, p.Pulsed.PulseCount)

	v, err := p.Get("pulsed.pulse_count")
	require.NoError(t, err)
	assert.Equal(t, float32(7), v)
}

func TestParamsListCoversEveryTunable(t *testing.T) {
	p := DefaultParams()
	list := p.List()

	require.Len(t, list, 15)
	seen := map[string]bool{}
	for _, pv := range list {
		require.False(t, seen[pv.Name], "duplicate %s", pv.Name)
		seen[pv.Name] = true

		// Every listed name round-trips through Set/Get.
		require.NoError(t, p.Set(pv.Name, pv.Value))
		got, err := p.Get(pv.Name)
		require.NoError(t, err)
		assert.Equal(t, pv.Value, got, pv.Name)
	}
}

func TestDefaultParamsSane(t *testing.T) {
	p := DefaultParams()

	assert.Less(t, p.ZMinMM, p.ZMaxMM)
	assert.Greater(t, p.ConfirmThresholdA, p.SurfaceThresholdA)
	assert.Greater(t, p.BaselineHeightMM, p.ZMinMM)
	assert.Less(t, p.BaselineHeightMM, p.ZMaxMM)
	assert.Greater(t, p.Pulsed.PulseCount, 0)
}

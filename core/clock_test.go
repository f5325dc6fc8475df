package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimeReachedAcrossWrap(t *testing.T) {
	assert.True(t, timeReached(100, 100))
	assert.True(t, timeReached(101, 100))
	assert.False(t, timeReached(99, 100))

	// Deadline scheduled just before the counter wraps; now is just after.
	assert.True(t, timeReached(5, 0xFFFFFFF0))
	assert.False(t, timeReached(0xFFFFFFF0, 5))
}

func TestElapsedAtLeastAcrossWrap(t *testing.T) {
	assert.True(t, elapsedAtLeast(1500, 500, 1000))
	assert.False(t, elapsedAtLeast(1499, 500, 1000))

	// Interval straddling the wrap.
	start := uint32(0xFFFFFF00)
	assert.False(t, elapsedAtLeast(0xFFFFFFFF, start, 1000))
	assert.True(t, elapsedAtLeast(start+1000, start, 1000))
}

func TestDurationHelpers(t *testing.T) {
	assert.Equal(t, uint32(200_000), usFromMs(200))
	assert.Equal(t, uint32(2_500_000), usFromSeconds(2.5))
}

package core

import "github.com/chewxy/math32"

// movAvgScale is the fixed-point scale applied to samples before they are
// stored: values are kept in milli-units so the running sum stays integer.
const movAvgScale = 1000

// MovingAvg is an O(1) streaming moving average over a fixed window.
// Samples are converted to clamped int16 fixed-point before insertion, so
// the running sum never accumulates floating-point drift. The buffer is
// allocated once at construction; Update and Reset never allocate.
type MovingAvg struct {
	buf    []int16
	idx    int
	sum    int32
	filled bool
}

// NewMovingAvg returns a moving average over the last window samples.
func NewMovingAvg(window int) *MovingAvg {
	if window < 1 {
		window = 1
	}
	m := &MovingAvg{buf: make([]int16, window)}
	m.Reset(0)
	return m
}

func toFixed(x float32) int16 {
	xs := x * movAvgScale
	if xs > 32767 {
		xs = 32767
	}
	if xs < -32768 {
		xs = -32768
	}
	return int16(math32.Round(xs))
}

// Update inserts a sample and returns the current window average.
// Until the window has filled once, the divisor is the number of samples
// inserted so far rather than the window length.
func (m *MovingAvg) Update(x float32) float32 {
	xf := toFixed(x)

	m.sum -= int32(m.buf[m.idx])
	m.buf[m.idx] = xf
	m.sum += int32(xf)

	m.idx++
	if m.idx >= len(m.buf) {
		m.idx = 0
		m.filled = true
	}

	denom := m.idx
	if m.filled {
		denom = len(m.buf)
	}
	if denom < 1 {
		denom = 1
	}

	return (float32(m.sum) / float32(denom)) / movAvgScale
}

// Reset pre-fills the entire window with initial. A non-zero initial marks
// the window as already filled; with zero the fill status is acquired
// gradually as real samples arrive.
func (m *MovingAvg) Reset(initial float32) {
	x0 := toFixed(initial)
	m.sum = 0
	m.idx = 0
	m.filled = x0 != 0
	for i := range m.buf {
		m.buf[i] = x0
		m.sum += int32(x0)
	}
}

// Filled reports whether at least a full window of samples is present.
func (m *MovingAvg) Filled() bool { return m.filled }

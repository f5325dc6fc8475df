package core

// Clock is a free-running 32-bit microsecond counter. On hardware it is
// backed by the MCU timer peripheral and wraps roughly every 71 minutes;
// all elapsed-time math in this package must go through the signed-difference
// helpers below so that a wrap never produces a stale or spurious deadline.
type Clock interface {
	Micros() uint32
}

// timeReached reports whether now has reached or passed deadline.
func timeReached(now, deadline uint32) bool {
	return int32(now-deadline) >= 0
}

// elapsedAtLeast reports whether at least d microseconds have passed since start.
func elapsedAtLeast(now, start, d uint32) bool {
	return int32(now-start) >= int32(d)
}

func usFromMs(ms uint32) uint32 {
	return ms * 1000
}

func usFromSeconds(s float32) uint32 {
	return uint32(s * 1e6)
}

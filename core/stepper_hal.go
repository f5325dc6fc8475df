package core

// StepperBackend defines the hardware abstraction for the Z-axis drive.
// Implementations can use plain GPIO or PIO-assisted pulse generation.
type StepperBackend interface {
	// Enable energizes (true) or releases (false) the motor driver
	Enable(on bool)

	// SetDirection sets the direction output.
	// dir: true = positive travel (tip descends), false = negative.
	// Must ensure proper dir-to-step setup time.
	SetDirection(dir bool)

	// Step generates a single step pulse.
	// Must handle pulse width timing internally and return quickly;
	// it is called from the control loop tick.
	Step()
}

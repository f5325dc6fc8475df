//go:build rp2040

package main

import "tipetch/core"

// Board wiring. Step/dir/enable go to the stepper driver module, the two
// relay outputs select the etch voltage rail, and the sense amplifier output
// lands on ADC0.
const (
	pinStep   uint8 = 2
	pinDir    uint8 = 3
	pinEnable uint8 = 4

	pinRelayPrimary   core.GPIOPin = 10 // higher etch voltage
	pinRelaySecondary core.GPIOPin = 11 // pulse voltage

	pinEndstop core.GPIOPin = 12

	// I2C0 for the character LCD backpack.
	lcdAddr uint8 = 0x27

	// ADC channels.
	adcCurrentChannel uint8 = 0 // GP26
	adcKeypadChannel  uint8 = 1 // GP27
)

// stepperGeometry matches the installed drive: 1.8 degree motor, 16x
// microstepping, 8 mm lead screw.
func stepperGeometry() core.StepperConfig {
	return core.StepperConfig{
		StepsPerRev: 200,
		Microsteps:  16,
		LeadMM:      8,
		MaxSpeedMM:  10,
	}
}

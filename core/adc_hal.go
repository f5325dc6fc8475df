package core

// AnalogReader reads raw codes from the current-sense analog input.
// Implementations can use the MCU ADC or, in tests, a synthetic stream.
type AnalogReader interface {
	// ReadRaw returns the latest conversion result and whether the
	// read succeeded. A failed read is skipped by the sampling loop.
	ReadRaw() (uint16, bool)
}

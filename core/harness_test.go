package core

// Shared test doubles: a manual clock, recording GPIO, synthetic ADC stream
// and a step-counting backend, plus a rig that wires a complete instrument
// for the process-machine tests.

import (
	"testing"

	"github.com/chewxy/math32"
)

type fakeClock struct {
	now uint32
}

func (c *fakeClock) Micros() uint32 { return c.now }

func (c *fakeClock) advance(us uint32) { c.now += us }

type fakeGPIO struct {
	out     map[GPIOPin]bool
	in      map[GPIOPin]bool
	outputs map[GPIOPin]bool
	inputs  map[GPIOPin]bool
}

func newFakeGPIO() *fakeGPIO {
	return &fakeGPIO{
		out:     make(map[GPIOPin]bool),
		in:      make(map[GPIOPin]bool),
		outputs: make(map[GPIOPin]bool),
		inputs:  make(map[GPIOPin]bool),
	}
}

func (g *fakeGPIO) ConfigureOutput(pin GPIOPin) error {
	g.outputs[pin] = true
	g.out[pin] = false
	return nil
}

func (g *fakeGPIO) ConfigureInputPullUp(pin GPIOPin) error {
	g.inputs[pin] = true
	g.in[pin] = true // pulled up
	return nil
}

func (g *fakeGPIO) SetPin(pin GPIOPin, value bool) error {
	g.out[pin] = value
	return nil
}

func (g *fakeGPIO) ReadPin(pin GPIOPin) bool { return g.in[pin] }

// fakeADC produces an alternating two-code stream, which is a square wave
// to the sensing engine: AC-RMS = half the peak-to-peak amplitude.
type fakeADC struct {
	hi, lo uint16
	phase  bool
	ok     bool
}

func newFakeADC() *fakeADC {
	return &fakeADC{hi: 512, lo: 512, ok: true}
}

func (a *fakeADC) ReadRaw() (uint16, bool) {
	if !a.ok {
		return 0, false
	}
	a.phase = !a.phase
	if a.phase {
		return a.hi, true
	}
	return a.lo, true
}

// setAmps configures the stream so the engine reads the given RMS current
// under the default sensor configuration.
func (a *fakeADC) setAmps(amps float32) {
	cfg := DefaultCurrentSensorConfig()
	// amps = k * A, A = d * vref/maxcode, codes = mid +/- d
	d := amps / cfg.Calibration / (cfg.VRef / float32(cfg.MaxCode))
	di := int(math32.Round(d))
	a.hi = uint16(512 + di)
	a.lo = uint16(512 - di)
}

type fakeBackend struct {
	steps      int
	dir        bool
	dirChanges int
	enabled    bool
}

func (b *fakeBackend) Enable(on bool) { b.enabled = on }

func (b *fakeBackend) SetDirection(dir bool) {
	b.dir = dir
	b.dirChanges++
}

func (b *fakeBackend) Step() { b.steps++ }

type fakeDisplay struct {
	lines []string
}

func (d *fakeDisplay) Clear() {}

func (d *fakeDisplay) SetCursor(col, row uint8) {}

func (d *fakeDisplay) Print(s string) { d.lines = append(d.lines, s) }

type fakeKeypad struct {
	events []Key
	held   Key
}

func (k *fakeKeypad) Poll() Key {
	if len(k.events) == 0 {
		return KeyNone
	}
	e := k.events[0]
	k.events = k.events[1:]
	return e
}

func (k *fakeKeypad) Held() Key { return k.held }

const (
	testPinPrimary   GPIOPin = 7
	testPinSecondary GPIOPin = 8
	testPinEndstop   GPIOPin = 9
)

// testStepperConfig gives 400 steps/mm and a 10 mm/s ceiling.
func testStepperConfig() StepperConfig {
	return StepperConfig{
		StepsPerRev: 200,
		Microsteps:  16,
		LeadMM:      8,
		MaxSpeedMM:  10,
	}
}

// rig is a complete simulated instrument.
type rig struct {
	clock   *fakeClock
	gpio    *fakeGPIO
	adc     *fakeADC
	backend *fakeBackend
	display *fakeDisplay
	keys    *fakeKeypad

	stepper *Stepper
	sensor  *CurrentSensor
	relays  *Relays
	endstop *Endstop
	params  *Params
}

func newRig(t *testing.T) *rig {
	t.Helper()

	r := &rig{
		clock:   &fakeClock{},
		gpio:    newFakeGPIO(),
		adc:     newFakeADC(),
		backend: &fakeBackend{},
		display: &fakeDisplay{},
		keys:    &fakeKeypad{},
		params:  DefaultParams(),
	}

	r.stepper = NewStepper(r.backend, r.clock, testStepperConfig())
	r.sensor = NewCurrentSensor(r.adc, r.clock, DefaultCurrentSensorConfig())
	r.sensor.Begin()

	var err error
	r.relays, err = NewRelays(r.gpio, testPinPrimary, testPinSecondary)
	if err != nil {
		t.Fatalf("NewRelays: %v", err)
	}
	r.endstop, err = NewEndstop(r.gpio, testPinEndstop, false)
	if err != nil {
		t.Fatalf("NewEndstop: %v", err)
	}

	return r
}

// tick runs one control-loop iteration: advance time, update sensing, then
// step the process (the loop order the firmware guarantees).
func (r *rig) tick(p Process, dtUS uint32) bool {
	r.clock.advance(dtUS)
	r.sensor.Update()
	return p.Step()
}

// runTicks ticks the process n times or until it reports completion.
func (r *rig) runTicks(p Process, dtUS uint32, n int) bool {
	for i := 0; i < n; i++ {
		if r.tick(p, dtUS) {
			return true
		}
	}
	return false
}

// runUntil ticks until cond holds, failing the test after maxTicks.
func (r *rig) runUntil(t *testing.T, p Process, dtUS uint32, maxTicks int, cond func() bool) {
	t.Helper()
	for i := 0; i < maxTicks; i++ {
		r.tick(p, dtUS)
		if cond() {
			return
		}
	}
	t.Fatalf("condition not reached within %d ticks", maxTicks)
}

// relaysSafe reports whether both voltage-select outputs are de-energized.
func (r *rig) relaysSafe() bool {
	return !r.gpio.out[testPinPrimary] && !r.gpio.out[testPinSecondary]
}

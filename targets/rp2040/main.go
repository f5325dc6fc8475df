//go:build rp2040

package main

import (
	"machine"
	"time"

	"tipetch/core"
	"tipetch/targets/pio"
)

func main() {
	// Clear any watchdog state left over from a previous reset.
	if err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0}); err != nil {
		return
	}

	machine.InitADC()

	clock := hwClock{}
	gpio := rpGPIO{}

	display, err := newLCD()
	if err != nil {
		fatal(err)
	}

	relays, err := core.NewRelays(gpio, pinRelayPrimary, pinRelaySecondary)
	if err != nil {
		fatal(err)
	}
	endstop, err := core.NewEndstop(gpio, pinEndstop, false)
	if err != nil {
		fatal(err)
	}

	backend := newStepperBackend()
	stepper := core.NewStepper(backend, clock, stepperGeometry())

	senseADC, err := newAnalog(adcCurrentChannel)
	if err != nil {
		fatal(err)
	}
	sensorCfg := core.DefaultCurrentSensorConfig()
	// The RP2040 converter is 12-bit on a 3.3 V reference.
	sensorCfg.VRef = 3.3
	sensorCfg.MaxCode = 4095
	sensor := core.NewCurrentSensor(senseADC, clock, sensorCfg)
	sensor.Begin()

	keyADC, err := newAnalog(adcKeypadChannel)
	if err != nil {
		fatal(err)
	}
	keys := newAnalogKeypad(keyADC)

	params := core.DefaultParams()

	sup := core.NewSupervisor(display, keys, []core.Process{
		core.NewHomeProcess(display, stepper, endstop, sensor, clock, params),
		core.NewContinuousEtch(display, stepper, relays, sensor, clock, params),
		core.NewPulsedEtch(display, stepper, relays, sensor, clock, params),
		core.NewJogProcess(display, keys, stepper, clock, params),
	})
	con := newConsole(params, stepper, sensor)

	sup.Begin()

	// Control loop. The sensor must be updated before the supervisor tick
	// so the active process reads this tick's statistics.
	for {
		sensor.Update()
		sup.Tick()
		con.poll()

		time.Sleep(50 * time.Microsecond)
	}
}

// newStepperBackend prefers the PIO pulse generator and falls back to direct
// GPIO if the program will not load.
func newStepperBackend() core.StepperBackend {
	p := pio.NewStepperPIO(0, 0)
	if err := p.Init(pinStep, pinDir, pinEnable); err == nil {
		return p
	}

	g := pio.NewStepperGPIO()
	if err := g.Init(pinStep, pinDir, pinEnable); err != nil {
		fatal(err)
	}
	return g
}

// fatal parks the MCU; with no display guaranteed at this point the only
// recovery is a power cycle or reflash.
func fatal(err error) {
	for {
		println("init failed:", err.Error())
		time.Sleep(time.Second)
	}
}

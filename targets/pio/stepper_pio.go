//go:build rp2040

package pio

// Hardware-timed step pulse generation on the RP2040 PIO block. The control
// loop only pushes one command word per pulse; the state machine shapes the
// pulse itself, so pulse width never depends on loop timing.

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"tipetch/core"
)

// Command word format:
//
//	Bits 0-15:  pulse count
//	Bits 16-23: delay cycles between pulses
//	Bit 31:     direction level
//
// buildStepProgram assembles the pulse generator using AssemblerV0.
func buildStepProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),          // 0: pull block
		asm.Out(rp2pio.OutDestX, 16).Encode(),   // 1: out x, 16 (pulse count)
		asm.Out(rp2pio.OutDestY, 8).Encode(),    // 2: out y, 8 (delay cycles)
		asm.Out(rp2pio.OutDestPins, 1).Encode(), // 3: out pins, 1 (direction)
		// step_loop:
		asm.Set(rp2pio.SetDestPins, 1).Delay(7).Encode(), // 4: set pins, 1 [7]
		asm.Set(rp2pio.SetDestPins, 0).Encode(),          // 5: set pins, 0
		// delay_loop:
		asm.Jmp(6, rp2pio.JmpYNZeroDec).Encode(), // 6: jmp y--, 6
		asm.Jmp(4, rp2pio.JmpXNZeroDec).Encode(), // 7: jmp x--, 4
		// .wrap
	}
}

const stepProgramOrigin = 0 // jump targets are absolute

// StepperPIO implements core.StepperBackend on a PIO state machine.
type StepperPIO struct {
	pio       *rp2pio.PIO
	sm        rp2pio.StateMachine
	stepPin   machine.Pin
	dirPin    machine.Pin
	enablePin machine.Pin
	direction bool
	offset    uint8
}

// NewStepperPIO creates the backend on the given PIO block and state machine.
func NewStepperPIO(pioNum, smNum uint8) *StepperPIO {
	hw := rp2pio.PIO0
	if pioNum != 0 {
		hw = rp2pio.PIO1
	}
	return &StepperPIO{pio: hw, sm: hw.StateMachine(smNum)}
}

// Init claims the state machine, loads the program and configures the pins.
func (b *StepperPIO) Init(stepPin, dirPin, enablePin uint8) error {
	b.stepPin = machine.Pin(stepPin)
	b.dirPin = machine.Pin(dirPin)
	b.enablePin = machine.Pin(enablePin)

	b.sm.TryClaim()

	program := buildStepProgram()
	offset, err := b.pio.AddProgram(program, stepProgramOrigin)
	if err != nil {
		return err
	}
	b.offset = offset

	b.stepPin.Configure(machine.PinConfig{Mode: b.pio.PinMode()})
	b.dirPin.Configure(machine.PinConfig{Mode: b.pio.PinMode()})

	// The enable pin is plain GPIO, active low on the driver board.
	b.enablePin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	b.enablePin.High()

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(b.stepPin, 1)
	cfg.SetOutPins(b.dirPin, 1)
	cfg.SetOutShift(true, false, 32)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	cfg.SetClkDivIntFrac(1000, 0)

	b.sm.Init(offset, cfg)

	// Pin directions must be set after Init.
	b.sm.SetPindirsConsecutive(b.stepPin, 1, true)
	b.sm.SetPindirsConsecutive(b.dirPin, 1, true)
	b.sm.SetPinsConsecutive(b.stepPin, 1, false)
	b.sm.SetPinsConsecutive(b.dirPin, 1, false)

	b.sm.SetEnabled(true)
	return nil
}

// Enable implements core.StepperBackend.
func (b *StepperPIO) Enable(on bool) {
	// Active low.
	b.enablePin.Set(!on)
}

// SetDirection implements core.StepperBackend. The level travels inside the
// next command word, so it reaches the driver with the pulse it belongs to.
func (b *StepperPIO) SetDirection(dir bool) {
	b.direction = dir
}

// Step implements core.StepperBackend: one pulse, minimal inter-pulse delay.
func (b *StepperPIO) Step() {
	cmd := uint32(1) | (1 << 16)
	if b.direction {
		cmd |= 1 << 31
	}
	for b.sm.IsTxFIFOFull() {
		// FIFO drains within microseconds at our step rates.
	}
	b.sm.TxPut(cmd)
}

// Halt stops the state machine and clears any queued pulses.
func (b *StepperPIO) Halt() {
	b.sm.SetEnabled(false)
	b.sm.ClearFIFOs()
	b.sm.Restart()
	b.sm.SetEnabled(true)
}

var _ core.StepperBackend = (*StepperPIO)(nil)

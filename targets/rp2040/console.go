//go:build rp2040

package main

import (
	"machine"
	"strconv"

	"github.com/google/shlex"

	"tipetch/core"
)

// console is the line-based tuning interface on the USB serial port. It is
// polled from the main loop and never blocks: bytes are accumulated until a
// newline, then the line is tokenized and dispatched.
//
// Commands:
//
//	set <name> <value>
//	get <name>
//	list
//	status
type console struct {
	params  *core.Params
	stepper *core.Stepper
	sensor  *core.CurrentSensor

	line [96]byte
	n    int
}

func newConsole(params *core.Params, stepper *core.Stepper, sensor *core.CurrentSensor) *console {
	return &console{params: params, stepper: stepper, sensor: sensor}
}

// poll consumes any pending serial bytes and executes completed lines.
func (c *console) poll() {
	for machine.Serial.Buffered() > 0 {
		b, err := machine.Serial.ReadByte()
		if err != nil {
			return
		}
		if b == '\r' {
			continue
		}
		if b == '\n' {
			c.execute(string(c.line[:c.n]))
			c.n = 0
			continue
		}
		if c.n < len(c.line) {
			c.line[c.n] = b
			c.n++
		}
	}
}

func (c *console) execute(line string) {
	args, err := shlex.Split(line)
	if err != nil || len(args) == 0 {
		return
	}

	switch args[0] {
	case "set":
		if len(args) != 3 {
			c.reply("err: set <name> <value>")
			return
		}
		v, err := strconv.ParseFloat(args[2], 32)
		if err != nil {
			c.reply("err: bad value")
			return
		}
		if err := c.params.Set(args[1], float32(v)); err != nil {
			c.reply("err: " + err.Error())
			return
		}
		c.reply("ok")

	case "get":
		if len(args) != 2 {
			c.reply("err: get <name>")
			return
		}
		v, err := c.params.Get(args[1])
		if err != nil {
			c.reply("err: " + err.Error())
			return
		}
		c.reply(args[1] + "=" + ftoa(v))

	case "list":
		for _, pv := range c.params.List() {
			c.reply(pv.Name + "=" + ftoa(pv.Value))
		}
		c.reply("ok")

	case "status":
		c.reply("z_mm=" + ftoa(c.stepper.PositionMM()))
		c.reply("irms_a=" + ftoa(c.sensor.RMS()))
		c.reply("i0_a=" + ftoa(c.sensor.Baseline()))
		c.reply("vpp_v=" + ftoa(c.sensor.PeakToPeak()))
		c.reply("ok")

	default:
		c.reply("err: unknown command")
	}
}

func (c *console) reply(s string) {
	machine.Serial.Write([]byte(s))
	machine.Serial.Write([]byte{'\r', '\n'})
}

func ftoa(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', 4, 32)
}

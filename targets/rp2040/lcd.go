//go:build rp2040

package main

import (
	"machine"

	"tinygo.org/x/drivers/hd44780i2c"

	"tipetch/core"
)

// lcd adapts the 16x2 character display behind a PCF8574 I2C backpack to
// core.Display.
type lcd struct {
	dev hd44780i2c.Device
}

func newLCD() (*lcd, error) {
	if err := machine.I2C0.Configure(machine.I2CConfig{
		Frequency: 100_000,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	}); err != nil {
		return nil, err
	}

	dev := hd44780i2c.New(machine.I2C0, lcdAddr)
	if err := dev.Configure(hd44780i2c.Config{
		Width:  16,
		Height: 2,
	}); err != nil {
		return nil, err
	}
	return &lcd{dev: dev}, nil
}

func (l *lcd) Clear() {
	l.dev.ClearDisplay()
}

func (l *lcd) SetCursor(col, row uint8) {
	l.dev.SetCursor(col, row)
}

func (l *lcd) Print(s string) {
	l.dev.Print([]byte(s))
}

var _ core.Display = (*lcd)(nil)

package actuator

import (
	"fmt"

	"github.com/hjkoskel/govattu"
)

// high reports the pin level that represents on.
func high(on, activeLow bool) bool {
	return on != activeLow
}

// GPIO implements Switch on the BCM2835 register block via govattu.
type GPIO struct {
	hw        govattu.Vattu
	pin       uint8
	activeLow bool
}

// NewGPIO claims pin as an output and drives it to the off level.
func NewGPIO(pin uint8, activeLow bool) (*GPIO, error) {
	hw, err := govattu.Open()
	if err != nil {
		return nil, fmt.Errorf("open gpio: %w", err)
	}
	hw.PinMode(pin, govattu.ALToutput)

	g := &GPIO{hw: hw, pin: pin, activeLow: activeLow}
	if err := g.Set(false); err != nil {
		hw.Close()
		return nil, err
	}
	return g, nil
}

// Set implements Switch.Set.
func (g *GPIO) Set(on bool) error {
	if high(on, g.activeLow) {
		g.hw.PinSet(g.pin)
	} else {
		g.hw.PinClear(g.pin)
	}
	return nil
}

// Release implements Switch.Release.
func (g *GPIO) Release() error {
	g.Set(false)
	return g.hw.Close()
}

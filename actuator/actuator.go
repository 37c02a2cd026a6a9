// Package actuator drives the binary outputs: the access indicator and the
// tone emitter. Each output is either energized or not.
package actuator

import (
	"fmt"
)

// Switch is the interface for all output implementations.
type Switch interface {
	// Set energizes (true) or de-energizes (false) the output.
	Set(on bool) error

	// Release de-energizes the output and releases any hardware resources.
	Release() error
}

// maxPin is the highest pin number or line offset accepted.
const maxPin = 255

// Config holds configuration for one output.
type Config struct {
	Type      string `yaml:"type"`       // "gpio", "gpiocdev", "gpiomem", "none"
	Pin       *int   `yaml:"pin"`        // GPIO pin number or line offset
	ActiveLow bool   `yaml:"active_low"` // drive the pin low to energize
	Chip      string `yaml:"chip"`       // gpiocdev chip, default "gpiochip0"

	// Neopixel pipe path (empty = not configured)
	NeopixelPipe string `yaml:"neopixel_pipe"`
	NeopixelOn   string `yaml:"neopixel_on"`  // pattern while energized
	NeopixelOff  string `yaml:"neopixel_off"` // pattern otherwise
}

// New creates a Switch based on the provided configuration.
// Returns a Multi switch if both a pin and a neopixel pipe are configured.
func New(name string, cfg Config) (Switch, error) {
	var switches []Switch

	if cfg.Pin != nil && cfg.Type != "none" {
		sw, err := newPin(name, cfg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		switches = append(switches, sw)
	}

	if cfg.NeopixelPipe != "" {
		neo, err := NewNeopixel(cfg.NeopixelPipe, cfg.NeopixelOn, cfg.NeopixelOff)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		switches = append(switches, neo)
	}

	switch len(switches) {
	case 0:
		return &Noop{}, nil
	case 1:
		return switches[0], nil
	default:
		return &Multi{switches: switches}, nil
	}
}

func newPin(name string, cfg Config) (Switch, error) {
	if *cfg.Pin < 0 || *cfg.Pin > maxPin {
		return nil, fmt.Errorf("pin %d out of range 0..%d", *cfg.Pin, maxPin)
	}
	switch cfg.Type {
	case "gpio", "":
		return NewGPIO(uint8(*cfg.Pin), cfg.ActiveLow)
	case "gpiocdev":
		return NewLine(cfg.Chip, *cfg.Pin, cfg.ActiveLow, name)
	case "gpiomem":
		return NewPin(*cfg.Pin, cfg.ActiveLow)
	default:
		return nil, fmt.Errorf("unknown output type %q", cfg.Type)
	}
}

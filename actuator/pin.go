package actuator

import (
	"fmt"
	"sync"

	"github.com/warthog618/gpio"
)

// The gpio package maps /dev/gpiomem once per process.
var (
	memMu   sync.Mutex
	memRefs int
)

func openMem() error {
	memMu.Lock()
	defer memMu.Unlock()
	if memRefs == 0 {
		if err := gpio.Open(); err != nil {
			return err
		}
	}
	memRefs++
	return nil
}

func closeMem() error {
	memMu.Lock()
	defer memMu.Unlock()
	memRefs--
	if memRefs == 0 {
		return gpio.Close()
	}
	return nil
}

// Pin implements Switch using warthog618/gpio.
type Pin struct {
	pin       *gpio.Pin
	activeLow bool
}

// NewPin creates a new output on pin, initially de-energized.
func NewPin(pin int, activeLow bool) (*Pin, error) {
	if err := openMem(); err != nil {
		return nil, fmt.Errorf("open gpiomem: %w", err)
	}

	p := &Pin{pin: gpio.NewPin(pin), activeLow: activeLow}
	p.pin.Output()
	p.Set(false)
	return p, nil
}

// Set implements Switch.Set.
func (p *Pin) Set(on bool) error {
	if high(on, p.activeLow) {
		p.pin.High()
	} else {
		p.pin.Low()
	}
	return nil
}

// Release implements Switch.Release.
func (p *Pin) Release() error {
	p.Set(false)
	return closeMem()
}

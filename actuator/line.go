package actuator

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// Line implements Switch using a GPIO character device line.
type Line struct {
	line *gpiocdev.Line
}

// NewLine requests offset on chip as an output, initially de-energized.
func NewLine(chip string, offset int, activeLow bool, consumer string) (*Line, error) {
	if chip == "" {
		chip = "gpiochip0"
	}

	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsOutput(0),
		gpiocdev.WithConsumer("cardgate-" + consumer),
	}
	if activeLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}

	l, err := gpiocdev.RequestLine(chip, offset, opts...)
	if err != nil {
		return nil, fmt.Errorf("request %s line %d: %w", chip, offset, err)
	}
	return &Line{line: l}, nil
}

// Set implements Switch.Set.
func (l *Line) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	return l.line.SetValue(v)
}

// Release implements Switch.Release.
func (l *Line) Release() error {
	_ = l.line.SetValue(0)
	return l.line.Close()
}

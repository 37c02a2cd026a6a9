package actuator

import (
	"fmt"
	"io"
	"os"
)

// Default patterns understood by the external neopixel daemon.
const (
	neoIdle    = "@3 !150000 400000"
	neoGranted = "@1 !50000 8000"
	neoOff     = "@0 010101"
)

// Neopixel implements Switch by writing LED patterns to the named pipe of
// an external neopixel daemon. Repeated writes of the same state are
// suppressed.
type Neopixel struct {
	w       io.WriteCloser
	on, off string
	last    *bool
}

// NewNeopixel opens the daemon's pipe. Empty patterns select the defaults.
func NewNeopixel(pipePath, on, off string) (*Neopixel, error) {
	f, err := os.OpenFile(pipePath, os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open neopixel pipe %s: %w", pipePath, err)
	}
	n := newNeopixel(f, on, off)
	if err := n.Set(false); err != nil {
		f.Close()
		return nil, err
	}
	return n, nil
}

func newNeopixel(w io.WriteCloser, on, off string) *Neopixel {
	if on == "" {
		on = neoGranted
	}
	if off == "" {
		off = neoIdle
	}
	return &Neopixel{w: w, on: on, off: off}
}

// Set implements Switch.Set.
func (n *Neopixel) Set(on bool) error {
	if n.last != nil && *n.last == on {
		return nil
	}
	pattern := n.off
	if on {
		pattern = n.on
	}
	if _, err := io.WriteString(n.w, pattern); err != nil {
		return fmt.Errorf("write neopixel pattern: %w", err)
	}
	n.last = &on
	return nil
}

// Release implements Switch.Release.
func (n *Neopixel) Release() error {
	io.WriteString(n.w, neoOff)
	return n.w.Close()
}

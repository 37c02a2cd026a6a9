// Package console implements the operator console: single-character commands,
// bounded line input and line output.
package console

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tarm/serial"
	"golang.org/x/term"
)

var (
	// ErrTimeout is returned by ReadLine when no line terminator arrives in time.
	ErrTimeout = errors.New("line input timed out")

	// ErrClosed is returned by ReadLine once the input stream has ended.
	ErrClosed = errors.New("console input closed")
)

// Console is the interface the presence controller talks to.
type Console interface {
	// TryReadChar returns the next pending input byte without blocking.
	TryReadChar() (byte, bool)

	// ReadLine blocks until a line terminator arrives or timeout elapses.
	// At most max characters are kept; the rest of the line is discarded.
	// On timeout it returns "" and ErrTimeout.
	ReadLine(timeout time.Duration, max int) (string, error)

	// WriteLine writes text followed by a line ending.
	WriteLine(text string)
}

// Config holds console configuration.
type Config struct {
	Device string `yaml:"device"` // serial device; empty = stdin/stdout
	Baud   int    `yaml:"baud"`   // baud rate for serial consoles
}

// New opens the console described by cfg.
func New(cfg Config) (*Stream, error) {
	if cfg.Device != "" {
		return NewSerial(cfg.Device, cfg.Baud)
	}
	return NewTerminal(os.Stdin, os.Stdout)
}

// NewTerminal wraps stdin/stdout. When in is a terminal it is switched to raw
// mode so single keystrokes arrive without Enter; Close restores it.
func NewTerminal(in *os.File, out io.Writer) (*Stream, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return NewStream(in, out), nil
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("raw mode: %w", err)
	}
	log.Debug("Console in raw terminal mode")

	s := newStream(in, out, streamOptions{raw: true, echo: true})
	s.closer = func() error {
		return term.Restore(fd, state)
	}
	return s, nil
}

// NewSerial opens a console on a serial device.
func NewSerial(device string, baud int) (*Stream, error) {
	if baud == 0 {
		baud = 115200
	}
	port, err := serial.OpenPort(&serial.Config{Name: device, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", device, err)
	}
	log.Infof("Console on %s at %d baud", device, baud)

	s := newStream(port, port, streamOptions{crlf: true, echo: true})
	s.closer = port.Close
	return s, nil
}

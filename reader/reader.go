// Package reader provides the card readers the presence controller polls.
package reader

import (
	"encoding/binary"
	"fmt"
)

// MaxUIDLen is the longest identifier any reader reports.
const MaxUIDLen = 10

// CardReader is the interface for all card reader implementations.
// Both methods must return quickly; the controller calls them every poll.
type CardReader interface {
	// Poll reports whether a card was read during this call.
	Poll() bool

	// UID returns the identifier of the card seen by the last successful Poll.
	UID() []byte

	// Close releases any resources held by the reader.
	Close() error
}

// Config holds common configuration for reader implementations.
type Config struct {
	Type   string `yaml:"type"`   // "serial", "wiegand", "keyboard", "pipe"
	Device string `yaml:"device"` // e.g., "/dev/serial0", "/dev/input/event0", "/tmp/cardgate-reader"
	Baud   int    `yaml:"baud"`   // baud rate for serial devices
	Format string `yaml:"format"` // keyboard digit format, e.g. "10h", "10d"
}

// New creates a CardReader based on the provided configuration.
func New(cfg Config) (CardReader, error) {
	switch cfg.Type {
	case "wiegand":
		return NewWiegand(cfg.Device, cfg.Baud)
	case "keyboard", "10h-kbd":
		return NewKeyboard(cfg.Device, cfg.Format)
	case "pipe":
		return NewPipe(cfg.Device)
	case "serial", "":
		return NewSerial(cfg.Device, cfg.Baud)
	default:
		return nil, fmt.Errorf("unknown reader type %q", cfg.Type)
	}
}

// uidFromNumber encodes a numeric badge as big-endian bytes without
// leading zero bytes, keeping at least one byte.
func uidFromNumber(n uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n)
	i := 0
	for i < len(buf)-1 && buf[i] == 0 {
		i++
	}
	return append([]byte(nil), buf[i:]...)
}

// Package eeprom provides the byte-addressable persistent medium the card
// registry is stored on.
package eeprom

import (
	"errors"
	"fmt"
	"io"
)

// ErrOutOfRange is returned when an access falls outside the medium.
var ErrOutOfRange = errors.New("address out of range")

// Medium is a fixed-size, byte-addressable store. Writes are visible to
// subsequent reads as soon as WriteAt returns.
type Medium interface {
	io.ReaderAt
	io.WriterAt

	// Size returns the number of addressable bytes.
	Size() int

	// Close releases the underlying storage.
	Close() error
}

// Config selects the medium backing the registry.
type Config struct {
	Type string `yaml:"type"` // "file" (default) or "memory"
	Path string `yaml:"path"` // backing file for "file"
}

// New creates a Medium of at least size bytes based on the provided configuration.
func New(cfg Config, size int) (Medium, error) {
	switch cfg.Type {
	case "memory":
		return NewMemory(size), nil
	case "file", "":
		if cfg.Path == "" {
			return nil, fmt.Errorf("store path missing")
		}
		return OpenFile(nil, cfg.Path, size)
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Type)
	}
}

func checkRange(size int, n int, off int64) error {
	if off < 0 || off+int64(n) > int64(size) {
		return fmt.Errorf("%w: %d bytes at %d (size %d)", ErrOutOfRange, n, off, size)
	}
	return nil
}

// ReadByte reads the single byte at addr.
func ReadByte(m Medium, addr int) (byte, error) {
	var b [1]byte
	if _, err := m.ReadAt(b[:], int64(addr)); err != nil {
		return 0, err
	}
	return b[0], nil
}

// WriteByte writes b at addr.
func WriteByte(m Medium, addr int, b byte) error {
	_, err := m.WriteAt([]byte{b}, int64(addr))
	return err
}

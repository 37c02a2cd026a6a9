package reader

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

const (
	stx = 0x02
	etx = 0x03
)

// Wiegand implements CardReader for Wiegand-to-serial bridges that send
// STX, ASCII hex digits and ETX once per read.
type Wiegand struct {
	port   serial.Port
	frames delimited
	chunk  []byte
	uid    []byte
}

// NewWiegand creates a new Wiegand reader on the specified serial port.
func NewWiegand(device string, baud int) (*Wiegand, error) {
	if baud == 0 {
		baud = 9600
	}

	p, err := serial.Open(device, &serial.Mode{
		BaudRate: baud,
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", device, err)
	}
	if err := p.SetReadTimeout(10 * time.Millisecond); err != nil {
		p.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}
	// Discard anything buffered before we started.
	if err := p.ResetInputBuffer(); err != nil {
		log.Warnf("Wiegand: reset input: %v", err)
	}

	log.WithFields(log.Fields{"device": device, "baud": baud}).Info("Wiegand reader ready")
	return &Wiegand{
		port:   p,
		frames: delimited{start: stx, end: etx, max: 12},
		chunk:  make([]byte, 64),
	}, nil
}

// Poll implements CardReader.Poll. It drains whatever the port has buffered
// and reports the last complete, valid frame.
func (w *Wiegand) Poll() bool {
	found := false
	for {
		n, err := w.port.Read(w.chunk)
		if err != nil {
			log.Warnf("Wiegand read: %v", err)
			w.frames.reset()
			return found
		}
		if n == 0 {
			return found
		}
		for _, body := range w.frames.feed(w.chunk[:n]) {
			uid, err := parseWiegandFrame(string(body))
			if err != nil {
				log.Warnf("Wiegand frame: %v", err)
				continue
			}
			w.uid = uid
			found = true
		}
	}
}

// UID implements CardReader.UID.
func (w *Wiegand) UID() []byte {
	return w.uid
}

// Close implements CardReader.Close.
func (w *Wiegand) Close() error {
	return w.port.Close()
}

// parseWiegandFrame decodes a frame body: up to ten hex digits, optionally
// followed by two checksum digits (XOR of the five data bytes). The card
// number is the last three data bytes.
func parseWiegandFrame(body string) ([]byte, error) {
	digits, sum := body, ""
	if len(body) == 12 {
		digits, sum = body[:10], body[10:]
	}
	if len(digits) > 10 {
		return nil, fmt.Errorf("frame body %q has %d digits", body, len(body))
	}
	digits = strings.Repeat("0", 10-len(digits)) + digits

	data, err := hex.DecodeString(digits)
	if err != nil {
		return nil, fmt.Errorf("decode frame %q: %w", body, err)
	}

	if sum != "" {
		want, err := hex.DecodeString(sum)
		if err != nil {
			return nil, fmt.Errorf("decode checksum %q: %w", sum, err)
		}
		var x byte
		for _, b := range data {
			x ^= b
		}
		if x != want[0] {
			return nil, errors.New("checksum mismatch")
		}
	}
	return data[2:], nil
}

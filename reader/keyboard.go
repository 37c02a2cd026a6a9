package reader

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kenshaw/evdev"
	log "github.com/sirupsen/logrus"
)

// badgeFormat describes what a keyboard-wedge reader types per swipe.
type badgeFormat struct {
	digits int // exact digit count, 0 accepts any length
	base   int // 16 or 10
}

func (f badgeFormat) String() string {
	if f.base == 10 {
		return fmt.Sprintf("%dd", f.digits)
	}
	return fmt.Sprintf("%dh", f.digits)
}

// parseFormat parses "10h", "8d" and similar. A bare number means hex and
// an empty string means "10h".
func parseFormat(s string) (badgeFormat, error) {
	if s == "" {
		s = "10h"
	}
	s = strings.ToLower(s)

	f := badgeFormat{base: 16}
	switch s[len(s)-1] {
	case 'd':
		f.base = 10
		s = s[:len(s)-1]
	case 'h':
		s = s[:len(s)-1]
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return badgeFormat{}, fmt.Errorf("bad badge format %q", s)
	}
	f.digits = n
	return f, nil
}

// decode converts one typed line into identifier bytes. Only the low 32
// bits of the badge number are kept.
func (f badgeFormat) decode(line string) ([]byte, error) {
	if f.digits > 0 && len(line) != f.digits {
		return nil, fmt.Errorf("expected %d digits, got %d (%q)", f.digits, len(line), line)
	}
	n, err := strconv.ParseUint(line, f.base, 64)
	if err != nil {
		return nil, fmt.Errorf("badge %q: %w", line, err)
	}
	return uidFromNumber(n & 0xffffffff), nil
}

// Keyboard implements CardReader for USB keyboard-wedge readers that type
// the badge number followed by Enter.
type Keyboard struct {
	dev    *evdev.Evdev
	events <-chan *evdev.EventEnvelope
	cancel context.CancelFunc
	format badgeFormat
	typed  strings.Builder
	uid    []byte
}

// NewKeyboard opens the input device. format is as accepted by parseFormat.
func NewKeyboard(device string, format string) (*Keyboard, error) {
	f, err := parseFormat(format)
	if err != nil {
		return nil, err
	}

	dev, err := evdev.OpenFile(device)
	if err != nil {
		return nil, fmt.Errorf("open evdev %s: %w", device, err)
	}

	log.WithFields(log.Fields{
		"device":  dev.Name(),
		"vendor":  fmt.Sprintf("0x%04x", dev.ID().Vendor),
		"product": fmt.Sprintf("0x%04x", dev.ID().Product),
		"format":  f,
	}).Info("Keyboard reader ready")

	ctx, cancel := context.WithCancel(context.Background())
	return &Keyboard{
		dev:    dev,
		events: dev.Poll(ctx),
		cancel: cancel,
		format: f,
	}, nil
}

// Poll implements CardReader.Poll. Queued key events are consumed without
// blocking until a complete badge is seen or the queue is empty.
func (k *Keyboard) Poll() bool {
	for {
		select {
		case ev, ok := <-k.events:
			if !ok || ev == nil {
				return false
			}
			if k.key(ev) {
				return true
			}
		default:
			return false
		}
	}
}

// key handles one event and reports whether it completed a badge.
func (k *Keyboard) key(ev *evdev.EventEnvelope) bool {
	if _, isKey := ev.Type.(evdev.KeyType); !isKey || ev.Value != 1 {
		return false
	}
	if ev.Type != evdev.KeyEnter {
		k.typed.WriteString(evdev.KeyType(ev.Code).String())
		return false
	}

	line := k.typed.String()
	k.typed.Reset()
	if line == "" {
		return false
	}

	uid, err := k.format.decode(line)
	if err != nil {
		log.Warnf("Keyboard reader: %v", err)
		return false
	}
	k.uid = uid
	return true
}

// UID implements CardReader.UID.
func (k *Keyboard) UID() []byte {
	return k.uid
}

// Close implements CardReader.Close.
func (k *Keyboard) Close() error {
	k.cancel()
	return k.dev.Close()
}

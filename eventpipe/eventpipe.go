// Package eventpipe reads card events from a named pipe so a reader can be
// simulated from a shell: echo "card 04a1b2c3" > /tmp/cardgate-reader
package eventpipe

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"

	log "github.com/sirupsen/logrus"

	"cardgate/registry"
)

// EventType identifies what happened at the simulated reader.
type EventType int

const (
	EventCard   EventType = iota // card placed in the field
	EventRemove                  // card taken away
	EventBlip                    // drop the next N polls while the card stays put
)

// Event is one parsed pipe command.
type Event struct {
	Type  EventType
	UID   []byte // EventCard
	Count int    // EventBlip
}

// Config holds configuration for the event pipe.
type Config struct {
	Path string `yaml:"path"`
}

// EventHandler is called for every well-formed line.
type EventHandler func(Event)

// EventPipe owns a FIFO and feeds its lines to a handler.
type EventPipe struct {
	path    string
	handler EventHandler
	closed  atomic.Bool
}

// New creates the FIFO, replacing any file already at the path.
// Returns nil if path is empty.
func New(cfg Config, handler EventHandler) (*EventPipe, error) {
	if cfg.Path == "" {
		return nil, nil
	}

	if err := os.Remove(cfg.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale pipe %s: %w", cfg.Path, err)
	}
	if err := syscall.Mkfifo(cfg.Path, 0666); err != nil {
		return nil, fmt.Errorf("create named pipe %s: %w", cfg.Path, err)
	}
	return &EventPipe{path: cfg.Path, handler: handler}, nil
}

// Start reads writers one after another until Close. It blocks; run it in
// its own goroutine.
func (ep *EventPipe) Start() {
	log.WithField("path", ep.path).Info("Event pipe listening")

	for !ep.closed.Load() {
		// Blocks until a writer opens the other end.
		f, err := os.OpenFile(ep.path, os.O_RDONLY, 0)
		if err != nil {
			if ep.closed.Load() {
				return
			}
			log.Errorf("Open event pipe: %v", err)
			return
		}
		if err := Scan(f, ep.deliver); err != nil {
			log.Warnf("Read event pipe: %v", err)
		}
		f.Close()
	}
}

func (ep *EventPipe) deliver(evt Event) {
	if ep.closed.Load() || ep.handler == nil {
		return
	}
	ep.handler(evt)
}

// Close stops the listener and removes the FIFO.
func (ep *EventPipe) Close() error {
	if ep.closed.Swap(true) {
		return nil
	}
	// Wake a listener blocked in open. Fails harmlessly when none is waiting.
	if w, err := os.OpenFile(ep.path, os.O_WRONLY|syscall.O_NONBLOCK, 0); err == nil {
		w.Close()
	}
	return os.Remove(ep.path)
}

// Scan parses r line by line. Blank lines and # comments are skipped;
// malformed lines are logged and skipped.
func Scan(r io.Reader, handler EventHandler) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		evt, err := ParseLine(line)
		if err != nil {
			log.WithField("line", line).Warnf("Bad event: %v", err)
			continue
		}
		handler(evt)
	}
	return sc.Err()
}

// ParseLine parses one command:
//
//	card <hex-uid>   card enters the field (alias: tag)
//	remove           card leaves the field
//	blip [n]         next n polls (default 1) miss the card
func ParseLine(line string) (Event, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Event{}, errors.New("empty command")
	}

	verb, args := strings.ToLower(fields[0]), fields[1:]
	switch verb {
	case "card", "tag":
		if len(args) == 0 {
			return Event{}, fmt.Errorf("%s: missing uid", verb)
		}
		uid, err := registry.ParseUID(strings.Join(args, ""))
		if err != nil {
			return Event{}, fmt.Errorf("%s: %w", verb, err)
		}
		return Event{Type: EventCard, UID: uid}, nil
	case "remove":
		return Event{Type: EventRemove}, nil
	case "blip":
		evt := Event{Type: EventBlip, Count: 1}
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return Event{}, fmt.Errorf("blip: bad count %q", args[0])
			}
			evt.Count = n
		}
		return evt, nil
	}
	return Event{}, fmt.Errorf("unknown command %q", verb)
}

package reader

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"cardgate/eventpipe"
	"cardgate/registry"
)

// Pipe implements CardReader as a simulated reader driven by eventpipe
// commands. A placed card is reported on every poll until it is removed.
type Pipe struct {
	mu      sync.Mutex
	ep      *eventpipe.EventPipe
	present []byte
	uid     []byte
	drop    int
}

// NewPipe creates the named pipe at path and starts listening on it.
func NewPipe(path string) (*Pipe, error) {
	if path == "" {
		return nil, fmt.Errorf("pipe reader needs a device path")
	}
	p := &Pipe{}
	ep, err := eventpipe.New(eventpipe.Config{Path: path}, p.Apply)
	if err != nil {
		return nil, err
	}
	p.ep = ep
	go ep.Start()
	return p, nil
}

// Apply updates the simulated field from an event.
func (p *Pipe) Apply(evt eventpipe.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch evt.Type {
	case eventpipe.EventCard:
		log.Debugf("Pipe reader: card %s", registry.FormatUID(evt.UID))
		p.present = evt.UID
		p.drop = 0
	case eventpipe.EventRemove:
		log.Debug("Pipe reader: card removed")
		p.present = nil
	case eventpipe.EventBlip:
		p.drop += evt.Count
	}
}

// Poll implements CardReader.Poll.
func (p *Pipe) Poll() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.present == nil {
		return false
	}
	if p.drop > 0 {
		p.drop--
		return false
	}
	p.uid = append(p.uid[:0], p.present...)
	return true
}

// UID implements CardReader.UID.
func (p *Pipe) UID() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.uid...)
}

// Close implements CardReader.Close.
func (p *Pipe) Close() error {
	if p.ep == nil {
		return nil
	}
	return p.ep.Close()
}

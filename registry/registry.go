// Package registry keeps the persistent list of authorized cards.
//
// Entries are stored in fixed-size slots on an eeprom.Medium. Live entries
// always occupy slots [0, count) with no gaps: inserts append at slot count
// and deletes shift the tail one slot toward the front.
package registry

import (
	"bytes"
	"errors"
	"fmt"
	"iter"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"cardgate/eeprom"
)

// Unnamed is reported by Label for entries stored without a label.
const Unnamed = "(unnamed)"

var (
	// ErrRejected is wrapped by every error Insert returns for invalid input.
	ErrRejected = errors.New("insert rejected")

	ErrEmptyIdentifier   = fmt.Errorf("%w: empty identifier", ErrRejected)
	ErrIdentifierTooLong = fmt.Errorf("%w: identifier longer than %d bytes", ErrRejected, MaxUIDLen)
	ErrFull              = fmt.Errorf("%w: registry full", ErrRejected)
	ErrDuplicate         = fmt.Errorf("%w: identifier already registered", ErrRejected)

	// ErrNotFound is returned by Delete when the identifier is not registered.
	ErrNotFound = errors.New("identifier not registered")
)

// Entry is one stored authorization record.
type Entry struct {
	UID   []byte
	Label string
}

// Registry is the persisted, ordered, bounded set of entries.
// It is not safe for concurrent use.
type Registry struct {
	m      eeprom.Medium
	layout Layout
	count  int
}

// New creates a registry over m using layout l and runs Init.
func New(m eeprom.Medium, l Layout) (*Registry, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if m.Size() < l.Size() {
		return nil, fmt.Errorf("medium holds %d bytes, layout needs %d", m.Size(), l.Size())
	}

	r := &Registry{m: m, layout: l}
	if err := r.Init(); err != nil {
		return nil, err
	}
	return r, nil
}

// Init loads the stored count and checks the layout marker. A count beyond
// capacity, or a marker written by a layout with a different slot format,
// means the slots cannot be trusted; the registry is reset to empty.
func (r *Registry) Init() error {
	head := make([]byte, markerAddr+markerLen)
	if _, err := r.m.ReadAt(head, 0); err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	count := int(head[0])

	stored, marked := parseMarker(head[markerAddr:])
	reset := false
	switch {
	case marked && stored.Labels != r.layout.Labels:
		log.WithFields(log.Fields{"stored_labels": stored.Labels, "labels": r.layout.Labels}).
			Warn("Store was written with a different layout, resetting registry")
		reset = true
	case count > r.layout.Capacity:
		log.WithField("count", count).Warnf("Stored count exceeds capacity %d, resetting registry", r.layout.Capacity)
		reset = true
	}

	if reset {
		if err := eeprom.WriteByte(r.m, 0, 0); err != nil {
			return fmt.Errorf("reset count: %w", err)
		}
		count = 0
	}
	if !marked || stored != r.layout {
		if _, err := r.m.WriteAt(r.layout.marker(), markerAddr); err != nil {
			return fmt.Errorf("write layout marker: %w", err)
		}
	}

	r.count = count
	log.WithFields(log.Fields{"count": r.count, "capacity": r.layout.Capacity}).Debug("Registry loaded")
	return nil
}

// Layout returns the storage layout.
func (r *Registry) Layout() Layout {
	return r.layout
}

// Count returns the number of live entries.
func (r *Registry) Count() int {
	return r.count
}

// Lookup returns the index of the entry whose identifier matches uid exactly.
func (r *Registry) Lookup(uid []byte) (int, bool) {
	idx, found, err := r.find(uid)
	if err != nil {
		log.Errorf("Lookup %s: %v", FormatUID(uid), err)
		return 0, false
	}
	return idx, found
}

func (r *Registry) find(uid []byte) (int, bool, error) {
	if len(uid) == 0 {
		return 0, false, nil
	}
	for i := 0; i < r.count; i++ {
		e, err := r.readSlot(i)
		if err != nil {
			return 0, false, err
		}
		if bytes.Equal(e.UID, uid) {
			return i, true, nil
		}
	}
	return 0, false, nil
}

// Insert appends a new entry. Nothing is written unless every check passes.
// The label is truncated to MaxLabelLen and ignored by layouts without labels.
func (r *Registry) Insert(uid []byte, label string) error {
	switch {
	case len(uid) == 0:
		return ErrEmptyIdentifier
	case len(uid) > MaxUIDLen:
		return ErrIdentifierTooLong
	case r.count >= r.layout.Capacity:
		return ErrFull
	}

	_, found, err := r.find(uid)
	if err != nil {
		return err
	}
	if found {
		return ErrDuplicate
	}

	if !r.layout.Labels {
		label = ""
	}
	e := Entry{UID: uid, Label: truncateLabel(label, MaxLabelLen)}
	if err := r.writeSlot(r.count, r.encode(e)); err != nil {
		return err
	}
	if err := r.setCount(r.count + 1); err != nil {
		return err
	}

	log.WithFields(log.Fields{"uid": FormatUID(uid), "index": r.count - 1}).Info("Card added")
	return nil
}

// Delete removes the entry for uid, shifting every later entry one slot
// toward the front so the relative order is kept.
func (r *Registry) Delete(uid []byte) error {
	idx, found, err := r.find(uid)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}

	stride := r.layout.Stride()
	buf := make([]byte, stride)
	for i := idx; i < r.count-1; i++ {
		if _, err := r.m.ReadAt(buf, r.layout.slotAddr(i+1)); err != nil {
			return fmt.Errorf("read slot %d: %w", i+1, err)
		}
		if err := r.writeSlot(i, buf); err != nil {
			return err
		}
	}
	if err := r.writeSlot(r.count-1, make([]byte, stride)); err != nil {
		return err
	}
	if err := r.setCount(r.count - 1); err != nil {
		return err
	}

	log.WithFields(log.Fields{"uid": FormatUID(uid), "index": idx}).Info("Card removed")
	return nil
}

// Clear zeroes every live slot and empties the registry.
func (r *Registry) Clear() error {
	zero := make([]byte, r.layout.Stride())
	for i := 0; i < r.count; i++ {
		if err := r.writeSlot(i, zero); err != nil {
			return err
		}
	}
	if err := r.setCount(0); err != nil {
		return err
	}

	log.Info("Registry cleared")
	return nil
}

// All yields every live entry in storage order. The sequence is re-derived
// from the current count each time it is ranged over.
func (r *Registry) All() iter.Seq2[int, Entry] {
	return func(yield func(int, Entry) bool) {
		for i := 0; i < r.count; i++ {
			e, err := r.readSlot(i)
			if err != nil {
				log.Errorf("Enumerate: %v", err)
				return
			}
			if !yield(i, e) {
				return
			}
		}
	}
}

// Entries returns a snapshot of every live entry.
func (r *Registry) Entries() []Entry {
	entries := make([]Entry, 0, r.count)
	for _, e := range r.All() {
		entries = append(entries, e)
	}
	return entries
}

// Get returns the entry at index i.
func (r *Registry) Get(i int) (Entry, error) {
	if i < 0 || i >= r.count {
		return Entry{}, fmt.Errorf("index %d: %w", i, ErrNotFound)
	}
	return r.readSlot(i)
}

// Label returns the label stored at index i, or Unnamed if it has none.
func (r *Registry) Label(i int) string {
	e, err := r.Get(i)
	if err != nil || e.Label == "" {
		return Unnamed
	}
	return e.Label
}

func (r *Registry) setCount(n int) error {
	if err := eeprom.WriteByte(r.m, 0, byte(n)); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	r.count = n
	return nil
}

func (r *Registry) writeSlot(i int, buf []byte) error {
	if _, err := r.m.WriteAt(buf, r.layout.slotAddr(i)); err != nil {
		return fmt.Errorf("write slot %d: %w", i, err)
	}
	return nil
}

func (r *Registry) readSlot(i int) (Entry, error) {
	buf := make([]byte, r.layout.Stride())
	if _, err := r.m.ReadAt(buf, r.layout.slotAddr(i)); err != nil {
		return Entry{}, fmt.Errorf("read slot %d: %w", i, err)
	}
	return r.decode(buf), nil
}

func (r *Registry) encode(e Entry) []byte {
	buf := make([]byte, r.layout.Stride())
	buf[0] = byte(len(e.UID))
	copy(buf[1:1+MaxUIDLen], e.UID)
	if r.layout.Labels {
		off := r.layout.labelOffset()
		buf[off] = byte(len(e.Label))
		copy(buf[off+1:off+1+MaxLabelLen], e.Label)
	}
	return buf
}

// decode clamps stored lengths so a damaged slot never reads past its buffer.
func (r *Registry) decode(buf []byte) Entry {
	n := min(int(buf[0]), MaxUIDLen)
	e := Entry{UID: append([]byte(nil), buf[1:1+n]...)}
	if r.layout.Labels {
		off := r.layout.labelOffset()
		n := min(int(buf[off]), MaxLabelLen)
		e.Label = string(buf[off+1 : off+1+n])
	}
	return e
}

// truncateLabel cuts s to at most max bytes without splitting a rune.
func truncateLabel(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

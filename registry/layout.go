package registry

import "fmt"

// Storage geometry shared by every layout.
const (
	MaxUIDLen   = 10 // longest identifier a reader can deliver
	MaxLabelLen = 20 // longest label kept; longer labels are truncated
	SlotBase    = 10 // address of slot 0; byte 0 holds the entry count
)

// The header bytes between the count and slot 0 record the layout that
// formatted the medium.
const (
	markerAddr = 1
	markerLen  = 4

	markerMagic0 = 'C'
	markerMagic1 = 'G'
	markerLabels = 0x01 // flags bit: slots carry labels
)

// Layout describes how entries are packed on the medium. Every slot has the
// same stride so slot i lives at SlotBase + i*Stride.
type Layout struct {
	Capacity int  `yaml:"capacity"`
	Labels   bool `yaml:"labels"`
}

var (
	// NamedLayout stores a length-prefixed identifier and label per slot.
	NamedLayout = Layout{Capacity: 25, Labels: true}

	// BareLayout stores only a length-prefixed identifier per slot.
	BareLayout = Layout{Capacity: 40, Labels: false}
)

// Stride returns the size of one slot in bytes.
func (l Layout) Stride() int {
	stride := 1 + MaxUIDLen
	if l.Labels {
		stride += 1 + MaxLabelLen
	}
	return stride
}

// Size returns the number of bytes the layout occupies on the medium.
func (l Layout) Size() int {
	return SlotBase + l.Capacity*l.Stride()
}

// Validate checks that the count fits the single count byte.
func (l Layout) Validate() error {
	if l.Capacity < 1 || l.Capacity > 255 {
		return fmt.Errorf("capacity %d out of range 1..255", l.Capacity)
	}
	return nil
}

func (l Layout) slotAddr(i int) int64 {
	return int64(SlotBase + i*l.Stride())
}

// labelOffset is the offset of the label length byte inside a slot.
func (l Layout) labelOffset() int {
	return 1 + MaxUIDLen
}

// marker encodes l for the header: magic, flags, capacity.
func (l Layout) marker() []byte {
	var flags byte
	if l.Labels {
		flags |= markerLabels
	}
	return []byte{markerMagic0, markerMagic1, flags, byte(l.Capacity)}
}

// parseMarker decodes a header marker. ok is false when no marker is present.
func parseMarker(b []byte) (l Layout, ok bool) {
	if len(b) != markerLen || b[0] != markerMagic0 || b[1] != markerMagic1 {
		return Layout{}, false
	}
	return Layout{Capacity: int(b[3]), Labels: b[2]&markerLabels != 0}, true
}

package reader

import (
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tarm/serial"
)

const (
	serialFrameLen = 9

	// serialMaxReads bounds the reads one poll spends draining the port.
	serialMaxReads = 64
)

// Serial implements CardReader for readers speaking the 9-byte framed
// protocol 02 09 <6 data> <xor> 03. The reader repeats the frame for as
// long as the card stays in the field.
type Serial struct {
	port   io.ReadCloser
	frames fixed
	chunk  []byte
	uid    []byte
}

// NewSerial opens a framed serial reader.
func NewSerial(device string, baud int) (*Serial, error) {
	if baud == 0 {
		baud = 115200
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: 10 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", device, err)
	}
	if err := port.Flush(); err != nil {
		log.Warnf("Serial reader: flush: %v", err)
	}
	log.WithFields(log.Fields{"device": device, "baud": baud}).Info("Serial reader ready")

	return newSerial(port), nil
}

func newSerial(port io.ReadCloser) *Serial {
	return &Serial{
		port: port,
		frames: fixed{
			header: []byte{0x02, 0x09},
			size:   serialFrameLen,
			check:  parseSerialFrame,
		},
		chunk: make([]byte, 256),
	}
}

// Poll implements CardReader.Poll. It drains whatever the port has
// buffered so a reader that repeats its frame cannot build a backlog, and
// reports the last valid frame. A poll that reads no complete frame counts
// as no card.
func (s *Serial) Poll() bool {
	found := false
	for range serialMaxReads {
		n, err := s.port.Read(s.chunk)
		if n > 0 {
			if frames := s.frames.feed(s.chunk[:n]); len(frames) > 0 {
				s.uid = frames[len(frames)-1]
				found = true
			}
		}
		// A short read after a frame means the input queue is empty.
		if err != nil || n == 0 || (found && n < len(s.chunk)) {
			break
		}
	}
	return found
}

// UID implements CardReader.UID.
func (s *Serial) UID() []byte {
	return s.uid
}

// Close implements CardReader.Close.
func (s *Serial) Close() error {
	return s.port.Close()
}

// parseSerialFrame validates header, terminator and XOR checksum and
// returns the four tag bytes.
func parseSerialFrame(frame []byte) ([]byte, bool) {
	if len(frame) != serialFrameLen || frame[0] != 0x02 || frame[1] != 0x09 || frame[8] != 0x03 {
		return nil, false
	}
	var x byte
	for _, b := range frame[1:7] {
		x ^= b
	}
	if x != frame[7] {
		return nil, false
	}
	return append([]byte(nil), frame[3:7]...), true
}

package eeprom

// Memory implements Medium in RAM. Contents start zeroed and are lost on exit.
type Memory struct {
	buf []byte
}

// NewMemory creates a zeroed in-memory medium of size bytes.
func NewMemory(size int) *Memory {
	return &Memory{buf: make([]byte, size)}
}

// ReadAt implements io.ReaderAt.
func (m *Memory) ReadAt(p []byte, off int64) (int, error) {
	if err := checkRange(len(m.buf), len(p), off); err != nil {
		return 0, err
	}
	return copy(p, m.buf[off:]), nil
}

// WriteAt implements io.WriterAt.
func (m *Memory) WriteAt(p []byte, off int64) (int, error) {
	if err := checkRange(len(m.buf), len(p), off); err != nil {
		return 0, err
	}
	return copy(m.buf[off:], p), nil
}

// Size implements Medium.Size.
func (m *Memory) Size() int {
	return len(m.buf)
}

// Close implements Medium.Close.
func (m *Memory) Close() error {
	return nil
}

// Bytes exposes the raw contents, mainly for inspection in tests.
func (m *Memory) Bytes() []byte {
	return m.buf
}

package eeprom

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// File implements Medium on top of a regular file. Every write is synced
// before WriteAt returns.
type File struct {
	f    afero.File
	size int
}

// OpenFile opens or creates the backing file at path on fs, growing it with
// zero bytes to at least size. A nil fs means the OS filesystem.
func OpenFile(fs afero.Fs, path string, size int) (*File, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	// Ensure parent directory exists
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	f, err := fs.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat store %s: %w", path, err)
	}
	if info.Size() < int64(size) {
		log.WithField("path", path).Infof("Growing store from %d to %d bytes", info.Size(), size)
		if err := f.Truncate(int64(size)); err != nil {
			f.Close()
			return nil, fmt.Errorf("grow store %s: %w", path, err)
		}
	}

	return &File{f: f, size: size}, nil
}

// ReadAt implements io.ReaderAt.
func (m *File) ReadAt(p []byte, off int64) (int, error) {
	if err := checkRange(m.size, len(p), off); err != nil {
		return 0, err
	}
	return m.f.ReadAt(p, off)
}

// WriteAt implements io.WriterAt.
func (m *File) WriteAt(p []byte, off int64) (int, error) {
	if err := checkRange(m.size, len(p), off); err != nil {
		return 0, err
	}
	n, err := m.f.WriteAt(p, off)
	if err != nil {
		return n, err
	}
	return n, m.f.Sync()
}

// Size implements Medium.Size.
func (m *File) Size() int {
	return m.size
}

// Close implements Medium.Close.
func (m *File) Close() error {
	if m.f == nil {
		return nil
	}
	return m.f.Close()
}

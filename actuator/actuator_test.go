package actuator

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type recorder struct {
	states   []bool
	released bool
	err      error
}

func (r *recorder) Set(on bool) error {
	r.states = append(r.states, on)
	return r.err
}

func (r *recorder) Release() error {
	r.released = true
	return r.err
}

func TestNewWithoutPinIsNoop(t *testing.T) {
	sw, err := New("indicator", Config{})
	require.NoError(t, err)
	require.IsType(t, &Noop{}, sw)
	require.NoError(t, sw.Set(true))
	require.NoError(t, sw.Release())

	pin := 17
	sw, err = New("tone", Config{Type: "none", Pin: &pin})
	require.NoError(t, err)
	require.IsType(t, &Noop{}, sw)
}

func TestNewRejectsUnknownType(t *testing.T) {
	pin := 4
	_, err := New("tone", Config{Type: "relay", Pin: &pin})
	require.ErrorContains(t, err, "tone")
}

func TestMultiFansOut(t *testing.T) {
	a, b := &recorder{}, &recorder{err: errors.New("stuck")}
	m := NewMulti(a, b)

	require.Error(t, m.Set(true))
	require.Error(t, m.Set(false))
	require.Equal(t, []bool{true, false}, a.states)
	require.Equal(t, []bool{true, false}, b.states)

	require.Error(t, m.Release())
	require.True(t, a.released)
	require.True(t, b.released)
}

type nopCloser struct{ strings.Builder }

func (*nopCloser) Close() error { return nil }

func TestNeopixelSuppressesRepeats(t *testing.T) {
	w := &nopCloser{}
	n := newNeopixel(w, "", "OFF")

	require.NoError(t, n.Set(false))
	require.NoError(t, n.Set(false))
	require.NoError(t, n.Set(true))
	require.NoError(t, n.Set(true))
	require.NoError(t, n.Set(false))
	require.Equal(t, "OFF"+neoGranted+"OFF", w.String())

	require.NoError(t, n.Release())
	require.True(t, strings.HasSuffix(w.String(), neoOff))
}

func TestNewWithNeopixelOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "neo")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	sw, err := New("indicator", Config{NeopixelPipe: path, NeopixelOn: "ON", NeopixelOff: "OFF"})
	require.NoError(t, err)
	require.IsType(t, &Neopixel{}, sw)

	require.NoError(t, sw.Set(true))
	require.NoError(t, sw.Release())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "OFFON"+neoOff, string(data))
}

func TestActiveLowLevel(t *testing.T) {
	require.True(t, high(true, false))
	require.False(t, high(false, false))
	require.False(t, high(true, true))
	require.True(t, high(false, true))
}

func TestNewRejectsOutOfRangePin(t *testing.T) {
	for _, pin := range []int{-1, 256, 1000} {
		for _, typ := range []string{"gpio", "gpiocdev", "gpiomem"} {
			_, err := New("indicator", Config{Type: typ, Pin: &pin})
			require.ErrorContains(t, err, "out of range", "%s pin %d", typ, pin)
		}
	}
}

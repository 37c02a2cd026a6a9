package console

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// waitChar polls TryReadChar until the pump has delivered a byte.
func waitChar(t *testing.T, s *Stream) byte {
	t.Helper()
	var got byte
	require.Eventually(t, func() bool {
		b, ok := s.TryReadChar()
		got = b
		return ok
	}, time.Second, time.Millisecond)
	return got
}

func TestTryReadCharDoesNotBlock(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	s := NewStream(r, io.Discard)

	_, ok := s.TryReadChar()
	require.False(t, ok)

	go w.Write([]byte("p"))
	require.Equal(t, byte('p'), waitChar(t, s))
}

func TestReadLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"plain", "Alice\n", 20, "Alice"},
		{"carriage return ignored", "Al\rice\r\n", 20, "Alice"},
		{"capped", "abcdefghijkl\n", 4, "abcd"},
		{"empty line", "\n", 20, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStream(strings.NewReader(tt.input+"next\n"), io.Discard)

			got, err := s.ReadLine(time.Second, tt.max)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)

			// Overflow is discarded up to the terminator only.
			got, err = s.ReadLine(time.Second, tt.max)
			require.NoError(t, err)
			require.Equal(t, "next", got)
		})
	}
}

func TestReadLineTimeout(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	s := NewStream(r, io.Discard)

	go w.Write([]byte("partial"))

	start := time.Now()
	got, err := s.ReadLine(50*time.Millisecond, 20)
	require.ErrorIs(t, err, ErrTimeout)
	require.Empty(t, got)
	require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestReadLineClosed(t *testing.T) {
	s := NewStream(strings.NewReader("ab"), io.Discard)

	_, err := s.ReadLine(time.Second, 20)
	require.ErrorIs(t, err, ErrClosed)
}

func TestRawModeTranslatesEnter(t *testing.T) {
	var out bytes.Buffer
	s := newStream(strings.NewReader("Bo\r"), &out, streamOptions{raw: true, echo: true})

	got, err := s.ReadLine(time.Second, 20)
	require.NoError(t, err)
	require.Equal(t, "Bo", got)

	s.WriteLine("ok")
	require.Equal(t, "Bo\r\nok\r\n", out.String())
}

func TestWriteLine(t *testing.T) {
	var out bytes.Buffer
	s := NewStream(strings.NewReader(""), &out)

	s.WriteLine("Card added")
	s.Write("> ")
	require.Equal(t, "Card added\n> ", out.String())
	require.NoError(t, s.Close())
}

func TestLineModeSkipsRestOfCommandLine(t *testing.T) {
	s := NewStream(strings.NewReader("a\r\nCarl\n"), io.Discard)

	require.Equal(t, byte('a'), waitChar(t, s))
	got, err := s.ReadLine(time.Second, 20)
	require.NoError(t, err)
	require.Equal(t, "Carl", got)
}

func TestLineModeSkipsTypedCommandWord(t *testing.T) {
	s := NewStream(strings.NewReader("add\nBob\n"), io.Discard)

	require.Equal(t, byte('a'), waitChar(t, s))
	got, err := s.ReadLine(time.Second, 20)
	require.NoError(t, err)
	require.Equal(t, "Bob", got)
}

func TestLineModeCommandTerminatorAlreadyRead(t *testing.T) {
	s := NewStream(strings.NewReader("p\nBob\n"), io.Discard)

	require.Equal(t, byte('p'), waitChar(t, s))
	require.Equal(t, byte('\n'), waitChar(t, s))
	got, err := s.ReadLine(time.Second, 20)
	require.NoError(t, err)
	require.Equal(t, "Bob", got)
}

func TestRawModeEnterAfterCommandIsEmptyLine(t *testing.T) {
	s := newStream(strings.NewReader("a\rBob\r"), io.Discard, streamOptions{raw: true})

	require.Equal(t, byte('a'), waitChar(t, s))
	got, err := s.ReadLine(time.Second, 20)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestLineModeTimeoutWhileSkipping(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	s := NewStream(r, io.Discard)

	go w.Write([]byte("a"))
	require.Equal(t, byte('a'), waitChar(t, s))

	got, err := s.ReadLine(20*time.Millisecond, 20)
	require.ErrorIs(t, err, ErrTimeout)
	require.Empty(t, got)
}

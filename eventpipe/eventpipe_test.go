package eventpipe

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line string
		want Event
	}{
		{"card 04a1b2c3", Event{Type: EventCard, UID: []byte{0x04, 0xa1, 0xb2, 0xc3}}},
		{"TAG 04 A1 B2", Event{Type: EventCard, UID: []byte{0x04, 0xa1, 0xb2}}},
		{"remove", Event{Type: EventRemove}},
		{"blip", Event{Type: EventBlip, Count: 1}},
		{"blip 5", Event{Type: EventBlip, Count: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseLine(tt.line)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseLineErrors(t *testing.T) {
	for _, line := range []string{"", "card", "card xyz", "blip 0", "blip x", "open"} {
		_, err := ParseLine(line)
		require.Error(t, err, line)
	}
}

func TestNewWithoutPath(t *testing.T) {
	ep, err := New(Config{}, nil)
	require.NoError(t, err)
	require.Nil(t, ep)
}

func TestScanSkipsCommentsAndBadLines(t *testing.T) {
	input := "# test feed\n\ncard 0102\nbogus\nblip 2\nremove\n"

	var got []Event
	err := Scan(strings.NewReader(input), func(e Event) { got = append(got, e) })
	require.NoError(t, err)
	require.Equal(t, []Event{
		{Type: EventCard, UID: []byte{0x01, 0x02}},
		{Type: EventBlip, Count: 2},
		{Type: EventRemove},
	}, got)
}

func TestNewCreatesFifo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reader.pipe")
	ep, err := New(Config{Path: path}, nil)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NotZero(t, info.Mode()&os.ModeNamedPipe)

	require.NoError(t, ep.Close())
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

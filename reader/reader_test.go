package reader

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cardgate/eventpipe"
)

func TestParseSerialFrame(t *testing.T) {
	frame := []byte{0x02, 0x09, 0x00, 0x12, 0x34, 0x56, 0x78, 0, 0x03}
	xor := byte(0)
	for _, b := range frame[1:7] {
		xor ^= b
	}
	frame[7] = xor

	uid, ok := parseSerialFrame(frame)
	require.True(t, ok)
	require.Equal(t, []byte{0x12, 0x34, 0x56, 0x78}, uid)

	bad := append([]byte(nil), frame...)
	bad[7] ^= 0xff
	_, ok = parseSerialFrame(bad)
	require.False(t, ok)

	bad = append([]byte(nil), frame...)
	bad[0] = 0x05
	_, ok = parseSerialFrame(bad)
	require.False(t, ok)

	_, ok = parseSerialFrame(frame[:8])
	require.False(t, ok)
}

func TestParseWiegandFrame(t *testing.T) {
	uid, err := parseWiegandFrame("0100A1B2C3")
	require.NoError(t, err)
	require.Equal(t, []byte{0xa1, 0xb2, 0xc3}, uid)

	// Short bodies are left padded with zeros.
	uid, err = parseWiegandFrame("A1B2C3")
	require.NoError(t, err)
	require.Equal(t, []byte{0xa1, 0xb2, 0xc3}, uid)

	// 01 ^ 00 ^ A1 ^ B2 ^ C3 = D1
	uid, err = parseWiegandFrame("0100A1B2C3D1")
	require.NoError(t, err)
	require.Equal(t, []byte{0xa1, 0xb2, 0xc3}, uid)

	_, err = parseWiegandFrame("0100A1B2C300")
	require.Error(t, err)
	_, err = parseWiegandFrame("0100A1B2CZ")
	require.Error(t, err)
}

func TestBadgeDecode(t *testing.T) {
	hex10 := badgeFormat{digits: 10, base: 16}
	uid, err := hex10.decode("00A1B2C3D4")
	require.NoError(t, err)
	require.Equal(t, []byte{0xa1, 0xb2, 0xc3, 0xd4}, uid)

	uid, err = badgeFormat{digits: 10, base: 10}.decode("0000000258")
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02}, uid)

	_, err = hex10.decode("123")
	require.Error(t, err)
	_, err = badgeFormat{base: 16}.decode("zz")
	require.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := parseFormat("")
	require.NoError(t, err)
	require.Equal(t, badgeFormat{digits: 10, base: 16}, f)
	require.Equal(t, "10h", f.String())

	f, err = parseFormat("8D")
	require.NoError(t, err)
	require.Equal(t, badgeFormat{digits: 8, base: 10}, f)

	f, err = parseFormat("6")
	require.NoError(t, err)
	require.Equal(t, 16, f.base)

	_, err = parseFormat("xh")
	require.Error(t, err)
}

func TestUIDFromNumber(t *testing.T) {
	require.Equal(t, []byte{0}, uidFromNumber(0))
	require.Equal(t, []byte{0x01, 0x00}, uidFromNumber(256))
}

func TestPipeReader(t *testing.T) {
	p := &Pipe{}
	require.False(t, p.Poll())

	p.Apply(eventpipe.Event{Type: eventpipe.EventCard, UID: []byte{0xca, 0xfe}})
	require.True(t, p.Poll())
	require.Equal(t, []byte{0xca, 0xfe}, p.UID())

	p.Apply(eventpipe.Event{Type: eventpipe.EventBlip, Count: 2})
	require.False(t, p.Poll())
	require.False(t, p.Poll())
	require.True(t, p.Poll())

	p.Apply(eventpipe.Event{Type: eventpipe.EventRemove})
	require.False(t, p.Poll())
	// The last identifier stays readable after removal.
	require.Equal(t, []byte{0xca, 0xfe}, p.UID())
	require.NoError(t, p.Close())
}

func TestNewRejectsUnknownType(t *testing.T) {
	_, err := New(Config{Type: "nfc-magic"})
	require.Error(t, err)
}

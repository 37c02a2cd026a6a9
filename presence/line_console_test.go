package presence

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cardgate/console"
	"cardgate/eeprom"
	"cardgate/registry"
)

// heldCard stays in the field until release reports true.
type heldCard struct {
	uid     []byte
	release func() bool
}

func (r *heldCard) Poll() bool   { return !r.release() }
func (r *heldCard) UID() []byte  { return r.uid }
func (r *heldCard) Close() error { return nil }

func TestAddOverLineBufferedConsole(t *testing.T) {
	reg, err := registry.New(eeprom.NewMemory(registry.NamedLayout.Size()), registry.NamedLayout)
	require.NoError(t, err)
	existing := []byte{0x11, 0x22, 0x33}
	require.NoError(t, reg.Insert(existing, "Alice"))

	pr, pw := io.Pipe()
	defer pw.Close()
	var out bytes.Buffer
	con := console.NewStream(pr, &out)

	active := []byte{0x04, 0xa1, 0xb2, 0xc3}
	rdr := &heldCard{uid: active, release: func() bool { return reg.Count() == 2 }}

	sleeps := 0
	ctrl := New(Config{NameTimeout: 5 * time.Second}, Deps{
		Registry: reg,
		Reader:   rdr,
		Console:  con,
		Sleep: func(ctx context.Context, d time.Duration) error {
			sleeps++
			if sleeps == 1 {
				// Whole lines, as a non-terminal stdin or a line-mode serial
				// terminal delivers them.
				go func() {
					pw.Write([]byte("a\n"))
					time.Sleep(20 * time.Millisecond)
					pw.Write([]byte("Carl\n"))
				}()
			}
			if sleeps > 5000 {
				return errors.New("card never added")
			}
			time.Sleep(time.Millisecond)
			return nil
		},
	})

	require.NoError(t, ctrl.Step(context.Background()))

	require.Equal(t, 2, reg.Count())
	idx, found := reg.Lookup(existing)
	require.True(t, found)
	require.Equal(t, "Alice", reg.Label(idx))
	idx, found = reg.Lookup(active)
	require.True(t, found)
	require.Equal(t, "Carl", reg.Label(idx))

	require.Contains(t, out.String(), "Card added (2/25)")
	require.Contains(t, out.String(), "Access granted: Carl")
	require.NotContains(t, out.String(), "Empty name")
	require.NotContains(t, out.String(), "Registry cleared")
}

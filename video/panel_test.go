package video

import (
	"encoding/binary"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackRGB565(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	fillBackground(img, color.RGBA{0xff, 0x00, 0x00, 0xff})
	img.SetRGBA(1, 1, color.RGBA{0x00, 0x00, 0xff, 0xff})

	// Rows padded to 6 bytes.
	dst := make([]byte, 12)
	packRGB565(dst, img, 6)

	assert.Equal(t, uint16(0xf800), binary.LittleEndian.Uint16(dst[0:]))
	assert.Equal(t, uint16(0xf800), binary.LittleEndian.Uint16(dst[2:]))
	assert.Equal(t, []byte{0, 0}, dst[4:6])
	assert.Equal(t, uint16(0xf800), binary.LittleEndian.Uint16(dst[6:]))
	assert.Equal(t, uint16(0x001f), binary.LittleEndian.Uint16(dst[8:]))
}

func TestPackRGB565ShortBuffer(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	fillBackground(img, white)

	dst := make([]byte, 5)
	require.NotPanics(t, func() { packRGB565(dst, img, 8) })
	assert.Equal(t, uint16(0xffff), binary.LittleEndian.Uint16(dst[0:]))
}

func TestPanels(t *testing.T) {
	assert.Empty(t, idlePanel().detail)
	assert.Equal(t, "Alice", grantedPanel("Alice").detail)

	p := deniedPanel("04 A1")
	assert.Equal(t, "Access Denied", p.title)
	assert.Equal(t, yellow, p.detailInk)
}

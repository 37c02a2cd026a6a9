//go:build screen

package video

import (
	"image"
	"testing"

	"github.com/fogleman/gg"
	"github.com/stretchr/testify/require"
)

func testVideo(fb []byte, unmapped *int) *Video {
	canvas := image.NewRGBA(image.Rect(0, 0, 2, 2))
	return &Video{
		fb:     fb,
		back:   make([]byte, len(fb)),
		canvas: canvas,
		dc:     gg.NewContextForRGBA(canvas),
		stride: 4,
		open:   true,
		unmap:  func() { *unmapped++ },
	}
}

func TestReleaseUnmapsOnce(t *testing.T) {
	fb := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	unmapped := 0
	v := testVideo(fb, &unmapped)

	require.NoError(t, v.Release())
	require.Equal(t, 1, unmapped)
	require.Equal(t, make([]byte, 8), fb)

	require.NoError(t, v.Release())
	require.Equal(t, 1, unmapped)

	// Drawing after release must not touch the old mapping.
	fb[0] = 0xaa
	v.Idle()
	require.Equal(t, byte(0xaa), fb[0])
}

package video

import (
	"encoding/binary"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// panel is one full-screen status page.
type panel struct {
	background color.RGBA
	title      string
	titleSize  float64
	detail     string
	detailSize float64
	detailInk  color.RGBA
}

var (
	white  = color.RGBA{0xff, 0xff, 0xff, 0xff}
	yellow = color.RGBA{0xff, 0xff, 0x00, 0xff}
)

func idlePanel() panel {
	return panel{
		background: color.RGBA{0x00, 0x00, 0x4c, 0xff},
		title:      "Present Card",
		titleSize:  64,
	}
}

func grantedPanel(label string) panel {
	return panel{
		background: color.RGBA{0x00, 0xb3, 0x00, 0xff},
		title:      "Access Granted",
		titleSize:  64,
		detail:     label,
		detailSize: 48,
		detailInk:  white,
	}
}

func deniedPanel(uid string) panel {
	return panel{
		background: color.RGBA{0xb3, 0x00, 0x00, 0xff},
		title:      "Access Denied",
		titleSize:  64,
		detail:     uid,
		detailSize: 32,
		detailInk:  yellow,
	}
}

// fillBackground paints the whole image with the panel colour.
func fillBackground(img *image.RGBA, c color.Color) {
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// packRGB565 converts img into little-endian RGB565 rows of stride bytes.
// Pixels that would fall outside dst are skipped.
func packRGB565(dst []byte, img *image.RGBA, stride int) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := (y - b.Min.Y) * stride
		for x := b.Min.X; x < b.Max.X; x++ {
			off := row + (x-b.Min.X)*2
			if off+1 >= len(dst) {
				return
			}
			p := img.RGBAAt(x, y)
			v := uint16(p.R>>3)<<11 | uint16(p.G>>2)<<5 | uint16(p.B>>3)
			binary.LittleEndian.PutUint16(dst[off:], v)
		}
	}
}

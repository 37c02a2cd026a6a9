//go:build screen

// Package video shows the access state on a framebuffer display.
package video

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/d21d3q/framebuffer"
	"github.com/fogleman/gg"
	log "github.com/sirupsen/logrus"
)

const fontPath = "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"

// ScreenSupported returns whether screen support is compiled in.
func ScreenSupported() bool {
	return true
}

// Video renders status panels into an RGB565 framebuffer. Panels are drawn
// into an RGBA canvas, packed into a back buffer and then copied to the
// mapped framebuffer in one pass.
type Video struct {
	fb     []byte
	back   []byte
	canvas *image.RGBA
	dc     *gg.Context
	stride int
	open   bool

	// unmap releases the mapping and closes the device.
	unmap func()
}

// New opens the framebuffer device, "/dev/fb0" when empty.
func New(device string) (*Video, error) {
	if device == "" {
		device = "/dev/fb0"
	}

	dev, err := framebuffer.OpenFrameBuffer(device, os.O_RDWR)
	if err != nil {
		return nil, fmt.Errorf("open framebuffer %s: %w", device, err)
	}
	unmap := func() { dev.Close() }

	vinfo, err := dev.VarScreenInfo()
	if err != nil {
		unmap()
		return nil, fmt.Errorf("read screen info: %w", err)
	}
	finfo, err := dev.FixScreenInfo()
	if err != nil {
		unmap()
		return nil, fmt.Errorf("read fixed screen info: %w", err)
	}
	if vinfo.BitsPerPixel != 16 {
		unmap()
		return nil, fmt.Errorf("framebuffer is %d bpp, only 16 bpp is supported", vinfo.BitsPerPixel)
	}
	pix, err := dev.Pixels()
	if err != nil {
		unmap()
		return nil, fmt.Errorf("map framebuffer: %w", err)
	}

	w, h := int(vinfo.XRes), int(vinfo.YRes)
	stride := int(finfo.LineLength)
	v := &Video{
		fb:     pix,
		back:   make([]byte, h*stride),
		canvas: image.NewRGBA(image.Rect(0, 0, w, h)),
		stride: stride,
		open:   true,
		unmap:  unmap,
	}
	v.dc = gg.NewContextForRGBA(v.canvas)

	log.WithFields(log.Fields{"device": device, "width": w, "height": h}).Info("Framebuffer ready")
	return v, nil
}

func (v *Video) show(p panel) {
	if !v.open {
		return
	}
	fillBackground(v.canvas, p.background)

	cx := float64(v.canvas.Bounds().Dx()) / 2
	cy := float64(v.canvas.Bounds().Dy()) / 2
	if p.detail != "" {
		cy -= 40
	}

	v.text(p.title, p.titleSize, white, cx, cy)
	if p.detail != "" {
		v.text(p.detail, p.detailSize, p.detailInk, cx, cy+70)
	}

	packRGB565(v.back, v.canvas, v.stride)
	copy(v.fb, v.back)
}

func (v *Video) text(s string, size float64, ink color.Color, x, y float64) {
	if err := v.dc.LoadFontFace(fontPath, size); err != nil {
		log.Warnf("Load font: %v", err)
	}
	v.dc.SetColor(ink)
	v.dc.DrawStringAnchored(s, x, y, 0.5, 0.5)
}

// Idle shows the ready screen.
func (v *Video) Idle() { v.show(idlePanel()) }

// Granted shows the access granted screen with the card label.
func (v *Video) Granted(label string) { v.show(grantedPanel(label)) }

// Denied shows the access denied screen with the unknown identifier.
func (v *Video) Denied(uid string) { v.show(deniedPanel(uid)) }

// Release blanks the screen and unmaps the framebuffer.
func (v *Video) Release() error {
	if !v.open {
		return nil
	}
	clear(v.fb)
	v.open = false
	v.fb = nil
	v.unmap()
	return nil
}

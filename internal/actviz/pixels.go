package actviz

import (
	"bytes"
	"image"
	"image/color"
)

// PixelBuffer is a row-major RGBA image: 4 bytes per pixel, stride 4*Width.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []uint8
}

func newPixelBuffer(w, h int) PixelBuffer {
	return PixelBuffer{Width: w, Height: h, Pix: make([]uint8, w*h*4)}
}

func (p PixelBuffer) Stride() int { return p.Width * 4 }

// At returns the pixel at (x, y); out of bounds gives transparent black.
func (p PixelBuffer) At(x, y int) color.NRGBA {
	if x < 0 || y < 0 || x >= p.Width || y >= p.Height {
		return color.NRGBA{}
	}
	o := y*p.Stride() + x*4
	return color.NRGBA{R: p.Pix[o], G: p.Pix[o+1], B: p.Pix[o+2], A: p.Pix[o+3]}
}

// Image wraps the buffer as an image.NRGBA without copying.
func (p PixelBuffer) Image() *image.NRGBA {
	return &image.NRGBA{Pix: p.Pix, Stride: p.Stride(), Rect: image.Rect(0, 0, p.Width, p.Height)}
}

// Clone detaches the buffer from any scratch arena it was sliced from.
func (p PixelBuffer) Clone() PixelBuffer {
	q := PixelBuffer{Width: p.Width, Height: p.Height, Pix: make([]uint8, len(p.Pix))}
	copy(q.Pix, p.Pix)
	return q
}

func (p PixelBuffer) Equal(q PixelBuffer) bool {
	return p.Width == q.Width && p.Height == q.Height && bytes.Equal(p.Pix, q.Pix)
}

// arena is a grow-only scratch area that render calls slice buffers out of.
// Everything taken from it is invalidated by the next reserve.
type arena struct {
	buf []uint8
	off int
}

// reserve makes room for n bytes and rewinds; call once per render, before any take.
func (a *arena) reserve(n int) {
	if cap(a.buf) < n {
		DebugLog("Arena grown: %d -> %d bytes", cap(a.buf), n)
		a.buf = make([]uint8, n)
	}
	a.buf = a.buf[:cap(a.buf)]
	a.off = 0
}

func (a *arena) take(w, h int) PixelBuffer {
	n := w * h * 4
	if a.off+n > len(a.buf) {
		// not reserved up front; fall back to a private allocation
		return newPixelBuffer(w, h)
	}
	pix := a.buf[a.off : a.off+n : a.off+n]
	a.off += n
	return PixelBuffer{Width: w, Height: h, Pix: pix}
}

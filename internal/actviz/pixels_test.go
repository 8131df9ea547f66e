package actviz

import (
	"image/color"
	"testing"
)

func TestPixelBufferAt(t *testing.T) {
	pb := newPixelBuffer(2, 2)
	putPixel(pb.Pix[1*pb.Stride()+0*4:], color.NRGBA{1, 2, 3, 4})
	if got := pb.At(0, 1); got != (color.NRGBA{1, 2, 3, 4}) {
		t.Fatalf("At(0,1) = %+v", got)
	}
	if got := pb.At(2, 0); got != (color.NRGBA{}) {
		t.Fatalf("out of bounds At = %+v", got)
	}
	if img := pb.Image(); img.NRGBAAt(0, 1) != pb.At(0, 1) || &img.Pix[0] != &pb.Pix[0] {
		t.Fatal("Image should share pixels")
	}
}

func TestArenaTake(t *testing.T) {
	var a arena
	a.reserve(2 * 2 * 4 * 2)
	x := a.take(2, 2)
	y := a.take(2, 2)
	if &x.Pix[0] == &y.Pix[0] || len(x.Pix) != 16 || cap(x.Pix) != 16 {
		t.Fatal("takes should not overlap")
	}
	// beyond the reservation falls back to a private buffer
	z := a.take(1, 1)
	if len(z.Pix) != 4 {
		t.Fatalf("fallback buffer has %d bytes", len(z.Pix))
	}
	c := x.Clone()
	x.Pix[0] = 9
	if c.Pix[0] == 9 || !c.Equal(c.Clone()) {
		t.Fatal("Clone should detach")
	}
}

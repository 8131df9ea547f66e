package actviz

import (
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/mat"
)

// Rasterizer turns numeric grids into pixel buffers. It keeps one scratch arena sized
// to the largest render seen so far; buffers it returns are valid until its next call
// (Clone them to keep). Output depends only on the arguments.
// A Rasterizer is not safe for concurrent use; give each viewer its own.
type Rasterizer struct {
	scratch arena
}

func NewRasterizer() *Rasterizer { return &Rasterizer{} }

// RasterizeSingleMaps renders each grid at one pixel per cell, at most SampleCount of them.
func RasterizeSingleMaps(grids []*mat.Dense, cm ColorMap) ([]PixelBuffer, error) {
	return NewRasterizer().RasterizeSingleMaps(grids, cm)
}

// RasterizeCombinedGrid renders a whole mosaic into a freshly allocated buffer, with a
// tinted separator on the first row and column of every cell.
func RasterizeCombinedGrid(grid *mat.Dense, l GridLayout, cm ColorMap, pixelScale int) (PixelBuffer, error) {
	return NewRasterizer().RasterizeCombinedGrid(grid, l, cm, pixelScale)
}

func (r *Rasterizer) RasterizeSingleMaps(grids []*mat.Dense, cm ColorMap) ([]PixelBuffer, error) {
	if len(grids) > SampleCount {
		grids = grids[:SampleCount]
	}
	total := 0
	for i, g := range grids {
		if g == nil {
			return nil, fmt.Errorf("%w: map %d is nil", ErrMalformedTensor, i)
		}
		h, w := g.Dims()
		total += h * w * 4
	}
	r.scratch.reserve(total)
	out := make([]PixelBuffer, 0, len(grids))
	for _, g := range grids {
		h, w := g.Dims()
		pb := r.scratch.take(w, h)
		for y := 0; y < h; y++ {
			row := g.RawRowView(y)
			off := y * pb.Stride()
			for x, v := range row {
				putPixel(pb.Pix[off+x*4:], cm(v))
			}
		}
		out = append(out, pb)
	}
	return out, nil
}

func (r *Rasterizer) RasterizeCombinedGrid(grid *mat.Dense, l GridLayout, cm ColorMap, pixelScale int) (PixelBuffer, error) {
	return r.rasterizeGrid(grid, l, cm, pixelScale, true)
}

// RasterizePooledGrid renders one block per value with no separators.
func (r *Rasterizer) RasterizePooledGrid(grid *mat.Dense, l GridLayout, cm ColorMap, pixelScale int) (PixelBuffer, error) {
	return r.rasterizeGrid(grid, l, cm, pixelScale, false)
}

func (r *Rasterizer) rasterizeGrid(grid *mat.Dense, l GridLayout, cm ColorMap, pixelScale int, tint bool) (PixelBuffer, error) {
	if pixelScale <= 0 {
		return PixelBuffer{}, fmt.Errorf("pixel scale must be positive, got %d", pixelScale)
	}
	if l.CellHeight <= 0 || l.CellWidth <= 0 {
		return PixelBuffer{}, fmt.Errorf("%w: non-positive cell in %+v", ErrInvalidLayout, l)
	}
	if err := l.CheckGrid(grid); err != nil {
		return PixelBuffer{}, err
	}
	h, w := grid.Dims()
	W, H := w*pixelScale, h*pixelScale
	r.scratch.reserve(W * H * 4)
	pb := r.scratch.take(W, H)
	for i := 0; i < h; i++ {
		row := grid.RawRowView(i)
		edgeRow := i%l.CellHeight == 0
		for j, v := range row {
			c := cm(v)
			if tint && (edgeRow || j%l.CellWidth == 0) {
				c = darken(c)
			}
			for dy := 0; dy < pixelScale; dy++ {
				off := (i*pixelScale+dy)*pb.Stride() + j*pixelScale*4
				for dx := 0; dx < pixelScale; dx++ {
					putPixel(pb.Pix[off+dx*4:], c)
				}
			}
		}
	}
	return pb, nil
}

func putPixel(dst []uint8, c color.NRGBA) {
	dst[0] = c.R
	dst[1] = c.G
	dst[2] = c.B
	dst[3] = c.A
}

// darken composites black at TintAlpha/255 over an opaque color.
func darken(c color.NRGBA) color.NRGBA {
	shade := func(x uint8) uint8 { return uint8((int(x)*(255-TintAlpha) + 127) / 255) }
	return color.NRGBA{R: shade(c.R), G: shade(c.G), B: shade(c.B), A: c.A}
}

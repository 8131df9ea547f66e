package actviz

import (
	"fmt"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	sheetBG   = color.NRGBA{15, 23, 42, 255}    // slate-900
	sheetText = color.NRGBA{203, 213, 225, 255} // slate-300
	// Low -> High legend, same stops as the viewer's CSS gradient
	legendStops = []colorful.Color{
		mustHex("#1e3a8a"),
		mustHex("#3b82f6"),
		mustHex("#fbbf24"),
		mustHex("#dc2626"),
	}
)

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

const labelHeight = 14 // one line of Face7x13 plus a pixel

// ComposeSheet lays a frame out as one display image: caption band on top, then either
// the mosaic at its native size with a Low/High legend, or the tiles in SheetCols columns,
// upscaled without smoothing and labelled with their channel ids.
func ComposeSheet(f *Frame) *image.NRGBA {
	face := basicfont.Face7x13
	title := f.Caption
	if f.Name != "" {
		title = fmt.Sprintf("%s: %s", f.Name, f.Caption)
	}
	if f.Channels == nil && len(f.Buffers) == 1 {
		return composeMosaic(f.Buffers[0], title, face)
	}
	return composeTiles(f, title, face)
}

func composeMosaic(pb PixelBuffer, title string, face font.Face) *image.NRGBA {
	legendW := LegendWidth + 2*font.MeasureString(face, "High ").Ceil()
	w := imax(pb.Width, imax(legendW, font.MeasureString(face, title).Ceil())) + 2*SheetPad
	h := SheetHeader + LegendHeight + SheetPad + pb.Height + SheetPad
	img := newSheet(w, h)
	drawText(img, face, title, SheetPad, SheetPad+face.Metrics().Ascent.Ceil())

	ly := SheetHeader - SheetPad
	x := SheetPad
	drawText(img, face, "Low", x, ly+LegendHeight)
	x += font.MeasureString(face, "Low ").Ceil()
	draw.Draw(img, image.Rect(x, ly, x+LegendWidth, ly+LegendHeight), legend(LegendWidth, LegendHeight), image.Point{}, draw.Src)
	drawText(img, face, "High", x+LegendWidth+2, ly+LegendHeight)

	top := SheetHeader + LegendHeight + SheetPad
	draw.Draw(img, image.Rect(SheetPad, top, SheetPad+pb.Width, top+pb.Height), pb.Image(), image.Point{}, draw.Src)
	return img
}

func composeTiles(f *Frame, title string, face font.Face) *image.NRGBA {
	n := len(f.Buffers)
	cols := imin(SheetCols, imax(n, 1))
	rows := ceilDiv(imax(n, 1), cols)
	cellW := SheetTileSize + SheetPad
	cellH := SheetTileSize + labelHeight + SheetPad
	w := imax(cols*cellW+SheetPad, font.MeasureString(face, title).Ceil()+2*SheetPad)
	h := SheetHeader + rows*cellH
	img := newSheet(w, h)
	drawText(img, face, title, SheetPad, SheetPad+face.Metrics().Ascent.Ceil())

	for i, pb := range f.Buffers {
		x := SheetPad + (i%cols)*cellW
		y := SheetHeader + (i/cols)*cellH
		dst := image.Rect(x, y, x+SheetTileSize, y+SheetTileSize)
		draw.NearestNeighbor.Scale(img, dst, pb.Image(), image.Rect(0, 0, pb.Width, pb.Height), draw.Src, nil)
		ch := i
		if i < len(f.Channels) {
			ch = f.Channels[i]
		}
		drawText(img, face, fmt.Sprintf("Ch %d", ch), x, y+SheetTileSize+labelHeight-2)
	}
	return img
}

func newSheet(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(sheetBG), image.Point{}, draw.Src)
	return img
}

// drawText writes s with its baseline at y.
func drawText(dst draw.Image, face font.Face, s string, x, y int) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(sheetText),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(s)
}

// legend renders the Low->High strip by blending evenly spaced stops in RGB.
func legend(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	segs := float64(len(legendStops) - 1)
	for x := 0; x < w; x++ {
		pos := 0.0
		if w > 1 {
			pos = float64(x) / float64(w-1) * segs
		}
		i := int(pos)
		if i >= len(legendStops)-1 {
			i = len(legendStops) - 2
		}
		r, g, b := legendStops[i].BlendRgb(legendStops[i+1], pos-float64(i)).RGB255()
		for y := 0; y < h; y++ {
			o := y*img.Stride + x*4
			img.Pix[o] = r
			img.Pix[o+1] = g
			img.Pix[o+2] = b
			img.Pix[o+3] = 255
		}
	}
	return img
}

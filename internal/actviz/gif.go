package actviz

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"os"
	"path/filepath"
)

// SaveAnimatedGIF writes a GIF with one frame per sheet, each centred on a canvas as
// large as the biggest sheet. delay is in 100ths of a second.
func SaveAnimatedGIF(sheets []Sheet, path string, delay int) error {
	if len(sheets) == 0 {
		return fmt.Errorf("no sheets to animate")
	}
	W, H := 0, 0
	for _, s := range sheets {
		b := s.Img.Bounds()
		W, H = imax(W, b.Dx()), imax(H, b.Dy())
	}
	out := &gif.GIF{
		Image:     make([]*image.Paletted, 0, len(sheets)),
		Delay:     make([]int, 0, len(sheets)),
		LoopCount: 0,
	}
	canvas := newSheet(W, H)
	for i, s := range sheets {
		if i%imax(1, len(sheets)/10) == 0 {
			fmt.Printf("[GIF] %.2f%%\n", float64(i+1)*100/float64(len(sheets)))
		}
		draw.Draw(canvas, canvas.Bounds(), image.NewUniform(sheetBG), image.Point{}, draw.Src)
		b := s.Img.Bounds()
		off := image.Pt((W-b.Dx())/2, (H-b.Dy())/2)
		draw.Draw(canvas, b.Sub(b.Min).Add(off), s.Img, b.Min, draw.Src)

		// Quantize to paletted for GIF
		pimg := image.NewPaletted(canvas.Bounds(), palette.Plan9)
		draw.FloydSteinberg.Draw(pimg, pimg.Bounds(), canvas, image.Point{})
		out.Image = append(out.Image, pimg)
		out.Delay = append(out.Delay, delay)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, out)
}

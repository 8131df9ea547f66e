package actviz

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// Sheet is one composed display image and the file stem it is saved under.
type Sheet struct {
	Name string
	Img  *image.NRGBA
}

// SavePNG writes img as a lossless, best-compression PNG, creating parent dirs.
func SavePNG(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SavePNGSheets writes <dir>/<name>.png for every sheet.
func SavePNGSheets(sheets []Sheet, dir string) error {
	// Progress print step (~10%).
	step := imax(1, len(sheets)/10)
	for i, s := range sheets {
		if i%step == 0 {
			percent := float64(i+1) * 100 / float64(len(sheets))
			fmt.Printf("[PNG]  %.2f%%\n", percent)
		}
		if err := SavePNG(s.Img, filepath.Join(dir, s.Name+".png")); err != nil {
			return err
		}
	}
	return nil
}

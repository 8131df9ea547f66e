package actviz

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

// SaveRawRGBA dumps a pixel buffer: width, height as little-endian int32, then the
// RGBA bytes row by row.
func SaveRawRGBA(pb PixelBuffer, path string) error {
	if pb.Width < 0 || pb.Height < 0 {
		return fmt.Errorf("negative dimensions: %dx%d", pb.Width, pb.Height)
	}
	if exp := pb.Width * pb.Height * 4; len(pb.Pix) != exp {
		return fmt.Errorf("Pix length mismatch: got %d, expected %d (W*H*4)", len(pb.Pix), exp)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.LittleEndian, int32(pb.Width)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(pb.Height)); err != nil {
		return err
	}
	if _, err := w.Write(pb.Pix); err != nil {
		return err
	}
	return w.Flush()
}

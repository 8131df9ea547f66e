package actviz

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveRawRGBA(t *testing.T) {
	pb := newPixelBuffer(3, 2)
	for i := range pb.Pix {
		pb.Pix[i] = uint8(i)
	}
	path := filepath.Join(t.TempDir(), "raw", "frame.rgba")
	if err := SaveRawRGBA(pb, path); err != nil {
		t.Fatalf("SaveRawRGBA error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open result file: %v", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var w, h int32
	if err := binary.Read(r, binary.LittleEndian, &w); err != nil {
		t.Fatal(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		t.Fatal(err)
	}
	if w != 3 || h != 2 {
		t.Fatalf("header %dx%d, want 3x2", w, h)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(body, pb.Pix) {
		t.Fatal("body differs from Pix")
	}
}

func TestSaveRawRGBALengthMismatch(t *testing.T) {
	pb := PixelBuffer{Width: 2, Height: 2, Pix: make([]uint8, 3)}
	if err := SaveRawRGBA(pb, filepath.Join(t.TempDir(), "x.rgba")); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

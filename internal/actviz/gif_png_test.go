package actviz

import (
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func tinySheets(t *testing.T) []Sheet {
	t.Helper()
	tn := combinedTensor(t, 4, 2, 2)
	l, _ := ResolveLayout(tn)
	var sheets []Sheet
	for _, m := range []ViewMode{AllChannels, Sampled} {
		f, err := Render(tn, l, m)
		if err != nil {
			t.Fatal(err)
		}
		sheets = append(sheets, Sheet{Name: "tiny_" + m.String(), Img: ComposeSheet(f)})
	}
	return sheets
}

func TestSaveAnimatedGIF(t *testing.T) {
	sheets := tinySheets(t)
	tmp := filepath.Join(t.TempDir(), "gifs", "out.gif")
	if err := SaveAnimatedGIF(sheets, tmp, 5); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(tmp)
	if err != nil {
		t.Fatalf("gif not written: %v", err)
	}
	defer f.Close()
	g, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Image) != 2 || g.Delay[0] != 5 {
		t.Fatalf("unexpected gif: %d frames, delays %v", len(g.Image), g.Delay)
	}
	if err := SaveAnimatedGIF(nil, tmp, 5); err == nil {
		t.Fatal("expected error for no sheets")
	}
}

func TestSavePNGSheets(t *testing.T) {
	sheets := tinySheets(t)
	dir := filepath.Join(t.TempDir(), "pngs")
	if err := SavePNGSheets(sheets, dir); err != nil {
		t.Fatal(err)
	}
	for _, s := range sheets {
		f, err := os.Open(filepath.Join(dir, s.Name+".png"))
		if err != nil {
			t.Fatalf("png not written: %v", err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatal(err)
		}
		if img.Bounds() != s.Img.Bounds() {
			t.Fatalf("%s: bounds %v, want %v", s.Name, img.Bounds(), s.Img.Bounds())
		}
	}
}

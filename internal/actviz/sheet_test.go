package actviz

import (
	"image/color"
	"testing"
)

func TestComposeSheetMosaic(t *testing.T) {
	tn := combinedTensor(t, 64, 7, 7)
	l, _ := ResolveLayout(tn)
	f, err := Render(tn, l, AllChannels)
	if err != nil {
		t.Fatal(err)
	}
	img := ComposeSheet(f)
	b := img.Bounds()
	if b.Dx() < 112+2*SheetPad || b.Dy() < 112+SheetHeader {
		t.Fatalf("sheet too small: %v", b)
	}
	// mosaic is copied 1:1 below the header and legend
	top := SheetHeader + LegendHeight + SheetPad
	for _, p := range [][2]int{{0, 0}, {5, 9}, {111, 111}} {
		want := f.Buffers[0].At(p[0], p[1])
		if got := img.NRGBAAt(SheetPad+p[0], top+p[1]); got != want {
			t.Fatalf("mosaic pixel %v = %+v, want %+v", p, got, want)
		}
	}
}

func TestComposeSheetTiles(t *testing.T) {
	tn := combinedTensor(t, 64, 7, 7)
	l, _ := ResolveLayout(tn)
	f, err := Render(tn, l, Sampled)
	if err != nil {
		t.Fatal(err)
	}
	img := ComposeSheet(f)
	cellW := SheetTileSize + SheetPad
	cellH := SheetTileSize + labelHeight + SheetPad
	if w, h := img.Bounds().Dx(), img.Bounds().Dy(); w < SheetCols*cellW || h != SheetHeader+4*cellH {
		t.Fatalf("unexpected sheet %dx%d", w, h)
	}
	// each 7x7 tile is upscaled by nearest neighbour: tile 5, source pixel (3, 2)
	i := 5
	x0 := SheetPad + (i%SheetCols)*cellW
	y0 := SheetHeader + (i/SheetCols)*cellH
	scale := SheetTileSize / 7
	want := f.Buffers[i].At(3, 2)
	if got := img.NRGBAAt(x0+3*scale+scale/2, y0+2*scale+scale/2); got != want {
		t.Fatalf("tile pixel = %+v, want %+v", got, want)
	}
}

func TestLegendEndpoints(t *testing.T) {
	lg := legend(LegendWidth, 2)
	if got := lg.NRGBAAt(0, 0); got != (color.NRGBA{30, 58, 138, 255}) {
		t.Fatalf("legend low = %+v", got)
	}
	if got := lg.NRGBAAt(LegendWidth-1, 1); got != (color.NRGBA{220, 38, 38, 255}) {
		t.Fatalf("legend high = %+v", got)
	}
}

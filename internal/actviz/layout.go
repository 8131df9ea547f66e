package actviz

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// GridLayout describes how channels are tiled row-major into one combined grid.
type GridLayout struct {
	Rows       int `json:"rows"`
	Cols       int `json:"cols"`
	CellHeight int `json:"cell_height"`
	CellWidth  int `json:"cell_width"`
}

// Capacity is the number of channel cells the layout holds.
func (l GridLayout) Capacity() int { return l.Rows * l.Cols }

// GridDims returns the (height, width) of a combined grid with this layout.
func (l GridLayout) GridDims() (int, int) { return l.Rows * l.CellHeight, l.Cols * l.CellWidth }

// PlanLayout packs channelCount cells of cellHeight x cellWidth into a near-square
// grid: cols = ceil(sqrt(n)), rows = ceil(n/cols).
func PlanLayout(channelCount, cellHeight, cellWidth int) (GridLayout, error) {
	if channelCount <= 0 || cellHeight <= 0 || cellWidth <= 0 {
		return GridLayout{}, fmt.Errorf("%w: cannot plan %d channels of %dx%d", ErrInvalidLayout, channelCount, cellHeight, cellWidth)
	}
	cols := int(math.Sqrt(float64(channelCount)))
	if cols*cols < channelCount {
		cols++
	}
	l := GridLayout{
		Rows:       ceilDiv(channelCount, cols),
		Cols:       cols,
		CellHeight: cellHeight,
		CellWidth:  cellWidth,
	}
	DebugLog("Planned layout for %d channels: %dx%d cells of %dx%d", channelCount, l.Rows, l.Cols, l.CellHeight, l.CellWidth)
	return l, nil
}

// Validate checks an externally supplied layout against the tensor it describes.
func (l GridLayout) Validate(channelCount, spatialHeight, spatialWidth int) error {
	if l.Rows <= 0 || l.Cols <= 0 || l.CellHeight <= 0 || l.CellWidth <= 0 {
		return fmt.Errorf("%w: non-positive field in %+v", ErrInvalidLayout, l)
	}
	if l.Capacity() < channelCount {
		return fmt.Errorf("%w: %dx%d cells cannot hold %d channels", ErrInvalidLayout, l.Rows, l.Cols, channelCount)
	}
	if l.CellHeight != spatialHeight || l.CellWidth != spatialWidth {
		return fmt.Errorf("%w: cell %dx%d, spatial %dx%d", ErrInvalidLayout, l.CellHeight, l.CellWidth, spatialHeight, spatialWidth)
	}
	return nil
}

// CheckGrid verifies that the combined grid is exactly rows*cellHeight by cols*cellWidth.
func (l GridLayout) CheckGrid(grid *mat.Dense) error {
	if grid == nil {
		return fmt.Errorf("%w: no combined grid", ErrMalformedTensor)
	}
	r, c := grid.Dims()
	h, w := l.GridDims()
	if r != h || c != w {
		return fmt.Errorf("%w: grid is %dx%d, layout %+v needs %dx%d", ErrMalformedTensor, r, c, l, h, w)
	}
	return nil
}

// CellOrigin returns the top-left (row, col) offset of channel k inside the combined grid.
func CellOrigin(l GridLayout, k int) (int, int) {
	return (k / l.Cols) * l.CellHeight, (k % l.Cols) * l.CellWidth
}

func (l GridLayout) checkChannel(k int) error {
	if l.Cols <= 0 || k < 0 || k >= l.Capacity() {
		return fmt.Errorf("%w: channel %d, capacity %d", ErrChannelIndex, k, l.Capacity())
	}
	return nil
}

// ExtractChannel copies channel k's cellHeight x cellWidth block out of the combined grid.
func ExtractChannel(grid *mat.Dense, l GridLayout, k int) (*mat.Dense, error) {
	if err := l.CheckGrid(grid); err != nil {
		return nil, err
	}
	if err := l.checkChannel(k); err != nil {
		return nil, err
	}
	r0, c0 := CellOrigin(l, k)
	return mat.DenseCopyOf(grid.Slice(r0, r0+l.CellHeight, c0, c0+l.CellWidth)), nil
}

// InsertChannel writes x into channel k's block of the combined grid, in place.
// It is the inverse of ExtractChannel.
func InsertChannel(grid *mat.Dense, l GridLayout, k int, x *mat.Dense) error {
	if err := l.CheckGrid(grid); err != nil {
		return err
	}
	if err := l.checkChannel(k); err != nil {
		return err
	}
	if x == nil {
		return fmt.Errorf("%w: nil channel map", ErrMalformedTensor)
	}
	if r, c := x.Dims(); r != l.CellHeight || c != l.CellWidth {
		return fmt.Errorf("%w: channel map is %dx%d, cell is %dx%d", ErrMalformedTensor, r, c, l.CellHeight, l.CellWidth)
	}
	r0, c0 := CellOrigin(l, k)
	grid.Slice(r0, r0+l.CellHeight, c0, c0+l.CellWidth).(*mat.Dense).Copy(x)
	return nil
}

// AssembleGrid tiles per-channel maps into a new combined grid. Cells past the last
// channel stay zero.
func AssembleGrid(maps []*mat.Dense, l GridLayout) (*mat.Dense, error) {
	if err := l.Validate(len(maps), l.CellHeight, l.CellWidth); err != nil {
		return nil, err
	}
	h, w := l.GridDims()
	grid := mat.NewDense(h, w, nil)
	for k, m := range maps {
		if err := InsertChannel(grid, l, k, m); err != nil {
			return nil, err
		}
	}
	return grid, nil
}

package actviz

import (
	"fmt"
	"time"

	"github.com/rs/xid"
	"gonum.org/v1/gonum/mat"
)

type ViewMode uint8

const (
	AllChannels ViewMode = iota // full mosaic, diverging map
	Sampled                     // up to SampleCount per-channel tiles, hot map
)

func (m ViewMode) String() string {
	if m == Sampled {
		return "sampled"
	}
	return "all"
}

func ParseViewMode(s string) (ViewMode, error) {
	switch s {
	case "all", "all_channels", "AllChannels":
		return AllChannels, nil
	case "sampled", "Sampled":
		return Sampled, nil
	}
	return 0, fmt.Errorf("unknown view mode %q", s)
}

// Frame is what one render hands to the display surface.
type Frame struct {
	Name         string
	Kind         Kind
	Mode         ViewMode
	Toggle       bool          // whether the tensor supports switching modes
	Buffers      []PixelBuffer // one mosaic, or one buffer per tile
	Channels     []int         // channel id per tile buffer; nil for mosaics
	ChannelCount int
	Layout       GridLayout
	Caption      string
}

// Clone deep-copies the frame's buffers so it survives the next render.
func (f *Frame) Clone() *Frame {
	c := *f
	c.Buffers = make([]PixelBuffer, len(f.Buffers))
	for i, b := range f.Buffers {
		c.Buffers[i] = b.Clone()
	}
	c.Channels = append([]int(nil), f.Channels...)
	return &c
}

// Render rasterises tensor t with layout l in the given mode. The mode is only
// consulted for combined grids; single maps and pooled grids have one view.
func Render(t *ActivationTensor, l GridLayout, mode ViewMode) (*Frame, error) {
	return render(NewRasterizer(), t, l, mode)
}

func render(r *Rasterizer, t *ActivationTensor, l GridLayout, mode ViewMode) (*Frame, error) {
	start := time.Now()
	f := &Frame{
		Name:         t.Name,
		Kind:         t.Kind,
		ChannelCount: t.ChannelCount,
		Layout:       l,
	}
	if t.Kind == CombinedGrid || t.Kind == PooledGrid {
		// nothing is rasterized for a layout that does not describe t
		if err := l.Validate(t.ChannelCount, t.SpatialHeight, t.SpatialWidth); err != nil {
			return nil, fmt.Errorf("%s: %w", t.Name, err)
		}
		if err := l.CheckGrid(t.Grid); err != nil {
			return nil, fmt.Errorf("%s: %w", t.Name, err)
		}
	}
	switch t.Kind {
	case CombinedGrid:
		f.Toggle = true
		f.Mode = mode
		if mode == Sampled {
			sel := SelectChannels(t.ChannelCount)
			maps := make([]*mat.Dense, 0, len(sel))
			for _, k := range sel {
				m, err := ExtractChannel(t.Grid, l, k)
				if err != nil {
					return nil, err
				}
				maps = append(maps, m)
			}
			bufs, err := r.RasterizeSingleMaps(maps, Hot)
			if err != nil {
				return nil, err
			}
			f.Buffers, f.Channels = bufs, sel
			f.Caption = fmt.Sprintf("Showing %d of %d channels", len(sel), t.ChannelCount)
			break
		}
		pb, err := r.RasterizeCombinedGrid(t.Grid, l, Diverging, MosaicPixelScale)
		if err != nil {
			return nil, err
		}
		f.Buffers = []PixelBuffer{pb}
		f.Caption = fmt.Sprintf("Showing all %d channels as %dx%d heatmaps", t.ChannelCount, l.CellHeight, l.CellWidth)
	case PooledGrid:
		f.Mode = AllChannels
		pb, err := r.RasterizePooledGrid(t.Grid, l, Diverging, PooledPixelScale)
		if err != nil {
			return nil, err
		}
		f.Buffers = []PixelBuffer{pb}
		f.Caption = fmt.Sprintf("Each cell represents one of %d channel activations", t.ChannelCount)
	case SingleMap:
		f.Mode = Sampled
		bufs, err := r.RasterizeSingleMaps(t.Maps, Hot)
		if err != nil {
			return nil, err
		}
		f.Buffers = bufs
		f.Channels = make([]int, len(bufs))
		for i := range bufs {
			f.Channels[i] = t.ChannelLabel(i)
		}
		f.Caption = fmt.Sprintf("Showing %d of %d channels", len(bufs), t.ChannelCount)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, t.Kind)
	}
	logRender(f, time.Since(start))
	return f, nil
}

// Viewer is the state of one open viewer: the tensor on display, its cached layout,
// the active mode and the last frame that rendered successfully. Each viewer owns its
// layout and scratch memory; nothing is shared between viewers.
// Not safe for concurrent use.
type Viewer struct {
	ID     string
	tensor *ActivationTensor
	layout GridLayout
	mode   ViewMode
	raster *Rasterizer
	frame  *Frame
}

func NewViewer() *Viewer {
	return &Viewer{ID: xid.New().String(), raster: NewRasterizer()}
}

func (v *Viewer) Tensor() *ActivationTensor { return v.tensor }
func (v *Viewer) Layout() GridLayout        { return v.layout }
func (v *Viewer) Mode() ViewMode            { return v.mode }

// Frame returns the last successful frame. Its buffers are reused by the next render.
func (v *Viewer) Frame() *Frame { return v.frame }

// CanToggle reports whether the current tensor has two views.
func (v *Viewer) CanToggle() bool { return v.tensor != nil && v.tensor.Kind == CombinedGrid }

// SetTensor replaces the displayed tensor, recomputes its layout and renders it in the
// default mode (AllChannels). On error the previous tensor and frame stay in place.
func (v *Viewer) SetTensor(t *ActivationTensor) (*Frame, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil tensor", ErrMalformedTensor)
	}
	l, err := ResolveLayout(t)
	if err != nil {
		DebugLog("Viewer %s: rejected %s: %v", v.ID, t.Name, err)
		return nil, err
	}
	f, err := render(v.raster, t, l, AllChannels)
	if err != nil {
		return nil, err
	}
	v.tensor, v.layout, v.frame = t, l, f
	v.mode = f.Mode
	return f, nil
}

func (v *Viewer) ToggleToSampled() (*Frame, error) { return v.SetMode(Sampled) }

func (v *Viewer) ToggleToAllChannels() (*Frame, error) { return v.SetMode(AllChannels) }

// SetMode switches the view and re-renders. Asking for the current mode just re-renders.
func (v *Viewer) SetMode(m ViewMode) (*Frame, error) {
	if !v.CanToggle() {
		return nil, ErrNoToggle
	}
	f, err := render(v.raster, v.tensor, v.layout, m)
	if err != nil {
		return nil, err
	}
	v.mode, v.frame = m, f
	return f, nil
}

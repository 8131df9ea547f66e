package actviz

import (
	"encoding/json"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

type Kind uint8

const (
	SingleMap    Kind = iota // per-channel maps, one small grid each
	CombinedGrid             // all channels pre-tiled into one grid
	PooledGrid               // one value per channel arranged as a coarse grid (e.g. avgpool)
)

func (k Kind) String() string {
	switch k {
	case SingleMap:
		return "single_map"
	case CombinedGrid:
		return "combined_grid"
	case PooledGrid:
		return "pooled_grid"
	default:
		return "unknown"
	}
}

// ParseKind accepts both the inference service's wire names and our own.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "2d", "single_map":
		return SingleMap, nil
	case "channel_grid", "combined_grid":
		return CombinedGrid, nil
	case "grid", "pooled_grid":
		return PooledGrid, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
}

// ActivationTensor is one layer's activation as delivered by the inference service.
// Treat it as immutable once decoded.
type ActivationTensor struct {
	Name            string
	Kind            Kind
	ChannelCount    int
	SpatialHeight   int
	SpatialWidth    int
	Shape           []int
	Maps            []*mat.Dense // SingleMap
	Grid            *mat.Dense   // CombinedGrid, PooledGrid
	Layout          *GridLayout  // as declared by the sender, CombinedGrid only
	SampledChannels []int        // channel ids of Maps, SingleMap only
}

// wire format of one entry in the inference response
type wireTensor struct {
	Type            string          `json:"type"`
	Shape           []int           `json:"shape,omitempty"`
	Data            json.RawMessage `json:"data"`
	NumChannels     int             `json:"num_channels"`
	SampledChannels []int           `json:"sampled_channels,omitempty"`
	GridLayout      *GridLayout     `json:"grid_layout,omitempty"`
}

// DecodeTensor parses one activation entry and validates its structure.
func DecodeTensor(name string, data []byte) (*ActivationTensor, error) {
	var w wireTensor
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedTensor, name, err)
	}
	kind, err := ParseKind(w.Type)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	t := &ActivationTensor{
		Name:            name,
		Kind:            kind,
		ChannelCount:    w.NumChannels,
		Shape:           w.Shape,
		SampledChannels: w.SampledChannels,
	}
	switch kind {
	case SingleMap:
		var maps [][][]float64
		if err := json.Unmarshal(w.Data, &maps); err != nil {
			return nil, fmt.Errorf("%w: %s: data: %v", ErrMalformedTensor, name, err)
		}
		for i, rows := range maps {
			m, err := toDense(rows)
			if err != nil {
				return nil, fmt.Errorf("%s: map %d: %w", name, i, err)
			}
			t.Maps = append(t.Maps, m)
		}
		if len(t.Maps) > 0 {
			t.SpatialHeight, t.SpatialWidth = t.Maps[0].Dims()
		}
		if t.ChannelCount == 0 {
			t.ChannelCount = len(t.Maps)
		}
	case CombinedGrid, PooledGrid:
		var rows [][]float64
		if err := json.Unmarshal(w.Data, &rows); err != nil {
			return nil, fmt.Errorf("%w: %s: data: %v", ErrMalformedTensor, name, err)
		}
		if t.Grid, err = toDense(rows); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if kind == PooledGrid {
			t.SpatialHeight, t.SpatialWidth = 1, 1
			if t.ChannelCount == 0 {
				r, c := t.Grid.Dims()
				t.ChannelCount = r * c
			}
			break
		}
		t.Layout = w.GridLayout
		switch {
		case t.Layout != nil:
			t.SpatialHeight, t.SpatialWidth = t.Layout.CellHeight, t.Layout.CellWidth
		case len(w.Shape) >= 3:
			// [.., C, H, W]: the sender omitted the layout, we plan one
			t.SpatialHeight, t.SpatialWidth = w.Shape[len(w.Shape)-2], w.Shape[len(w.Shape)-1]
		default:
			return nil, fmt.Errorf("%w: %s: combined grid without grid_layout or shape", ErrMalformedTensor, name)
		}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	DebugLog("Decoded %s: kind=%s channels=%d spatial=%dx%d", name, t.Kind, t.ChannelCount, t.SpatialHeight, t.SpatialWidth)
	return t, nil
}

// DecodeActivations parses a full inference response ({"activations": {...}}) or a
// bare name->tensor object. Names come back sorted; failures are collected per layer
// so one malformed layer doesn't hide the others.
func DecodeActivations(data []byte) (map[string]*ActivationTensor, []string, map[string]error, error) {
	var resp struct {
		Activations map[string]json.RawMessage `json:"activations"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, nil, nil, err
	}
	raw := resp.Activations
	if raw == nil {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, nil, nil, err
		}
	}
	tensors := make(map[string]*ActivationTensor, len(raw))
	failed := make(map[string]error)
	names := make([]string, 0, len(raw))
	for name, msg := range raw {
		t, err := DecodeTensor(name, msg)
		if err != nil {
			failed[name] = err
			continue
		}
		tensors[name] = t
		names = append(names, name)
	}
	sort.Strings(names)
	return tensors, names, failed, nil
}

// Validate checks that declared dimensions agree with the data.
// It does not look at the values themselves.
func (t *ActivationTensor) Validate() error {
	if t.ChannelCount <= 0 {
		return fmt.Errorf("%w: %s: channel count %d", ErrMalformedTensor, t.Name, t.ChannelCount)
	}
	switch t.Kind {
	case SingleMap:
		if len(t.Maps) == 0 {
			return fmt.Errorf("%w: %s: no channel maps", ErrMalformedTensor, t.Name)
		}
		if len(t.Maps) > t.ChannelCount {
			return fmt.Errorf("%w: %s: %d maps for %d channels", ErrMalformedTensor, t.Name, len(t.Maps), t.ChannelCount)
		}
		for i, m := range t.Maps {
			if m == nil {
				return fmt.Errorf("%w: %s: map %d is nil", ErrMalformedTensor, t.Name, i)
			}
			if r, c := m.Dims(); r != t.SpatialHeight || c != t.SpatialWidth {
				return fmt.Errorf("%w: %s: map %d is %dx%d, expected %dx%d", ErrMalformedTensor, t.Name, i, r, c, t.SpatialHeight, t.SpatialWidth)
			}
		}
		if len(t.SampledChannels) > 0 && len(t.SampledChannels) != len(t.Maps) {
			return fmt.Errorf("%w: %s: %d sampled channel ids for %d maps", ErrMalformedTensor, t.Name, len(t.SampledChannels), len(t.Maps))
		}
	case CombinedGrid, PooledGrid:
		if t.Grid == nil {
			return fmt.Errorf("%w: %s: no grid", ErrMalformedTensor, t.Name)
		}
		if t.SpatialHeight <= 0 || t.SpatialWidth <= 0 {
			return fmt.Errorf("%w: %s: spatial %dx%d", ErrMalformedTensor, t.Name, t.SpatialHeight, t.SpatialWidth)
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedKind, t.Kind)
	}
	return nil
}

// ResolveLayout returns the layout a tensor renders with: the declared one (validated)
// for combined grids, otherwise a planned one.
func ResolveLayout(t *ActivationTensor) (GridLayout, error) {
	if err := t.Validate(); err != nil {
		return GridLayout{}, err
	}
	switch t.Kind {
	case CombinedGrid:
		l := GridLayout{}
		if t.Layout != nil {
			l = *t.Layout
			if err := l.Validate(t.ChannelCount, t.SpatialHeight, t.SpatialWidth); err != nil {
				return GridLayout{}, fmt.Errorf("%s: %w", t.Name, err)
			}
		} else {
			var err error
			if l, err = PlanLayout(t.ChannelCount, t.SpatialHeight, t.SpatialWidth); err != nil {
				return GridLayout{}, err
			}
		}
		if err := l.CheckGrid(t.Grid); err != nil {
			return GridLayout{}, fmt.Errorf("%s: %w", t.Name, err)
		}
		return l, nil
	case PooledGrid:
		r, c := t.Grid.Dims()
		l := GridLayout{Rows: r, Cols: c, CellHeight: 1, CellWidth: 1}
		if err := l.Validate(t.ChannelCount, 1, 1); err != nil {
			return GridLayout{}, fmt.Errorf("%s: %w", t.Name, err)
		}
		return l, nil
	default:
		return PlanLayout(len(t.Maps), t.SpatialHeight, t.SpatialWidth)
	}
}

// ChannelLabel returns the channel id shown under single-map tile i.
func (t *ActivationTensor) ChannelLabel(i int) int {
	if i >= 0 && i < len(t.SampledChannels) {
		return t.SampledChannels[i]
	}
	return i
}

// LayerStats summarises finite values of a tensor.
type LayerStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Active int     `json:"active"` // values > 0
	Total  int     `json:"total"`
}

func (t *ActivationTensor) Stats() LayerStats {
	var st LayerStats
	var sum float64
	add := func(m *mat.Dense) {
		r, _ := m.Dims()
		for i := 0; i < r; i++ {
			for _, v := range m.RawRowView(i) {
				if !isFinite(v) {
					continue
				}
				if st.Total == 0 || v < st.Min {
					st.Min = v
				}
				if st.Total == 0 || v > st.Max {
					st.Max = v
				}
				if v > 0 {
					st.Active++
				}
				sum += v
				st.Total++
			}
		}
	}
	if t.Grid != nil {
		add(t.Grid)
	}
	for _, m := range t.Maps {
		add(m)
	}
	if st.Total > 0 {
		st.Mean = sum / float64(st.Total)
	}
	return st
}

// toDense converts nested rows into a matrix, rejecting empty or ragged input.
func toDense(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty grid", ErrMalformedTensor)
	}
	w := len(rows[0])
	flat := make([]float64, 0, len(rows)*w)
	for i, row := range rows {
		if len(row) != w {
			return nil, fmt.Errorf("%w: row %d has %d values, expected %d", ErrMalformedTensor, i, len(row), w)
		}
		flat = append(flat, row...)
	}
	return mat.NewDense(len(rows), w, flat), nil
}

package actviz

import "errors"

var (
	// ErrInvalidLayout means the layout cannot hold the tensor's channels.
	ErrInvalidLayout = errors.New("invalid layout")
	// ErrMalformedTensor means declared dimensions don't match the data.
	ErrMalformedTensor = errors.New("malformed tensor")
	// ErrChannelIndex means a channel index falls outside the layout.
	ErrChannelIndex = errors.New("channel index out of range")
	// ErrUnsupportedKind is returned for tensor kinds the viewer has no rendering for.
	ErrUnsupportedKind = errors.New("unsupported tensor kind")
	// ErrNoToggle is returned when a view-mode toggle is requested for a tensor that has only one view.
	ErrNoToggle = errors.New("view mode toggle needs a combined grid")
)

// structural reports whether err should abort a render and keep the previous frame.
func structural(err error) bool {
	return errors.Is(err, ErrInvalidLayout) || errors.Is(err, ErrMalformedTensor) ||
		errors.Is(err, ErrChannelIndex) || errors.Is(err, ErrUnsupportedKind)
}

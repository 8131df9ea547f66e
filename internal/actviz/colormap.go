package actviz

import (
	"image/color"
	"math"
)

// ColorMap maps a normalized activation to an opaque color.
type ColorMap func(v float64) color.NRGBA

// Diverging anchors, one per breakpoint 0, 0.25, 0.5, 0.75, 1.
var divergingStops = [5][3]float64{
	{30, 58, 138},
	{59, 130, 246},
	{251, 191, 36},
	{249, 115, 22},
	{220, 38, 38},
}

// clamp01 clamps v to [0,1]; NaN maps to 0.
func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func toByte(x float64) uint8 {
	x = math.Round(x)
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return uint8(x)
}

// Hot is the linear map used for individual per-channel heatmaps:
// blue at 0, yellow-ish (255,200,0) at 1.
func Hot(v float64) color.NRGBA {
	v = clamp01(v)
	return color.NRGBA{
		R: toByte(v * 255),
		G: toByte(v * 200),
		B: toByte((1 - v) * 255),
		A: 255,
	}
}

// Diverging is the four-segment map used for the combined mosaic and pooled grids.
// Segment k covers [k/4, (k+1)/4); 1.0 falls into the last segment with t=1.
func Diverging(v float64) color.NRGBA {
	v = clamp01(v)
	seg := int(v * 4)
	if seg > 3 {
		seg = 3
	}
	t := v*4 - float64(seg)
	a, b := divergingStops[seg], divergingStops[seg+1]
	return color.NRGBA{
		R: toByte(a[0] + t*(b[0]-a[0])),
		G: toByte(a[1] + t*(b[1]-a[1])),
		B: toByte(a[2] + t*(b[2]-a[2])),
		A: 255,
	}
}

package actviz

import "math"

func isFinite(x float64) bool { return !math.IsInf(x, 0) && !math.IsNaN(x) }

func imax(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func imin(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ceilDiv returns ceil(a/b) for positive ints.
func ceilDiv(a, b int) int { return (a + b - 1) / b }

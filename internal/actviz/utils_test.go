package actviz

import (
	"math"
	"testing"
)

func TestIsFinite(t *testing.T) {
	if !isFinite(1) || isFinite(math.Inf(1)) || isFinite(math.NaN()) {
		t.Fatal("isFinite failed")
	}
}

func TestIMaxIMin(t *testing.T) {
	if imax(3, 5) != 5 || imax(5, 3) != 5 || imin(3, 5) != 3 || imin(5, 3) != 3 {
		t.Fatal("imax/imin failed")
	}
}

func TestCeilDiv(t *testing.T) {
	if ceilDiv(64, 8) != 8 || ceilDiv(65, 8) != 9 || ceilDiv(1, 8) != 1 {
		t.Fatal("ceilDiv failed")
	}
}

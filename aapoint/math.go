package aapoint

import "fmt"

// Mode selects the distance measure the coverage ramp is evaluated on.
type Mode uint8

const (
	// ModeSquared compares squared distances, saving a square root.
	ModeSquared Mode = iota
	// ModeNormalized compares true distances.
	ModeNormalized
)

func (m Mode) String() string {
	switch m {
	case ModeSquared:
		return "squared"
	case ModeNormalized:
		return "normalized"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// Threshold returns the smoothing threshold k for a point of the given
// radius in pixels. Inside k coverage is full; between k and the unit
// circle it ramps linearly down to zero.
//
// With ModeNormalized k = 1 - 1/r; with ModeSquared k is the square of
// that, 1 - 2/r + 1/r², so it can be compared against squared distances.
// Radii of one pixel or less have no full-coverage core.
func Threshold(radius float32, mode Mode) float32 {
	if radius <= 1 {
		return 0
	}
	k := 1 - 1/radius
	if mode == ModeSquared {
		k *= k
	}
	return k
}

// Coverage evaluates the coverage ramp the injected code computes, for a
// distance d measured in the same mode as k. kill reports that the fragment
// lies outside the unit circle.
func Coverage(d, k float32) (coverage float32, kill bool) {
	if d > 1 {
		return 0, true
	}
	if d <= k {
		return 1, false
	}
	c := (1 - d) * (1 / (1 - k))
	return min(max(c, 0), 1), false
}

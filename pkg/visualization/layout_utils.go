package visualization

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Clamp limits v to [lo, hi]. When the range is inverted the midpoint is returned.
func Clamp[T constraints.Integer | constraints.Float](v, lo, hi T) T {
	if hi < lo {
		return lo + (hi-lo)/2
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampToBounds keeps a point of the given radius fully inside bounds
func ClampToBounds(x, y, radius float64, b Bounds) (float64, float64) {
	return Clamp(x, radius, b.Width-radius), Clamp(y, radius, b.Height-radius)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// separation returns a fixed unit direction for a pair of coincident nodes.
// It depends only on the indices so repeated runs stay identical.
func separation(i, j int) (float64, float64) {
	angle := float64(i*7919+j*104729) * 2.399963229728653 // golden angle
	return math.Cos(angle), math.Sin(angle)
}

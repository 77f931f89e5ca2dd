package domain

import "math"

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Clamp01 limits v to [0, 1]. Every score and probability passes through it.
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

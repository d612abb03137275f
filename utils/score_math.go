package utils

import "math"

// Clamp bounds v to [lo, hi]. NaN collapses to lo so a bad input never
// escapes the range.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RoundTo rounds half away from zero to the given number of decimals.
func RoundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// FloatOr dereferences p, falling back when it is nil or NaN.
func FloatOr(p *float64, fallback float64) float64 {
	if p == nil || math.IsNaN(*p) {
		return fallback
	}
	return *p
}

// Float returns a pointer to v. Handy for optional ratings.
func Float(v float64) *float64 {
	return &v
}

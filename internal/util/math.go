// Package util provides common utility functions used across the codebase.
package util

// Clamp bounds v to the inclusive range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// EMA blends a new sample into a running exponential moving average.
// alpha is the weight of the new sample; alpha 1 discards the history
// entirely and alpha 0 ignores the new sample.
func EMA(prev, sample, alpha float64) float64 {
	return prev + alpha*(sample-prev)
}

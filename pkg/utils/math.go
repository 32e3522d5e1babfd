package utils

import "math"

// ClampFloat64 clamps a float64 value between min and max
func ClampFloat64(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Mean calculates the mean of a slice of float64 values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// ArgMax returns the index of the largest value, -1 for an empty slice.
// Ties resolve to the lowest index.
func ArgMax(values []float64) int {
	best := -1
	bestVal := math.Inf(-1)
	for i, v := range values {
		if best < 0 || v > bestVal {
			best = i
			bestVal = v
		}
	}
	return best
}

// MaxInt returns the largest value in values, 0 for an empty slice
func MaxInt(values []int) int {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Round rounds a float64 to the specified number of decimal places
func Round(value float64, decimals int) float64 {
	multiplier := math.Pow(10, float64(decimals))
	return math.Round(value*multiplier) / multiplier
}

package core

import "math"

const defaultEpsilon = 1e-12

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// RoundHalfAway rounds x to the nearest integer, ties away from zero.
func RoundHalfAway(x float64) float64 {
	return math.Round(x)
}

// QuantizeInt16 rounds x and saturates it to the int16 range instead of
// wrapping around.
func QuantizeInt16(x float64) int16 {
	if math.IsNaN(x) {
		return 0
	}
	return int16(Clamp(RoundHalfAway(x), math.MinInt16, math.MaxInt16))
}

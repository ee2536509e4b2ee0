package calculator

import "math"

// Undefined is the per-position "not available" marker of an indicator series.
func Undefined() float64 { return math.NaN() }

// IsUndefined reports whether v carries the "not available" marker.
// Infinities count as undefined too.
func IsUndefined(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }

// Defined reports whether every value is available.
func Defined(vs ...float64) bool {
	for _, v := range vs {
		if IsUndefined(v) {
			return false
		}
	}
	return true
}

// At returns series[i], or Undefined when i is out of range.
func At(series []float64, i int) float64 {
	if i < 0 || i >= len(series) {
		return Undefined()
	}
	return series[i]
}

// Last returns the final value of series, or Undefined for an empty series.
func Last(series []float64) float64 {
	return At(series, len(series)-1)
}

func undefinedSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// mask overwrites out[0:n] with Undefined. talib leaves its warm-up region as zeros.
func mask(out []float64, n int) []float64 {
	for i := 0; i < n && i < len(out); i++ {
		out[i] = math.NaN()
	}
	return out
}

package calculator

import "math"

func window(n, index, lookback int) (start, end int, ok bool) {
	if index < 0 || index >= n || lookback <= 0 {
		return 0, 0, false
	}
	start = index - lookback + 1
	if start < 0 {
		start = 0
	}
	return start, index, true
}

// RollingHighestClose returns the highest close in [max(0,index-lookback+1), index].
// An empty window, or any undefined close in it, yields Undefined.
func RollingHighestClose(closes []float64, index, lookback int) float64 {
	start, end, ok := window(len(closes), index, lookback)
	if !ok {
		return Undefined()
	}
	high := math.Inf(-1)
	for i := start; i <= end; i++ {
		if IsUndefined(closes[i]) {
			return Undefined()
		}
		if closes[i] > high {
			high = closes[i]
		}
	}
	if math.IsInf(high, -1) {
		return Undefined()
	}
	return high
}

// RollingAvgVolume returns the arithmetic mean of volume over the same window
// shape as RollingHighestClose.
func RollingAvgVolume(volumes []float64, index, lookback int) float64 {
	start, end, ok := window(len(volumes), index, lookback)
	if !ok {
		return Undefined()
	}
	sum := 0.0
	for i := start; i <= end; i++ {
		sum += volumes[i]
	}
	return sum / float64(end-start+1)
}

// HighestSince returns the highest value in values[from:].
func HighestSince(values []float64, from int) float64 {
	if from < 0 || from >= len(values) {
		return Undefined()
	}
	return RollingHighestClose(values, len(values)-1, len(values)-from)
}

// LowestSince returns the lowest value in values[from:].
func LowestSince(values []float64, from int) float64 {
	if from < 0 || from >= len(values) {
		return Undefined()
	}
	low := math.Inf(1)
	for _, v := range values[from:] {
		if IsUndefined(v) {
			return Undefined()
		}
		if v < low {
			low = v
		}
	}
	return low
}

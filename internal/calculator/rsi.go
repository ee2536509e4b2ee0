package calculator

import (
	"github.com/markcheno/go-talib"
)

// RSI computes the Wilder-smoothed relative strength index series.
// The first defined value sits at index period; earlier positions are undefined.
func RSI(closes []float64, period int) []float64 {
	if period < 2 || len(closes) <= period {
		return undefinedSeries(len(closes))
	}
	in := make([]float64, len(closes))
	copy(in, closes)
	return mask(talib.Rsi(in, period), period)
}

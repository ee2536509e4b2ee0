package calculator

import (
	"github.com/markcheno/go-talib"
)

// SMA computes the simple moving average series of values.
// Positions before period-1 are undefined.
func SMA(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return undefinedSeries(len(values))
	}
	in := make([]float64, len(values))
	copy(in, values)
	return mask(talib.Sma(in, period), period-1)
}

// EMA computes the exponential moving average series with alpha = 2/(period+1).
// The value at period-1 is seeded with the simple average of the first period
// values; earlier positions are undefined. An undefined input poisons every
// later output.
func EMA(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return undefinedSeries(len(values))
	}
	in := make([]float64, len(values))
	copy(in, values)
	return mask(talib.Ema(in, period), period-1)
}

package calculator

import (
	"github.com/markcheno/go-talib"

	"TradeSentinel/internal/model"
)

// TrueRange computes max(high-low, |high-prevClose|, |low-prevClose|) per bar.
// The first bar has no previous close and uses high-low. An undefined high,
// low or previous close makes that bar's range undefined.
func TrueRange(bars []model.Bar) []float64 {
	if len(bars) == 0 {
		return []float64{}
	}
	tr := talib.TRange(model.Highs(bars), model.Lows(bars), model.Closes(bars))
	tr[0] = bars[0].High - bars[0].Low
	for i, b := range bars {
		if !Defined(b.High, b.Low) || (i > 0 && !Defined(bars[i-1].Close)) {
			tr[i] = Undefined()
		}
	}
	return tr
}

// ATR computes the Wilder-smoothed average true range.
// The value at period-1 is the mean of the first period true ranges; after
// that atr[i] = atr[i-1]*(period-1)/period + tr[i]/period.
func ATR(bars []model.Bar, period int) []float64 {
	n := len(bars)
	if period <= 0 || n < period {
		return undefinedSeries(n)
	}
	tr := TrueRange(bars)
	out := undefinedSeries(n)

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += tr[i]
	}
	p := float64(period)
	prev := sum / p
	out[period-1] = prev
	for i := period; i < n; i++ {
		prev = prev*(p-1)/p + tr[i]/p
		out[i] = prev
	}
	return out
}

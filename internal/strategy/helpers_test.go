package strategy

import (
	"math"
	"time"

	"TradeSentinel/internal/model"
)

const day0 = 1704722400 // 2024-01-08 14:00 UTC

func approx(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func flatBars(n int, o, h, l, c float64, vol int64) []model.Bar {
	bars := make([]model.Bar, n)
	for i := range bars {
		bars[i] = model.Bar{Time: int64(day0 + i*86400), Open: o, High: h, Low: l, Close: c, Volume: vol}
	}
	return bars
}

// linearBars rises (step > 0) or falls by step per bar with a fixed 2-point range.
func linearBars(n int, start, step float64) []model.Bar {
	bars := make([]model.Bar, n)
	for i := range bars {
		c := start + step*float64(i)
		bars[i] = model.Bar{Time: int64(day0 + i*86400), Open: c - step/2, High: c + 1, Low: c - 1, Close: c, Volume: 1000}
	}
	return bars
}

// wavyBars drifts upward with oscillation and uneven ranges.
func wavyBars(n int) []model.Bar {
	bars := make([]model.Bar, n)
	for i := range bars {
		c := 100 + float64(i)*0.5 + 3*math.Sin(float64(i)/3)
		spread := 1 + float64(i%7)*0.4
		bars[i] = model.Bar{
			Time:   int64(day0 + i*86400),
			Open:   c - 0.2,
			High:   c + spread,
			Low:    c - spread,
			Close:  c,
			Volume: int64(1000 + 37*(i%11)),
		}
	}
	return bars
}

func barDate(b model.Bar) time.Time { return time.Unix(b.Time, 0).UTC() }

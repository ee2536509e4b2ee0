package collector

import (
	"context"
	"sort"

	"TradeSentinel/internal/model"
)

// Fetcher defines the interface for fetching daily bars from a quote source.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.Bar, error)
	Name() string
}

// normalize drops empty (holiday) rows, sorts ascending by time and keeps
// the last bar for a repeated timestamp.
func normalize(bars []model.Bar) []model.Bar {
	out := bars[:0]
	for _, b := range bars {
		if b.Open == 0 && b.High == 0 && b.Low == 0 && b.Close == 0 {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })

	dedup := out[:0]
	for _, b := range out {
		if n := len(dedup); n > 0 && dedup[n-1].Time == b.Time {
			dedup[n-1] = b
			continue
		}
		dedup = append(dedup, b)
	}
	return dedup
}

// tail keeps at most the last n bars.
func tail(bars []model.Bar, n int) []model.Bar {
	if n > 0 && len(bars) > n {
		return bars[len(bars)-n:]
	}
	return bars
}

package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"TradeSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Bars  map[string][]model.Bar // per-symbol override
	Err   error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol string, days int) ([]model.Bar, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if bars, ok := m.Bars[symbol]; ok {
		return tail(bars, days), nil
	}
	return generateMockBars(m.Price, days, time.Now()), nil
}

// generateMockBars drifts gently upward from basePrice, one bar per day ending yesterday.
func generateMockBars(basePrice float64, count int, now time.Time) []model.Bar {
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.Bar{
			Time:   now.AddDate(0, 0, -(count - i)).Unix(),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector fetches daily history for tracked symbols, throttled across calls.
type Collector struct {
	Fetcher     Fetcher
	HistoryDays int
	limiter     *rate.Limiter
	logger      zerolog.Logger
}

// NewCollector creates a new Collector. A non-positive rps disables throttling.
func NewCollector(fetcher Fetcher, historyDays int, rps float64, logger zerolog.Logger) *Collector {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Collector{
		Fetcher:     fetcher,
		HistoryDays: historyDays,
		limiter:     rate.NewLimiter(limit, 1),
		logger:      logger.With().Str("component", "collector").Str("source", fetcher.Name()).Logger(),
	}
}

// Collect fetches the configured history for symbol.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.PriceSeries, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	start := time.Now()
	bars, err := c.Fetcher.FetchDailyBars(ctx, symbol, c.HistoryDays)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars for %s", symbol)
	}
	if len(bars) < c.HistoryDays {
		c.logger.Warn().
			Str("symbol", symbol).
			Int("bars", len(bars)).
			Int("requested", c.HistoryDays).
			Msg("short history")
	}
	c.logger.Debug().
		Str("symbol", symbol).
		Int("bars", len(bars)).
		Dur("took", time.Since(start)).
		Msg("collected")
	return &model.PriceSeries{Symbol: symbol, Bars: bars, FetchedAt: time.Now()}, nil
}

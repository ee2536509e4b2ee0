// Package monitor classifies the health of an open trade from the bars since entry.
package monitor

import (
	"fmt"

	"go.uber.org/multierr"

	"TradeSentinel/internal/calculator"
	"TradeSentinel/internal/model"
)

// Config holds the hand-tuned volume thresholds of the monitor.
type Config struct {
	DryRatio           float64 `yaml:"dry_ratio"`           // latest volume below DryRatio x average is "drying up"
	PanicRatio         float64 `yaml:"panic_ratio"`         // latest volume below PanicRatio x average is a spike-down
	VolumeLookback     int     `yaml:"volume_lookback"`     // bars averaged before the latest one
	DivergenceLookback int     `yaml:"divergence_lookback"` // bars between the compared price/OBV points
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		DryRatio:           0.6,
		PanicRatio:         0.4,
		VolumeLookback:     5,
		DivergenceLookback: 5,
	}
}

// Validate reports every invalid threshold. The spike-down ratio must sit
// below the drying ratio.
func (c Config) Validate() error {
	var err error
	if c.DryRatio <= 0 {
		err = multierr.Append(err, fmt.Errorf("dry_ratio must be > 0, got %v", c.DryRatio))
	}
	if c.PanicRatio <= 0 {
		err = multierr.Append(err, fmt.Errorf("panic_ratio must be > 0, got %v", c.PanicRatio))
	}
	if c.DryRatio > 0 && c.PanicRatio >= c.DryRatio {
		err = multierr.Append(err, fmt.Errorf("panic_ratio (%v) must be below dry_ratio (%v)", c.PanicRatio, c.DryRatio))
	}
	if c.VolumeLookback < 1 {
		err = multierr.Append(err, fmt.Errorf("volume_lookback must be >= 1, got %d", c.VolumeLookback))
	}
	if c.DivergenceLookback < 1 {
		err = multierr.Append(err, fmt.Errorf("divergence_lookback must be >= 1, got %d", c.DivergenceLookback))
	}
	return err
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.DryRatio <= 0 {
		c.DryRatio = d.DryRatio
	}
	if c.PanicRatio <= 0 {
		c.PanicRatio = d.PanicRatio
	}
	if c.VolumeLookback <= 0 {
		c.VolumeLookback = d.VolumeLookback
	}
	if c.DivergenceLookback <= 0 {
		c.DivergenceLookback = d.DivergenceLookback
	}
	return c
}

// Evaluate classifies the sub-series of bars from entry to present.
// It returns nil when fewer than two bars are supplied.
//
// Priority: failure, continuation, sideways, neutral. First match wins.
func Evaluate(bars []model.Bar, cfg Config) *model.MonitorResult {
	n := len(bars)
	if n < 2 {
		return nil
	}
	cfg = cfg.withDefaults()

	closes := model.Closes(bars)
	volumes := model.Volumes(bars)
	obv := calculator.OBV(closes, volumes)

	last, prev := bars[n-1], bars[n-2]

	cont, continuation := checkContinuation(last, prev)
	fail, failure := checkFailure(bars, closes, obv, cfg.DivergenceLookback)
	side, sideways := checkSideways(volumes, cfg)

	res := &model.MonitorResult{
		Continuation: cont,
		Failure:      fail,
		Sideways:     side,
	}
	switch {
	case failure:
		res.State = model.MonitorTrendFailure
	case continuation:
		res.State = model.MonitorTrendContinuation
	case sideways:
		res.State = model.MonitorSidewaysConsolidation
	default:
		res.State = model.MonitorNeutralWait
	}
	return res
}

func checkContinuation(last, prev model.Bar) (map[string]any, bool) {
	higherLow := last.Low > prev.Low
	green := last.Green()
	volumeRising := last.Volume > prev.Volume
	ok := higherLow && green && volumeRising
	return map[string]any{
		"higher_low":    higherLow,
		"green_close":   green,
		"volume_rising": volumeRising,
		"triggered":     ok,
	}, ok
}

func checkFailure(bars []model.Bar, closes, obv []float64, lookback int) (map[string]any, bool) {
	n := len(bars)
	last, prev := bars[n-1], bars[n-2]

	priceDownVolumeUp := last.Close < prev.Close && last.Volume > prev.Volume

	from := n - 1 - lookback
	if from < 0 {
		from = 0
	}
	priceChange := closes[n-1] - closes[from]
	obvChange := obv[n-1] - obv[from]
	divergence := calculator.Defined(priceChange, obvChange) && priceChange >= 0 && obvChange < 0

	breaksLow := last.Close < prev.Low

	ok := priceDownVolumeUp || divergence || breaksLow
	return map[string]any{
		"price_down_volume_up": priceDownVolumeUp,
		"obv_divergence":       divergence,
		"breaks_prior_low":     breaksLow,
		"obv":                  obv[n-1],
		"obv_change":           obvChange,
		"triggered":            ok,
	}, ok
}

func checkSideways(volumes []float64, cfg Config) (map[string]any, bool) {
	n := len(volumes)
	latest := volumes[n-1]

	from := n - 1 - cfg.VolumeLookback
	if from < 0 {
		from = 0
	}
	sum := 0.0
	for _, v := range volumes[from : n-1] {
		sum += v
	}
	avg := sum / float64(n-1-from)

	ratio := 0.0
	if avg > 0 {
		ratio = latest / avg
	}
	drying := avg > 0 && latest < cfg.DryRatio*avg
	spikeDown := avg > 0 && latest < cfg.PanicRatio*avg
	ok := drying && !spikeDown
	return map[string]any{
		"volume_drying":  drying,
		"panic_volume":   spikeDown,
		"volume_ratio":   ratio,
		"average_volume": avg,
		"triggered":      ok,
	}, ok
}

package strategy

import (
	"fmt"

	"TradeSentinel/internal/calculator"
	"TradeSentinel/internal/model"
)

// Entry advisory constants.
const (
	bandBelowATR       = 0.5
	bandAboveATR       = 0.2
	breakoutLookback   = 20
	volumeLookback     = 20
	volumeConfirmRatio = 1.2
	longMAPeriod       = 200
	rangeLookback      = 60
)

// Advisory reasons.
const (
	ReasonWeakTrend      = "weak trend"
	ReasonLowVolume      = "volume below average"
	ReasonChasing        = "chasing"
	ReasonTooFarBelow    = "too far below"
	ReasonGoodEntryZone  = "good entry zone"
	ReasonBreakoutInBand = "breakout in entry zone"
	ReasonOutsideZone    = "acceptable (outside optimal zone)"
	ReasonNoIndicators   = "indicators unavailable"
)

// AnalyzerConfig selects the trend-scoring policy of an Analyzer.
type AnalyzerConfig struct {
	Scorer   string `yaml:"scorer"`
	Lookback int    `yaml:"lookback"`
}

// Analyzer produces TrendAnalysisResults with the configured scorer.
type Analyzer struct {
	scorer TrendScorer
}

// NewAnalyzer builds an Analyzer for cfg.
func NewAnalyzer(cfg AnalyzerConfig) (*Analyzer, error) {
	sc, err := NewScorer(cfg.Scorer, cfg.Lookback)
	if err != nil {
		return nil, err
	}
	return &Analyzer{scorer: sc}, nil
}

// Analyze scores the trend at the last bar and runs the entry advisory.
func (a *Analyzer) Analyze(bars []model.Bar) model.TrendAnalysisResult {
	ts := a.scorer.Score(bars)
	closes := model.Closes(bars)
	ema20 := calculator.Last(calculator.EMA(closes, 20))
	ema50 := calculator.Last(calculator.EMA(closes, 50))
	atr := calculator.Last(calculator.ATR(bars, 14))
	sma200 := calculator.Last(calculator.SMA(closes, longMAPeriod))
	high, low := calculator.RollingRange(model.Highs(bars), model.Lows(bars), len(bars)-1, rangeLookback)

	adv := AdviseEntry(bars, ts.Score, ema20, atr)
	return model.TrendAnalysisResult{
		Scorer:           a.scorer.Name(),
		TrendScore:       ts.Score,
		Trend:            ts.Label,
		ATR:              atr,
		EMA20:            ema20,
		EMA50:            ema50,
		SMA200:           sma200,
		RangeHigh:        high,
		RangeLow:         low,
		RangePosition:    calculator.RangePosition(calculator.Last(closes), high, low),
		EntryMin:         adv.EntryMin,
		EntryMax:         adv.EntryMax,
		Advisory:         adv.Reason,
		CanEnter:         adv.CanEnter,
		VolumeConfirmed:  adv.VolumeConfirmed,
		BreakoutDetected: adv.Breakout,
		Structure:        ts.Structure,
		Notes:            ts.Notes,
	}
}

// EntryAdvice is the outcome of the entry-safety advisory.
type EntryAdvice struct {
	CanEnter        bool
	Reason          string
	EntryMin        float64
	EntryMax        float64
	Breakout        bool
	VolumeConfirmed bool
}

// AdviseEntry decides whether the last close is a safe entry given the trend
// score and the latest EMA20 and ATR. Rules are checked in order, first match
// wins. Undefined indicators reject.
func AdviseEntry(bars []model.Bar, score int, ema20, atr float64) EntryAdvice {
	adv := EntryAdvice{
		EntryMin: calculator.Undefined(),
		EntryMax: calculator.Undefined(),
	}
	n := len(bars)
	if n == 0 {
		adv.Reason = ReasonNoIndicators
		return adv
	}
	closes := model.Closes(bars)
	vols := model.Volumes(bars)
	last := n - 1
	price := closes[last]

	if calculator.Defined(ema20, atr) {
		adv.EntryMin = ema20 - bandBelowATR*atr
		adv.EntryMax = ema20 + bandAboveATR*atr
	}
	if prior := calculator.RollingHighestClose(closes, last-1, breakoutLookback); calculator.Defined(prior) {
		adv.Breakout = price > prior
	}
	if avg := calculator.RollingAvgVolume(vols, last, volumeLookback); calculator.Defined(avg) {
		adv.VolumeConfirmed = vols[last] >= volumeConfirmRatio*avg
	}

	switch {
	case score < 1:
		adv.Reason = ReasonWeakTrend
	case !adv.VolumeConfirmed:
		adv.Reason = ReasonLowVolume
	case !calculator.Defined(adv.EntryMin, adv.EntryMax, price):
		adv.Reason = ReasonNoIndicators
	case price > adv.EntryMax+atr:
		adv.Reason = fmt.Sprintf("%s: %.2f above %.2f", ReasonChasing, price, adv.EntryMax+atr)
	case price < adv.EntryMin-atr:
		adv.Reason = fmt.Sprintf("%s: %.2f under %.2f", ReasonTooFarBelow, price, adv.EntryMin-atr)
	case price >= adv.EntryMin && price <= adv.EntryMax:
		adv.CanEnter = true
		if adv.Breakout {
			adv.Reason = ReasonBreakoutInBand
		} else {
			adv.Reason = ReasonGoodEntryZone
		}
	default:
		adv.CanEnter = true
		adv.Reason = ReasonOutsideZone
	}
	return adv
}

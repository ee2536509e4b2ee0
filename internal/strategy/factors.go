package strategy

import (
	"fmt"
	"math"

	"TradeSentinel/internal/calculator"
	"TradeSentinel/internal/model"
)

// Factor is one weighted component of the weighted trend score.
type Factor struct {
	Name       string
	RawScore   float64 // -2..+2
	Weight     float64
	Weighted   float64
	Commentary string
}

func unavailable(name string, weight float64) Factor {
	return Factor{Name: name, Weight: weight, Commentary: "n/a"}
}

func factor(name string, raw, weight float64, commentary string) Factor {
	return Factor{Name: name, RawScore: raw, Weight: weight, Weighted: raw * weight, Commentary: commentary}
}

// WeightedScorer penalises chasing extended moves (FOMO) and catching
// falling knives. It is calibrated independently of StructureScorer.
type WeightedScorer struct {
	Lookback int // swing-structure window reported alongside, 14 when zero
}

func (s *WeightedScorer) Name() string { return ScorerWeighted }

// Score implements TrendScorer.
func (s *WeightedScorer) Score(bars []model.Bar) TrendScore {
	lookback := s.Lookback
	if lookback <= 0 {
		lookback = 14
	}
	factors := WeightedFactors(bars)
	total := 0.0
	notes := make([]string, 0, len(factors))
	for _, f := range factors {
		total += f.Weighted
		notes = append(notes, fmt.Sprintf("%s %+.1f (%s)", f.Name, f.RawScore, f.Commentary))
	}
	score := int(math.Round(total * 2.5))
	if score > 5 {
		score = 5
	}
	if score < -5 {
		score = -5
	}
	return TrendScore{
		Score:     score,
		Label:     weightedLabel(score),
		Structure: StructureSignals(bars, lookback),
		Notes:     notes,
	}
}

func weightedLabel(score int) model.TrendLabel {
	switch {
	case score >= 2:
		return model.TrendUp
	case score <= -2:
		return model.TrendDown
	default:
		return model.TrendSideways
	}
}

// WeightedFactors computes the five factors at the last bar.
func WeightedFactors(bars []model.Bar) []Factor {
	n := len(bars)
	if n == 0 {
		return []Factor{
			unavailable("extension", 0.30),
			unavailable("rsi14", 0.25),
			unavailable("ema20_slope", 0.20),
			unavailable("falling_knife", 0.15),
			unavailable("volume", 0.10),
		}
	}
	closes := model.Closes(bars)
	ema20 := calculator.EMA(closes, 20)
	ema50 := calculator.EMA(closes, 50)
	atr := calculator.Last(calculator.ATR(bars, 14))
	rsi := calculator.Last(calculator.RSI(closes, 14))
	last := n - 1

	back := last - 3
	if back < 0 {
		back = 0
	}
	return []Factor{
		scoreExtension(closes[last], ema20[last], atr),
		scoreRSI(rsi),
		scoreSlope(ema20[last], ema20[back], atr),
		scoreFallingKnife(closes, ema50[last]),
		scoreVolume(bars),
	}
}

// scoreExtension scores the distance of close above EMA20 in ATR units.
// Weight: 0.30
func scoreExtension(price, ema20, atr float64) Factor {
	const name, weight = "extension", 0.30
	if !calculator.Defined(price, ema20, atr) || atr <= 0 {
		return unavailable(name, weight)
	}
	ext := (price - ema20) / atr

	var score float64
	switch {
	case ext < -1:
		score = -2
	case ext < 0:
		score = -1
	case ext <= 1:
		score = 2
	case ext <= 2:
		score = 1
	case ext <= 3:
		score = 0
	default:
		score = -1 // chasing
	}
	return factor(name, score, weight, fmt.Sprintf("%+.1f ATR from EMA20", ext))
}

// scoreRSI scores momentum from RSI(14), penalising overbought readings.
// Weight: 0.25
func scoreRSI(rsi float64) Factor {
	const name, weight = "rsi14", 0.25
	if !calculator.Defined(rsi) {
		return unavailable(name, weight)
	}
	var score float64
	switch {
	case rsi < 30:
		score = -2
	case rsi < 45:
		score = -1
	case rsi < 55:
		score = 0
	case rsi <= 70:
		score = 2
	case rsi <= 80:
		score = 1
	default:
		score = -1
	}
	return factor(name, score, weight, fmt.Sprintf("RSI=%.0f", rsi))
}

// scoreSlope scores the 3-bar EMA20 change in ATR units.
// Weight: 0.20
func scoreSlope(now, before, atr float64) Factor {
	const name, weight = "ema20_slope", 0.20
	if !calculator.Defined(now, before, atr) || atr <= 0 {
		return unavailable(name, weight)
	}
	slope := (now - before) / atr

	var score float64
	switch {
	case slope <= -0.5:
		score = -2
	case slope < 0:
		score = -1
	case slope <= 0.1:
		score = 0
	case slope <= 0.5:
		score = 1
	default:
		score = 2
	}
	return factor(name, score, weight, fmt.Sprintf("slope %+.2f ATR", slope))
}

// scoreFallingKnife counts consecutive lower closes ending at the last bar.
// A run below EMA50 is a falling knife.
// Weight: 0.15
func scoreFallingKnife(closes []float64, ema50 float64) Factor {
	const name, weight = "falling_knife", 0.15
	last := len(closes) - 1
	price := closes[last]
	if !calculator.Defined(price, ema50) {
		return unavailable(name, weight)
	}
	run := 0
	for i := last; i > 0 && closes[i] < closes[i-1]; i-- {
		run++
	}

	var score float64
	below := price < ema50
	switch {
	case below && run >= 4:
		score = -2
	case below && run >= 2:
		score = -1
	case below:
		score = 0
	case run >= 3:
		score = 0
	default:
		score = 1
	}
	return factor(name, score, weight, fmt.Sprintf("%d lower closes, below EMA50=%t", run, below))
}

// scoreVolume scores the latest bar's volume against its 20-bar average,
// signed by the direction of the close.
// Weight: 0.10
func scoreVolume(bars []model.Bar) Factor {
	const name, weight = "volume", 0.10
	n := len(bars)
	if n < 2 {
		return unavailable(name, weight)
	}
	vols := model.Volumes(bars)
	avg := calculator.RollingAvgVolume(vols, n-1, 20)
	if !calculator.Defined(avg) || avg <= 0 {
		return unavailable(name, weight)
	}
	ratio := vols[n-1] / avg
	up := bars[n-1].Close > bars[n-2].Close

	var score float64
	switch {
	case up && ratio >= 1.2:
		score = 2
	case up && ratio >= 1:
		score = 1
	case !up && ratio >= 1.2:
		score = -2
	case !up && ratio >= 1:
		score = -1
	default:
		score = 0
	}
	return factor(name, score, weight, fmt.Sprintf("%.2fx average, up=%t", ratio, up))
}

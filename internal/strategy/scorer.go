package strategy

import (
	"errors"
	"fmt"

	"TradeSentinel/internal/calculator"
	"TradeSentinel/internal/model"
)

// Scorer names accepted by NewScorer.
const (
	ScorerStructure = "structure"
	ScorerWeighted  = "weighted"
)

// ErrUnknownScorer is returned for an unrecognised scorer name.
var ErrUnknownScorer = errors.New("unknown trend scorer")

// TrendScore is the output of a TrendScorer.
type TrendScore struct {
	Score     int
	Label     model.TrendLabel
	Structure model.StructureSignals
	Notes     []string
}

// TrendScorer is one trend-scoring policy. Policies are independent and carry
// their own calibration.
type TrendScorer interface {
	Name() string
	Score(bars []model.Bar) TrendScore
}

// NewScorer builds the named scoring policy.
func NewScorer(name string, lookback int) (TrendScorer, error) {
	switch name {
	case "", ScorerStructure:
		return &StructureScorer{Lookback: lookback}, nil
	case ScorerWeighted:
		return &WeightedScorer{Lookback: lookback}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScorer, name)
	}
}

// StructureScorer is the additive structure + EMA integer score.
type StructureScorer struct {
	Lookback int // swing-structure window, 14 when zero
}

func (s *StructureScorer) Name() string { return ScorerStructure }

func (s *StructureScorer) lookback() int {
	if s.Lookback <= 0 {
		return 14
	}
	return s.Lookback
}

// Score implements TrendScorer.
func (s *StructureScorer) Score(bars []model.Bar) TrendScore {
	score, structure, notes := calcTrendScore(bars, s.lookback())
	return TrendScore{
		Score:     score,
		Label:     LabelForScore(score),
		Structure: structure,
		Notes:     notes,
	}
}

// CalcTrendScore returns the structure + EMA trend score, bounded to [-5, +5]
// when EMA20 and EMA50 are both defined at the last bar and to [-2, +2] otherwise.
func CalcTrendScore(bars []model.Bar, lookback int) int {
	score, _, _ := calcTrendScore(bars, lookback)
	return score
}

func calcTrendScore(bars []model.Bar, lookback int) (int, model.StructureSignals, []string) {
	st := StructureSignals(bars, lookback)
	var notes []string
	score := 0
	if st.HH {
		score++
		notes = append(notes, "higher highs")
	}
	if st.HL {
		score++
		notes = append(notes, "higher lows")
	}
	if st.LH {
		score--
		notes = append(notes, "lower highs")
	}
	if st.LL {
		score--
		notes = append(notes, "lower lows")
	}

	n := len(bars)
	if n == 0 {
		return score, st, notes
	}
	closes := model.Closes(bars)
	ema20 := calculator.EMA(closes, 20)
	ema50 := calculator.EMA(closes, 50)
	last := n - 1
	e20, e50 := ema20[last], ema50[last]
	if !calculator.Defined(e20, e50) {
		notes = append(notes, "EMA20/EMA50 unavailable, structure only")
		return score, st, notes
	}

	if closes[last] > e20 {
		score++
		notes = append(notes, "close above EMA20")
	} else {
		score--
		notes = append(notes, "close below EMA20")
	}
	if e20 > e50 {
		score++
		notes = append(notes, "EMA20 above EMA50")
	} else {
		score--
		notes = append(notes, "EMA20 below EMA50")
	}
	back := last - 3
	if back < 0 {
		back = 0
	}
	if e20 > ema20[back] {
		score++
		notes = append(notes, "EMA20 rising")
	} else {
		score--
		notes = append(notes, "EMA20 flat or falling")
	}
	return score, st, notes
}

// LabelForScore maps a structure score to a trend label.
func LabelForScore(score int) model.TrendLabel {
	switch {
	case score >= 3:
		return model.TrendUp
	case score <= -3:
		return model.TrendDown
	default:
		return model.TrendSideways
	}
}

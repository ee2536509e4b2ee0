package strategy

import (
	"fmt"
	"math"

	"TradeSentinel/internal/calculator"
	"TradeSentinel/internal/model"
	"TradeSentinel/internal/monitor"
)

const trailingLookback = 60

// ATRStop prices an initial stop k1 ATRs under the entry reference and a
// trailing stop k2 ATRs under the highest close since entry.
type ATRStop struct {
	Period             int
	InitialMultiplier  float64
	TrailingMultiplier float64
	DateMatch          DateMatch
	Reference          ReferenceSelector
	Scorer             TrendScorer
	Monitor            monitor.Config
}

func (s *ATRStop) Name() string { return KindATR }

func (s *ATRStop) reference() ReferenceSelector {
	if s.Reference == nil {
		return DefaultTradingHours()
	}
	return s.Reference
}

func (s *ATRStop) scorer() TrendScorer {
	if s.Scorer == nil {
		return &StructureScorer{}
	}
	return s.Scorer
}

// CalculateStop implements Strategy.
func (s *ATRStop) CalculateStop(bars []model.Bar, entry *model.Entry) model.StrategyResult {
	res := model.StrategyResult{Strategy: KindATR}
	n := len(bars)
	res.Trace.Add("bars", n)
	if n < s.Period+1 {
		return insufficient(res, fmt.Sprintf("need at least %d bars for ATR(%d), have %d", s.Period+1, s.Period, n))
	}

	closes := model.Closes(bars)
	atr := calculator.ATR(bars, s.Period)
	last := n - 1
	latestATR := atr[last]
	res.Trace.Add("atr_period", s.Period)
	res.Trace.Add("atr_latest", latestATR)
	if !calculator.Defined(latestATR) {
		return insufficient(res, "latest ATR undefined")
	}

	// Entry reference.
	entryIdx := -1
	if entry.HasDate() {
		entryIdx = FindEntryIndex(bars, entry.Date, s.DateMatch)
		res.Trace.Add("entry_date", entry.Date.Format("2006-01-02"))
		if entryIdx < 0 {
			res.Trace.Note("entry date not found in history")
		} else {
			res.Trace.Add("entry_index", entryIdx)
		}
	}
	var ref float64
	switch {
	case entry.HasPrice():
		ref = *entry.Price
		res.Trace.Add("reference", "entry price")
	case entryIdx >= 0:
		ref = closes[entryIdx]
		res.Trace.Add("reference", "entry date close")
	default:
		idx := s.reference().Select(bars)
		ref = closes[idx]
		res.Trace.Add("reference", "reference bar close")
		res.Trace.Add("reference_index", idx)
	}
	res.Trace.Add("reference_price", ref)
	if !calculator.Defined(ref) {
		return insufficient(res, "entry reference undefined")
	}
	hasEntry := entry.HasPrice() || entryIdx >= 0

	entryATR := latestATR
	if entryIdx >= 0 {
		if a := atr[entryIdx]; calculator.Defined(a) {
			entryATR = a
		} else {
			res.Trace.Note("ATR undefined at entry bar, using latest ATR")
		}
	}
	res.Trace.Add("atr_entry", entryATR)

	// Initial stop.
	initial := ref - s.InitialMultiplier*entryATR
	res.StopPrice = initial
	res.Trace.Add("initial_stop", fmt.Sprintf("%.4f - %.2f x %.4f = %.4f", ref, s.InitialMultiplier, entryATR, initial))

	// Trailing stop.
	trailing := s.trailing(closes, atr, entryIdx, entryATR, &res.Trace)
	if calculator.Defined(trailing) {
		if trailing < initial {
			res.Trace.Note("trailing stop floored at initial stop")
			trailing = initial
		}
		res.TrailingStop = &trailing
		res.Trace.Add("trailing_stop", trailing)
	}

	if !hasEntry {
		ts := s.scorer().Score(bars)
		ema20 := calculator.Last(calculator.EMA(closes, keyEMAPeriod))
		adv := AdviseEntry(bars, ts.Score, ema20, latestATR)
		res.CanEnter = adv.CanEnter
		res.EntryReason = adv.Reason
		res.BreakoutDetected = adv.Breakout
		res.Trace.Add("trend_score", ts.Score)
		res.Trace.Add("entry_band", fmt.Sprintf("[%.4f, %.4f]", adv.EntryMin, adv.EntryMax))
		res.Trace.Add("volume_confirmed", adv.VolumeConfirmed)
		res.Trace.Add("can_enter", adv.CanEnter)
		res.Trace.Add("entry_reason", adv.Reason)
		return res
	}

	if entryIdx >= 0 {
		if entry.HasPrice() {
			pa := ClassifyPostEntry(bars, entryIdx, ref, latestATR)
			res.PostEntry = &pa
			res.Trace.Add("days_held", pa.DaysHeld)
			res.Trace.Add("trade_state", string(pa.State))
			res.Trace.Add("lifecycle", pa.Note)
		}
		if mon := monitor.Evaluate(bars[entryIdx:], s.Monitor); mon != nil {
			res.Monitor = mon
			res.Trace.Add("monitor_state", string(mon.State))
		}
	}

	// Profit management.
	plan := ManageProfit(ref, initial, closes[last])
	if plan.Valid {
		res.MoveToBreakeven = plan.MoveToBreakeven
		res.PartialProfitTarget = plan.PartialProfitTarget
		res.Trace.Add("r_multiple", plan.RMultiple)
		if plan.MoveToBreakeven {
			res.Trace.Note(fmt.Sprintf("gain reached 1R: move stop to breakeven %.4f", ref))
		}
		if plan.PartialProfitTarget != nil {
			res.Trace.Add("partial_profit_target", *plan.PartialProfitTarget)
		}
	}
	return res
}

// trailing returns the raw trailing stop. With a known entry bar it is the
// running maximum of HC(entry..j) - k2*min(ATR_entry, ATR_j) over every bar j
// since entry, so appending bars never lowers it. Without one it uses the
// rolling 60-bar highest close.
func (s *ATRStop) trailing(closes, atr []float64, entryIdx int, entryATR float64, tr *model.Trace) float64 {
	k2 := s.TrailingMultiplier
	last := len(closes) - 1
	if entryIdx < 0 {
		hc := calculator.RollingHighestClose(closes, last, trailingLookback)
		a := math.Min(entryATR, atr[last])
		tr.Add("highest_close_60", hc)
		tr.Add("trailing_raw", fmt.Sprintf("%.4f - %.2f x %.4f", hc, k2, a))
		return hc - k2*a
	}

	best := calculator.Undefined()
	hc := math.Inf(-1)
	for j := entryIdx; j <= last; j++ {
		if calculator.IsUndefined(closes[j]) {
			return calculator.Undefined()
		}
		hc = math.Max(hc, closes[j])
		a := entryATR
		if calculator.Defined(atr[j]) {
			a = math.Min(entryATR, atr[j])
		}
		if c := hc - k2*a; calculator.IsUndefined(best) || c > best {
			best = c
		}
	}
	tr.Add("highest_close_since_entry", hc)
	tr.Add("trailing_raw_max_since_entry", best)
	return best
}

func insufficient(res model.StrategyResult, reason string) model.StrategyResult {
	res.InsufficientData = true
	res.StopPrice = 0
	res.TrailingStop = nil
	res.Trace.Note("insufficient data: " + reason)
	return res
}

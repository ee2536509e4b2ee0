package notifier

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"TradeSentinel/internal/calculator"
	"TradeSentinel/internal/model"
	"TradeSentinel/internal/position"
	"TradeSentinel/internal/recorder"
)

// Price renders a price at cent precision, "n/a" when undefined.
func Price(v float64) string {
	if calculator.IsUndefined(v) {
		return "n/a"
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

func pricePtr(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return Price(*v)
}

func formatValue(v any) string {
	switch x := v.(type) {
	case float64:
		if calculator.IsUndefined(x) {
			return "n/a"
		}
		return decimal.NewFromFloat(x).Round(4).String()
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// FormatTrace renders an evaluation trace as "label: value" lines.
func FormatTrace(trace model.Trace) string {
	var b strings.Builder
	for _, e := range trace {
		if e.Label == "note" {
			b.WriteString(fmt.Sprintf("• %s\n", html.EscapeString(formatValue(e.Value))))
			continue
		}
		b.WriteString(fmt.Sprintf("%s: %s\n", e.Label, html.EscapeString(formatValue(e.Value))))
	}
	return b.String()
}

// FormatEvaluation formats one symbol's trend analysis and stop evaluation.
func FormatEvaluation(symbol string, analysis model.TrendAnalysisResult, res model.StrategyResult, lastClose float64) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n\n", html.EscapeString(symbol), time.Now().Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Close: %s\n", Price(lastClose)))
	b.WriteString(fmt.Sprintf("Trend: %s (%+d, %s)\n", analysis.Trend, analysis.TrendScore, analysis.Scorer))
	b.WriteString(fmt.Sprintf("EMA20: %s | EMA50: %s | ATR: %s\n", Price(analysis.EMA20), Price(analysis.EMA50), Price(analysis.ATR)))
	if !calculator.IsUndefined(analysis.SMA200) {
		b.WriteString(fmt.Sprintf("SMA200: %s\n", Price(analysis.SMA200)))
	}
	if !calculator.IsUndefined(analysis.RangePosition) {
		b.WriteString(fmt.Sprintf("Range: %s – %s (%.0f%%)\n",
			Price(analysis.RangeLow), Price(analysis.RangeHigh), analysis.RangePosition*100))
	}
	st := analysis.Structure
	b.WriteString(fmt.Sprintf("Structure: HH=%t HL=%t LH=%t LL=%t\n\n", st.HH, st.HL, st.LH, st.LL))

	if res.InsufficientData {
		b.WriteString("⚠️ Not enough history for a stop\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("🛑 <b>Stop (%s):</b> %s\n", res.Strategy, Price(res.StopPrice)))
	if res.TrailingStop != nil {
		b.WriteString(fmt.Sprintf("   Trailing: %s\n", pricePtr(res.TrailingStop)))
	}

	if pa := res.PostEntry; pa != nil {
		b.WriteString(fmt.Sprintf("\n📈 <b>Position:</b> %s, day %d\n", pa.State, pa.DaysHeld))
		b.WriteString(fmt.Sprintf("   %s\n", html.EscapeString(pa.Note)))
	}
	if m := res.Monitor; m != nil {
		b.WriteString(fmt.Sprintf("   Monitor: %s\n", m.State))
	}
	if res.MoveToBreakeven {
		b.WriteString("   ✅ 1R reached: move stop to breakeven\n")
	}
	if res.PartialProfitTarget != nil {
		b.WriteString(fmt.Sprintf("   🎯 Partial profit at %s\n", pricePtr(res.PartialProfitTarget)))
	}

	if res.PostEntry == nil && res.EntryReason != "" {
		verdict := "❌ No entry"
		if res.CanEnter {
			verdict = "✅ Entry OK"
		}
		b.WriteString(fmt.Sprintf("\n%s: %s\n", verdict, html.EscapeString(res.EntryReason)))
		if calculator.Defined(analysis.EntryMin, analysis.EntryMax) {
			b.WriteString(fmt.Sprintf("   Zone: %s – %s\n", Price(analysis.EntryMin), Price(analysis.EntryMax)))
		}
		if res.BreakoutDetected {
			b.WriteString("   🚀 Breakout above 20-day high\n")
		}
	}
	return b.String()
}

var changeLabels = map[position.ChangeKind]string{
	position.ChangeStop:         "Stop",
	position.ChangeTrailing:     "Trailing stop",
	position.ChangeTradeState:   "Trade state",
	position.ChangeMonitorState: "Monitor",
	position.ChangeTrendScore:   "Trend score",
}

// FormatChanges formats the alert-worthy changes of one symbol.
func FormatChanges(symbol string, changes []position.Change) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔔 <b>%s</b> changed\n\n", html.EscapeString(symbol)))
	for _, c := range changes {
		label, ok := changeLabels[c.Kind]
		if !ok {
			label = string(c.Kind)
		}
		b.WriteString(fmt.Sprintf("%s: %s → %s\n", label, c.From, c.To))
	}
	return b.String()
}

// FormatPositions formats the position book for /status.
func FormatPositions(positions []model.Position) string {
	if len(positions) == 0 {
		return "📦 No tracked symbols. Use /watch SYMBOL or /open SYMBOL YYYY-MM-DD PRICE."
	}
	var b strings.Builder
	b.WriteString("📦 <b>Tracked symbols</b>\n\n")
	for _, p := range positions {
		if p.Open() {
			b.WriteString(fmt.Sprintf("<b>%s</b> entry %s @ %s\n", p.Symbol, p.EntryDate, Price(p.EntryPrice)))
		} else {
			b.WriteString(fmt.Sprintf("<b>%s</b> watching\n", p.Symbol))
		}
		if s := p.Last; s != nil {
			b.WriteString(fmt.Sprintf("   stop %s | trailing %s | score %+d", Price(s.Stop), pricePtr(s.Trailing), s.TrendScore))
			if s.TradeState != "" {
				b.WriteString(fmt.Sprintf(" | %s", s.TradeState))
			}
			if s.MonitorState != "" {
				b.WriteString(fmt.Sprintf(" | %s", s.MonitorState))
			}
			b.WriteString(fmt.Sprintf("\n   updated %s\n", s.EvaluatedAt.Format("2006-01-02 15:04")))
		}
	}
	return b.String()
}

// FormatHistory formats the latest recorded evaluations of a symbol.
func FormatHistory(symbol string, records []recorder.EvaluationRecord) string {
	if len(records) == 0 {
		return fmt.Sprintf("No history for %s", html.EscapeString(symbol))
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗂 <b>%s history</b>\n\n", html.EscapeString(symbol)))
	for _, r := range records {
		b.WriteString(fmt.Sprintf("%s close %s stop %s trailing %s score %+d\n",
			r.RecordedAt.Format("01-02 15:04"), Price(r.Close), Price(r.Stop), pricePtr(r.Trailing), r.TrendScore))
	}
	return b.String()
}

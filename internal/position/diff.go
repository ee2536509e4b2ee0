package position

import (
	"strconv"

	"github.com/shopspring/decimal"

	"TradeSentinel/internal/model"
)

// ChangeKind names what moved between two evaluations.
type ChangeKind string

const (
	ChangeStop         ChangeKind = "stop"
	ChangeTrailing     ChangeKind = "trailing_stop"
	ChangeTradeState   ChangeKind = "trade_state"
	ChangeMonitorState ChangeKind = "monitor_state"
	ChangeTrendScore   ChangeKind = "trend_score"
)

// ScoreAlertDelta is the trend-score move that is worth an alert.
const ScoreAlertDelta = 2

// Change is one alert-worthy difference between successive snapshots.
type Change struct {
	Kind ChangeKind `json:"kind"`
	From string     `json:"from"`
	To   string     `json:"to"`
}

func price(p *float64) string {
	if p == nil {
		return "-"
	}
	return decimal.NewFromFloat(*p).StringFixed(2)
}

// Diff compares a new snapshot with the previous one. A nil prev is a
// baseline and yields no changes. Prices compare at cent precision.
func Diff(prev *model.Snapshot, next model.Snapshot) []Change {
	if prev == nil {
		return nil
	}
	var changes []Change
	if from, to := price(&prev.Stop), price(&next.Stop); from != to {
		changes = append(changes, Change{Kind: ChangeStop, From: from, To: to})
	}
	if from, to := price(prev.Trailing), price(next.Trailing); from != to {
		changes = append(changes, Change{Kind: ChangeTrailing, From: from, To: to})
	}
	if prev.TradeState != next.TradeState {
		changes = append(changes, Change{Kind: ChangeTradeState, From: string(prev.TradeState), To: string(next.TradeState)})
	}
	if prev.MonitorState != next.MonitorState {
		changes = append(changes, Change{Kind: ChangeMonitorState, From: string(prev.MonitorState), To: string(next.MonitorState)})
	}
	if d := next.TrendScore - prev.TrendScore; d >= ScoreAlertDelta || d <= -ScoreAlertDelta {
		changes = append(changes, Change{
			Kind: ChangeTrendScore,
			From: strconv.Itoa(prev.TrendScore),
			To:   strconv.Itoa(next.TrendScore),
		})
	}
	return changes
}

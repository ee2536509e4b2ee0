package model

import "time"

// Snapshot is the subset of an evaluation kept for diffing against the next one.
type Snapshot struct {
	Stop         float64      `json:"stop"`
	Trailing     *float64     `json:"trailing,omitempty"`
	TradeState   TradeState   `json:"trade_state"`
	MonitorState MonitorState `json:"monitor_state,omitempty"`
	TrendScore   int          `json:"trend_score"`
	EvaluatedAt  time.Time    `json:"evaluated_at"`
}

// Position is a tracked symbol, with or without an open entry.
type Position struct {
	Symbol     string    `json:"symbol"`
	EntryDate  string    `json:"entry_date,omitempty"` // YYYY-MM-DD
	EntryPrice float64   `json:"entry_price,omitempty"`
	OpenedAt   time.Time `json:"opened_at,omitempty"`
	Last       *Snapshot `json:"last,omitempty"`
}

// Open reports whether the position carries an entry.
func (p Position) Open() bool { return p.EntryDate != "" && p.EntryPrice > 0 }

// BookState is the persisted position book.
type BookState struct {
	Positions map[string]*Position `json:"positions"`
	UpdatedAt time.Time            `json:"updated_at"`
}

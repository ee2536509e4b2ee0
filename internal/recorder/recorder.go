package recorder

import "time"

// EvaluationRecord is one stop evaluation of one symbol within a run.
type EvaluationRecord struct {
	RunID            string
	Symbol           string
	Strategy         string
	BarTime          int64 // time of the latest bar evaluated
	Close            float64
	Stop             float64
	Trailing         *float64
	TradeState       string
	MonitorState     string
	TrendScore       int
	Trend            string
	CanEnter         bool
	EntryReason      string
	InsufficientData bool
	Trace            string
	RecordedAt       time.Time
}

// PositionEvent records a change to the position book.
type PositionEvent struct {
	RunID     string
	Symbol    string
	EventType string // "OPEN", "CLOSE", "WATCH", "CHANGE"
	Kind      string
	From      string
	To        string
	Note      string
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordEvaluation(rec *EvaluationRecord) error
	RecordPositionEvent(evt *PositionEvent) error
	History(symbol string, limit int) ([]EvaluationRecord, error)
	Close() error
}

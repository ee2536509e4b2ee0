package model

// TradeState is the post-entry lifecycle label.
type TradeState string

const (
	StateNotEntered          TradeState = "notEntered"
	StateWaitingConfirmation TradeState = "waitingConfirmation"
	StateConfirmed           TradeState = "confirmed"
	StateFailed              TradeState = "failed"
)

// MonitorState is the qualitative post-entry health label of the monitor engine.
type MonitorState string

const (
	MonitorTrendContinuation     MonitorState = "trend_continuation"
	MonitorTrendFailure          MonitorState = "trend_failure"
	MonitorSidewaysConsolidation MonitorState = "sideways_consolidation"
	MonitorNeutralWait           MonitorState = "neutral_wait"
)

// TrendLabel is the coarse trend classification.
type TrendLabel string

const (
	TrendUp       TrendLabel = "uptrend"
	TrendDown     TrendLabel = "downtrend"
	TrendSideways TrendLabel = "sideways"
)

// TraceEntry is one labelled quantity of an evaluation's rationale.
// Value is a float64, int, bool or string.
type TraceEntry struct {
	Label string
	Value any
}

// Trace is the ordered audit trail of an evaluation. It is never parsed.
type Trace []TraceEntry

// Add appends a labelled value.
func (t *Trace) Add(label string, value any) {
	*t = append(*t, TraceEntry{Label: label, Value: value})
}

// Note appends a free-text line.
func (t *Trace) Note(text string) {
	*t = append(*t, TraceEntry{Label: "note", Value: text})
}

// PostEntryAnalysis is produced only when both entry date and entry price are supplied.
type PostEntryAnalysis struct {
	State           TradeState `json:"state"`
	DaysHeld        int        `json:"days_held"`
	StructureIntact bool       `json:"structure_intact"`
	AboveKeyEMA     bool       `json:"above_key_ema"`
	Note            string     `json:"note"`
}

// MonitorResult keeps the individual signals that justified State.
// Map values are bool or float64.
type MonitorResult struct {
	State        MonitorState   `json:"state"`
	Continuation map[string]any `json:"continuation"`
	Failure      map[string]any `json:"failure"`
	Sideways     map[string]any `json:"sideways"`
}

// StrategyResult is the output of one stop-pricing evaluation. Built fresh per call.
type StrategyResult struct {
	Strategy            string             `json:"strategy"`
	StopPrice           float64            `json:"stop_price"`
	TrailingStop        *float64           `json:"trailing_stop,omitempty"`
	Trace               Trace              `json:"-"`
	PostEntry           *PostEntryAnalysis `json:"post_entry,omitempty"`
	Monitor             *MonitorResult     `json:"monitor,omitempty"`
	CanEnter            bool               `json:"can_enter"`
	EntryReason         string             `json:"entry_reason"`
	BreakoutDetected    bool               `json:"breakout_detected"`
	MoveToBreakeven     bool               `json:"move_to_breakeven"`
	PartialProfitTarget *float64           `json:"partial_profit_target,omitempty"`
	InsufficientData    bool               `json:"insufficient_data"`
}

// StructureSignals holds the swing-structure flags.
type StructureSignals struct {
	HH bool `json:"HH"`
	HL bool `json:"HL"`
	LH bool `json:"LH"`
	LL bool `json:"LL"`
}

// Map returns the flags keyed by their short names.
func (s StructureSignals) Map() map[string]bool {
	return map[string]bool{"HH": s.HH, "HL": s.HL, "LH": s.LH, "LL": s.LL}
}

// TrendAnalysisResult is the output of the trend analyzer.
// Indicator fields are NaN when not available.
type TrendAnalysisResult struct {
	Scorer           string           `json:"scorer"`
	TrendScore       int              `json:"trend_score"`
	Trend            TrendLabel       `json:"trend"`
	ATR              float64          `json:"atr"`
	EMA20            float64          `json:"ema20"`
	EMA50            float64          `json:"ema50"`
	SMA200           float64          `json:"sma200"`
	RangeHigh        float64          `json:"range_high"`
	RangeLow         float64          `json:"range_low"`
	RangePosition    float64          `json:"range_position"` // 0..1 within [RangeLow, RangeHigh]
	EntryMin         float64          `json:"entry_min"`
	EntryMax         float64          `json:"entry_max"`
	Advisory         string           `json:"advisory"`
	CanEnter         bool             `json:"can_enter"`
	VolumeConfirmed  bool             `json:"volume_confirmed"`
	BreakoutDetected bool             `json:"breakout_detected"`
	Structure        StructureSignals `json:"structure"`
	Notes            []string         `json:"notes"`
}

package model

import "time"

// Bar represents a single trading period for one instrument.
// Time is unix seconds; bars of one instrument are ordered by Time ascending.
type Bar struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// Date returns the bar's calendar timestamp in loc (UTC when loc is nil).
func (b Bar) Date(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Unix(b.Time, 0).In(loc)
}

// Green reports whether the bar closed above its open.
func (b Bar) Green() bool { return b.Close > b.Open }

// PriceSeries holds raw price data fetched for analysis.
type PriceSeries struct {
	Symbol    string
	Bars      []Bar
	FetchedAt time.Time
}

// Entry is the caller-owned position context re-supplied on every evaluation.
// A zero Date means "no entry date"; a nil Price means "no explicit entry price".
type Entry struct {
	Date  time.Time
	Price *float64
}

// HasDate reports whether an entry date was supplied.
func (e *Entry) HasDate() bool { return e != nil && !e.Date.IsZero() }

// HasPrice reports whether an explicit entry price was supplied.
func (e *Entry) HasPrice() bool { return e != nil && e.Price != nil }

// NewEntry builds an Entry with both date and price set.
func NewEntry(date time.Time, price float64) *Entry {
	return &Entry{Date: date, Price: &price}
}

// Closes extracts the close column of bars.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Volumes extracts the volume column of bars as float64.
func Volumes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = float64(b.Volume)
	}
	return out
}

// Highs extracts the high column of bars.
func Highs(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.High
	}
	return out
}

// Lows extracts the low column of bars.
func Lows(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Low
	}
	return out
}

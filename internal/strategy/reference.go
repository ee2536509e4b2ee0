package strategy

import (
	"fmt"
	"time"

	"TradeSentinel/internal/model"
)

// ReferenceSelector picks the bar whose close stands in for the entry price
// when neither an explicit price nor a matching entry date is available.
type ReferenceSelector interface {
	Select(bars []model.Bar) int
}

// LatestBarSelector always picks the last bar.
type LatestBarSelector struct{}

func (LatestBarSelector) Select(bars []model.Bar) int { return len(bars) - 1 }

// TradingHoursSelector picks the second-to-last bar while the market session
// is open (its last bar is still forming) and the last bar otherwise.
type TradingHoursSelector struct {
	StartHour int // UTC, inclusive
	EndHour   int // UTC, exclusive
	Now       func() time.Time
}

// DefaultTradingHours is the US cash session in UTC.
func DefaultTradingHours() *TradingHoursSelector {
	return &TradingHoursSelector{StartHour: 13, EndHour: 22}
}

func (s *TradingHoursSelector) Select(bars []model.Bar) int {
	n := len(bars)
	if n < 2 {
		return n - 1
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	h := now().UTC().Hour()
	if h >= s.StartHour && h < s.EndHour {
		return n - 2
	}
	return n - 1
}

// DateMatch is the entry-date matching policy.
type DateMatch string

const (
	MatchExact     DateMatch = "exact"
	MatchOnOrAfter DateMatch = "on_or_after"
)

// Valid reports whether m is a known policy. Empty means exact.
func (m DateMatch) Valid() bool {
	return m == "" || m == MatchExact || m == MatchOnOrAfter
}

// ParseDateMatch parses a policy name.
func ParseDateMatch(s string) (DateMatch, error) {
	m := DateMatch(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown entry date match %q", s)
	}
	if m == "" {
		m = MatchExact
	}
	return m, nil
}

// FindEntryIndex returns the index of the bar matching date, or -1.
// Calendar days are compared in date's location.
func FindEntryIndex(bars []model.Bar, date time.Time, match DateMatch) int {
	if date.IsZero() {
		return -1
	}
	loc := date.Location()
	want := dayKey(date)
	for i, b := range bars {
		got := dayKey(b.Date(loc))
		if got == want || (match == MatchOnOrAfter && got > want) {
			return i
		}
	}
	return -1
}

func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

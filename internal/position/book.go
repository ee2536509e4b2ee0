// Package position keeps the tracked symbols, their entries and the last
// evaluation of each, persisted as a JSON file.
package position

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"TradeSentinel/internal/model"
)

// DateLayout is the entry date format.
const DateLayout = "2006-01-02"

var (
	ErrPositionNotFound = errors.New("position not found")
	ErrInvalidEntry     = errors.New("invalid entry")
)

// Book handles the position book with concurrency safety.
type Book struct {
	mu       sync.Mutex
	state    *model.BookState
	filePath string
	logger   zerolog.Logger
}

// NewBook creates a Book, loading or initializing state from disk.
func NewBook(filePath string, logger zerolog.Logger) (*Book, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, fmt.Errorf("load position book: %w", err)
	}
	b := &Book{
		state:    state,
		filePath: filePath,
		logger:   logger.With().Str("component", "position").Logger(),
	}
	if err := b.save(); err != nil {
		return nil, err
	}
	return b, nil
}

func normalizeSymbol(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// Watch tracks symbol without an entry. Watching a tracked symbol is a no-op.
func (b *Book) Watch(symbol string) error {
	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return fmt.Errorf("%w: empty symbol", ErrInvalidEntry)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.state.Positions[symbol]; ok {
		return nil
	}
	b.state.Positions[symbol] = &model.Position{Symbol: symbol}
	b.logger.Info().Str("symbol", symbol).Msg("watching")
	return b.save()
}

// Open records an entry on date (YYYY-MM-DD) at price, replacing any previous one.
func (b *Book) Open(symbol, date string, price float64) (model.Position, error) {
	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return model.Position{}, fmt.Errorf("%w: empty symbol", ErrInvalidEntry)
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return model.Position{}, fmt.Errorf("%w: date %q: %v", ErrInvalidEntry, date, err)
	}
	if !(price > 0) {
		return model.Position{}, fmt.Errorf("%w: price %v", ErrInvalidEntry, price)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	p := &model.Position{
		Symbol:     symbol,
		EntryDate:  date,
		EntryPrice: price,
		OpenedAt:   time.Now(),
	}
	b.state.Positions[symbol] = p
	b.logger.Info().Str("symbol", symbol).Str("date", date).Float64("price", price).Msg("opened")
	return *p, b.save()
}

// Close stops tracking symbol and returns its last state.
func (b *Book) Close(symbol string) (model.Position, error) {
	symbol = normalizeSymbol(symbol)
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.state.Positions[symbol]
	if !ok {
		return model.Position{}, fmt.Errorf("%w: %s", ErrPositionNotFound, symbol)
	}
	delete(b.state.Positions, symbol)
	b.logger.Info().Str("symbol", symbol).Msg("closed")
	return *p, b.save()
}

// Get returns a copy of the position for symbol.
func (b *Book) Get(symbol string) (model.Position, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.state.Positions[normalizeSymbol(symbol)]
	if !ok {
		return model.Position{}, false
	}
	return *p, true
}

// List returns copies of every position, sorted by symbol.
func (b *Book) List() []model.Position {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.Position, 0, len(b.state.Positions))
	for _, p := range b.state.Positions {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Update stores snap as the latest evaluation of symbol and returns what
// changed since the previous one.
func (b *Book) Update(symbol string, snap model.Snapshot) ([]Change, error) {
	symbol = normalizeSymbol(symbol)
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.state.Positions[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPositionNotFound, symbol)
	}
	changes := Diff(p.Last, snap)
	p.Last = &snap
	if err := b.save(); err != nil {
		b.logger.Error().Err(err).Str("symbol", symbol).Msg("failed to save position book")
		return changes, err
	}
	return changes, nil
}

// EntryOf converts a stored position into the engine's entry context.
// Entry dates are interpreted in loc. A watched position yields nil.
func EntryOf(p model.Position, loc *time.Location) *model.Entry {
	if !p.Open() {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	date, err := time.ParseInLocation(DateLayout, p.EntryDate, loc)
	if err != nil {
		return nil
	}
	return model.NewEntry(date, p.EntryPrice)
}

func (b *Book) save() error {
	if err := SaveState(b.filePath, b.state); err != nil {
		return fmt.Errorf("save position book: %w", err)
	}
	return nil
}

// Package strategy prices cut-loss and trailing stops from daily bars and
// scores the trend behind them.
package strategy

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"TradeSentinel/internal/model"
	"TradeSentinel/internal/monitor"
)

// Strategy kinds.
const (
	KindATR = "atr"
	KindEMA = "ema"
)

// ErrUnknownStrategy is returned for an unrecognised Config.Kind.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Strategy prices a stop for one evaluation. Implementations hold only
// configuration and never mutate bars.
type Strategy interface {
	Name() string
	CalculateStop(bars []model.Bar, entry *model.Entry) model.StrategyResult
}

// TradingHours is the UTC window in which the last bar is treated as still forming.
type TradingHours struct {
	StartHour int `yaml:"start"`
	EndHour   int `yaml:"end"`
}

// Config selects a strategy variant and its parameters.
type Config struct {
	Kind               string         `yaml:"kind"`
	ATRPeriod          int            `yaml:"atr_period"`
	InitialMultiplier  float64        `yaml:"initial_multiplier"`
	TrailingMultiplier float64        `yaml:"trailing_multiplier"`
	EMAPeriod          int            `yaml:"ema_period"`
	EntryDateMatch     DateMatch      `yaml:"entry_date_match"`
	TradingHours       TradingHours   `yaml:"trading_hours"`
	Scorer             string         `yaml:"scorer"`
	ScoreLookback      int            `yaml:"score_lookback"`
	Monitor            monitor.Config `yaml:"monitor"`
}

// DefaultConfig returns the stock ATR dual-stop configuration.
func DefaultConfig() Config {
	return Config{
		Kind:               KindATR,
		ATRPeriod:          14,
		InitialMultiplier:  2.0,
		TrailingMultiplier: 3.0,
		EMAPeriod:          20,
		EntryDateMatch:     MatchExact,
		TradingHours:       TradingHours{StartHour: 13, EndHour: 22},
		Scorer:             ScorerStructure,
		ScoreLookback:      14,
		Monitor:            monitor.DefaultConfig(),
	}
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var err error
	switch c.Kind {
	case KindATR:
		if c.ATRPeriod < 1 {
			err = multierr.Append(err, fmt.Errorf("atr_period must be >= 1, got %d", c.ATRPeriod))
		}
		if c.InitialMultiplier <= 0 {
			err = multierr.Append(err, fmt.Errorf("initial_multiplier must be > 0, got %v", c.InitialMultiplier))
		}
		if c.TrailingMultiplier <= 0 {
			err = multierr.Append(err, fmt.Errorf("trailing_multiplier must be > 0, got %v", c.TrailingMultiplier))
		}
		if !c.EntryDateMatch.Valid() {
			err = multierr.Append(err, fmt.Errorf("unknown entry_date_match %q", c.EntryDateMatch))
		}
		h := c.TradingHours
		if h.StartHour < 0 || h.EndHour > 24 || h.StartHour >= h.EndHour {
			err = multierr.Append(err, fmt.Errorf("invalid trading_hours [%d, %d)", h.StartHour, h.EndHour))
		}
		if _, e := NewScorer(c.Scorer, c.ScoreLookback); e != nil {
			err = multierr.Append(err, e)
		}
	case KindEMA:
		if c.EMAPeriod < 1 {
			err = multierr.Append(err, fmt.Errorf("ema_period must be >= 1, got %d", c.EMAPeriod))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("%w: %q", ErrUnknownStrategy, c.Kind))
	}
	return err
}

// New builds the strategy selected by cfg.
func New(cfg Config) (Strategy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("strategy config: %w", err)
	}
	switch cfg.Kind {
	case KindEMA:
		return &EMAStop{Period: cfg.EMAPeriod}, nil
	default:
		sc, _ := NewScorer(cfg.Scorer, cfg.ScoreLookback)
		return &ATRStop{
			Period:             cfg.ATRPeriod,
			InitialMultiplier:  cfg.InitialMultiplier,
			TrailingMultiplier: cfg.TrailingMultiplier,
			DateMatch:          cfg.EntryDateMatch,
			Reference: &TradingHoursSelector{
				StartHour: cfg.TradingHours.StartHour,
				EndHour:   cfg.TradingHours.EndHour,
			},
			Scorer:  sc,
			Monitor: cfg.Monitor,
		}, nil
	}
}

// Evaluate is the engine's single entry point: build the configured strategy
// and price a stop for bars. entry may be nil.
func Evaluate(bars []model.Bar, cfg Config, entry *model.Entry) (model.StrategyResult, error) {
	s, err := New(cfg)
	if err != nil {
		return model.StrategyResult{}, err
	}
	return s.CalculateStop(bars, entry), nil
}

package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"TradeSentinel/internal/collector"
	"TradeSentinel/internal/model"
	"TradeSentinel/internal/notifier"
	"TradeSentinel/internal/position"
	"TradeSentinel/internal/recorder"
	"TradeSentinel/internal/strategy"
)

// Sender delivers a message to the user.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs periodic evaluations of every tracked symbol and serves
// user commands against the position book.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Book      *position.Book
	Notifier  Sender
	Recorder  recorder.Recorder
	Analyzer  *strategy.Analyzer
	Strategy  strategy.Config
	Location  *time.Location // zone of entry dates
	Ctx       context.Context

	running sync.Mutex
	logger  zerolog.Logger
}

// Evaluation is the outcome of one symbol's evaluation.
type Evaluation struct {
	Symbol   string
	Series   *model.PriceSeries
	Analysis model.TrendAnalysisResult
	Result   model.StrategyResult
	Changes  []position.Change
}

// NewScheduler creates a new Scheduler. The strategy config is validated up front.
func NewScheduler(ctx context.Context, col *collector.Collector, book *position.Book, sender Sender,
	rec recorder.Recorder, analyzer *strategy.Analyzer, cfg strategy.Config, logger zerolog.Logger) (*Scheduler, error) {
	if _, err := strategy.New(cfg); err != nil {
		return nil, err
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Book:      book,
		Notifier:  sender,
		Recorder:  rec,
		Analyzer:  analyzer,
		Strategy:  cfg,
		Location:  time.UTC,
		Ctx:       ctx,
		logger:    logger.With().Str("component", "scheduler").Logger(),
	}, nil
}

// RegisterAll registers the periodic evaluation task.
func (s *Scheduler) RegisterAll(evaluateCron string) error {
	if _, err := s.Cron.AddFunc(evaluateCron, s.RunNow); err != nil {
		return fmt.Errorf("register evaluate task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running pass.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}

// RunNow evaluates every tracked symbol once. Overlapping passes are skipped.
func (s *Scheduler) RunNow() {
	if !s.running.TryLock() {
		s.logger.Warn().Msg("evaluation pass already running, skipping")
		return
	}
	defer s.running.Unlock()

	runID := uuid.NewString()
	log := s.logger.With().Str("run_id", runID).Logger()
	positions := s.Book.List()
	log.Info().Int("symbols", len(positions)).Msg("evaluation pass started")

	var failed []string
	for _, p := range positions {
		if s.Ctx.Err() != nil {
			return
		}
		if _, err := s.EvaluateSymbol(s.Ctx, runID, p.Symbol); err != nil {
			log.Error().Err(err).Str("symbol", p.Symbol).Msg("evaluate symbol")
			failed = append(failed, fmt.Sprintf("%s: %v", p.Symbol, err))
		}
	}
	if len(failed) > 0 {
		s.trySend("❌ Evaluation failed\n" + strings.Join(failed, "\n"))
	}
	log.Info().Int("failed", len(failed)).Msg("evaluation pass finished")
}

// EvaluateSymbol collects bars, analyzes the trend and prices the stop for
// symbol. Tracked symbols get their snapshot updated and changes alerted.
func (s *Scheduler) EvaluateSymbol(ctx context.Context, runID, symbol string) (*Evaluation, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	series, err := s.Collector.Collect(ctx, symbol)
	if err != nil {
		return nil, err
	}
	bars := series.Bars

	pos, tracked := s.Book.Get(symbol)
	var entry *model.Entry
	if tracked {
		entry = position.EntryOf(pos, s.Location)
	}

	analysis := s.Analyzer.Analyze(bars)
	res, err := strategy.Evaluate(bars, s.Strategy, entry)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", symbol, err)
	}
	ev := &Evaluation{Symbol: symbol, Series: series, Analysis: analysis, Result: res}
	last := bars[len(bars)-1]

	s.record(&recorder.EvaluationRecord{
		RunID:            runID,
		Symbol:           symbol,
		Strategy:         res.Strategy,
		BarTime:          last.Time,
		Close:            last.Close,
		Stop:             res.StopPrice,
		Trailing:         res.TrailingStop,
		TradeState:       string(tradeState(res)),
		MonitorState:     string(monitorState(res)),
		TrendScore:       analysis.TrendScore,
		Trend:            string(analysis.Trend),
		CanEnter:         res.CanEnter,
		EntryReason:      res.EntryReason,
		InsufficientData: res.InsufficientData,
		Trace:            notifier.FormatTrace(res.Trace),
	})

	if !tracked {
		return ev, nil
	}
	if res.InsufficientData {
		s.logger.Warn().Str("symbol", symbol).Int("bars", len(bars)).Msg("insufficient history, snapshot kept")
		return ev, nil
	}

	changes, err := s.Book.Update(symbol, model.Snapshot{
		Stop:         res.StopPrice,
		Trailing:     res.TrailingStop,
		TradeState:   tradeState(res),
		MonitorState: monitorState(res),
		TrendScore:   analysis.TrendScore,
		EvaluatedAt:  time.Now(),
	})
	if err != nil {
		return ev, fmt.Errorf("update %s: %w", symbol, err)
	}
	ev.Changes = changes
	if len(changes) > 0 {
		s.trySend(notifier.FormatChanges(symbol, changes))
		for _, c := range changes {
			s.recordEvent(&recorder.PositionEvent{
				RunID: runID, Symbol: symbol, EventType: "CHANGE",
				Kind: string(c.Kind), From: c.From, To: c.To,
			})
		}
	}
	return ev, nil
}

func tradeState(res model.StrategyResult) model.TradeState {
	if res.PostEntry == nil {
		return model.StateNotEntered
	}
	return res.PostEntry.State
}

func monitorState(res model.StrategyResult) model.MonitorState {
	if res.Monitor == nil {
		return ""
	}
	return res.Monitor.State
}

func (s *Scheduler) record(rec *recorder.EvaluationRecord) {
	if err := s.Recorder.RecordEvaluation(rec); err != nil {
		s.logger.Error().Err(err).Str("symbol", rec.Symbol).Msg("record evaluation")
	}
}

func (s *Scheduler) recordEvent(evt *recorder.PositionEvent) {
	if err := s.Recorder.RecordPositionEvent(evt); err != nil {
		s.logger.Error().Err(err).Str("symbol", evt.Symbol).Msg("record position event")
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.logger.Error().Err(err).Msg("send notification")
	}
}

package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"TradeSentinel/internal/collector"
	"TradeSentinel/internal/position"
	"TradeSentinel/internal/recorder"
	"TradeSentinel/internal/strategy"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeSender) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

type fakeRecorder struct {
	recorder.NoopRecorder
	mu          sync.Mutex
	evaluations []recorder.EvaluationRecord
	events      []recorder.PositionEvent
}

func (f *fakeRecorder) RecordEvaluation(rec *recorder.EvaluationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evaluations = append(f.evaluations, *rec)
	return nil
}

func (f *fakeRecorder) RecordPositionEvent(evt *recorder.PositionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *evt)
	return nil
}

func (f *fakeRecorder) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.events {
		out = append(out, e.EventType)
	}
	return out
}

type harness struct {
	sched   *Scheduler
	fetcher *collector.MockFetcher
	sender  *fakeSender
	rec     *fakeRecorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fetcher := &collector.MockFetcher{Price: 100}
	book, err := position.NewBook(filepath.Join(t.TempDir(), "positions.json"), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBook: %v", err)
	}
	analyzer, err := strategy.NewAnalyzer(strategy.AnalyzerConfig{})
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	sender := &fakeSender{}
	rec := &fakeRecorder{}
	col := collector.NewCollector(fetcher, 120, 0, zerolog.Nop())
	s, err := NewScheduler(context.Background(), col, book, sender, rec, analyzer, strategy.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	return &harness{sched: s, fetcher: fetcher, sender: sender, rec: rec}
}

func TestNewScheduler_RejectsInvalidStrategy(t *testing.T) {
	cfg := strategy.DefaultConfig()
	cfg.Kind = "fib"
	_, err := NewScheduler(context.Background(), nil, nil, &fakeSender{}, recorder.NewNoopRecorder(), nil, cfg, zerolog.Nop())
	if !errors.Is(err, strategy.ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}
}

func TestRegisterAll_InvalidCron(t *testing.T) {
	h := newHarness(t)
	if err := h.sched.RegisterAll("not a cron"); err == nil {
		t.Error("expected an error for an invalid cron expression")
	}
	if err := h.sched.RegisterAll("0 30 22 * * 1-5"); err != nil {
		t.Errorf("expected a valid six-field expression, got %v", err)
	}
}

func TestEvaluateSymbol_UntrackedDoesNotTouchBook(t *testing.T) {
	h := newHarness(t)
	ev, err := h.sched.EvaluateSymbol(context.Background(), "run-1", "aapl")
	if err != nil {
		t.Fatalf("EvaluateSymbol: %v", err)
	}
	if ev.Symbol != "AAPL" {
		t.Errorf("expected normalized symbol AAPL, got %s", ev.Symbol)
	}
	if ev.Result.InsufficientData {
		t.Fatal("120 mock bars should be enough history")
	}
	if ev.Result.StopPrice <= 0 {
		t.Errorf("expected a positive stop, got %f", ev.Result.StopPrice)
	}
	if len(h.sched.Book.List()) != 0 {
		t.Error("evaluating an untracked symbol must not add it to the book")
	}
	if len(h.rec.evaluations) != 1 || h.rec.evaluations[0].RunID != "run-1" {
		t.Errorf("expected one recorded evaluation for run-1, got %+v", h.rec.evaluations)
	}
	if len(h.sender.messages()) != 0 {
		t.Errorf("no alerts expected, got %v", h.sender.messages())
	}
}

func TestEvaluateSymbol_AlertsOnlyOnChange(t *testing.T) {
	h := newHarness(t)
	if err := h.sched.Book.Watch("MSFT"); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	ctx := context.Background()

	ev, err := h.sched.EvaluateSymbol(ctx, "run-1", "MSFT")
	if err != nil {
		t.Fatalf("first evaluation: %v", err)
	}
	if len(ev.Changes) != 0 {
		t.Errorf("first snapshot has nothing to diff against, got %v", ev.Changes)
	}
	p, _ := h.sched.Book.Get("MSFT")
	if p.Last == nil || p.Last.Stop != ev.Result.StopPrice {
		t.Fatalf("expected the snapshot to carry the stop, got %+v", p.Last)
	}

	if _, err := h.sched.EvaluateSymbol(ctx, "run-2", "MSFT"); err != nil {
		t.Fatalf("second evaluation: %v", err)
	}
	if n := len(h.sender.messages()); n != 0 {
		t.Fatalf("unchanged data should not alert, got %d messages", n)
	}

	h.fetcher.Price = 150
	ev, err = h.sched.EvaluateSymbol(ctx, "run-3", "MSFT")
	if err != nil {
		t.Fatalf("third evaluation: %v", err)
	}
	if len(ev.Changes) == 0 {
		t.Fatal("a 50% price shift should move the stop")
	}
	msgs := h.sender.messages()
	if len(msgs) != 1 || !strings.Contains(msgs[0], "MSFT") {
		t.Errorf("expected one alert for MSFT, got %v", msgs)
	}
	changes := 0
	for _, e := range h.rec.events {
		if e.EventType == "CHANGE" && e.RunID == "run-3" {
			changes++
		}
	}
	if changes != len(ev.Changes) {
		t.Errorf("expected %d CHANGE events, got %d", len(ev.Changes), changes)
	}
}

func TestEvaluateSymbol_OpenPositionGetsLifecycle(t *testing.T) {
	h := newHarness(t)
	series, err := h.sched.Collector.Collect(context.Background(), "NVDA")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	entryBar := series.Bars[len(series.Bars)-10]
	date := timeOf(entryBar.Time).Format(position.DateLayout)
	if _, err := h.sched.Book.Open("NVDA", date, entryBar.Close); err != nil {
		t.Fatalf("Open: %v", err)
	}

	ev, err := h.sched.EvaluateSymbol(context.Background(), "run-1", "NVDA")
	if err != nil {
		t.Fatalf("EvaluateSymbol: %v", err)
	}
	if ev.Result.PostEntry == nil {
		t.Fatal("an open position should get a post-entry analysis")
	}
	if ev.Result.Monitor == nil {
		t.Error("an open position should get a monitor result")
	}
	p, _ := h.sched.Book.Get("NVDA")
	if p.Last.TradeState != ev.Result.PostEntry.State {
		t.Errorf("snapshot trade state %s, result %s", p.Last.TradeState, ev.Result.PostEntry.State)
	}
}

func TestRunNow_ReportsFailures(t *testing.T) {
	h := newHarness(t)
	if err := h.sched.Book.Watch("AAPL"); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	h.fetcher.Err = errors.New("upstream down")
	h.sched.RunNow()

	msgs := h.sender.messages()
	if len(msgs) != 1 || !strings.Contains(msgs[0], "AAPL") || !strings.Contains(msgs[0], "upstream down") {
		t.Errorf("expected one failure summary naming AAPL, got %v", msgs)
	}
}

func TestRunNow_EvaluatesEveryTrackedSymbol(t *testing.T) {
	h := newHarness(t)
	for _, s := range []string{"AAPL", "MSFT", "QQQ"} {
		if err := h.sched.Book.Watch(s); err != nil {
			t.Fatalf("Watch %s: %v", s, err)
		}
	}
	h.sched.RunNow()
	if len(h.rec.evaluations) != 3 {
		t.Fatalf("expected 3 evaluations, got %d", len(h.rec.evaluations))
	}
	runID := h.rec.evaluations[0].RunID
	for _, e := range h.rec.evaluations {
		if e.RunID != runID || runID == "" {
			t.Errorf("every evaluation of a pass should share one run id, got %q and %q", runID, e.RunID)
		}
	}
	for _, p := range h.sched.Book.List() {
		if p.Last == nil {
			t.Errorf("%s should have a snapshot after a pass", p.Symbol)
		}
	}
}

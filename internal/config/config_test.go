package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"TradeSentinel/internal/strategy"
)

var envKeys = []string{
	"ENV_FILE", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "VSTRADER_BASE_URL", "VSTRADER_API_KEY",
	"SYMBOLS", "HTTPS_PROXY", "STRATEGY_KIND", "ANALYSIS_SCORER", "HISTORY_DAYS",
	"CRON_EVALUATE", "POSITIONS_STATE_FILE", "SQLITE_PATH", "LOG_LEVEL",
}

// isolate clears overrides and points the .env lookup at an empty temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dir := isolate(t)
	cfg, err := Load(filepath.Join(dir, "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataSource.HistoryDays != 250 {
		t.Errorf("expected 250 history days, got %d", cfg.DataSource.HistoryDays)
	}
	if cfg.Schedule.EvaluateCron != "0 30 22 * * 1-5" {
		t.Errorf("unexpected default cron %q", cfg.Schedule.EvaluateCron)
	}
	if cfg.Positions.StateFile != "data/positions.json" || cfg.Database.SQLitePath != "data/trade_sentinel.db" {
		t.Errorf("unexpected default paths %q %q", cfg.Positions.StateFile, cfg.Database.SQLitePath)
	}
	sc := cfg.StrategyConfig()
	want := strategy.DefaultConfig()
	if sc.Kind != want.Kind || sc.ATRPeriod != want.ATRPeriod || sc.TradingHours != want.TradingHours || sc.Monitor != want.Monitor {
		t.Errorf("expected stock strategy config, got %+v", sc)
	}
}

func TestLoad_YAMLAndOverrides(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, `
telegram:
  bot_token: yaml-token
  chat_id: "42"
data_source:
  symbols: [AAPL, MSFT]
  history_days: 120
strategy:
  kind: atr
  atr_period: 10
  initial_multiplier: 1.5
  entry_date_match: on_or_after
  trading_hours:
    start: 0
    end: 24
analysis:
  scorer: weighted
  lookback: 30
monitor:
  dry_ratio: 0.7
positions:
  timezone: America/New_York
log:
  level: debug
  pretty: true
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("SYMBOLS", "QQQ, SPY,,")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.BotToken != "env-token" || cfg.Telegram.ChatID != "42" {
		t.Errorf("env should override yaml: %+v", cfg.Telegram)
	}
	if strings.Join(cfg.DataSource.Symbols, ",") != "QQQ,SPY" {
		t.Errorf("expected [QQQ SPY], got %v", cfg.DataSource.Symbols)
	}

	sc := cfg.StrategyConfig()
	if sc.ATRPeriod != 10 || sc.InitialMultiplier != 1.5 || sc.TrailingMultiplier != 3.0 {
		t.Errorf("unexpected multipliers %+v", sc)
	}
	if sc.EntryDateMatch != strategy.MatchOnOrAfter {
		t.Errorf("expected on_or_after, got %q", sc.EntryDateMatch)
	}
	if sc.TradingHours != (strategy.TradingHours{StartHour: 0, EndHour: 24}) {
		t.Errorf("an explicit zero start hour must be kept, got %+v", sc.TradingHours)
	}
	if sc.Scorer != strategy.ScorerWeighted || sc.ScoreLookback != 30 {
		t.Errorf("analysis section should feed the strategy scorer, got %q/%d", sc.Scorer, sc.ScoreLookback)
	}
	if sc.Monitor.DryRatio != 0.7 || sc.Monitor.PanicRatio != 0.4 {
		t.Errorf("unexpected monitor config %+v", sc.Monitor)
	}
	if ac := cfg.AnalyzerConfig(); ac.Scorer != strategy.ScorerWeighted || ac.Lookback != 30 {
		t.Errorf("unexpected analyzer config %+v", ac)
	}
	if lvl, err := cfg.LogLevel(); err != nil || lvl != zerolog.DebugLevel {
		t.Errorf("expected debug level, got %v (%v)", lvl, err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected a valid config, got %v", err)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := isolate(t)
	envPath := filepath.Join(dir, "test.env")
	writeFile(t, envPath, "TELEGRAM_CHAT_ID=from-dotenv\n")
	t.Setenv("ENV_FILE", envPath)
	// godotenv sets the variable process-wide; restore it to empty afterwards.
	t.Setenv("TELEGRAM_CHAT_ID", "")
	os.Unsetenv("TELEGRAM_CHAT_ID")

	cfg, err := Load(filepath.Join(dir, "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.ChatID != "from-dotenv" {
		t.Errorf("expected chat id from the env file, got %q", cfg.Telegram.ChatID)
	}
}

func TestLoad_BadInput(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "telegram: [unterminated")
	if _, err := Load(path); err == nil {
		t.Error("expected a parse error")
	}

	writeFile(t, path, "")
	t.Setenv("HISTORY_DAYS", "many")
	if _, err := Load(path); err == nil {
		t.Error("expected an error for a non-numeric HISTORY_DAYS")
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, `
data_source:
  history_days: 10
schedule:
  evaluate_cron: "every day"
strategy:
  kind: fib
monitor:
  dry_ratio: 0.3
  panic_ratio: 0.5
positions:
  timezone: Mars/Olympus
log:
  level: loud
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	err = cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	// token, chat id, history, cron, strategy, monitor, timezone, log level
	if n := len(multierr.Errors(err)); n != 8 {
		t.Errorf("expected 8 errors, got %d: %v", n, err)
	}
	for _, want := range []string{"bot_token", "chat_id", "history_days", "evaluate_cron", "unknown strategy", "panic_ratio", "timezone", "log.level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

func TestValidate_MonitorUsesMergedThresholds(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, `
telegram:
  bot_token: token
  chat_id: "1"
monitor:
  panic_ratio: 0.7
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	err = cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "panic_ratio") {
		t.Errorf("panic_ratio 0.7 over the default dry_ratio 0.6 should be rejected, got %v", err)
	}
	if n := len(multierr.Errors(err)); n != 1 {
		t.Errorf("expected exactly the monitor error, got %d: %v", n, err)
	}
}

func TestLocation(t *testing.T) {
	isolate(t)
	cfg := &Config{}
	cfg.applyDefaults()
	loc, err := cfg.Location()
	if err != nil || loc != time.UTC {
		t.Errorf("expected UTC by default, got %v (%v)", loc, err)
	}
}

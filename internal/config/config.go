package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // positions.timezone without system zoneinfo

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"TradeSentinel/internal/monitor"
	"TradeSentinel/internal/strategy"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		BaseURL           string   `yaml:"base_url"`
		APIKey            string   `yaml:"api_key"`
		Symbols           []string `yaml:"symbols"` // watched on startup
		HistoryDays       int      `yaml:"history_days"`
		RequestsPerSecond float64  `yaml:"requests_per_second"`
	} `yaml:"data_source"`
	Strategy struct {
		Kind               string                 `yaml:"kind"`
		ATRPeriod          int                    `yaml:"atr_period"`
		InitialMultiplier  float64                `yaml:"initial_multiplier"`
		TrailingMultiplier float64                `yaml:"trailing_multiplier"`
		EMAPeriod          int                    `yaml:"ema_period"`
		EntryDateMatch     string                 `yaml:"entry_date_match"`
		TradingHours       *strategy.TradingHours `yaml:"trading_hours"`
	} `yaml:"strategy"`
	Analysis struct {
		Scorer   string `yaml:"scorer"`
		Lookback int    `yaml:"lookback"`
	} `yaml:"analysis"`
	Monitor  monitor.Config `yaml:"monitor"`
	Schedule struct {
		EvaluateCron string `yaml:"evaluate_cron"`
	} `yaml:"schedule"`
	Positions struct {
		StateFile string `yaml:"state_file"`
		Timezone  string `yaml:"timezone"` // zone of entry dates
	} `yaml:"positions"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads an optional .env file, then the YAML config at path, then
// applies environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	envFile := ".env"
	if v := os.Getenv("ENV_FILE"); v != "" {
		envFile = v
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("VSTRADER_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("VSTRADER_API_KEY"); v != "" {
		c.DataSource.APIKey = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.DataSource.Symbols = nil
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				c.DataSource.Symbols = append(c.DataSource.Symbols, s)
			}
		}
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("STRATEGY_KIND"); v != "" {
		c.Strategy.Kind = v
	}
	if v := os.Getenv("ANALYSIS_SCORER"); v != "" {
		c.Analysis.Scorer = v
	}
	if v := os.Getenv("HISTORY_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse HISTORY_DAYS: %w", err)
		}
		c.DataSource.HistoryDays = days
	}
	if v := os.Getenv("CRON_EVALUATE"); v != "" {
		c.Schedule.EvaluateCron = v
	}
	if v := os.Getenv("POSITIONS_STATE_FILE"); v != "" {
		c.Positions.StateFile = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.DataSource.HistoryDays == 0 {
		c.DataSource.HistoryDays = 250
	}
	if c.DataSource.RequestsPerSecond == 0 {
		c.DataSource.RequestsPerSecond = 2
	}
	if c.Strategy.Kind == "" {
		c.Strategy.Kind = strategy.KindATR
	}
	if c.Schedule.EvaluateCron == "" {
		c.Schedule.EvaluateCron = "0 30 22 * * 1-5"
	}
	if c.Positions.StateFile == "" {
		c.Positions.StateFile = "data/positions.json"
	}
	if c.Positions.Timezone == "" {
		c.Positions.Timezone = "UTC"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/trade_sentinel.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// StrategyConfig returns the engine configuration. Unset fields keep the
// stock values.
func (c *Config) StrategyConfig() strategy.Config {
	sc := strategy.DefaultConfig()
	s := c.Strategy
	if s.Kind != "" {
		sc.Kind = s.Kind
	}
	if s.ATRPeriod != 0 {
		sc.ATRPeriod = s.ATRPeriod
	}
	if s.InitialMultiplier != 0 {
		sc.InitialMultiplier = s.InitialMultiplier
	}
	if s.TrailingMultiplier != 0 {
		sc.TrailingMultiplier = s.TrailingMultiplier
	}
	if s.EMAPeriod != 0 {
		sc.EMAPeriod = s.EMAPeriod
	}
	if s.EntryDateMatch != "" {
		sc.EntryDateMatch = strategy.DateMatch(s.EntryDateMatch)
	}
	if s.TradingHours != nil {
		sc.TradingHours = *s.TradingHours
	}
	if c.Analysis.Scorer != "" {
		sc.Scorer = c.Analysis.Scorer
	}
	if c.Analysis.Lookback != 0 {
		sc.ScoreLookback = c.Analysis.Lookback
	}
	sc.Monitor = c.MonitorConfig()
	return sc
}

// AnalyzerConfig returns the trend analyzer configuration.
func (c *Config) AnalyzerConfig() strategy.AnalyzerConfig {
	return strategy.AnalyzerConfig{Scorer: c.Analysis.Scorer, Lookback: c.Analysis.Lookback}
}

// MonitorConfig returns the monitor thresholds. Unset fields keep the stock values.
func (c *Config) MonitorConfig() monitor.Config {
	mc := monitor.DefaultConfig()
	if c.Monitor.DryRatio != 0 {
		mc.DryRatio = c.Monitor.DryRatio
	}
	if c.Monitor.PanicRatio != 0 {
		mc.PanicRatio = c.Monitor.PanicRatio
	}
	if c.Monitor.VolumeLookback != 0 {
		mc.VolumeLookback = c.Monitor.VolumeLookback
	}
	if c.Monitor.DivergenceLookback != 0 {
		mc.DivergenceLookback = c.Monitor.DivergenceLookback
	}
	return mc
}

// Location returns the zone entry dates are interpreted in.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Positions.Timezone)
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() (zerolog.Level, error) {
	return zerolog.ParseLevel(strings.ToLower(c.Log.Level))
}

var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate reports every missing or invalid field.
func (c *Config) Validate() error {
	var err error
	if c.Telegram.BotToken == "" {
		err = multierr.Append(err, errors.New("telegram.bot_token is required"))
	}
	if c.Telegram.ChatID == "" {
		err = multierr.Append(err, errors.New("telegram.chat_id is required"))
	}
	if c.DataSource.HistoryDays < 30 {
		err = multierr.Append(err, fmt.Errorf("data_source.history_days must be >= 30, got %d", c.DataSource.HistoryDays))
	}
	if c.DataSource.RequestsPerSecond < 0 {
		err = multierr.Append(err, fmt.Errorf("data_source.requests_per_second must not be negative, got %v", c.DataSource.RequestsPerSecond))
	}
	if _, e := cronParser.Parse(c.Schedule.EvaluateCron); e != nil {
		err = multierr.Append(err, fmt.Errorf("schedule.evaluate_cron: %w", e))
	}
	if e := c.StrategyConfig().Validate(); e != nil {
		err = multierr.Append(err, fmt.Errorf("strategy: %w", e))
	}
	if _, e := strategy.NewAnalyzer(c.AnalyzerConfig()); e != nil {
		err = multierr.Append(err, fmt.Errorf("analysis: %w", e))
	}
	if e := c.MonitorConfig().Validate(); e != nil {
		err = multierr.Append(err, fmt.Errorf("monitor: %w", e))
	}
	if _, e := c.Location(); e != nil {
		err = multierr.Append(err, fmt.Errorf("positions.timezone: %w", e))
	}
	if _, e := c.LogLevel(); e != nil {
		err = multierr.Append(err, fmt.Errorf("log.level: %w", e))
	}
	return err
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"TradeSentinel/internal/collector"
	"TradeSentinel/internal/config"
	"TradeSentinel/internal/notifier"
	"TradeSentinel/internal/position"
	"TradeSentinel/internal/recorder"
	"TradeSentinel/internal/scheduler"
	"TradeSentinel/internal/strategy"
)

func newLogger(cfg *config.Config) zerolog.Logger {
	var logger zerolog.Logger
	if cfg.Log.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	level, err := cfg.LogLevel()
	if err != nil {
		level = zerolog.InfoLevel
	}
	return logger.Level(level).With().Timestamp().Str("service", "trade-sentinel").Logger()
}

func main() {
	boot := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		boot.Fatal().Err(err).Str("path", cfgPath).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		boot.Fatal().Err(err).Msg("config validation")
	}

	logger := newLogger(cfg)
	logger.Info().Str("config", cfgPath).Msg("TradeSentinel starting")

	// Init fetcher
	var fetcher collector.Fetcher
	if cfg.DataSource.BaseURL != "" {
		fetcher = collector.NewVsTraderFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	} else {
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	logger.Info().Str("source", fetcher.Name()).Msg("data source selected")
	col := collector.NewCollector(fetcher, cfg.DataSource.HistoryDays, cfg.DataSource.RequestsPerSecond, logger)

	// Init position book
	book, err := position.NewBook(cfg.Positions.StateFile, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("init position book")
	}
	for _, s := range cfg.DataSource.Symbols {
		if err := book.Watch(s); err != nil {
			logger.Warn().Err(err).Str("symbol", s).Msg("watch configured symbol")
		}
	}

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	analyzer, err := strategy.NewAnalyzer(cfg.AnalyzerConfig())
	if err != nil {
		logger.Fatal().Err(err).Msg("init analyzer")
	}
	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal().Err(err).Msg("load positions timezone")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched, err := scheduler.NewScheduler(ctx, col, book, tn, rec, analyzer, cfg.StrategyConfig(), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("init scheduler")
	}
	sched.Location = loc
	if err := sched.RegisterAll(cfg.Schedule.EvaluateCron); err != nil {
		logger.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	logger.Info().Msg("telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		logger.Info().Msg("RUN_ON_START enabled, evaluating now")
		go sched.RunNow()
	}

	logger.Info().
		Str("strategy", cfg.Strategy.Kind).
		Str("cron", cfg.Schedule.EvaluateCron).
		Int("symbols", len(book.List())).
		Msg("TradeSentinel is running, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutdown signal received, stopping")
	cancel()
	logger.Info().Msg("TradeSentinel stopped")
}

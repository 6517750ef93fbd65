package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"BandSentinel/internal/collector"
	"BandSentinel/internal/config"
	"BandSentinel/internal/logger"
	"BandSentinel/internal/notifier"
	"BandSentinel/internal/pipeline"
	"BandSentinel/internal/recorder"
	"BandSentinel/internal/scheduler"
	"BandSentinel/internal/strategy"
)

func main() {
	cfgPath := flag.String("config", "", "path to config file (default $CONFIG_PATH or configs/config.yaml)")
	jsonOut := flag.Bool("json", false, "write one JSON object per ticker instead of the text report")
	once := flag.Bool("once", false, "run a single pass even when a cron schedule is configured")
	flag.Parse()

	path := *cfgPath
	if path == "" {
		path = "configs/config.yaml"
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			path = v
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		logger.Init("bandsentinel", "info", "")
		logger.Fatal().Err(err).Msg("load config")
	}
	logger.Init("bandsentinel", cfg.Logging.Level, cfg.Logging.Format)
	if *jsonOut {
		cfg.Output.Format = "json"
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("config validation")
	}
	start, end, _ := cfg.DateRange()

	fetcher, err := collector.NewFetcher(collector.Options{
		Provider:  cfg.DataSource.Provider,
		BaseURL:   cfg.DataSource.BaseURL,
		APIKey:    cfg.DataSource.APIKey,
		APISecret: cfg.DataSource.APISecret,
		Proxy:     cfg.Proxy,
		Timeout:   cfg.DataSource.Timeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("init fetcher")
	}
	logger.Info().Str("provider", fetcher.Name()).Strs("tickers", cfg.Tickers).
		Str("start", cfg.StartDate).Str("end", cfg.EndDate).Msg("BandSentinel starting")

	col := collector.NewCollector(fetcher, cfg.DataSource.Retries)
	strat := strategy.NewDoubleBollinger(cfg.Backtest.Window, cfg.Backtest.BandK)
	p := pipeline.New(col, strat, cfg.Backtest.InitialCapital, start, end)

	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	}

	rec, err := recorder.New(cfg.Database.SQLitePath)
	if err != nil {
		logger.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(ctx, p, cfg.Tickers, os.Stdout, cfg.Output.Format, tn, rec, cfg.Metrics.TextfilePath)

	if *once || cfg.Schedule.Cron == "" {
		if _, err := sched.RunNow(); err != nil {
			logger.Error().Err(err).Msg("run")
		}
		return
	}

	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		logger.Fatal().Err(err).Msg("register cron task")
	}
	sched.Start()
	logger.Info().Str("cron", cfg.Schedule.Cron).Msg("BandSentinel is running. Press Ctrl+C to stop.")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received, stopping...")
	sched.Stop()
	logger.Info().Msg("BandSentinel stopped")
}

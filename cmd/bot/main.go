package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"WeatherEdge/internal/collector"
	"WeatherEdge/internal/config"
	"WeatherEdge/internal/export"
	"WeatherEdge/internal/metrics"
	"WeatherEdge/internal/notifier"
	"WeatherEdge/internal/paper"
	"WeatherEdge/internal/recorder"
	"WeatherEdge/internal/scheduler"
	"WeatherEdge/internal/strategy"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Config validation failed")
	}

	setupLogging(cfg)
	log.Info().Int("cities", len(cfg.Cities)).Msg("WeatherEdge starting")

	// Recorder, falling back to a no-op sink when SQLite will not open.
	// The bot keeps alerting either way.
	var rec recorder.Recorder
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Warn().Err(err).Msg("SQLite unavailable, recording disabled")
		rec = recorder.NewNoopRecorder()
	} else {
		rec = sr
		defer sr.Close()
	}

	tn, err := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		log.Fatal().Err(err).Msg("Telegram init failed")
	}

	col := collector.New(cfg)
	eng := &strategy.Engine{MinGapToShow: cfg.Signals.MinGapToShow}
	book := paper.NewBook()
	scorer := paper.NewScorer(rec, col.Markets, col, cfg.Cities)
	met := metrics.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, col, eng, book, scorer, tn, rec, met, cfg)
	if err := sched.RegisterAll(); err != nil {
		log.Fatal().Err(err).Msg("Could not register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	srv := export.NewServer(cfg.Server.ListenAddr, rec)
	srv.Start()

	tn.ListenForCommands(ctx, sched.HandleCommand)

	// First cycle runs right away; cron picks up from the next interval.
	go sched.RunCycleNow(os.Getenv("RUN_ON_START") == "true")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("Shutdown signal received, stopping")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Export server shutdown failed")
	}
	log.Info().Msg("WeatherEdge stopped")
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Log.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}
}

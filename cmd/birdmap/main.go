package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/mmcgee/ebird-notable-maps/internal/adapter/ebird"
	httpadapter "github.com/mmcgee/ebird-notable-maps/internal/adapter/http"
	kafkaadapter "github.com/mmcgee/ebird-notable-maps/internal/adapter/kafka"
	"github.com/mmcgee/ebird-notable-maps/internal/config"
	"github.com/mmcgee/ebird-notable-maps/internal/domain"
	"github.com/mmcgee/ebird-notable-maps/internal/observability"
	"github.com/mmcgee/ebird-notable-maps/internal/pipeline"
	"github.com/mmcgee/ebird-notable-maps/internal/render"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	if cfg.EBirdAPIKey == "" {
		logger.Warn("EBIRD_API_KEY is not set; fetches will fail and maps will publish empty")
	}

	client := ebird.NewClient(cfg.EBirdAPIKey, cfg.EBirdTimeout, logger)

	// A fresh fetch cache per build keeps cached responses scoped to one
	// build invocation.
	newFetcher := func() domain.ObservationFetcher {
		return ebird.NewFetchCache(client, logger, metrics)
	}

	// Notification is feature-flagged via KAFKA_BROKERS / KAFKA_TOPIC.
	var notifier pipeline.Notifier
	var kafkaNotifier *kafkaadapter.Notifier
	if cfg.NotifyEnabled() {
		kafkaNotifier = kafkaadapter.NewNotifier(cfg, logger)
		notifier = kafkaNotifier
		logger.Info("build notifications enabled", "topic", cfg.KafkaTopic)
	} else {
		logger.Info("build notifications disabled")
	}

	builder := pipeline.New(cfg, newFetcher, render.New(), notifier, logger, metrics)

	if cfg.CronSchedule == "" {
		runOnce(builder, kafkaNotifier, logger)
		return
	}
	runDaemon(cfg, builder, kafkaNotifier, logger)
}

// runOnce performs a single build and exits. Only a render or publish
// failure is fatal; an unreachable eBird API still publishes an empty map.
func runOnce(builder *pipeline.Builder, notifier *kafkaadapter.Notifier, logger *slog.Logger) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, err := builder.Build(ctx)
	closeNotifier(notifier, logger)
	if err != nil {
		logger.Error("build failed", "error", err)
		os.Exit(1)
	}
}

// runDaemon builds on the configured cron schedule and serves the ops
// endpoints until interrupted.
func runDaemon(cfg *config.Config, builder *pipeline.Builder, notifier *kafkaadapter.Notifier, logger *slog.Logger) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := httpadapter.NewServer(cfg.HTTPAddr, builder, builder, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	build := func() {
		if _, err := builder.Build(ctx); err != nil {
			logger.Error("scheduled build failed", "error", err)
		}
	}
	scheduler, err := newScheduler(cfg.CronSchedule, build, logger)
	if err != nil {
		logger.Error("invalid CRON_SCHEDULE", "schedule", cfg.CronSchedule, "error", err)
		os.Exit(1)
	}

	// Build immediately so latest.html exists before the first tick.
	build()

	scheduler.Start()
	logger.Info("scheduler started", "schedule", cfg.CronSchedule, "addr", cfg.HTTPAddr)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	<-scheduler.Stop().Done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	closeNotifier(notifier, logger)

	logger.Info("shutdown complete")
}

// newScheduler registers run on the given cron schedule. Builds are
// single-flight: a tick that fires while the previous run is still going is
// skipped, so slow builds never overlap on the output directory.
func newScheduler(schedule string, run func(), logger *slog.Logger) (*cron.Cron, error) {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelWarn))
	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger)))
	if _, err := scheduler.AddFunc(schedule, run); err != nil {
		return nil, err
	}
	return scheduler, nil
}

func closeNotifier(notifier *kafkaadapter.Notifier, logger *slog.Logger) {
	if notifier == nil {
		return
	}
	if err := notifier.Close(); err != nil {
		logger.Error("kafka notifier close error", "error", err)
	}
}

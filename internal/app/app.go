package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"NoticeWatcher/internal/config"
	"NoticeWatcher/internal/infrastructure/discord"
	"NoticeWatcher/internal/infrastructure/parser"
	"NoticeWatcher/internal/infrastructure/scheduler"
	"NoticeWatcher/internal/infrastructure/statestore"
	"NoticeWatcher/internal/logging"
	"NoticeWatcher/internal/scanner"
	"NoticeWatcher/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
}

// New builds a runnable application instance from config.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	registry := scanner.NewRegistry()
	registry.Register(parser.NewListingScanner(&http.Client{Timeout: cfg.Fetch.Timeout.Std()}))

	source := parser.NewStrategySource(registry, cfg.Sites, cfg.Fetch.UserAgent,
		baseLogger.With("component", "source"))

	store := statestore.NewFileStore(cfg.State.Path, baseLogger.With("component", "statestore"))

	notifier := discord.NewNotifier(cfg.Webhook.URL, discord.Options{
		MaxAttempts:   cfg.Webhook.MaxAttempts,
		FallbackDelay: cfg.Webhook.FallbackDelay.Std(),
		Spacing:       cfg.Webhook.Spacing.Std(),
		Timeout:       cfg.Webhook.Timeout.Std(),
		Footer:        cfg.Webhook.Footer,
	})

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:   source,
		Store:    store,
		Notifier: notifier,
		Policy:   usecase.NewBackfillPolicy(cfg.Backfill.CapPerSection, cfg.Backfill.RecencyDays),
		Logger:   baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, logger: baseLogger, pipeline: pipeline}
}

// Run executes a single pipeline pass, or keeps running on a cron
// expression when one is configured.
func (a *Application) Run(ctx context.Context) error {
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	if a.cfg.Scheduler.CronExpression == "" {
		_, err := a.pipeline.Run(ctx)
		return err
	}

	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location())
	sched := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("watch mode started", "cron", a.cfg.Scheduler.CronExpression)

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return sched.Stop(stopCtx)
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nikkisuraj26/cafe54-timecard/internal/app"
	"github.com/nikkisuraj26/cafe54-timecard/internal/platform/config"
	"github.com/nikkisuraj26/cafe54-timecard/pkg/logger"
	"github.com/nikkisuraj26/cafe54-timecard/pkg/metrics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(ctx, cfgPath)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	a, err := app.New(ctx, cfg, app.WithLogger(log), app.WithMetrics(metrics.NewManager()))
	if err != nil {
		log.Fatal(ctx, "failed to initialize application", logger.Error(err))
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		log.Error(ctx, "server stopped with error", logger.Error(err))
		return
	}
	log.Info(ctx, "server stopped")
}

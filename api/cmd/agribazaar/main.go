package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"agribazaar/api/internal/app"
	"agribazaar/api/internal/config"
	"agribazaar/api/internal/handle"
	"agribazaar/api/internal/httpserver"
	"agribazaar/api/internal/imagecodec"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger, err := app.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, repo, err := app.OpenCache(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("diagnosis cache", zap.Error(err))
	}
	var checks []httpserver.HealthCheck
	if db != nil {
		defer db.Close()
		checks = append(checks, db.PingContext)
	}

	manager, err := app.BuildManager(cfg, logger, repo)
	if err != nil {
		logger.Fatal("diagnosis engines", zap.Error(err))
	}

	mux := httpserver.NewMux(checks...)
	handle.New(manager, imagecodec.Codec{MaxBytes: cfg.ImageMaxBytes}, logger).Register(mux)

	srv := httpserver.New(":"+cfg.Port, mux)
	if err := httpserver.Run(ctx, srv, logger); err != nil {
		logger.Fatal("http server", zap.Error(err))
	}
	logger.Info("agribazaar stopped")
}

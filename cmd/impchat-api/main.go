package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/impservers/impchat/internal/config"
	"github.com/impservers/impchat/internal/logger"
	"github.com/impservers/impchat/internal/router"
	"github.com/impservers/impchat/internal/setup"
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	deps, err := setup.SetupDependencies(cfg)
	if err != nil {
		logger.Log.Error("failed to setup dependencies", "error", err)
		os.Exit(1)
	}
	defer deps.Storage.Cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if deps.Hub != nil {
		go deps.Hub.Run(ctx)
	}
	deps.Sweeper.StartBackgroundSweep(ctx, cfg.Public.SweepInterval)

	httpPort := os.Getenv("PORT")
	if httpPort == "" {
		httpPort = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + httpPort,
		Handler: router.New(deps),
	}

	go func() {
		logger.Log.Info("server started", "port", httpPort, "delivery_mode", cfg.Public.DeliveryMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("shutdown failed", "error", err)
	}
}

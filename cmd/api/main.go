// @title Herd Weight Tracker API
// @version 1.0
// @description Pesajes por animal, GMD, reportes de rebaño y simulación de metas.
// @BasePath /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"herd-weight-tracker/internal/adapters/storage"
	"herd-weight-tracker/internal/platform/config"
	"herd-weight-tracker/internal/platform/logger"
	"herd-weight-tracker/internal/router"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.NewFromEnv().Error("config error", map[string]any{"error": err})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.Log.App,
	})
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg.Storage, log)
	if err != nil {
		log.Error("storage error", map[string]any{"error": err})
		os.Exit(1)
	}
	defer store.Close()

	loc, err := cfg.Storage.TimeLocation()
	if err != nil {
		log.Error("config error", map[string]any{"error": err})
		os.Exit(1)
	}

	r := router.NewRouter(router.Options{
		Repo:              store.Repo,
		Logger:            log,
		Location:          loc,
		DefaultGainPerDay: cfg.Forecast.DefaultGainPerDay,
		HorizonDays:       cfg.Forecast.HorizonDays,
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("starting server", map[string]any{"addr": cfg.HTTP.Addr, "storage": store.Driver})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", map[string]any{"error": err})
		os.Exit(1)
	}
	log.Info("server stopped", nil)
}

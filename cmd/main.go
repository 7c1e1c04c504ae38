package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/medli/medli-api/config"
	"github.com/medli/medli-api/internal/app"
	"github.com/medli/medli-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("startup failed")
	}

	errCh := a.Start()
	select {
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Error("listen failed")
		}
	case <-ctx.Done():
		logger.Info("shutting down server")
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := a.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("shutdown incomplete")
		cancel()
		os.Exit(1)
	}
	logger.Info("server exited properly")
}

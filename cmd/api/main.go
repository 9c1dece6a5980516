package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/markdave123-py/LegalScan/internal/app"
	"github.com/markdave123-py/LegalScan/internal/config"
	"github.com/markdave123-py/LegalScan/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	go application.ProbeModels(ctx)

	errCh := make(chan error, 1)
	go func() { errCh <- application.Server.Start() }()

	logger.Info("LegalScan is running", "port", cfg.Port, "narration", cfg.NarrationEnabled(), "vault", cfg.DatabaseURL != "")

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down...")
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	if err := application.Server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}

// trigger-server hosts the local HTTP API that desktop tooling uses to kick
// off report uploads, login analysis and share preference updates.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"orgreport/internal/config"
	"orgreport/internal/infrastructure"
	"orgreport/internal/server"
	"orgreport/internal/services"
	"orgreport/internal/sheets"
)

func main() {
	configFile := flag.String("config", "", "path to config file (defaults to ORGREPORT_CONFIG or config.yaml)")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configFile != "" {
		cfg, err = config.LoadFrom(*configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := sheets.NewClient(ctx, cfg.Google, logger)
	if err != nil {
		logger.Error("Failed to create API client", "error", err)
		os.Exit(1)
	}

	svc := services.NewReportService(cfg, client, logger)
	srv := server.New(cfg, svc, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error("Shutdown failed", "error", err)
			os.Exit(1)
		}
	}
}

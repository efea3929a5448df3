package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aci2n/subarr/internal/api"
	"github.com/aci2n/subarr/internal/config"
	"github.com/aci2n/subarr/internal/controllers"
	"github.com/aci2n/subarr/internal/feeds"
	"github.com/aci2n/subarr/internal/fetcher"
	"github.com/aci2n/subarr/internal/models"
	"github.com/aci2n/subarr/internal/scheduler"
	"github.com/aci2n/subarr/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("Starting Subarr")
	logger.WithField("config_dir", filepath.Dir(cfg.DatabaseFile)).Info("Configuration loaded")

	// 3. Initialize ledger database
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("Database initialized")

	// 4. Initialize download plumbing
	saver, err := fetcher.NewDiskSaver(cfg.DownloadDir)
	if err != nil {
		return fmt.Errorf("failed to initialize download directory: %w", err)
	}
	logger.WithField("download_dir", cfg.DownloadDir).Info("Download directory ready")

	fetchTimeout := time.Duration(cfg.FetchTimeoutSeconds) * time.Second
	subtitleFetcher := fetcher.NewFetcher(saver, fetchTimeout, logger)

	// 5. Initialize the pipeline
	exchange := feeds.NewExchange()
	stepCtrl := controllers.NewStepController(subtitleFetcher, logger)
	urls := controllers.NewURLBuilder(cfg.Origin, cfg.WatchPath)
	traversalCtrl := controllers.NewTraversalController(urls, logger)
	feedTimeout := time.Duration(cfg.FeedTimeoutSeconds) * time.Second
	pipeline := controllers.NewPipeline(exchange, stepCtrl, traversalCtrl, db, feedTimeout, logger)
	logger.Info("Pipeline initialized")

	// 6. Initialize scheduler
	sched := scheduler.NewScheduler(db, cfg.HistoryRetentionDays, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 7. Initialize HTTP server
	server := api.NewServer(cfg, db, exchange, pipeline, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 8. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Subarr is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("Subarr stopped")
	return nil
}

// Package main is the entry point for the QuantGold analysis service.
// It wires the provider clients, cache database, scheduler and scoring
// engine behind an HTTP API that prices equities in gold.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/quantgold/internal/clientdata"
	"github.com/aristath/quantgold/internal/clients/stooq"
	"github.com/aristath/quantgold/internal/clients/yahoo"
	"github.com/aristath/quantgold/internal/config"
	"github.com/aristath/quantgold/internal/database"
	"github.com/aristath/quantgold/internal/marketdata"
	"github.com/aristath/quantgold/internal/modules/analysis"
	analysishandlers "github.com/aristath/quantgold/internal/modules/analysis/handlers"
	"github.com/aristath/quantgold/internal/scheduler"
	"github.com/aristath/quantgold/internal/server"
	"github.com/aristath/quantgold/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting QuantGold")

	// Provider response cache. Losing it only costs refetches, so it runs
	// with the cache profile.
	cacheDB, err := database.New(database.Config{
		Path:    cfg.CacheDBPath(),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	cacheRepo := clientdata.NewRepository(cacheDB.Conn())
	if err := cacheRepo.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache schema")
	}

	// Upstream clients and the retrieval policy on top of them
	stooqClient := stooq.NewClient(cfg.FetchTimeout, log)
	yahooClient := yahoo.NewClient(cfg.FetchTimeout, log)
	dataService := marketdata.NewService(
		stooqClient,
		yahooClient,
		yahooClient,
		cacheRepo,
		cfg.DefaultProvider,
		cfg.FetchTimeout,
		log,
	)

	analysisService := analysis.NewService(dataService, analysis.Defaults{
		BadgePolicy: cfg.BadgePolicy,
		Language:    cfg.Language,
	}, log)
	analysisHandler := analysishandlers.NewHandler(analysisService, log)

	// Background jobs: expired cache entries are swept nightly
	sched := scheduler.New(log)
	cleanupJob := clientdata.NewCleanupJob(cacheRepo, log)
	if err := sched.AddJob("0 0 3 * * *", cleanupJob); err != nil {
		log.Error().Err(err).Msg("Failed to register cache cleanup job")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:      log,
		Config:   cfg,
		CacheDB:  cacheDB,
		Analysis: analysisHandler,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Shutdown complete")
}

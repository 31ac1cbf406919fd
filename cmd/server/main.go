// Package main is the entry point for the frontier portfolio optimization
// service. It wires the market-data client, price cache, optimization
// service, price-refresh scheduler and HTTP server, then waits for a
// shutdown signal.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aristath/frontier/internal/clients/yahoo"
	"github.com/aristath/frontier/internal/config"
	"github.com/aristath/frontier/internal/database"
	"github.com/aristath/frontier/internal/modules/historical"
	"github.com/aristath/frontier/internal/modules/optimization"
	optimizationhandlers "github.com/aristath/frontier/internal/modules/optimization/handlers"
	"github.com/aristath/frontier/internal/scheduler"
	"github.com/aristath/frontier/internal/server"
	"github.com/aristath/frontier/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().
		Strs("tickers", cfg.Tickers).
		Str("constraint_mode", cfg.ConstraintMode).
		Msg("Starting frontier service")

	historyDB, err := database.New(database.Config{
		Path: filepath.Join(cfg.DataDir, "history.db"),
		Name: "history",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open history database")
	}
	defer historyDB.Close()

	priceStore := historical.NewPriceStore(historyDB.Conn(), log)
	if err := priceStore.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize price store")
	}

	quotes := yahoo.NewClient(log)

	service := optimization.NewService(quotes, priceStore, optimization.ServiceConfig{
		Tickers:        cfg.Tickers,
		LookbackYears:  cfg.LookbackYears,
		RiskFreeRate:   cfg.RiskFreeRate,
		ConstraintMode: optimization.ConstraintMode(cfg.ConstraintMode),
		PeriodsPerYear: cfg.PeriodsPerYear,
		NumSamples:     cfg.NumSamples,
		Seed:           cfg.FrontierSeed,
	}, log)

	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.RefreshSchedule, "price_refresh", service.RefreshPrices); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule price refresh")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:                 log,
		Port:                cfg.Port,
		DevMode:             cfg.DevMode,
		OptimizationHandler: optimizationhandlers.NewHandler(service, log),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Server stopped unexpectedly")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("Frontier service stopped")
}

package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/wnt/claimgate/internal/allocation"
	"github.com/wnt/claimgate/internal/claims"
	"github.com/wnt/claimgate/internal/config"
	"github.com/wnt/claimgate/internal/database"
	"github.com/wnt/claimgate/internal/httpapi"
	"github.com/wnt/claimgate/internal/logger"
)

func main() {
	// Parse command-line arguments
	envFile := flag.String("envFile", ".env", "Path to .env file")
	flag.Parse()

	// Load environment variables from the specified file
	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("No .env file found at %s, using environment variables", *envFile)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg := logger.New(cfg.LogLevel)

	db, err := database.Connect()
	if err != nil {
		logg.Fatal().Err(err).Msg("Failed to connect to database")
	}

	registry := allocation.NewRegistry(allocation.NewCSVSource(cfg.AllocationsFile, logg), logg)
	if _, err := registry.Reload(); err != nil {
		// An empty registry rejects every claim as unknown-wallet until a
		// reload succeeds; the server still starts.
		logg.Warn().Err(err).Msg("Starting with empty allocation table")
	}

	validator := claims.NewValidator(registry)
	ledger := claims.NewLedger(db, logg)
	aggregator := claims.NewAggregator(db, registry)

	handler := httpapi.NewHandler(validator, ledger, aggregator, registry, logg)
	server := httpapi.New(handler)

	go func() {
		logg.Info().Str("port", cfg.HTTPPort).Msg("Starting HTTP server")
		if err := server.Start(":" + cfg.HTTPPort); err != nil && err != http.ErrServerClosed {
			logg.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logg.Error().Err(err).Msg("Forced shutdown")
	}
}

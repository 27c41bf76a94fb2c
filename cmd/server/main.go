// Baraka - Campaign Recommendation Engine for Donation Platforms
// Copyright 2026 Baraka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/baraka-giving/baraka

// Package main is the entry point for the Baraka recommendation server.
//
// Baraka serves personalized campaign recommendations for donation
// platforms. Donors with an inferred taste profile get AI-driven
// semantic matching against campaign embeddings; everyone else falls
// through a rule-based chain (category affinity, trusted organizations,
// similar donors) backed by a popularity fill.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: environment variables and config file via Koanf v2
//  2. Database: DuckDB read model holding campaigns and donations
//  3. Embedding client: optional semantic scoring behind a circuit breaker
//  4. Recommendation engine: lazily refreshed in-memory snapshot
//  5. HTTP server: Chi REST API under a suture supervisor tree
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables, config file (config.yaml),
// built-in defaults.
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it stops
// accepting new connections, drains in-flight requests (10s timeout),
// then closes the database connection.
//
// # Example Usage
//
// Development with seeded mock data and no embedding service:
//
//	export SEED_MOCK_DATA=true
//	./baraka
//
// Production with an embedding service:
//
//	export EMBED_ENABLED=true
//	export EMBED_URL=http://embeddings:11434
//	export ENVIRONMENT=production
//	./baraka
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baraka-giving/baraka/internal/api"
	"github.com/baraka-giving/baraka/internal/config"
	"github.com/baraka-giving/baraka/internal/database"
	"github.com/baraka-giving/baraka/internal/embed"
	"github.com/baraka-giving/baraka/internal/logging"
	"github.com/baraka-giving/baraka/internal/recommend"
	"github.com/baraka-giving/baraka/internal/supervisor"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Bool("embed_enabled", cfg.Embed.Enabled).
		Msg("Starting Baraka recommendation server")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	// Embedding client is optional. A nil embedder keeps the engine on
	// the rule-based chain for every request.
	var embedder recommend.Embedder
	if cfg.Embed.Enabled {
		client := embed.NewClient(embed.Options{
			BaseURL:       cfg.Embed.URL,
			PrimaryModel:  cfg.Embed.PrimaryModel,
			FallbackModel: cfg.Embed.FallbackModel,
			Timeout:       cfg.Embed.Timeout,
		}, logging.Logger())

		breaker := embed.NewBreakerClient(client, embed.BreakerSettings{
			MaxFailures: cfg.Embed.BreakerMaxFailures,
			OpenTimeout: cfg.Embed.BreakerOpenTimeout,
		}, logging.Logger())

		// Probe the service so the first snapshot build knows which
		// model tier it has; failures degrade, never abort startup.
		breaker.Resolve(context.Background())
		embedder = breaker

		logging.Info().
			Str("url", cfg.Embed.URL).
			Str("active_model", breaker.ActiveModel()).
			Bool("available", breaker.Available()).
			Msg("Embedding client initialized")
	} else {
		logging.Info().Msg("Embedding disabled, using rule-based recommendations only")
	}

	engineCfg := recommend.DefaultConfig()
	engineCfg.Limits.MaxTopN = cfg.Engine.MaxTopN
	engineCfg.Limits.TrendingMaxTopN = cfg.Engine.TrendingMaxTopN

	engine, err := recommend.NewEngine(recommend.Options{
		Loader:          db,
		Embedder:        embedder,
		Config:          engineCfg,
		RefreshInterval: cfg.Engine.RefreshInterval,
		Logger:          logging.Logger(),
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}

	handler := api.NewHandler(engine, db, cfg, version)
	router := api.NewRouter(handler, &cfg.Server)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddAPIService(supervisor.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added to supervisor tree")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain until the supervisor closes the channel.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

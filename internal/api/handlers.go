// Baraka - Campaign Recommendation Engine for Donation Platforms
// Copyright 2026 Baraka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/baraka-giving/baraka

// Package api provides the HTTP surface of the recommendation engine:
// per-donor recommendations, similar campaigns, trending campaigns and
// health, all wrapped in the shared response envelope.
package api

import (
	"context"
	"time"

	"github.com/baraka-giving/baraka/internal/config"
	"github.com/baraka-giving/baraka/internal/recommend"
)

// Engine is the handler's view of the recommendation engine.
type Engine interface {
	GetRecommendations(ctx context.Context, donorID string, topN int) (*recommend.RecommendationsResult, error)
	GetSimilarCampaigns(ctx context.Context, campaignID, topN int) (*recommend.SimilarResult, error)
	GetTrending(ctx context.Context, days, topN int) (*recommend.TrendingResult, error)
	SnapshotInfo() (builtAt *time.Time, embedderAvailable bool)
}

// Pinger reports storage liveness for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains dependencies for the API handlers.
type Handler struct {
	engine  Engine
	db      Pinger
	cfg     *config.Config
	version string
	now     func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(engine Engine, db Pinger, cfg *config.Config, version string) *Handler {
	return &Handler{
		engine:  engine,
		db:      db,
		cfg:     cfg,
		version: version,
		now:     time.Now,
	}
}

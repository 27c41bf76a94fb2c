// Baraka - Campaign Recommendation Engine for Donation Platforms
// Copyright 2026 Baraka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/baraka-giving/baraka

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/baraka-giving/baraka/internal/logging"
	"github.com/baraka-giving/baraka/internal/models"
)

// userRecommendationsRequest carries the validated parameters of the
// per-donor recommendations endpoint. TopN carries no struct tag: its
// upper bound comes from configuration, checked in validateTopN.
type userRecommendationsRequest struct {
	DonorID string `validate:"required,max=128"`
	TopN    int
}

type similarCampaignsRequest struct {
	CampaignID int `validate:"min=1"`
	TopN       int
}

type trendingRequest struct {
	Days int `validate:"min=1,max=365"`
	TopN int
}

// UserRecommendations handles GET /api/v1/recommendations/user/{donorID}.
func (h *Handler) UserRecommendations(w http.ResponseWriter, r *http.Request) {
	start := h.now()

	req := userRecommendationsRequest{
		DonorID: chi.URLParam(r, "donorID"),
		TopN:    getIntParam(r, "top_n", h.cfg.Engine.DefaultTopN),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}
	if apiErr := validateTopN(req.TopN, h.cfg.Engine.MaxTopN); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	result, err := h.engine.GetRecommendations(r.Context(), req.DonorID, req.TopN)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	logging.Debug().
		Str("donor_id", sanitizeLogValue(req.DonorID)).
		Int("top_n", req.TopN).
		Int("results", result.Total).
		Msg("Recommendations served")

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     result,
		Metadata: successMetadata(start, result.Stale),
	})
}

// SimilarCampaigns handles GET /api/v1/recommendations/similar/{campaignID}.
func (h *Handler) SimilarCampaigns(w http.ResponseWriter, r *http.Request) {
	start := h.now()

	campaignID, err := strconv.Atoi(chi.URLParam(r, "campaignID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"campaign id must be an integer", nil)
		return
	}

	req := similarCampaignsRequest{
		CampaignID: campaignID,
		TopN:       getIntParam(r, "top_n", h.cfg.Engine.DefaultTopN),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}
	if apiErr := validateTopN(req.TopN, h.cfg.Engine.MaxTopN); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	result, err := h.engine.GetSimilarCampaigns(r.Context(), req.CampaignID, req.TopN)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     result,
		Metadata: successMetadata(start, result.Stale),
	})
}

// Trending handles GET /api/v1/recommendations/trending.
func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	start := h.now()

	req := trendingRequest{
		Days: getIntParam(r, "days", h.cfg.Engine.TrendingDefaultDays),
		TopN: getIntParam(r, "top_n", h.cfg.Engine.DefaultTopN),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}
	if apiErr := validateTopN(req.TopN, h.cfg.Engine.TrendingMaxTopN); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	result, err := h.engine.GetTrending(r.Context(), req.Days, req.TopN)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     result,
		Metadata: successMetadata(start, result.Stale),
	})
}

// Health handles GET /api/v1/health. Degraded means the engine is serving
// but has no snapshot yet or storage is unreachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	builtAt, embedderAvailable := h.engine.SnapshotInfo()

	status := "healthy"
	if builtAt == nil {
		status = "degraded"
	}
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			logging.Warn().Err(err).Msg("Health check database ping failed")
			status = "degraded"
		}
	}

	payload := &models.HealthStatus{
		Status:            status,
		Version:           h.version,
		SnapshotBuiltAt:   builtAt,
		EmbedderAvailable: embedderAvailable,
	}
	if builtAt != nil {
		payload.SnapshotAge = time.Since(*builtAt).Round(time.Second).String()
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     payload,
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

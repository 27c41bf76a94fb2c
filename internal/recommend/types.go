// Baraka - Campaign Recommendation Engine for Donation Platforms
// Copyright 2026 Baraka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/baraka-giving/baraka

// Package recommend implements the campaign recommendation engine: a
// layered pipeline combining semantic text similarity over campaign
// embeddings with rule-based behavioral fallbacks over donation history.
//
// All reads go through an immutable, atomically-swapped Snapshot; the
// engine issues no writes.
package recommend

import (
	"context"
	"strings"
	"time"
)

// CampaignRecord is an active campaign as seen by the engine, with its
// organization denormalized in.
type CampaignRecord struct {
	ID                   int       `json:"id"`
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	Category             string    `json:"category"`
	OrganizationID       int       `json:"organization_id"`
	OrganizationName     string    `json:"organization_name"`
	OrganizationVerified bool      `json:"organization_verified"`
	GoalAmount           float64   `json:"goal_amount"`
	CurrentAmount        float64   `json:"current_amount"`
	DonationCount        int       `json:"donation_count"`
	Featured             bool      `json:"featured"`
	Active               bool      `json:"active"`
	CreatedAt            time.Time `json:"created_at"`
}

// Progress returns the campaign's funding progress as a percentage,
// clamped to [0, 100]. A campaign without a positive goal has progress 0.
func (c *CampaignRecord) Progress() float64 {
	if c.GoalAmount <= 0 {
		return 0
	}
	p := c.CurrentAmount / c.GoalAmount * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// embeddingPlaceholder stands in for campaigns with no textual content at
// all, so every campaign still receives a vector.
const embeddingPlaceholder = "Untitled campaign"

// EmbeddingText returns the composite text embedded for this campaign:
// title, description, then labeled category and organization lines, with
// empty parts skipped.
func (c *CampaignRecord) EmbeddingText() string {
	parts := make([]string, 0, 4)
	if c.Title != "" {
		parts = append(parts, c.Title)
	}
	if c.Description != "" {
		parts = append(parts, c.Description)
	}
	if c.Category != "" {
		parts = append(parts, "Category: "+c.Category)
	}
	if c.OrganizationName != "" {
		parts = append(parts, "Organization: "+c.OrganizationName)
	}
	if len(parts) == 0 {
		return embeddingPlaceholder
	}
	return strings.Join(parts, "\n")
}

// DonationRecord is a completed donation. DonorID is empty for anonymous
// donations; anonymous donations contribute to campaign popularity but
// never to a donor profile.
type DonationRecord struct {
	ID             int       `json:"id"`
	CampaignID     int       `json:"campaign_id"`
	DonorID        string    `json:"donor_id"`
	Amount         float64   `json:"amount"`
	Category       string    `json:"category"`
	OrganizationID int       `json:"organization_id"`
	CreatedAt      time.Time `json:"created_at"`
	Status         string    `json:"status"`
}

// Snapshot is an immutable bundle of everything the engine reads.
// Embeddings are keyed by campaign id, never by slice position, so a
// campaign set change between refreshes cannot silently misalign vectors.
// Readers hold one *Snapshot for a whole request.
type Snapshot struct {
	Campaigns  []CampaignRecord
	Donations  []DonationRecord
	Embeddings map[int][]float64
	BuiltAt    time.Time
}

// Campaign returns the campaign with the given id, or nil.
func (s *Snapshot) Campaign(id int) *CampaignRecord {
	for i := range s.Campaigns {
		if s.Campaigns[i].ID == id {
			return &s.Campaigns[i]
		}
	}
	return nil
}

// HasEmbeddings reports whether the snapshot carries any campaign vectors.
func (s *Snapshot) HasEmbeddings() bool {
	return len(s.Embeddings) > 0
}

// SnapshotLoader supplies the engine's source data. Implementations must
// return only active campaigns and completed donations.
type SnapshotLoader interface {
	LoadCampaigns(ctx context.Context) ([]CampaignRecord, error)
	LoadDonations(ctx context.Context) ([]DonationRecord, error)
}

// Recommendation is one ranked item. Engine output carries no denormalized
// campaign detail; enrichment is the caller's responsibility.
type Recommendation struct {
	CampaignID int     `json:"campaign_id"`
	Score      float64 `json:"score"`
	Reason     string  `json:"reason"`
}

// RecommendationsResult is the payload of GetRecommendations. Stale marks
// a result computed from a snapshot past its refresh interval.
type RecommendationsResult struct {
	UserID          string           `json:"user_id"`
	Recommendations []Recommendation `json:"recommendations"`
	Total           int              `json:"total"`
	Stale           bool             `json:"-"`
}

// SimilarResult is the payload of GetSimilarCampaigns.
type SimilarResult struct {
	CampaignID       int              `json:"campaign_id"`
	SimilarCampaigns []Recommendation `json:"similar_campaigns"`
	Total            int              `json:"total"`
	Stale            bool             `json:"-"`
}

// TrendingResult is the payload of GetTrending.
type TrendingResult struct {
	Days      int              `json:"days"`
	Campaigns []Recommendation `json:"campaigns"`
	Total     int              `json:"total"`
	Stale     bool             `json:"-"`
}

// Scoring branch names used for metrics labels.
const (
	branchAI           = "ai"
	branchCategory     = "category"
	branchOrganization = "organization"
	branchSimilarDonor = "similar_donor"
	branchPopularity   = "popularity"
)

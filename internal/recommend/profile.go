// Baraka - Campaign Recommendation Engine for Donation Platforms
// Copyright 2026 Baraka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/baraka-giving/baraka

package recommend

import (
	"math"
	"time"
)

// donorHistory aggregates one donor's completed donations from a snapshot.
// It backs both the profile vector and the rule-based fallback stages.
type donorHistory struct {
	donorID string

	// donated holds the campaign ids the donor gave to. These are never
	// recommended back.
	donated map[int]struct{}

	// categories and organizations the donor has supported, for the
	// category and organization fallback stages and the AI category bonus.
	categories    map[string]struct{}
	organizations map[int]struct{}

	// totalAmounts is the donor's total amount per campaign.
	totalAmounts map[int]float64

	// recentCounts is the donor's donation count per campaign within the
	// trailing recency window.
	recentCounts map[int]int
}

// buildDonorHistory scans the snapshot's donations for one donor.
// Returns nil when the donor id is empty (anonymous) or has no completed
// donations; a nil history routes the pipeline to the popularity fallback.
func buildDonorHistory(snap *Snapshot, donorID string, now time.Time, cfg ProfileConfig) *donorHistory {
	if donorID == "" {
		return nil
	}

	cutoff := now.AddDate(0, 0, -cfg.RecentWindowDays)
	h := &donorHistory{
		donorID:       donorID,
		donated:       make(map[int]struct{}),
		categories:    make(map[string]struct{}),
		organizations: make(map[int]struct{}),
		totalAmounts:  make(map[int]float64),
		recentCounts:  make(map[int]int),
	}

	for i := range snap.Donations {
		d := &snap.Donations[i]
		if d.DonorID != donorID {
			continue
		}
		h.donated[d.CampaignID] = struct{}{}
		if d.Category != "" {
			h.categories[d.Category] = struct{}{}
		}
		if d.OrganizationID != 0 {
			h.organizations[d.OrganizationID] = struct{}{}
		}
		h.totalAmounts[d.CampaignID] += d.Amount
		if d.CreatedAt.After(cutoff) {
			h.recentCounts[d.CampaignID]++
		}
	}

	if len(h.donated) == 0 {
		return nil
	}
	return h
}

// hasDonated reports whether the donor gave to the campaign.
func (h *donorHistory) hasDonated(campaignID int) bool {
	if h == nil {
		return false
	}
	_, ok := h.donated[campaignID]
	return ok
}

// inCategories reports whether the category is among the donor's
// historically-donated categories.
func (h *donorHistory) inCategories(category string) bool {
	if h == nil {
		return false
	}
	_, ok := h.categories[category]
	return ok
}

// buildProfile computes the donor's taste vector: a weighted average of
// the donated campaigns' embeddings, where each campaign's weight is
//
//	ln(1 + total_amount) * (1 + recency_boost * recent_count)
//
// normalized across the donated campaigns. Returns nil when the history is
// nil or no donated campaign resolves to an embedding; a nil profile
// routes the pipeline to the rule-based chain.
func buildProfile(snap *Snapshot, h *donorHistory, cfg ProfileConfig) []float64 {
	if h == nil || !snap.HasEmbeddings() {
		return nil
	}

	type weighted struct {
		vec    []float64
		weight float64
	}
	var parts []weighted
	var weightSum float64

	for campaignID, total := range h.totalAmounts {
		vec, ok := snap.Embeddings[campaignID]
		if !ok || len(vec) == 0 {
			continue
		}
		w := math.Log1p(total) * (1 + cfg.RecencyBoost*float64(h.recentCounts[campaignID]))
		if w <= 0 {
			continue
		}
		parts = append(parts, weighted{vec: vec, weight: w})
		weightSum += w
	}

	if len(parts) == 0 || weightSum == 0 {
		return nil
	}

	profile := make([]float64, len(parts[0].vec))
	for _, p := range parts {
		if len(p.vec) != len(profile) {
			continue // dimension drift between tiers; skip rather than corrupt
		}
		w := p.weight / weightSum
		for i, v := range p.vec {
			profile[i] += w * v
		}
	}

	return profile
}

// Baraka - Campaign Recommendation Engine for Donation Platforms
// Copyright 2026 Baraka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/baraka-giving/baraka

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/baraka-giving/baraka/internal/metrics"
)

// GetSimilarCampaigns returns up to topN campaigns similar to the given
// one, never including the campaign itself. An unknown campaign id yields
// an empty result, not an error.
func (e *Engine) GetSimilarCampaigns(ctx context.Context, campaignID, topN int) (*SimilarResult, error) {
	if topN < e.cfg.Limits.MinTopN || topN > e.cfg.Limits.MaxTopN {
		return nil, fmt.Errorf("%w: top_n must be between %d and %d",
			ErrInvalidRequest, e.cfg.Limits.MinTopN, e.cfg.Limits.MaxTopN)
	}

	start := time.Now()
	defer func() {
		metrics.RecommendationRequestDuration.WithLabelValues("similar").Observe(time.Since(start).Seconds())
	}()

	snap, stale, err := e.cache.get(ctx)
	if err != nil {
		return nil, err
	}

	target := snap.Campaign(campaignID)
	if target == nil {
		return &SimilarResult{CampaignID: campaignID, SimilarCampaigns: []Recommendation{}, Stale: stale}, nil
	}

	var candidates []scored
	if vec, ok := snap.Embeddings[campaignID]; ok && snap.HasEmbeddings() {
		candidates = e.similarByEmbedding(snap, campaignID, vec)
		metrics.RecordRecommendationBranch(branchAI, min(len(candidates), topN))
	} else {
		candidates = e.similarByRules(snap, target)
	}

	items := make([]Recommendation, 0, topN)
	for _, c := range candidates {
		if len(items) >= topN {
			break
		}
		items = append(items, Recommendation{
			CampaignID: c.campaign.ID,
			Score:      capScore(c.score),
			Reason:     c.reason,
		})
	}

	return &SimilarResult{
		CampaignID:       campaignID,
		SimilarCampaigns: items,
		Total:            len(items),
		Stale:            stale,
	}, nil
}

// similarByEmbedding ranks every other embeddable active campaign by
// cosine similarity to the target's vector.
func (e *Engine) similarByEmbedding(snap *Snapshot, targetID int, targetVec []float64) []scored {
	var candidates []scored
	for i := range snap.Campaigns {
		c := &snap.Campaigns[i]
		if c.ID == targetID || !c.Active {
			continue
		}
		vec, ok := snap.Embeddings[c.ID]
		if !ok {
			continue
		}
		sim := cosineSimilarity(targetVec, vec)
		candidates = append(candidates, scored{
			campaign: c,
			score:    capScore(sim),
			reason:   fmt.Sprintf("AI semantic similarity (%.3f)", sim),
		})
	}
	sortByScore(candidates)
	return candidates
}

// similarByRules merges three tiers in priority order: same category (base
// 0.8, with adjustments), same organization (base 0.7, flat), remaining
// active campaigns (base 0.5, with adjustments). Campaigns already claimed
// by an earlier tier are not rescored by a later one.
func (e *Engine) similarByRules(snap *Snapshot, target *CampaignRecord) []scored {
	sc := e.cfg.Similar
	seen := map[int]struct{}{target.ID: {}}
	var candidates []scored

	add := func(c *CampaignRecord, score float64, reason string) {
		seen[c.ID] = struct{}{}
		candidates = append(candidates, scored{campaign: c, score: capScore(score), reason: reason})
	}

	// Tier 1: same category, adjusted.
	for i := range snap.Campaigns {
		c := &snap.Campaigns[i]
		if !c.Active || c.Category != target.Category {
			continue
		}
		if _, ok := seen[c.ID]; ok {
			continue
		}
		add(c, e.adjustSimilarScore(sc.CategoryBase, target, c),
			fmt.Sprintf("Similar campaign in %s category", c.Category))
	}

	// Tier 2: same organization, flat base.
	for i := range snap.Campaigns {
		c := &snap.Campaigns[i]
		if !c.Active || c.OrganizationID != target.OrganizationID {
			continue
		}
		if _, ok := seen[c.ID]; ok {
			continue
		}
		add(c, sc.OrganizationBase,
			fmt.Sprintf("From the same organization: %s", c.OrganizationName))
	}

	// Tier 3: everything else, adjusted from the default base.
	for i := range snap.Campaigns {
		c := &snap.Campaigns[i]
		if !c.Active {
			continue
		}
		if _, ok := seen[c.ID]; ok {
			continue
		}
		add(c, e.adjustSimilarScore(sc.DefaultBase, target, c), "You may also like this campaign")
	}

	sortByScore(candidates)
	return candidates
}

// adjustSimilarScore applies the shared adjustment rule to a tier base:
// goal-size affinity, progress proximity, minimum traction, featured.
func (e *Engine) adjustSimilarScore(base float64, target, c *CampaignRecord) float64 {
	sc := e.cfg.Similar
	score := base

	if target.GoalAmount > 0 && c.GoalAmount > 0 {
		ratio := target.GoalAmount / c.GoalAmount
		if ratio > 1 {
			ratio = 1 / ratio
		}
		if ratio > sc.GoalRatioThreshold {
			score += sc.GoalRatioBonus * ratio
		}
	}

	gap := target.Progress() - c.Progress()
	if gap < 0 {
		gap = -gap
	}
	if gap < sc.ProgressGapLimit {
		score += sc.ProgressBonus * (1 - gap/sc.ProgressGapLimit)
	}

	if c.DonationCount > sc.PopularityThreshold {
		score += sc.PopularityBonus
	}
	if c.Featured {
		score += sc.FeaturedBonus
	}

	return capScore(score)
}

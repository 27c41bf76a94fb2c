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

// GetTrending ranks active campaigns by donation velocity over the trailing
// window. A window with no completed donations yields an empty result.
func (e *Engine) GetTrending(ctx context.Context, days, topN int) (*TrendingResult, error) {
	if days < 1 {
		return nil, fmt.Errorf("%w: days must be at least 1", ErrInvalidRequest)
	}
	if topN < e.cfg.Limits.MinTopN || topN > e.cfg.Limits.TrendingMaxTopN {
		return nil, fmt.Errorf("%w: top_n must be between %d and %d",
			ErrInvalidRequest, e.cfg.Limits.MinTopN, e.cfg.Limits.TrendingMaxTopN)
	}

	start := time.Now()
	defer func() {
		metrics.RecommendationRequestDuration.WithLabelValues("trending").Observe(time.Since(start).Seconds())
	}()

	snap, stale, err := e.cache.get(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := e.now().AddDate(0, 0, -days)
	counts := make(map[int]int)
	for i := range snap.Donations {
		d := &snap.Donations[i]
		if d.CreatedAt.After(cutoff) {
			counts[d.CampaignID]++
		}
	}

	var candidates []scored
	for i := range snap.Campaigns {
		c := &snap.Campaigns[i]
		if !c.Active {
			continue
		}
		count := counts[c.ID]
		if count == 0 {
			continue
		}
		score := float64(count) / e.cfg.Trending.CountCap
		candidates = append(candidates, scored{
			campaign: c,
			score:    capScore(score),
			reason:   fmt.Sprintf("Trending with %d recent donations", count),
		})
	}
	sortByScore(candidates)

	items := make([]Recommendation, 0, topN)
	for _, c := range candidates {
		if len(items) >= topN {
			break
		}
		items = append(items, Recommendation{
			CampaignID: c.campaign.ID,
			Score:      c.score,
			Reason:     c.reason,
		})
	}

	return &TrendingResult{
		Days:      days,
		Campaigns: items,
		Total:     len(items),
		Stale:     stale,
	}, nil
}

// Baraka - Campaign Recommendation Engine for Donation Platforms
// Copyright 2026 Baraka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/baraka-giving/baraka

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/baraka-giving/baraka/internal/metrics"
)

// Engine produces personalized recommendations, similar-campaign results
// and trending rankings. All operations are total over their valid input
// domain: they return a possibly-empty ranked list rather than failing,
// except for ErrDataUnavailable and ErrInvalidRequest.
type Engine struct {
	cfg    *Config
	cache  *snapshotCache
	logger zerolog.Logger

	// now is injectable for tests.
	now func() time.Time
}

// Options configures a new Engine.
type Options struct {
	// Loader supplies campaigns and donations. Required.
	Loader SnapshotLoader

	// Embedder is the embedding service client. Optional; nil disables
	// semantic scoring and every pipeline takes its rule-based path.
	Embedder Embedder

	// Config holds the scoring weights. Nil means DefaultConfig.
	Config *Config

	// RefreshInterval is the maximum snapshot age before a lazy rebuild.
	RefreshInterval time.Duration

	Logger zerolog.Logger
}

// NewEngine creates a recommendation engine. The first snapshot is loaded
// lazily on the first request.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Loader == nil {
		return nil, fmt.Errorf("recommend: loader is required")
	}

	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}

	refreshInterval := opts.RefreshInterval
	if refreshInterval <= 0 {
		refreshInterval = time.Hour
	}

	logger := opts.Logger.With().Str("component", "recommend").Logger()

	return &Engine{
		cfg:    cfg,
		cache:  newSnapshotCache(opts.Loader, opts.Embedder, refreshInterval, logger),
		logger: logger,
		now:    time.Now,
	}, nil
}

// GetRecommendations returns up to topN personalized campaign
// recommendations for a donor, with no duplicates and never a campaign the
// donor already gave to. Results are ordered by stage (AI branch, rule
// chain, popularity fill) and descending by score within each stage. An
// unknown donor or one without history gets the popularity fallback.
func (e *Engine) GetRecommendations(ctx context.Context, donorID string, topN int) (*RecommendationsResult, error) {
	if topN < e.cfg.Limits.MinTopN || topN > e.cfg.Limits.MaxTopN {
		return nil, fmt.Errorf("%w: top_n must be between %d and %d",
			ErrInvalidRequest, e.cfg.Limits.MinTopN, e.cfg.Limits.MaxTopN)
	}

	start := time.Now()
	defer func() {
		metrics.RecommendationRequestDuration.WithLabelValues("user").Observe(time.Since(start).Seconds())
	}()

	snap, stale, err := e.cache.get(ctx)
	if err != nil {
		return nil, err
	}

	reqID := uuid.NewString()
	hist := buildDonorHistory(snap, donorID, e.now(), e.cfg.Profile)

	exclude := make(map[int]struct{})
	if hist != nil {
		for id := range hist.donated {
			exclude[id] = struct{}{}
		}
	}

	recs := make([]Recommendation, 0, topN)

	profile := buildProfile(snap, hist, e.cfg.Profile)
	if profile != nil {
		e.fill(&recs, e.scoreAI(snap, hist, profile, exclude), topN, exclude, branchAI)
	}
	// The rule chain both replaces the AI branch when no profile exists
	// and fills remaining slots after a partial AI pass: campaigns
	// without embeddings never surface through cosine scoring.
	if hist != nil && len(recs) < topN {
		e.fill(&recs, e.categoryStage(snap, hist, exclude), topN, exclude, branchCategory)
		e.fill(&recs, e.organizationStage(snap, hist, exclude), topN, exclude, branchOrganization)
		e.fill(&recs, e.similarDonorStage(snap, hist, exclude), topN, exclude, branchSimilarDonor)
	}
	e.fill(&recs, e.popularityStage(snap, exclude), topN, exclude, branchPopularity)

	e.logger.Debug().
		Str("request_id", reqID).
		Str("donor_id", donorID).
		Int("top_n", topN).
		Int("results", len(recs)).
		Bool("ai_branch", profile != nil).
		Bool("stale", stale).
		Msg("recommendations served")

	return &RecommendationsResult{
		UserID:          donorID,
		Recommendations: recs,
		Total:           len(recs),
		Stale:           stale,
	}, nil
}

// fill appends stage candidates to recs until topN, tracking exclusions.
func (e *Engine) fill(recs *[]Recommendation, candidates []scored, topN int, exclude map[int]struct{}, branch string) {
	added := 0
	for _, c := range candidates {
		if len(*recs) >= topN {
			break
		}
		if _, ok := exclude[c.campaign.ID]; ok {
			continue
		}
		*recs = append(*recs, Recommendation{
			CampaignID: c.campaign.ID,
			Score:      capScore(c.score),
			Reason:     c.reason,
		})
		exclude[c.campaign.ID] = struct{}{}
		added++
	}
	if added > 0 {
		metrics.RecordRecommendationBranch(branch, added)
	}
}

// scoreAI ranks every embeddable candidate by blended semantic similarity:
//
//	score = w_sim*cosine + w_pop*min(count/cap, 1) + bonuses, capped at 1
func (e *Engine) scoreAI(snap *Snapshot, hist *donorHistory, profile []float64, exclude map[int]struct{}) []scored {
	ai := e.cfg.AI
	var candidates []scored

	for i := range snap.Campaigns {
		c := &snap.Campaigns[i]
		if !c.Active {
			continue
		}
		if _, ok := exclude[c.ID]; ok {
			continue
		}
		vec, ok := snap.Embeddings[c.ID]
		if !ok {
			continue
		}

		sim := cosineSimilarity(profile, vec)

		popularity := float64(c.DonationCount) / ai.PopularityCap
		if popularity > 1 {
			popularity = 1
		}

		progress := c.Progress()
		progressBonus := ai.ProgressBonusOutside
		if progress >= ai.ProgressBandLow && progress <= ai.ProgressBandHigh {
			progressBonus = ai.ProgressBonus
		}

		score := ai.SimilarityWeight*sim + ai.PopularityWeight*popularity + progressBonus
		if hist.inCategories(c.Category) {
			score += ai.CategoryBonus
		}
		if c.OrganizationVerified {
			score += ai.VerifiedBonus
		}
		if c.Featured {
			score += ai.FeaturedBonus
		}

		candidates = append(candidates, scored{
			campaign: c,
			score:    capScore(score),
			reason:   fmt.Sprintf("AI semantic similarity (%.3f)", sim),
		})
	}

	sortByScore(candidates)
	return candidates
}

// categoryStage ranks campaigns in the donor's donated categories by
// min-max normalized popularity and progress.
func (e *Engine) categoryStage(snap *Snapshot, hist *donorHistory, exclude map[int]struct{}) []scored {
	fb := e.cfg.Fallback
	var candidates []scored

	for i := range snap.Campaigns {
		c := &snap.Campaigns[i]
		if !c.Active || !hist.inCategories(c.Category) {
			continue
		}
		if _, ok := exclude[c.ID]; ok {
			continue
		}
		candidates = append(candidates, scored{
			campaign: c,
			score:    fb.CategoryCountWeight*float64(c.DonationCount) + fb.CategoryProgressWeight*c.Progress(),
			reason:   fmt.Sprintf("Popular in %s category", c.Category),
		})
	}

	normalizeScores(candidates)
	sortByScore(candidates)
	return candidates
}

// organizationStage ranks campaigns from organizations the donor
// previously supported.
func (e *Engine) organizationStage(snap *Snapshot, hist *donorHistory, exclude map[int]struct{}) []scored {
	fb := e.cfg.Fallback
	var candidates []scored

	for i := range snap.Campaigns {
		c := &snap.Campaigns[i]
		if !c.Active {
			continue
		}
		if _, ok := hist.organizations[c.OrganizationID]; !ok {
			continue
		}
		if _, ok := exclude[c.ID]; ok {
			continue
		}
		raw := fb.OrgCountWeight*float64(c.DonationCount) + fb.OrgProgressWeight*c.Progress()
		if c.OrganizationVerified {
			raw += fb.OrgVerifiedBoost
		}
		candidates = append(candidates, scored{
			campaign: c,
			score:    raw,
			reason:   fmt.Sprintf("From trusted organization: %s", c.OrganizationName),
		})
	}

	normalizeScores(candidates)
	sortByScore(candidates)
	return candidates
}

// similarDonorStage finds donors who gave to any of the same campaigns and
// ranks the campaigns those donors supported by overlap count.
func (e *Engine) similarDonorStage(snap *Snapshot, hist *donorHistory, exclude map[int]struct{}) []scored {
	// Pass 1: the similar-donor set. Anonymous donations carry no donor id
	// and cannot form similarity edges.
	similarDonors := make(map[string]struct{})
	for i := range snap.Donations {
		d := &snap.Donations[i]
		if d.DonorID == "" || d.DonorID == hist.donorID {
			continue
		}
		if _, ok := hist.donated[d.CampaignID]; ok {
			similarDonors[d.DonorID] = struct{}{}
		}
	}
	if len(similarDonors) == 0 {
		return nil
	}

	// Pass 2: distinct similar donors per candidate campaign.
	supporters := make(map[int]map[string]struct{})
	for i := range snap.Donations {
		d := &snap.Donations[i]
		if _, ok := similarDonors[d.DonorID]; !ok {
			continue
		}
		if supporters[d.CampaignID] == nil {
			supporters[d.CampaignID] = make(map[string]struct{})
		}
		supporters[d.CampaignID][d.DonorID] = struct{}{}
	}

	var candidates []scored
	for i := range snap.Campaigns {
		c := &snap.Campaigns[i]
		if !c.Active {
			continue
		}
		if _, ok := exclude[c.ID]; ok {
			continue
		}
		count := len(supporters[c.ID])
		if count == 0 {
			continue
		}
		score := float64(count) / float64(len(similarDonors))
		if score > 1 {
			score = 1
		}
		candidates = append(candidates, scored{
			campaign: c,
			score:    score,
			reason:   fmt.Sprintf("Liked by %d similar donors", count),
		})
	}

	sortByScore(candidates)
	return candidates
}

// popularityStage ranks all remaining active campaigns globally.
func (e *Engine) popularityStage(snap *Snapshot, exclude map[int]struct{}) []scored {
	fb := e.cfg.Fallback
	var candidates []scored

	for i := range snap.Campaigns {
		c := &snap.Campaigns[i]
		if !c.Active {
			continue
		}
		if _, ok := exclude[c.ID]; ok {
			continue
		}
		raw := fb.PopCountWeight*float64(c.DonationCount) + fb.PopProgressWeight*c.Progress()
		if c.Featured {
			raw += fb.PopFeaturedBoost
		}
		candidates = append(candidates, scored{
			campaign: c,
			score:    raw,
			reason:   "Popular campaign",
		})
	}

	normalizeScores(candidates)
	sortByScore(candidates)
	return candidates
}

// SnapshotInfo reports the current snapshot's build time and the
// embedder's availability, for the health endpoint. Does not trigger a
// refresh.
func (e *Engine) SnapshotInfo() (builtAt *time.Time, embedderAvailable bool) {
	if snap := e.cache.peek(); snap != nil {
		t := snap.BuiltAt
		builtAt = &t
	}
	if e.cache.embedder != nil {
		embedderAvailable = e.cache.embedder.Available()
	}
	return builtAt, embedderAvailable
}

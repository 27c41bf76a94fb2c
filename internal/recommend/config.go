// Baraka - Campaign Recommendation Engine for Donation Platforms
// Copyright 2026 Baraka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/baraka-giving/baraka

package recommend

import (
	"fmt"
)

// Config contains all scoring configuration for the engine.
//
// The weights and bonuses are product-tuned constants. They are carried as
// named configuration rather than inlined literals so they can be audited
// and overridden, but their default values are given, not derived.
type Config struct {
	// AI contains weights for the semantic-similarity branch.
	AI AIScoringConfig `json:"ai"`

	// Fallback contains weights for the rule-based fallback chain.
	Fallback FallbackScoringConfig `json:"fallback"`

	// Similar contains weights for the similar-campaign finder.
	Similar SimilarScoringConfig `json:"similar"`

	// Profile contains parameters for donor profile construction.
	Profile ProfileConfig `json:"profile"`

	// Trending contains parameters for the trending ranker.
	Trending TrendingConfig `json:"trending"`

	// Limits contains request bounds.
	Limits LimitsConfig `json:"limits"`
}

// AIScoringConfig weights the semantic-similarity branch:
//
//	score = SimilarityWeight*cosine + PopularityWeight*min(count/PopularityCap, 1)
//	      + progress bonus + category bonus + verified bonus + featured bonus
//
// capped at 1.0.
type AIScoringConfig struct {
	// SimilarityWeight multiplies the cosine similarity between the donor
	// profile and the candidate embedding. Default: 0.7.
	SimilarityWeight float64 `json:"similarity_weight"`

	// PopularityWeight multiplies the normalized donation count.
	// Default: 0.2.
	PopularityWeight float64 `json:"popularity_weight"`

	// PopularityCap is the donation count at which a campaign reaches full
	// popularity. Default: 100.
	PopularityCap float64 `json:"popularity_cap"`

	// ProgressBonus is granted when progress sits in the active band
	// [ProgressBandLow, ProgressBandHigh]; ProgressBonusOutside otherwise.
	// Campaigns just started or nearly finished convert worse.
	// Defaults: 0.1 / 0.05, band 10..80.
	ProgressBonus        float64 `json:"progress_bonus"`
	ProgressBonusOutside float64 `json:"progress_bonus_outside"`
	ProgressBandLow      float64 `json:"progress_band_low"`
	ProgressBandHigh     float64 `json:"progress_band_high"`

	// CategoryBonus is granted when the candidate's category is among the
	// donor's historically-donated categories. Default: 0.1.
	CategoryBonus float64 `json:"category_bonus"`

	// VerifiedBonus is granted for verified organizations. Default: 0.05.
	VerifiedBonus float64 `json:"verified_bonus"`

	// FeaturedBonus is granted for featured campaigns. Default: 0.03.
	FeaturedBonus float64 `json:"featured_bonus"`
}

// FallbackScoringConfig weights the rule-based fallback chain. Raw scores
// within each stage are min-max normalized to [0,1] across that stage's
// candidates.
type FallbackScoringConfig struct {
	// Category stage: raw = CategoryCountWeight*count + CategoryProgressWeight*progress.
	// Defaults: 0.7 / 0.3.
	CategoryCountWeight    float64 `json:"category_count_weight"`
	CategoryProgressWeight float64 `json:"category_progress_weight"`

	// Organization stage: raw = OrgCountWeight*count + OrgProgressWeight*progress
	// + OrgVerifiedBoost when verified. Defaults: 0.4 / 0.3 / 30.
	OrgCountWeight    float64 `json:"org_count_weight"`
	OrgProgressWeight float64 `json:"org_progress_weight"`
	OrgVerifiedBoost  float64 `json:"org_verified_boost"`

	// Popularity stage: raw = PopCountWeight*count + PopProgressWeight*progress
	// + PopFeaturedBoost when featured. Defaults: 0.5 / 0.3 / 20.
	PopCountWeight    float64 `json:"pop_count_weight"`
	PopProgressWeight float64 `json:"pop_progress_weight"`
	PopFeaturedBoost  float64 `json:"pop_featured_boost"`
}

// SimilarScoringConfig weights the rule-based similar-campaign tiers.
type SimilarScoringConfig struct {
	// Tier base scores: same category, same organization, remainder.
	// Defaults: 0.8 / 0.7 / 0.5.
	CategoryBase     float64 `json:"category_base"`
	OrganizationBase float64 `json:"organization_base"`
	DefaultBase      float64 `json:"default_base"`

	// GoalRatioBonus scales with min(goalA,goalB)/max(goalA,goalB) when the
	// ratio exceeds GoalRatioThreshold. Defaults: 0.2 / 0.5.
	GoalRatioBonus     float64 `json:"goal_ratio_bonus"`
	GoalRatioThreshold float64 `json:"goal_ratio_threshold"`

	// ProgressBonus scales with 1 - |progressA-progressB|/ProgressGapLimit
	// when the progress gap is under ProgressGapLimit points.
	// Defaults: 0.1 / 20.
	ProgressBonus    float64 `json:"progress_bonus"`
	ProgressGapLimit float64 `json:"progress_gap_limit"`

	// PopularityBonus is granted when the candidate's donation count
	// exceeds PopularityThreshold. Defaults: 0.1 / 5.
	PopularityBonus     float64 `json:"popularity_bonus"`
	PopularityThreshold int     `json:"popularity_threshold"`

	// FeaturedBonus is granted for featured candidates. Default: 0.05.
	FeaturedBonus float64 `json:"featured_bonus"`
}

// ProfileConfig parameterizes donor profile construction. A donated
// campaign's weight is ln(1+total_amount) * (1 + RecencyBoost*recent_count)
// where recent_count counts that campaign's donations in the trailing
// RecentWindowDays.
type ProfileConfig struct {
	RecentWindowDays int     `json:"recent_window_days"`
	RecencyBoost     float64 `json:"recency_boost"`
}

// TrendingConfig parameterizes the trending ranker:
// score = min(count/CountCap, 1).
type TrendingConfig struct {
	CountCap float64 `json:"count_cap"`
}

// LimitsConfig contains request bounds.
type LimitsConfig struct {
	// MinTopN and MaxTopN bound top_n for recommendations and similarity.
	// Defaults: 1 / 10.
	MinTopN int `json:"min_top_n"`
	MaxTopN int `json:"max_top_n"`

	// TrendingMaxTopN bounds top_n for trending. Default: 50.
	TrendingMaxTopN int `json:"trending_max_top_n"`
}

// DefaultConfig returns a Config with the product-tuned default weights.
func DefaultConfig() *Config {
	return &Config{
		AI: AIScoringConfig{
			SimilarityWeight:     0.7,
			PopularityWeight:     0.2,
			PopularityCap:        100,
			ProgressBonus:        0.1,
			ProgressBonusOutside: 0.05,
			ProgressBandLow:      10,
			ProgressBandHigh:     80,
			CategoryBonus:        0.1,
			VerifiedBonus:        0.05,
			FeaturedBonus:        0.03,
		},
		Fallback: FallbackScoringConfig{
			CategoryCountWeight:    0.7,
			CategoryProgressWeight: 0.3,
			OrgCountWeight:         0.4,
			OrgProgressWeight:      0.3,
			OrgVerifiedBoost:       30,
			PopCountWeight:         0.5,
			PopProgressWeight:      0.3,
			PopFeaturedBoost:       20,
		},
		Similar: SimilarScoringConfig{
			CategoryBase:        0.8,
			OrganizationBase:    0.7,
			DefaultBase:         0.5,
			GoalRatioBonus:      0.2,
			GoalRatioThreshold:  0.5,
			ProgressBonus:       0.1,
			ProgressGapLimit:    20,
			PopularityBonus:     0.1,
			PopularityThreshold: 5,
			FeaturedBonus:       0.05,
		},
		Profile: ProfileConfig{
			RecentWindowDays: 90,
			RecencyBoost:     0.1,
		},
		Trending: TrendingConfig{
			CountCap: 10,
		},
		Limits: LimitsConfig{
			MinTopN:         1,
			MaxTopN:         10,
			TrendingMaxTopN: 50,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.AI.SimilarityWeight < 0 || c.AI.SimilarityWeight > 1 {
		return fmt.Errorf("ai.similarity_weight must be in [0, 1], got %f", c.AI.SimilarityWeight)
	}
	if c.AI.PopularityCap <= 0 {
		return fmt.Errorf("ai.popularity_cap must be positive, got %f", c.AI.PopularityCap)
	}
	if c.AI.ProgressBandLow > c.AI.ProgressBandHigh {
		return fmt.Errorf("ai.progress_band_low must be <= ai.progress_band_high, got %f > %f",
			c.AI.ProgressBandLow, c.AI.ProgressBandHigh)
	}
	if c.Similar.GoalRatioThreshold < 0 || c.Similar.GoalRatioThreshold > 1 {
		return fmt.Errorf("similar.goal_ratio_threshold must be in [0, 1], got %f", c.Similar.GoalRatioThreshold)
	}
	if c.Similar.ProgressGapLimit <= 0 {
		return fmt.Errorf("similar.progress_gap_limit must be positive, got %f", c.Similar.ProgressGapLimit)
	}
	if c.Profile.RecentWindowDays < 1 {
		return fmt.Errorf("profile.recent_window_days must be positive, got %d", c.Profile.RecentWindowDays)
	}
	if c.Trending.CountCap <= 0 {
		return fmt.Errorf("trending.count_cap must be positive, got %f", c.Trending.CountCap)
	}
	if c.Limits.MinTopN < 1 {
		return fmt.Errorf("limits.min_top_n must be positive, got %d", c.Limits.MinTopN)
	}
	if c.Limits.MaxTopN < c.Limits.MinTopN {
		return fmt.Errorf("limits.max_top_n must be >= limits.min_top_n, got %d < %d",
			c.Limits.MaxTopN, c.Limits.MinTopN)
	}
	if c.Limits.TrendingMaxTopN < 1 {
		return fmt.Errorf("limits.trending_max_top_n must be positive, got %d", c.Limits.TrendingMaxTopN)
	}
	return nil
}

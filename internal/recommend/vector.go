// Baraka - Campaign Recommendation Engine for Donation Platforms
// Copyright 2026 Baraka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/baraka-giving/baraka

package recommend

import (
	"math"
	"sort"
)

// scored pairs a campaign with a raw or final score. Candidate slices are
// built in snapshot order and sorted stably, so equal scores keep their
// discovery order.
type scored struct {
	campaign *CampaignRecord
	score    float64
	reason   string
}

// cosineSimilarity computes cosine similarity between two vectors.
// Mismatched or empty vectors yield 0.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// normalizeScores min-max normalizes candidate scores in place to [0,1].
// When all scores are equal they all map to 0.5.
func normalizeScores(candidates []scored) {
	if len(candidates) == 0 {
		return
	}

	minScore, maxScore := candidates[0].score, candidates[0].score
	for _, c := range candidates[1:] {
		if c.score < minScore {
			minScore = c.score
		}
		if c.score > maxScore {
			maxScore = c.score
		}
	}

	rang := maxScore - minScore
	if rang == 0 {
		for i := range candidates {
			candidates[i].score = 0.5
		}
		return
	}

	for i := range candidates {
		candidates[i].score = (candidates[i].score - minScore) / rang
	}
}

// sortByScore sorts candidates descending by score, stable so that equal
// scores keep candidate-discovery order.
func sortByScore(candidates []scored) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
}

// capScore clamps a score to [0, 1].
func capScore(s float64) float64 {
	if s > 1 {
		return 1
	}
	if s < 0 {
		return 0
	}
	return s
}

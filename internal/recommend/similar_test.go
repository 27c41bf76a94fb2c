// Baraka - Campaign Recommendation Engine for Donation Platforms
// Copyright 2026 Baraka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/baraka-giving/baraka

package recommend

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGetSimilarCampaignsInvalidTopN(t *testing.T) {
	e := newTestEngine(t, newTestLoader(), nil)

	for _, topN := range []int{0, 11} {
		_, err := e.GetSimilarCampaigns(context.Background(), 1, topN)
		if !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("top_n=%d: got %v, want ErrInvalidRequest", topN, err)
		}
	}
}

func TestGetSimilarCampaignsUnknownCampaign(t *testing.T) {
	e := newTestEngine(t, newTestLoader(), nil)

	result, err := e.GetSimilarCampaigns(context.Background(), 42, 5)
	if err != nil {
		t.Fatalf("GetSimilarCampaigns: %v", err)
	}
	if result.CampaignID != 42 {
		t.Errorf("CampaignID = %d, want 42", result.CampaignID)
	}
	if len(result.SimilarCampaigns) != 0 || result.Total != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestGetSimilarCampaignsRuleTiers(t *testing.T) {
	e := newTestEngine(t, newTestLoader(), nil)

	result, err := e.GetSimilarCampaigns(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("GetSimilarCampaigns: %v", err)
	}

	// Same category outranks same organization outranks the rest.
	wantIDs := []int{2, 3, 4}
	gotIDs := make([]int, len(result.SimilarCampaigns))
	for i, r := range result.SimilarCampaigns {
		gotIDs[i] = r.CampaignID
	}
	if len(gotIDs) != len(wantIDs) {
		t.Fatalf("got campaigns %v, want %v", gotIDs, wantIDs)
	}
	for i := range wantIDs {
		if gotIDs[i] != wantIDs[i] {
			t.Fatalf("got campaigns %v, want %v", gotIDs, wantIDs)
		}
	}

	recs := result.SimilarCampaigns
	// Campaign 2: category base 0.8 plus the full goal-ratio bonus.
	if recs[0].Score != 1.0 {
		t.Errorf("campaign 2 score = %v, want 1.0", recs[0].Score)
	}
	if recs[0].Reason != "Similar campaign in Health category" {
		t.Errorf("campaign 2 reason = %q", recs[0].Reason)
	}
	// Campaign 3: flat organization base.
	if recs[1].Score != 0.7 {
		t.Errorf("campaign 3 score = %v, want 0.7", recs[1].Score)
	}
	if recs[1].Reason != "From the same organization: Global Care" {
		t.Errorf("campaign 3 reason = %q", recs[1].Reason)
	}
	// Campaign 4: default base plus the full progress-proximity bonus.
	if recs[2].Score < 0.599 || recs[2].Score > 0.601 {
		t.Errorf("campaign 4 score = %v, want 0.6", recs[2].Score)
	}
	if recs[2].Reason != "You may also like this campaign" {
		t.Errorf("campaign 4 reason = %q", recs[2].Reason)
	}

	for _, r := range recs {
		if r.CampaignID == 1 {
			t.Error("campaign is similar to itself")
		}
		if r.CampaignID == 5 {
			t.Error("inactive campaign 5 surfaced as similar")
		}
	}
}

func TestGetSimilarCampaignsEmbeddingPath(t *testing.T) {
	e := newTestEngine(t, newTestLoader(), newTestEmbedder())

	result, err := e.GetSimilarCampaigns(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("GetSimilarCampaigns: %v", err)
	}

	if len(result.SimilarCampaigns) != 3 {
		t.Fatalf("got %d similar campaigns, want 3", len(result.SimilarCampaigns))
	}
	// Campaign 2 shares campaign 1's axis; 3 and 4 are orthogonal and
	// keep their snapshot order.
	first := result.SimilarCampaigns[0]
	if first.CampaignID != 2 || first.Score != 1.0 {
		t.Errorf("first = %+v, want campaign 2 at 1.0", first)
	}
	if result.SimilarCampaigns[1].CampaignID != 3 || result.SimilarCampaigns[2].CampaignID != 4 {
		t.Errorf("tie order = %d, %d, want 3, 4",
			result.SimilarCampaigns[1].CampaignID, result.SimilarCampaigns[2].CampaignID)
	}
	for _, r := range result.SimilarCampaigns {
		if !strings.HasPrefix(r.Reason, "AI semantic similarity (") {
			t.Errorf("campaign %d reason = %q, want AI similarity reason", r.CampaignID, r.Reason)
		}
	}
}

func TestGetSimilarCampaignsTopNTruncates(t *testing.T) {
	e := newTestEngine(t, newTestLoader(), nil)

	result, err := e.GetSimilarCampaigns(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("GetSimilarCampaigns: %v", err)
	}
	if len(result.SimilarCampaigns) != 1 || result.SimilarCampaigns[0].CampaignID != 2 {
		t.Errorf("got %+v, want just campaign 2", result.SimilarCampaigns)
	}
}

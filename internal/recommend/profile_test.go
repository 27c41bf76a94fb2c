// Baraka - Campaign Recommendation Engine for Donation Platforms
// Copyright 2026 Baraka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/baraka-giving/baraka

package recommend

import (
	"testing"
)

func testSnapshotWithEmbeddings() *Snapshot {
	return &Snapshot{
		Campaigns: testCampaigns(),
		Donations: testDonations(),
		Embeddings: map[int][]float64{
			1: {1, 0},
			2: {1, 0},
			3: {0, 1},
			4: {0, 1},
		},
		BuiltAt: testBase,
	}
}

func TestBuildDonorHistory(t *testing.T) {
	snap := testSnapshotWithEmbeddings()
	cfg := DefaultConfig().Profile

	hist := buildDonorHistory(snap, "alice", testBase, cfg)
	if hist == nil {
		t.Fatal("expected history for alice")
	}

	if !hist.hasDonated(1) || !hist.hasDonated(3) {
		t.Error("alice's donated campaigns missing from history")
	}
	if hist.hasDonated(2) {
		t.Error("campaign 2 wrongly marked as donated")
	}
	if !hist.inCategories("Health") || !hist.inCategories("Education") {
		t.Error("alice's categories missing from history")
	}
	if hist.inCategories("Water") {
		t.Error("Water wrongly in alice's categories")
	}
	if got := hist.totalAmounts[1]; got != 50 {
		t.Errorf("total for campaign 1 = %v, want 50", got)
	}
	// Only the 10-day-old donation falls inside the 90-day window.
	if got := hist.recentCounts[1]; got != 1 {
		t.Errorf("recent count for campaign 1 = %d, want 1", got)
	}
	if got := hist.recentCounts[3]; got != 0 {
		t.Errorf("recent count for campaign 3 = %d, want 0", got)
	}
}

func TestBuildDonorHistoryNilCases(t *testing.T) {
	snap := testSnapshotWithEmbeddings()
	cfg := DefaultConfig().Profile

	tests := []struct {
		name    string
		donorID string
	}{
		{"anonymous", ""},
		{"unknown donor", "nobody"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if h := buildDonorHistory(snap, tt.donorID, testBase, cfg); h != nil {
				t.Errorf("got %+v, want nil", h)
			}
		})
	}
}

func TestBuildProfileWeighsLargerRecentDonationsHigher(t *testing.T) {
	snap := testSnapshotWithEmbeddings()
	cfg := DefaultConfig().Profile

	hist := buildDonorHistory(snap, "alice", testBase, cfg)
	profile := buildProfile(snap, hist, cfg)
	if profile == nil {
		t.Fatal("expected a profile for alice")
	}
	if len(profile) != 2 {
		t.Fatalf("profile dimension = %d, want 2", len(profile))
	}

	// The $50 donation 10 days ago to the health-axis campaign must
	// outweigh the $10 donation 200 days ago to the education-axis one.
	if profile[0] <= profile[1] {
		t.Errorf("profile = %v, want health axis dominant", profile)
	}

	// Weights are normalized, so the components of this axis-aligned
	// profile sum to 1.
	if sum := profile[0] + profile[1]; sum < 0.999 || sum > 1.001 {
		t.Errorf("profile components sum to %v, want 1", sum)
	}
}

func TestBuildProfileNilCases(t *testing.T) {
	cfg := DefaultConfig().Profile
	snap := testSnapshotWithEmbeddings()
	hist := buildDonorHistory(snap, "alice", testBase, cfg)

	t.Run("nil history", func(t *testing.T) {
		if p := buildProfile(snap, nil, cfg); p != nil {
			t.Errorf("got %v, want nil", p)
		}
	})

	t.Run("no embeddings in snapshot", func(t *testing.T) {
		bare := &Snapshot{Campaigns: snap.Campaigns, Donations: snap.Donations, BuiltAt: testBase}
		if p := buildProfile(bare, hist, cfg); p != nil {
			t.Errorf("got %v, want nil", p)
		}
	})

	t.Run("donated campaigns have no vectors", func(t *testing.T) {
		partial := &Snapshot{
			Campaigns:  snap.Campaigns,
			Donations:  snap.Donations,
			Embeddings: map[int][]float64{2: {1, 0}, 4: {0, 1}},
			BuiltAt:    testBase,
		}
		if p := buildProfile(partial, hist, cfg); p != nil {
			t.Errorf("got %v, want nil", p)
		}
	})
}

// Baraka - Campaign Recommendation Engine for Donation Platforms
// Copyright 2026 Baraka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/baraka-giving/baraka

package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestCache(loader SnapshotLoader, embedder Embedder) *snapshotCache {
	c := newSnapshotCache(loader, embedder, time.Hour, zerolog.Nop())
	c.now = func() time.Time { return testBase }
	return c
}

func TestSnapshotCacheBuildsLazilyAndReuses(t *testing.T) {
	loader := newTestLoader()
	c := newTestCache(loader, nil)

	snap, stale, err := c.get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stale {
		t.Error("fresh build reported stale")
	}
	if len(snap.Campaigns) != 5 || len(snap.Donations) != 6 {
		t.Fatalf("snapshot has %d campaigns, %d donations", len(snap.Campaigns), len(snap.Donations))
	}
	if !snap.BuiltAt.Equal(testBase) {
		t.Errorf("BuiltAt = %v, want %v", snap.BuiltAt, testBase)
	}

	// A second request within the refresh interval serves the same
	// snapshot without touching the loader.
	again, _, err := c.get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again != snap {
		t.Error("fresh snapshot was rebuilt")
	}
	if loader.calls != 1 {
		t.Errorf("loader called %d times, want 1", loader.calls)
	}
}

func TestSnapshotCacheRefreshesWhenStale(t *testing.T) {
	loader := newTestLoader()
	c := newTestCache(loader, nil)

	if _, _, err := c.get(context.Background()); err != nil {
		t.Fatalf("get: %v", err)
	}

	later := testBase.Add(2 * time.Hour)
	c.now = func() time.Time { return later }

	snap, stale, err := c.get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stale {
		t.Error("winner of the refresh reported stale")
	}
	if !snap.BuiltAt.Equal(later) {
		t.Errorf("BuiltAt = %v, want %v", snap.BuiltAt, later)
	}
	if loader.calls != 2 {
		t.Errorf("loader called %d times, want 2", loader.calls)
	}
}

func TestSnapshotCacheServesStaleOnLoaderFailure(t *testing.T) {
	loader := newTestLoader()
	c := newTestCache(loader, nil)

	first, _, err := c.get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	loader.err = errors.New("connection refused")
	c.now = func() time.Time { return testBase.Add(2 * time.Hour) }

	snap, stale, err := c.get(context.Background())
	if err != nil {
		t.Fatalf("get after loader failure: %v", err)
	}
	if !stale {
		t.Error("expected stale flag after failed rebuild")
	}
	if snap != first {
		t.Error("expected the prior snapshot after failed rebuild")
	}
}

func TestSnapshotCacheFailsWhenNeverLoaded(t *testing.T) {
	loader := &stubLoader{err: errors.New("db locked")}
	c := newTestCache(loader, nil)

	_, _, err := c.get(context.Background())
	if !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("got %v, want ErrDataUnavailable", err)
	}
}

func TestSnapshotCacheServesStaleWhileRefreshInFlight(t *testing.T) {
	loader := newTestLoader()
	c := newTestCache(loader, nil)

	first, _, err := c.get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	c.now = func() time.Time { return testBase.Add(2 * time.Hour) }

	// Simulate an in-flight rebuild by holding the refresh lock.
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	snap, stale, err := c.get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !stale {
		t.Error("expected stale flag while another caller rebuilds")
	}
	if snap != first {
		t.Error("expected the prior snapshot while another caller rebuilds")
	}
	if loader.calls != 1 {
		t.Errorf("loader called %d times, want 1", loader.calls)
	}
}

func TestSnapshotCacheEmbedsCampaigns(t *testing.T) {
	embedder := newTestEmbedder()
	c := newTestCache(newTestLoader(), embedder)

	snap, _, err := c.get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(snap.Embeddings) != 5 {
		t.Fatalf("got %d embeddings, want 5", len(snap.Embeddings))
	}
	if vec := snap.Embeddings[1]; len(vec) != 2 || vec[0] != 1 {
		t.Errorf("campaign 1 embedding = %v", vec)
	}
}

func TestSnapshotCacheDegradesOnEmbedFailure(t *testing.T) {
	tests := []struct {
		name     string
		embedder *stubEmbedder
	}{
		{"embed error", &stubEmbedder{available: true, err: errors.New("model not loaded")}},
		{"service unavailable", &stubEmbedder{available: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCache(newTestLoader(), tt.embedder)

			snap, _, err := c.get(context.Background())
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if snap.HasEmbeddings() {
				t.Error("expected no embeddings when embedding fails")
			}
			if len(snap.Campaigns) == 0 {
				t.Error("expected campaigns despite embedding failure")
			}
		})
	}
}

func TestSnapshotCampaignLookup(t *testing.T) {
	snap := &Snapshot{Campaigns: testCampaigns()}

	if c := snap.Campaign(3); c == nil || c.Title != "School Library Fund" {
		t.Errorf("Campaign(3) = %+v", c)
	}
	if c := snap.Campaign(42); c != nil {
		t.Errorf("Campaign(42) = %+v, want nil", c)
	}
}

func TestCampaignEmbeddingText(t *testing.T) {
	tests := []struct {
		name     string
		campaign CampaignRecord
		want     string
	}{
		{
			name: "all parts present",
			campaign: CampaignRecord{
				Title: "Village Well Repair", Description: "Restoring safe drinking water",
				Category: "Water", OrganizationName: "Aqua Trust",
			},
			want: "Village Well Repair\nRestoring safe drinking water\nCategory: Water\nOrganization: Aqua Trust",
		},
		{
			name: "missing category and organization",
			campaign: CampaignRecord{
				Title: "Village Well Repair", Description: "Restoring safe drinking water",
			},
			want: "Village Well Repair\nRestoring safe drinking water",
		},
		{
			name:     "category only",
			campaign: CampaignRecord{Category: "Water"},
			want:     "Category: Water",
		},
		{
			name:     "all parts empty",
			campaign: CampaignRecord{},
			want:     embeddingPlaceholder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.campaign.EmbeddingText(); got != tt.want {
				t.Errorf("EmbeddingText() = %q, want %q", got, tt.want)
			}
		})
	}
}

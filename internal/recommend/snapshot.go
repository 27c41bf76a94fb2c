// Baraka - Campaign Recommendation Engine for Donation Platforms
// Copyright 2026 Baraka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/baraka-giving/baraka

package recommend

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/baraka-giving/baraka/internal/metrics"
)

// Embedder is the engine's view of the embedding service. Available is a
// capability flag: when false, every pipeline takes its rule-based path.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float64, error)
	Available() bool
}

// resolver is implemented by embedders that re-probe the service for
// available models. Checked per refresh so models appearing or
// disappearing at runtime are picked up.
type resolver interface {
	Resolve(ctx context.Context)
}

// embedBatchSize bounds the number of texts per embedding request.
const embedBatchSize = 64

// snapshotCache holds the atomically-swapped snapshot and the lazy
// refresh discipline: the caller that observes staleness and wins the
// refresh lock rebuilds synchronously; concurrent callers serve the prior
// snapshot. There is no background scheduler.
type snapshotCache struct {
	loader          SnapshotLoader
	embedder        Embedder // nil disables semantic scoring entirely
	refreshInterval time.Duration
	logger          zerolog.Logger

	// now is injectable for tests.
	now func() time.Time

	current   atomic.Pointer[Snapshot]
	refreshMu sync.Mutex
}

func newSnapshotCache(loader SnapshotLoader, embedder Embedder, refreshInterval time.Duration, logger zerolog.Logger) *snapshotCache {
	return &snapshotCache{
		loader:          loader,
		embedder:        embedder,
		refreshInterval: refreshInterval,
		logger:          logger.With().Str("component", "snapshot").Logger(),
		now:             time.Now,
	}
}

// get returns a snapshot to serve the current request, rebuilding first if
// the cached one is stale and no other caller is already rebuilding. The
// stale flag marks a response served from a snapshot older than the
// refresh interval.
func (c *snapshotCache) get(ctx context.Context) (*Snapshot, bool, error) {
	snap := c.current.Load()
	if snap != nil && c.now().Sub(snap.BuiltAt) <= c.refreshInterval {
		metrics.SnapshotAge.Set(c.now().Sub(snap.BuiltAt).Seconds())
		return snap, false, nil
	}

	if snap == nil {
		// Nothing has ever loaded: block on the lock so concurrent
		// startup requests wait for the first build instead of failing.
		c.refreshMu.Lock()
		defer c.refreshMu.Unlock()
		return c.refreshLocked(ctx)
	}

	if c.refreshMu.TryLock() {
		defer c.refreshMu.Unlock()
		return c.refreshLocked(ctx)
	}

	// Another caller is rebuilding; relaxed freshness says serve stale.
	metrics.RecordStaleServed()
	return snap, true, nil
}

// refreshLocked rebuilds the snapshot. Must be called with refreshMu held.
// Loader failure keeps the stale snapshot (non-fatal) unless no snapshot
// has ever loaded.
func (c *snapshotCache) refreshLocked(ctx context.Context) (*Snapshot, bool, error) {
	// A concurrent refresher may have swapped before we got the lock.
	prev := c.current.Load()
	if prev != nil && c.now().Sub(prev.BuiltAt) <= c.refreshInterval {
		return prev, false, nil
	}

	start := time.Now()
	snap, err := c.build(ctx)
	metrics.RecordSnapshotRefresh(time.Since(start), lenCampaigns(snap), lenDonations(snap), err)
	if err != nil {
		if prev != nil {
			c.logger.Warn().Err(err).Msg("snapshot rebuild failed, serving stale snapshot")
			return prev, true, nil
		}
		return nil, false, fmt.Errorf("%w: %s", ErrDataUnavailable, err)
	}

	c.current.Store(snap)
	c.logger.Info().
		Int("campaigns", len(snap.Campaigns)).
		Int("donations", len(snap.Donations)).
		Int("embeddings", len(snap.Embeddings)).
		Msg("snapshot rebuilt")
	return snap, false, nil
}

// build loads campaigns and donations and, when the embedding service is
// available, one vector per campaign. Embedding failures degrade the
// snapshot to rule-based scoring; they never fail the build.
func (c *snapshotCache) build(ctx context.Context) (*Snapshot, error) {
	campaigns, err := c.loader.LoadCampaigns(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading campaigns: %w", err)
	}

	donations, err := c.loader.LoadDonations(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading donations: %w", err)
	}

	snap := &Snapshot{
		Campaigns: campaigns,
		Donations: donations,
		BuiltAt:   c.now(),
	}

	snap.Embeddings = c.embedCampaigns(ctx, campaigns)
	return snap, nil
}

// embedCampaigns returns embeddings keyed by campaign id, or nil when the
// embedding service is unavailable or fails mid-batch.
func (c *snapshotCache) embedCampaigns(ctx context.Context, campaigns []CampaignRecord) map[int][]float64 {
	if c.embedder == nil || len(campaigns) == 0 {
		return nil
	}

	if r, ok := c.embedder.(resolver); ok {
		r.Resolve(ctx)
	}
	if !c.embedder.Available() {
		return nil
	}

	embeddings := make(map[int][]float64, len(campaigns))
	for start := 0; start < len(campaigns); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(campaigns) {
			end = len(campaigns)
		}
		batch := campaigns[start:end]

		texts := make([]string, len(batch))
		for i := range batch {
			texts[i] = batch[i].EmbeddingText()
		}

		vecs, err := c.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			c.logger.Warn().Err(err).Msg("campaign embedding failed, snapshot degrades to rule-based scoring")
			return nil
		}

		for i := range batch {
			embeddings[batch[i].ID] = vecs[i]
		}
	}

	return embeddings
}

// peek returns the current snapshot without triggering a refresh.
func (c *snapshotCache) peek() *Snapshot {
	return c.current.Load()
}

func lenCampaigns(s *Snapshot) int {
	if s == nil {
		return 0
	}
	return len(s.Campaigns)
}

func lenDonations(s *Snapshot) int {
	if s == nil {
		return 0
	}
	return len(s.Donations)
}

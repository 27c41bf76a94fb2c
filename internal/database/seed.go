// Baraka - Campaign Recommendation Engine for Donation Platforms
// Copyright 2026 Baraka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/baraka-giving/baraka

package database

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/baraka-giving/baraka/internal/logging"
)

// SeedMockData seeds the database with realistic mock data for demos and
// local development. Idempotent: a non-empty campaigns table is left alone.
func (db *DB) SeedMockData(ctx context.Context) error {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM campaigns`).Scan(&count); err != nil {
		return fmt.Errorf("checking existing campaigns: %w", err)
	}
	if count > 0 {
		logging.Debug().Int("campaigns", count).Msg("Skipping mock seed, campaigns table not empty")
		return nil
	}

	logging.Info().Msg("Seeding database with mock donation data...")

	rng := rand.New(rand.NewSource(42)) //nolint:gosec // demo data, not crypto

	organizations := []struct {
		name     string
		verified bool
	}{
		{"Global Care Alliance", true},
		{"Water for Tomorrow", true},
		{"Bright Futures Education", false},
		{"Rapid Relief Network", true},
		{"Green Horizons", false},
	}

	campaigns := []struct {
		title       string
		description string
		category    string
		org         int
		goal        float64
		featured    bool
	}{
		{"Mobile Health Clinics", "Bringing primary care to remote villages", "Health", 1, 50000, true},
		{"Vaccination Outreach", "Childhood immunization drives across three districts", "Health", 1, 20000, false},
		{"Village Well Restoration", "Repairing hand pumps and drilling new boreholes", "Water", 2, 15000, true},
		{"Clean Water Filters", "Household ceramic filters for flood-affected families", "Water", 2, 8000, false},
		{"School Library Fund", "Books and reading corners for rural classrooms", "Education", 3, 12000, false},
		{"Teacher Training Program", "Certifying volunteer teachers in underserved schools", "Education", 3, 30000, false},
		{"Earthquake Emergency Shelter", "Winterized tents and blankets for displaced families", "Emergency", 4, 75000, true},
		{"Flood Relief Kits", "Food, hygiene and first-aid kits for flooded regions", "Emergency", 4, 40000, false},
		{"Community Reforestation", "Planting native trees with local cooperatives", "Environment", 5, 10000, false},
		{"Solar Lights for Students", "Solar lamps so students can study after dark", "Environment", 5, 6000, false},
	}

	donorIDs := []string{
		"donor-001", "donor-002", "donor-003", "donor-004", "donor-005",
		"donor-006", "donor-007", "donor-008", "donor-009", "donor-010",
		"donor-011", "donor-012",
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for i, o := range organizations {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO organizations (id, name, verified) VALUES (?, ?, ?)`,
			i+1, o.name, o.verified); err != nil {
			return fmt.Errorf("seeding organization %q: %w", o.name, err)
		}
	}

	const numDonations = 400
	now := time.Now().UTC()
	counts := make([]int, len(campaigns))
	totals := make([]float64, len(campaigns))

	for i := 0; i < numDonations; i++ {
		campaignIdx := rng.Intn(len(campaigns))
		c := campaigns[campaignIdx]

		// Roughly one donation in eight is anonymous.
		donorID := ""
		if rng.Intn(8) != 0 {
			donorID = donorIDs[rng.Intn(len(donorIDs))]
		}

		amount := float64(5 + rng.Intn(200))
		createdAt := now.AddDate(0, 0, -rng.Intn(180))

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO donations (id, campaign_id, donor_id, amount, category, organization_id, status, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, 'completed', ?)`,
			i+1, campaignIdx+1, donorID, amount, c.category, c.org, createdAt); err != nil {
			return fmt.Errorf("seeding donation %d: %w", i+1, err)
		}

		counts[campaignIdx]++
		totals[campaignIdx] += amount
	}

	for i, c := range campaigns {
		current := totals[i]
		if current > c.goal {
			current = c.goal
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO campaigns (id, title, description, category, organization_id, goal_amount, current_amount, donation_count, featured, active, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, TRUE, ?)`,
			i+1, c.title, c.description, c.category, c.org, c.goal, current, counts[i], c.featured,
			now.AddDate(0, 0, -200+rng.Intn(150))); err != nil {
			return fmt.Errorf("seeding campaign %q: %w", c.title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed transaction: %w", err)
	}

	logging.Info().
		Int("organizations", len(organizations)).
		Int("campaigns", len(campaigns)).
		Int("donations", numDonations).
		Msg("Mock data seeded")

	return nil
}

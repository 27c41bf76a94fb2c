// Baraka - Campaign Recommendation Engine for Donation Platforms
// Copyright 2026 Baraka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/baraka-giving/baraka

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the read-model tables. All columns are defined in
// the initial CREATE TABLE statements; the engine is not the system of
// record, so no migration machinery is carried.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// tableCreationQueries returns the table and index creation statements.
func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS organizations (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			verified BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS campaigns (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL,
			organization_id INTEGER NOT NULL,
			goal_amount DOUBLE NOT NULL,
			current_amount DOUBLE NOT NULL DEFAULT 0,
			donation_count INTEGER NOT NULL DEFAULT 0,
			featured BOOLEAN NOT NULL DEFAULT FALSE,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS donations (
			id INTEGER PRIMARY KEY,
			campaign_id INTEGER NOT NULL,
			donor_id TEXT NOT NULL DEFAULT '',
			amount DOUBLE NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			organization_id INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'completed',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// Snapshot loads filter on these.
		`CREATE INDEX IF NOT EXISTS idx_campaigns_active ON campaigns(active)`,
		`CREATE INDEX IF NOT EXISTS idx_donations_status ON donations(status)`,
		`CREATE INDEX IF NOT EXISTS idx_donations_donor ON donations(donor_id)`,
		`CREATE INDEX IF NOT EXISTS idx_donations_created ON donations(created_at)`,
	}
}

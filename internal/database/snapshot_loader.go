// Baraka - Campaign Recommendation Engine for Donation Platforms
// Copyright 2026 Baraka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/baraka-giving/baraka

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/baraka-giving/baraka/internal/metrics"
	"github.com/baraka-giving/baraka/internal/recommend"
)

// LoadCampaigns returns every active campaign with its organization
// denormalized in, ordered by id.
func (db *DB) LoadCampaigns(ctx context.Context) ([]recommend.CampaignRecord, error) {
	start := time.Now()

	query := `
		SELECT
			c.id, c.title, c.description, c.category,
			c.organization_id,
			COALESCE(o.name, '') AS organization_name,
			COALESCE(o.verified, FALSE) AS organization_verified,
			c.goal_amount, c.current_amount, c.donation_count,
			c.featured, c.active, c.created_at
		FROM campaigns c
		LEFT JOIN organizations o ON o.id = c.organization_id
		WHERE c.active = TRUE
		ORDER BY c.id`

	rows, err := db.conn.QueryContext(ctx, query)
	metrics.RecordDBQuery("select", "campaigns", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("querying campaigns: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only query

	var campaigns []recommend.CampaignRecord
	for rows.Next() {
		var c recommend.CampaignRecord
		if err := rows.Scan(
			&c.ID, &c.Title, &c.Description, &c.Category,
			&c.OrganizationID, &c.OrganizationName, &c.OrganizationVerified,
			&c.GoalAmount, &c.CurrentAmount, &c.DonationCount,
			&c.Featured, &c.Active, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning campaign row: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating campaign rows: %w", err)
	}

	return campaigns, nil
}

// LoadDonations returns every completed donation, ordered by id. Pending
// and refunded donations never enter the snapshot.
func (db *DB) LoadDonations(ctx context.Context) ([]recommend.DonationRecord, error) {
	start := time.Now()

	query := `
		SELECT
			id, campaign_id, donor_id, amount,
			category, organization_id, status, created_at
		FROM donations
		WHERE status = 'completed'
		ORDER BY id`

	rows, err := db.conn.QueryContext(ctx, query)
	metrics.RecordDBQuery("select", "donations", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("querying donations: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only query

	var donations []recommend.DonationRecord
	for rows.Next() {
		var d recommend.DonationRecord
		if err := rows.Scan(
			&d.ID, &d.CampaignID, &d.DonorID, &d.Amount,
			&d.Category, &d.OrganizationID, &d.Status, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning donation row: %w", err)
		}
		donations = append(donations, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating donation rows: %w", err)
	}

	return donations, nil
}

// Baraka - Campaign Recommendation Engine for Donation Platforms
// Copyright 2026 Baraka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/baraka-giving/baraka

package recommend

import "errors"

var (
	// ErrDataUnavailable is returned when no snapshot has ever been loaded.
	// A stale-but-present snapshot is never an error; freshness is
	// best-effort.
	ErrDataUnavailable = errors.New("recommendation data unavailable")

	// ErrInvalidRequest is returned when request parameters are out of
	// their allowed bounds (e.g. top_n).
	ErrInvalidRequest = errors.New("invalid recommendation request")
)

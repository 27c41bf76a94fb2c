// Baraka - Campaign Recommendation Engine for Donation Platforms
// Copyright 2026 Baraka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/baraka-giving/baraka

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/baraka-giving/baraka/internal/logging"
	"github.com/baraka-giving/baraka/internal/models"
	"github.com/baraka-giving/baraka/internal/recommend"
	"github.com/baraka-giving/baraka/internal/validation"
)

// sanitizeLogValue removes control characters from strings to prevent log
// injection. Donor ids and error text reach logs verbatim otherwise.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=60")
	w.Header().Set("Vary", "Accept-Encoding")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", generateETag(data))

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// generateETag creates a simple ETag from data using FNV-1a hash.
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return strconv.FormatUint(uint64(hash), 16)
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().
			Str("code", sanitizeLogValue(code)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API Error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Data:   nil,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondEngineError maps engine sentinel errors to HTTP statuses.
func respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, recommend.ErrInvalidRequest):
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	case errors.Is(err, recommend.ErrDataUnavailable):
		respondError(w, http.StatusServiceUnavailable, "DATA_UNAVAILABLE",
			"recommendation data is not available yet", err)
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"internal server error", err)
	}
}

// validateRequest validates a struct using go-playground/validator and
// converts failures to the shared API error format.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// validateTopN bounds a top_n parameter against the configured maximum.
// Struct tags cannot carry runtime configuration, so this check runs
// separately from validateRequest.
func validateTopN(topN, maxTopN int) *models.APIError {
	verr := validation.ValidateVar("TopN", topN, fmt.Sprintf("min=1,max=%d", maxTopN))
	if verr == nil {
		return nil
	}
	apiErr := verr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// getIntParam extracts an integer query parameter with a default value.
// A malformed value falls back to the default rather than erroring; range
// validation happens downstream.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// successMetadata builds response metadata for a served request.
func successMetadata(start time.Time, stale bool) models.Metadata {
	return models.Metadata{
		Timestamp:   time.Now(),
		QueryTimeMS: time.Since(start).Milliseconds(),
		Stale:       stale,
	}
}

// Baraka - Campaign Recommendation Engine for Donation Platforms
// Copyright 2026 Baraka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/baraka-giving/baraka

// Package metrics provides Prometheus instrumentation for:
//   - Snapshot loading and refresh
//   - Embedding service calls and circuit breaker state
//   - Recommendation serving (per branch)
//   - Database query performance (DuckDB)
//   - API endpoint latency and throughput
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Snapshot Metrics
	SnapshotRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "snapshot_refresh_duration_seconds",
			Help:    "Duration of snapshot rebuilds in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	SnapshotRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_refresh_total",
			Help: "Total number of snapshot refresh attempts",
		},
		[]string{"result"}, // "success", "failure", "stale_served"
	)

	SnapshotAge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapshot_age_seconds",
			Help: "Age of the currently served snapshot in seconds",
		},
	)

	SnapshotCampaigns = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapshot_campaigns",
			Help: "Number of active campaigns in the current snapshot",
		},
	)

	SnapshotDonations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapshot_donations",
			Help: "Number of completed donations in the current snapshot",
		},
	)

	// Embedding Service Metrics
	EmbedRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "embed_request_duration_seconds",
			Help:    "Duration of embedding service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)

	EmbedRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embed_request_errors_total",
			Help: "Total number of embedding service request errors",
		},
		[]string{"model"},
	)

	EmbedModelTier = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "embed_model_tier",
			Help: "Active embedding model tier (0=unavailable, 1=primary, 2=fallback)",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	// Recommendation Serving Metrics
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_served_total",
			Help: "Total number of recommendation items served",
		},
		[]string{"branch"}, // "ai", "category", "organization", "similar_donor", "popularity"
	)

	RecommendationRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_request_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation"}, // "user", "similar", "trending"
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)
)

// RecordSnapshotRefresh records the outcome of a snapshot rebuild.
func RecordSnapshotRefresh(duration time.Duration, campaigns, donations int, err error) {
	SnapshotRefreshDuration.Observe(duration.Seconds())
	if err != nil {
		SnapshotRefreshTotal.WithLabelValues("failure").Inc()
		return
	}
	SnapshotRefreshTotal.WithLabelValues("success").Inc()
	SnapshotCampaigns.Set(float64(campaigns))
	SnapshotDonations.Set(float64(donations))
}

// RecordStaleServed records a request served from a stale snapshot while a
// concurrent refresh was in flight.
func RecordStaleServed() {
	SnapshotRefreshTotal.WithLabelValues("stale_served").Inc()
}

// RecordEmbedRequest records an embedding service call.
func RecordEmbedRequest(model string, duration time.Duration, err error) {
	EmbedRequestDuration.WithLabelValues(model).Observe(duration.Seconds())
	if err != nil {
		EmbedRequestErrors.WithLabelValues(model).Inc()
	}
}

// RecordRecommendationBranch counts an item served from a scoring branch.
func RecordRecommendationBranch(branch string, count int) {
	RecommendationsServed.WithLabelValues(branch).Add(float64(count))
}

// RecordAPIRequest records an API request's outcome and latency.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}

// RecordDBQuery records a DuckDB query.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

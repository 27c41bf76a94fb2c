// Baraka - Campaign Recommendation Engine for Donation Platforms
// Copyright 2026 Baraka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/baraka-giving/baraka

/*
Package middleware provides HTTP middleware for the recommendation API.

Two components are carried here; everything else (real IP extraction,
panic recovery, compression, CORS, rate limiting) comes from chi and its
companion modules and is wired in the router.

  - Request ID: UUID-based request tracking; honors an upstream
    X-Request-ID header and propagates the id via context and response
    header.
  - Prometheus Metrics: per-endpoint request count, latency and
    in-flight gauge, labeled by the chi route pattern so path
    parameters do not explode metric cardinality.

All middleware is safe for concurrent use.
*/
package middleware

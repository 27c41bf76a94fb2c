// Baraka - Campaign Recommendation Engine for Donation Platforms
// Copyright 2026 Baraka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/baraka-giving/baraka

package embed

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/baraka-giving/baraka/internal/metrics"
)

// BreakerClient wraps an Embedder with a circuit breaker so a slow or
// failing embedding service cannot drag down snapshot refreshes. While the
// breaker is open the embedder reports Available() == false and the engine
// builds rule-based-only snapshots; the next refresh after the open timeout
// probes again.
//
// The breaker uses real time for its timeout calculations. Tests should
// exercise the wrapped client directly or drive failures through it.
type BreakerClient struct {
	inner Embedder
	cb    *gobreaker.CircuitBreaker[[][]float64]
	name  string
}

// BreakerSettings configures the circuit breaker.
type BreakerSettings struct {
	// MaxFailures is the consecutive-failure count that opens the circuit.
	MaxFailures uint32

	// OpenTimeout is how long the circuit stays open before a probe.
	OpenTimeout time.Duration
}

// NewBreakerClient wraps an Embedder with circuit breaker protection.
func NewBreakerClient(inner Embedder, settings BreakerSettings, logger zerolog.Logger) *BreakerClient {
	cbName := "embed-service"
	cbLogger := logger.With().Str("component", "embed_breaker").Logger()

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[[][]float64](gobreaker.Settings{
		Name:    cbName,
		Timeout: settings.OpenTimeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.MaxFailures
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			cbLogger.Info().
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &BreakerClient{
		inner: inner,
		cb:    cb,
		name:  cbName,
	}
}

// EmbedTexts calls the wrapped embedder with circuit breaker protection.
func (b *BreakerClient) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	result, err := b.cb.Execute(func() ([][]float64, error) {
		return b.inner.EmbedTexts(ctx, texts)
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return result, nil
}

// Available reports whether the wrapped embedder is usable and the circuit
// is not open. Breaker-open counts as embeddings unavailable.
func (b *BreakerClient) Available() bool {
	return b.inner.Available() && b.cb.State() != gobreaker.StateOpen
}

// ActiveModel returns the wrapped embedder's resolved model.
func (b *BreakerClient) ActiveModel() string {
	return b.inner.ActiveModel()
}

// Resolve re-probes the wrapped embedder's model availability when it
// supports resolution. Probing stays outside the breaker: it is a cheap
// read that should run even while embed calls are being rejected.
func (b *BreakerClient) Resolve(ctx context.Context) {
	if r, ok := b.inner.(interface{ Resolve(context.Context) }); ok {
		r.Resolve(ctx)
	}
}

// stateToFloat converts circuit breaker state to a metric value.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to a string for logging.
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

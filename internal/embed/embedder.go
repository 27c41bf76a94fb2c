// Baraka - Campaign Recommendation Engine for Donation Platforms
// Copyright 2026 Baraka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/baraka-giving/baraka

// Package embed provides the client for the embedding service used to turn
// campaign text into semantic vectors.
//
// The client speaks the Ollama-compatible /api/embed protocol and supports a
// two-tier model fallback: a primary multilingual model and a smaller
// fallback model. If neither model is served, Available() reports false and
// the recommendation engine takes its rule-based paths. Embedding
// unavailability is a capability, never an error.
package embed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/baraka-giving/baraka/internal/metrics"
)

// Embedder generates embeddings for batches of texts.
type Embedder interface {
	// EmbedTexts returns one vector per input text, in input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float64, error)

	// Available reports whether an embedding model is currently usable.
	Available() bool

	// ActiveModel returns the model the client resolved to, or "" when
	// unavailable.
	ActiveModel() string
}

// Model tier values reported to the embed_model_tier gauge.
const (
	tierUnavailable = 0
	tierPrimary     = 1
	tierFallback    = 2
)

// Client is an Ollama-compatible embedding client with two-tier model
// fallback. Resolve must be called before the first EmbedTexts; the engine
// calls it at every snapshot refresh so that models appearing or
// disappearing at runtime are picked up.
type Client struct {
	baseURL       string
	primaryModel  string
	fallbackModel string
	httpClient    *http.Client
	logger        zerolog.Logger

	mu          sync.RWMutex
	activeModel string
}

// Options configures a Client.
type Options struct {
	BaseURL       string
	PrimaryModel  string
	FallbackModel string
	Timeout       time.Duration
}

// NewClient creates an embedding client. The client starts unresolved;
// call Resolve to probe the service.
func NewClient(opts Options, logger zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		primaryModel:  opts.PrimaryModel,
		fallbackModel: opts.FallbackModel,
		httpClient:    &http.Client{Timeout: timeout},
		logger:        logger.With().Str("component", "embed").Logger(),
	}
}

// Resolve probes the service's model list and selects the best available
// tier: primary model, then fallback model, then unavailable. Never returns
// an error; an unreachable service resolves to unavailable.
func (c *Client) Resolve(ctx context.Context) {
	models, err := c.listModels(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("embedding service unreachable, semantic scoring disabled")
		c.setActiveModel("")
		metrics.EmbedModelTier.Set(tierUnavailable)
		return
	}

	switch {
	case modelPresent(models, c.primaryModel):
		c.setActiveModel(c.primaryModel)
		metrics.EmbedModelTier.Set(tierPrimary)
		c.logger.Info().Str("model", c.primaryModel).Msg("embedding model resolved")
	case c.fallbackModel != "" && modelPresent(models, c.fallbackModel):
		c.setActiveModel(c.fallbackModel)
		metrics.EmbedModelTier.Set(tierFallback)
		c.logger.Info().Str("model", c.fallbackModel).Msg("embedding model resolved to fallback tier")
	default:
		c.setActiveModel("")
		metrics.EmbedModelTier.Set(tierUnavailable)
		c.logger.Warn().
			Str("primary", c.primaryModel).
			Str("fallback", c.fallbackModel).
			Msg("no embedding model available, semantic scoring disabled")
	}
}

// Available reports whether a model has been resolved.
func (c *Client) Available() bool {
	return c.ActiveModel() != ""
}

// ActiveModel returns the resolved model name, or "" when unavailable.
func (c *Client) ActiveModel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activeModel
}

func (c *Client) setActiveModel(model string) {
	c.mu.Lock()
	c.activeModel = model
	c.mu.Unlock()
}

// EmbedTexts generates one embedding per input text via /api/embed.
func (c *Client) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	model := c.ActiveModel()
	if model == "" {
		return nil, fmt.Errorf("no embedding model available")
	}
	if len(texts) == 0 {
		return nil, nil
	}

	body := map[string]any{
		"model": model,
		"input": texts,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/embed", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.RecordEmbedRequest(model, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("embed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embed request returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Embeddings [][]float64 `json:"embeddings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding embeddings: %w", err)
	}

	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embed response has %d vectors for %d inputs", len(result.Embeddings), len(texts))
	}

	return result.Embeddings, nil
}

// listModels fetches the service's model tags.
func (c *Client) listModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("creating tags request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tags request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tags request returned %d", resp.StatusCode)
	}

	var result struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding tags response: %w", err)
	}

	names := make([]string, len(result.Models))
	for i, m := range result.Models {
		names[i] = m.Name
	}
	return names, nil
}

// modelPresent matches a requested model against served tags, ignoring the
// tag suffix ("bge-m3" matches "bge-m3:latest").
func modelPresent(served []string, model string) bool {
	if model == "" {
		return false
	}
	base := strings.SplitN(model, ":", 2)[0]
	for _, name := range served {
		if strings.SplitN(name, ":", 2)[0] == base {
			return true
		}
	}
	return false
}

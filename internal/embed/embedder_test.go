// Baraka - Campaign Recommendation Engine for Donation Platforms
// Copyright 2026 Baraka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/baraka-giving/baraka

package embed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeOllama serves /api/tags and /api/embed for a fixed model list.
func fakeOllama(t *testing.T, models []string, dims int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"models":[`)
			for i, m := range models {
				if i > 0 {
					fmt.Fprint(w, ",")
				}
				fmt.Fprintf(w, `{"name":%q}`, m)
			}
			fmt.Fprint(w, `]}`)
		case "/api/embed":
			var req struct {
				Model string   `json:"model"`
				Input []string `json:"input"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"embeddings":[`)
			for i := 0; i < len(req.Input); i++ {
				if i > 0 {
					fmt.Fprint(w, ",")
				}
				fmt.Fprint(w, "[")
				for d := 0; d < dims; d++ {
					if d > 0 {
						fmt.Fprint(w, ",")
					}
					fmt.Fprintf(w, "%d.0", i+1)
				}
				fmt.Fprint(w, "]")
			}
			fmt.Fprint(w, `]}`)
		default:
			http.NotFound(w, r)
		}
	}))
}

func newTestClient(url string) *Client {
	return NewClient(Options{
		BaseURL:       url,
		PrimaryModel:  "bge-m3",
		FallbackModel: "all-minilm",
		Timeout:       5 * time.Second,
	}, zerolog.Nop())
}

func TestResolve_TierSelection(t *testing.T) {
	tests := []struct {
		name      string
		models    []string
		wantModel string
	}{
		{"primary present", []string{"bge-m3:latest", "all-minilm:latest"}, "bge-m3"},
		{"fallback only", []string{"all-minilm:latest", "llama3:8b"}, "all-minilm"},
		{"tag suffix ignored", []string{"bge-m3:567m"}, "bge-m3"},
		{"neither present", []string{"llama3:8b"}, ""},
		{"empty model list", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := fakeOllama(t, tt.models, 4)
			defer srv.Close()

			c := newTestClient(srv.URL)
			c.Resolve(context.Background())

			if got := c.ActiveModel(); got != tt.wantModel {
				t.Errorf("ActiveModel() = %q, want %q", got, tt.wantModel)
			}
			if got := c.Available(); got != (tt.wantModel != "") {
				t.Errorf("Available() = %v, want %v", got, tt.wantModel != "")
			}
		})
	}
}

func TestResolve_ServiceUnreachable(t *testing.T) {
	srv := fakeOllama(t, []string{"bge-m3"}, 4)
	srv.Close() // unreachable

	c := newTestClient(srv.URL)
	c.Resolve(context.Background())

	if c.Available() {
		t.Error("Available() = true for unreachable service")
	}
}

func TestEmbedTexts(t *testing.T) {
	srv := fakeOllama(t, []string{"bge-m3:latest"}, 3)
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.Resolve(context.Background())
	if !c.Available() {
		t.Fatal("embedder should be available")
	}

	vecs, err := c.EmbedTexts(context.Background(), []string{"clean water wells", "school meals"})
	if err != nil {
		t.Fatalf("EmbedTexts failed: %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vecs))
	}
	for i, v := range vecs {
		if len(v) != 3 {
			t.Errorf("vector %d has %d dims, want 3", i, len(v))
		}
	}
}

func TestEmbedTexts_Unresolved(t *testing.T) {
	c := newTestClient("http://127.0.0.1:0")
	if _, err := c.EmbedTexts(context.Background(), []string{"x"}); err == nil {
		t.Error("expected error when no model resolved")
	}
}

func TestEmbedTexts_EmptyInput(t *testing.T) {
	srv := fakeOllama(t, []string{"bge-m3"}, 3)
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.Resolve(context.Background())

	vecs, err := c.EmbedTexts(context.Background(), nil)
	if err != nil {
		t.Fatalf("EmbedTexts(nil) failed: %v", err)
	}
	if len(vecs) != 0 {
		t.Errorf("got %d vectors for empty input", len(vecs))
	}
}

func TestEmbedTexts_VectorCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			fmt.Fprint(w, `{"models":[{"name":"bge-m3"}]}`)
		case "/api/embed":
			fmt.Fprint(w, `{"embeddings":[[1.0,2.0]]}`) // one vector for two inputs
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.Resolve(context.Background())

	if _, err := c.EmbedTexts(context.Background(), []string{"a", "b"}); err == nil {
		t.Error("expected error on vector count mismatch")
	}
}

// failingEmbedder always errors; used to drive the breaker open.
type failingEmbedder struct{ calls int }

func (f *failingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	f.calls++
	return nil, fmt.Errorf("embed service down")
}
func (f *failingEmbedder) Available() bool     { return true }
func (f *failingEmbedder) ActiveModel() string { return "bge-m3" }

func TestBreakerClient_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &failingEmbedder{}
	bc := NewBreakerClient(inner, BreakerSettings{
		MaxFailures: 3,
		OpenTimeout: time.Minute,
	}, zerolog.Nop())

	for i := 0; i < 3; i++ {
		if _, err := bc.EmbedTexts(context.Background(), []string{"x"}); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}

	if bc.Available() {
		t.Error("Available() = true after breaker opened")
	}

	// Further calls are rejected without reaching the inner embedder.
	callsBefore := inner.calls
	if _, err := bc.EmbedTexts(context.Background(), []string{"x"}); err == nil {
		t.Error("expected rejection while breaker open")
	}
	if inner.calls != callsBefore {
		t.Errorf("inner embedder called %d times while open, want 0", inner.calls-callsBefore)
	}
}

func TestBreakerClient_PassThrough(t *testing.T) {
	srv := fakeOllama(t, []string{"bge-m3"}, 2)
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.Resolve(context.Background())

	bc := NewBreakerClient(c, BreakerSettings{MaxFailures: 5, OpenTimeout: time.Minute}, zerolog.Nop())

	if !bc.Available() {
		t.Fatal("breaker client should be available")
	}
	if got := bc.ActiveModel(); got != "bge-m3" {
		t.Errorf("ActiveModel() = %q, want bge-m3", got)
	}

	vecs, err := bc.EmbedTexts(context.Background(), []string{"water"})
	if err != nil {
		t.Fatalf("EmbedTexts through breaker failed: %v", err)
	}
	if len(vecs) != 1 {
		t.Errorf("got %d vectors, want 1", len(vecs))
	}
}

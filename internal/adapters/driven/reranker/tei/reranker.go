// Package tei provides a rerank scorer adapter for text-embeddings-inference
// compatible /rerank endpoints.
package tei

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/campuskit/tutorbot/internal/core/ports/driven"
)

// Ensure RerankScorer implements the interface.
var _ driven.RerankScorer = (*RerankScorer)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:8787"
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the rerank scorer.
type Config struct {
	// BaseURL is the inference server base URL (default: http://localhost:8787).
	BaseURL string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// RerankScorer scores query/passage pairs against a cross-encoder
// served over HTTP.
type RerankScorer struct {
	client  *http.Client
	baseURL string
}

// rerankRequest is the /rerank request format.
type rerankRequest struct {
	Query string   `json:"query"`
	Texts []string `json:"texts"`
}

// rerankResult is one scored passage in the /rerank response.
// The server returns results sorted by score, so Index maps each
// score back to its input passage.
type rerankResult struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// NewRerankScorer creates a new rerank scorer.
func NewRerankScorer(cfg Config) *RerankScorer {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &RerankScorer{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
	}
}

// Score returns one relevance score per passage, in input order.
func (s *RerankScorer) Score(ctx context.Context, query string, passages []string) ([]float64, error) {
	if len(passages) == 0 {
		return nil, nil
	}

	jsonBody, err := json.Marshal(rerankRequest{Query: query, Texts: passages})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/rerank",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reranker error (status %d): %s", resp.StatusCode, string(body))
	}

	var results []rerankResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	scores := make([]float64, len(passages))
	seen := make([]bool, len(passages))
	for _, r := range results {
		if r.Index < 0 || r.Index >= len(passages) {
			return nil, fmt.Errorf("reranker returned index %d for %d passages", r.Index, len(passages))
		}
		scores[r.Index] = r.Score
		seen[r.Index] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("reranker returned no score for passage %d", i)
		}
	}
	return scores, nil
}

// Close releases resources.
func (s *RerankScorer) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

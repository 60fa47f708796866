// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// RerankScorer scores query/passage pairs with a cross-encoder.
// Scores are on the model's own scale; only their relative order is
// meaningful.
type RerankScorer interface {
	// Score returns one relevance score per passage, in input order.
	Score(ctx context.Context, query string, passages []string) ([]float64, error)

	// Close releases resources.
	Close() error
}

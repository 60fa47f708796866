// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/campuskit/tutorbot/internal/core/domain"
)

// SemanticIndex is one loaded course index, searchable by embedding.
type SemanticIndex interface {
	// Search returns the k nearest chunks to the query embedding,
	// ordered by descending similarity. Ties keep index order.
	Search(ctx context.Context, embedding []float32, k int) ([]domain.RetrievalCandidate, error)

	// Len returns the number of chunks in the index.
	Len() int

	// Key identifies the course offering the index was built for.
	Key() domain.IndexKey
}

// IndexLoader resolves index keys to loaded indexes.
//
// Loading is all-or-nothing: a partially readable index is an error,
// never a truncated result set.
type IndexLoader interface {
	// Load returns the index for the key, or domain.ErrIndexNotFound
	// when no index exists for that course offering.
	Load(ctx context.Context, key domain.IndexKey) (SemanticIndex, error)

	// Close releases resources.
	Close() error
}

// IndexWriter persists a new semantic index for a course offering.
type IndexWriter interface {
	// Write replaces the index for the key with the given chunks.
	Write(ctx context.Context, key domain.IndexKey, chunks []domain.DocumentChunk) error
}

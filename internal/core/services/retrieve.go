package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/campuskit/tutorbot/internal/core/domain"
	"github.com/campuskit/tutorbot/internal/core/ports/driven"
	"github.com/campuskit/tutorbot/internal/logger"
)

// Retriever embeds a query and runs similarity search against a
// loaded semantic index.
type Retriever struct {
	embedder driven.EmbeddingService
}

// NewRetriever creates a retriever.
func NewRetriever(embedder driven.EmbeddingService) *Retriever {
	return &Retriever{embedder: embedder}
}

// Retrieve returns up to k candidates by descending similarity.
// An empty or blank query, or an empty index, yields an empty result,
// never an error.
func (r *Retriever) Retrieve(ctx context.Context, index driven.SemanticIndex, query string, k int) ([]domain.RetrievalCandidate, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if index.Len() == 0 {
		logger.Debug("Index %s is empty, nothing to retrieve", index.Key().Name())
		return nil, nil
	}

	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	candidates, err := index.Search(ctx, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("search index %s: %w", index.Key().Name(), err)
	}
	logger.Debug("Retrieved %d candidates for query %q", len(candidates), query)
	return candidates, nil
}

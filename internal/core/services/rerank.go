package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/campuskit/tutorbot/internal/core/domain"
	"github.com/campuskit/tutorbot/internal/core/ports/driven"
	"github.com/campuskit/tutorbot/internal/logger"
)

// Reranker rescores retrieval candidates with a cross-encoder and
// keeps the best few. The second pass is slower but far more precise
// than raw vector similarity, so it runs only on the small candidate
// set.
type Reranker struct {
	scorer driven.RerankScorer
}

// NewReranker creates a reranker.
func NewReranker(scorer driven.RerankScorer) *Reranker {
	return &Reranker{scorer: scorer}
}

// Rerank scores every candidate against the query and returns up to
// topN documents by descending relevance. The sort is stable: tied
// scores keep the candidates' input order.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []domain.RetrievalCandidate, topN int) ([]domain.RankedDocument, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	passages := make([]string, len(candidates))
	for i, c := range candidates {
		passages[i] = c.Chunk.Content
	}

	scores, err := r.scorer.Score(ctx, query, passages)
	if err != nil {
		return nil, fmt.Errorf("score candidates: %w", err)
	}
	if len(scores) != len(candidates) {
		return nil, fmt.Errorf("scorer returned %d scores for %d passages", len(scores), len(candidates))
	}

	ranked := make([]domain.RankedDocument, len(candidates))
	for i, c := range candidates {
		ranked[i] = domain.RankedDocument{Chunk: c.Chunk, Relevance: scores[i]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Relevance > ranked[j].Relevance
	})

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	logger.Debug("Reranked %d candidates, kept %d", len(candidates), len(ranked))
	return ranked, nil
}

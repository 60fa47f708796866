package sqlite

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/campuskit/tutorbot/internal/core/domain"
	"github.com/campuskit/tutorbot/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.SemanticIndex = (*Index)(nil)

// Index is one loaded course index held fully in memory.
type Index struct {
	key    domain.IndexKey
	chunks []domain.DocumentChunk
}

// Search returns the k nearest chunks to the query embedding by
// cosine similarity. Ties keep chunk load order, so results are
// deterministic for identical inputs.
func (ix *Index) Search(ctx context.Context, embedding []float32, k int) ([]domain.RetrievalCandidate, error) {
	if len(ix.chunks) == 0 || k <= 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates := make([]domain.RetrievalCandidate, 0, len(ix.chunks))
	for i := range ix.chunks {
		sim, err := cosineSimilarity(embedding, ix.chunks[i].Embedding)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", ix.chunks[i].ID, err)
		}
		candidates = append(candidates, domain.RetrievalCandidate{
			Chunk:      ix.chunks[i],
			Similarity: sim,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

// Len returns the number of chunks in the index.
func (ix *Index) Len() int {
	return len(ix.chunks)
}

// Key identifies the course offering the index was built for.
func (ix *Index) Key() domain.IndexKey {
	return ix.key
}

// cosineSimilarity computes the cosine of the angle between two
// vectors. A zero-magnitude vector scores 0 against everything.
func cosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vectors must have the same length: %d != %d", len(a), len(b))
	}

	var dotProduct, aMagnitude, bMagnitude float64
	for i := 0; i < len(a); i++ {
		dotProduct += float64(a[i]) * float64(b[i])
		aMagnitude += float64(a[i]) * float64(a[i])
		bMagnitude += float64(b[i]) * float64(b[i])
	}

	if aMagnitude == 0 || bMagnitude == 0 {
		return 0, nil
	}
	return dotProduct / (math.Sqrt(aMagnitude) * math.Sqrt(bMagnitude)), nil
}

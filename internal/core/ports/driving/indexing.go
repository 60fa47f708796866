package driving

import (
	"context"

	"github.com/campuskit/tutorbot/internal/core/domain"
)

// IndexingService builds semantic indexes from prepared chunks.
type IndexingService interface {
	// BuildIndex embeds the chunks and persists them as the index for
	// the given course offering, replacing any existing index.
	BuildIndex(ctx context.Context, key domain.IndexKey, chunks []domain.DocumentChunk) error
}

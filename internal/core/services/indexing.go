package services

import (
	"context"
	"fmt"

	"github.com/campuskit/tutorbot/internal/core/domain"
	"github.com/campuskit/tutorbot/internal/core/ports/driven"
	"github.com/campuskit/tutorbot/internal/core/ports/driving"
	"github.com/campuskit/tutorbot/internal/logger"
)

// Ensure IndexingService implements the interface.
var _ driving.IndexingService = (*IndexingService)(nil)

// embedBatchSize bounds one embedding API request.
const embedBatchSize = 64

// IndexingService embeds prepared chunks and persists them as a
// course index.
type IndexingService struct {
	embedder driven.EmbeddingService
	writer   driven.IndexWriter
}

// NewIndexingService creates an indexing service.
func NewIndexingService(embedder driven.EmbeddingService, writer driven.IndexWriter) *IndexingService {
	return &IndexingService{embedder: embedder, writer: writer}
}

// BuildIndex embeds every chunk that lacks an embedding and writes
// the index, replacing any previous one for the key.
func (s *IndexingService) BuildIndex(ctx context.Context, key domain.IndexKey, chunks []domain.DocumentChunk) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no chunks to index", domain.ErrInvalidInput)
	}

	logger.Section("Index Build")
	logger.Info("Building index %s from %d chunks", key.Name(), len(chunks))

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, 0, len(batch))
		targets := make([]int, 0, len(batch))
		for i, c := range batch {
			if len(c.Embedding) == 0 {
				texts = append(texts, c.Content)
				targets = append(targets, start+i)
			}
		}
		if len(texts) == 0 {
			continue
		}

		embeddings, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
		}
		if len(embeddings) != len(texts) {
			return fmt.Errorf("embedder returned %d vectors for %d texts", len(embeddings), len(texts))
		}
		for i, idx := range targets {
			chunks[idx].Embedding = embeddings[i]
		}
		logger.Debug("Embedded chunks %d-%d", start, end-1)
	}

	if err := s.writer.Write(ctx, key, chunks); err != nil {
		return fmt.Errorf("write index %s: %w", key.Name(), err)
	}
	logger.Info("Index %s written", key.Name())
	return nil
}

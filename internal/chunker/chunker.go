// Package chunker splits raw course material into fixed-size,
// overlapping passages ready for embedding.
package chunker

import (
	"github.com/google/uuid"

	"github.com/campuskit/tutorbot/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Chunker splits document text into fixed-size chunks.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Overlap must leave room for the window to advance.
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// Split cuts content into overlapping chunks attributed to source.
// Empty content produces no chunks. The returned chunks carry fresh
// ids and no embeddings.
func (c *Chunker) Split(source, content string) []domain.DocumentChunk {
	if content == "" {
		return nil
	}

	contentLen := len(content)
	step := c.chunkSize - c.overlap

	chunks := make([]domain.DocumentChunk, 0, contentLen/step+1)

	for start := 0; start < contentLen; start += step {
		end := start + c.chunkSize
		if end > contentLen {
			end = contentLen
		}

		chunks = append(chunks, domain.DocumentChunk{
			ID:      uuid.NewString(),
			Content: content[start:end],
			Source:  source,
		})
	}

	return chunks
}

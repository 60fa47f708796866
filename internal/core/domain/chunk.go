package domain

import (
	"fmt"
	"strings"
)

// IndexKey identifies one persisted semantic index. Indexes are built
// per course offering, so the key is the subject plus the academic
// year and semester it was taught in.
type IndexKey struct {
	Subject  string
	Year     string
	Semester string
}

// Validate checks that all key components are present.
func (k IndexKey) Validate() error {
	if strings.TrimSpace(k.Subject) == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidInput)
	}
	if strings.TrimSpace(k.Year) == "" {
		return fmt.Errorf("%w: year is required", ErrInvalidInput)
	}
	if strings.TrimSpace(k.Semester) == "" {
		return fmt.Errorf("%w: semester is required", ErrInvalidInput)
	}
	return nil
}

// Name returns the canonical on-disk name for the index,
// "subject_year_semester".
func (k IndexKey) Name() string {
	return fmt.Sprintf("%s_%s_%s", k.Subject, k.Year, k.Semester)
}

// DocumentChunk is one retrievable unit of course material: a passage
// of text with provenance back to the source document.
type DocumentChunk struct {
	// ID uniquely identifies the chunk within its index.
	ID string

	// Content is the chunk text.
	Content string

	// Source is the path or filename of the originating document.
	Source string

	// Page is the 1-based page number in the source document,
	// nil when the source format has no page structure.
	Page *int

	// Embedding is the dense vector for the chunk content.
	Embedding []float32
}

// RetrievalCandidate pairs a chunk with its vector similarity to the
// query. Similarity scores are only comparable to other candidates
// from the same retrieval pass.
type RetrievalCandidate struct {
	Chunk      DocumentChunk
	Similarity float64
}

// RankedDocument is a retrieval candidate after cross-encoder
// rescoring. Relevance is on the reranker's own scale and must not be
// compared against retrieval similarities.
type RankedDocument struct {
	Chunk     DocumentChunk
	Relevance float64
}

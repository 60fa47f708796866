// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/campuskit/tutorbot/internal/core/domain"
)

// ImageStore looks up figures extracted from source document pages.
// This is an optional service - when nil, answers carry no images.
type ImageStore interface {
	// ForDocumentAndPages returns images for the named document on the
	// given pages, ordered by page then insertion, capped per page.
	ForDocumentAndPages(ctx context.Context, document string, pages []int) ([]domain.ImageRecord, error)
}

package driving

import (
	"context"

	"github.com/campuskit/tutorbot/internal/core/domain"
)

// ChatService answers student questions grounded in course material.
type ChatService interface {
	// Answer runs the full pipeline for one question: history recall,
	// query rewriting, retrieval, reranking, generation and memory
	// persistence.
	Answer(ctx context.Context, req domain.AskRequest) (*domain.ChatResponse, error)
}

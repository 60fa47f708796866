package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/campuskit/tutorbot/internal/core/domain"
	"github.com/campuskit/tutorbot/internal/core/ports/driven"
	"github.com/campuskit/tutorbot/internal/core/ports/driving"
	"github.com/campuskit/tutorbot/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// ChatService sequences the full question pipeline: history recall,
// query rewriting, retrieval, reranking, generation, memory
// persistence and image attachment.
type ChatService struct {
	memory    *MemoryService
	rewriter  *QueryRewriter
	indexes   driven.IndexLoader
	retriever *Retriever
	reranker  *Reranker
	answers   *AnswerBuilder
	images    driven.ImageStore

	historyMaxTokens int
	kInitial         int
	topAfterRerank   int
}

// NewChatService creates the orchestrator. The images store is
// optional (can be nil) - answers then carry no images.
func NewChatService(
	memory *MemoryService,
	rewriter *QueryRewriter,
	indexes driven.IndexLoader,
	retriever *Retriever,
	reranker *Reranker,
	answers *AnswerBuilder,
	images driven.ImageStore,
	settings domain.Settings,
) *ChatService {
	return &ChatService{
		memory:           memory,
		rewriter:         rewriter,
		indexes:          indexes,
		retriever:        retriever,
		reranker:         reranker,
		answers:          answers,
		images:           images,
		historyMaxTokens: settings.Memory.HistoryMaxTokens,
		kInitial:         settings.Retrieval.KInitial,
		topAfterRerank:   settings.Retrieval.TopAfterRerank,
	}
}

// Answer runs the pipeline for one question.
func (s *ChatService) Answer(ctx context.Context, req domain.AskRequest) (*domain.ChatResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	key := req.Key()
	logger.Section("Question Pipeline")
	logger.Debug("Session %s: %q", key.Name(), req.Question)

	history, err := s.memory.History(ctx, key, s.historyMaxTokens)
	if err != nil {
		return nil, err
	}

	query := s.rewriter.Optimize(req.Question, history)
	logger.Debug("Optimized query: %q", query)

	index, err := s.indexes.Load(ctx, req.IndexKey())
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}

	candidates, err := s.retriever.Retrieve(ctx, index, query, s.kInitial)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		logger.Info("No candidates for session %s, returning fallback", key.Name())
		if err := s.memory.AppendExchange(ctx, key, req.Question, domain.NoContextAnswer); err != nil {
			return nil, err
		}
		return &domain.ChatResponse{Answer: domain.NoContextAnswer, Images: []domain.ImageRecord{}}, nil
	}

	top, err := s.reranker.Rerank(ctx, query, candidates, s.topAfterRerank)
	if err != nil {
		return nil, err
	}

	answer, err := s.answers.Run(ctx, history, top, req.Question, query)
	if err != nil {
		// Keep the audit trail: the student did ask, even though no
		// answer was produced.
		if appendErr := s.memory.Append(ctx, key, domain.RoleUser, req.Question); appendErr != nil {
			logger.Warn("Could not persist question after generation failure: %v", appendErr)
		}
		return nil, err
	}

	if err := s.memory.AppendExchange(ctx, key, req.Question, answer); err != nil {
		return nil, err
	}

	return &domain.ChatResponse{Answer: answer, Images: s.attachImages(ctx, top)}, nil
}

// attachImages looks up figures for the top document's pages. Lookup
// failures degrade to no images, never to a failed request.
func (s *ChatService) attachImages(ctx context.Context, top []domain.RankedDocument) []domain.ImageRecord {
	if s.images == nil || len(top) == 0 {
		return []domain.ImageRecord{}
	}
	document := filepath.Base(top[0].Chunk.Source)
	if document == "" || document == "." {
		return []domain.ImageRecord{}
	}
	pages := collectPages(top)
	if len(pages) == 0 {
		return []domain.ImageRecord{}
	}

	images, err := s.images.ForDocumentAndPages(ctx, document, pages)
	if err != nil {
		logger.Warn("Image lookup for %s failed: %v", document, err)
		return []domain.ImageRecord{}
	}
	if images == nil {
		images = []domain.ImageRecord{}
	}
	return images
}

// collectPages returns the sorted unique page numbers present across
// the documents.
func collectPages(docs []domain.RankedDocument) []int {
	seen := make(map[int]struct{})
	for _, d := range docs {
		if d.Chunk.Page != nil {
			seen[*d.Chunk.Page] = struct{}{}
		}
	}
	pages := make([]int, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campuskit/tutorbot/internal/core/domain"
	"github.com/campuskit/tutorbot/internal/core/ports/driven"
	"github.com/campuskit/tutorbot/internal/logger"
)

// Keyword sets for sizing the answer. Brief wins when a question
// matches both.
var (
	briefKeywords    = []string{"brief", "short", "summarize", "quick", "concise", "overview", "gist"}
	detailedKeywords = []string{"detailed", "explain", "elaborate", "comprehensive", "thorough", "in-depth", "complete", "full"}
)

// AnswerBuilder assembles the generation prompt and invokes the
// model. It owns budget selection, template selection and context
// packing; the model call is the only non-deterministic step.
type AnswerBuilder struct {
	generator   driven.GenerationService
	tokens      *TokenAccountant
	limits      domain.AnswerLimits
	gen         domain.GenerationSettings
	promptStore driven.PromptStore
}

// Ensure AnswerBuilder supports custom prompts.
var _ driven.PromptStoreAware = (*AnswerBuilder)(nil)

// NewAnswerBuilder creates an answer builder.
func NewAnswerBuilder(generator driven.GenerationService, tokens *TokenAccountant, settings domain.Settings) *AnswerBuilder {
	return &AnswerBuilder{
		generator: generator,
		tokens:    tokens,
		limits:    settings.Limits,
		gen:       settings.Generation,
	}
}

// DecideLimits classifies the question by substring keyword match and
// returns the matching budget pair. Brief takes priority over
// detailed; anything else gets the default pair.
func (b *AnswerBuilder) DecideLimits(question string) domain.PromptBudget {
	q := strings.ToLower(question)
	if containsAny(q, briefKeywords) {
		return domain.PromptBudget{ContextTokens: b.limits.BriefMaxContextTokens, OutputTokens: b.limits.BriefMaxOutputTokens}
	}
	if containsAny(q, detailedKeywords) {
		return domain.PromptBudget{ContextTokens: b.limits.DetailedMaxContextTokens, OutputTokens: b.limits.DetailedMaxOutputTokens}
	}
	return domain.PromptBudget{ContextTokens: b.limits.DefaultMaxContextTokens, OutputTokens: b.limits.DefaultMaxOutputTokens}
}

// SelectPrompt chooses the brief or detailed template. The brief flag
// is true when a brief keyword matched.
func (b *AnswerBuilder) SelectPrompt(question string) (string, bool) {
	if containsAny(strings.ToLower(question), briefKeywords) {
		return b.loadPrompt(driven.PromptAnswerBrief, briefPromptTemplate), true
	}
	return b.loadPrompt(driven.PromptAnswerDetailed, detailedPromptTemplate), false
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the builder uses the hardcoded default templates.
func (b *AnswerBuilder) SetPromptStore(store driven.PromptStore) {
	b.promptStore = store
}

// loadPrompt returns the named prompt from the store, or the fallback
// when no store is configured or the load fails.
func (b *AnswerBuilder) loadPrompt(name, fallback string) string {
	if b.promptStore == nil {
		return fallback
	}
	prompt, err := b.promptStore.Load(name)
	if err != nil {
		logger.Warn("Failed to load prompt %q, using default: %v", name, err)
		return fallback
	}
	return prompt
}

// Run builds the prompt from the history, the ranked documents and
// the optimized query, then generates the answer under the selected
// budgets. Budget and template are classified on the question as the
// student typed it: the rewriter strips sizing words such as "brief"
// and "detailed", so the optimized query no longer carries them.
func (b *AnswerBuilder) Run(ctx context.Context, chatHistory string, docs []domain.RankedDocument, question, query string) (string, error) {
	budget := b.DecideLimits(question)
	template, brief := b.SelectPrompt(question)
	logger.Debug("Budget: context=%d output=%d brief=%t", budget.ContextTokens, budget.OutputTokens, brief)

	packed := b.tokens.PackContext(docs, budget.ContextTokens)
	prompt := fillPrompt(template, chatHistory, packed, query)

	ctx, cancel := context.WithTimeout(ctx, b.gen.Timeout())
	defer cancel()

	answer, err := b.generator.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   budget.OutputTokens,
		Temperature: b.gen.Temperature,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: model %s after %s", domain.ErrGenerationTimeout, b.generator.ModelName(), b.gen.Timeout())
		}
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	return answer, nil
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

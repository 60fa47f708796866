package services

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/campuskit/tutorbot/internal/core/domain"
)

// tokenEncoding is the BPE vocabulary shared with the generation
// model family. Counting with a different vocabulary would make the
// budgets meaningless.
const tokenEncoding = "cl100k_base"

// TokenAccountant counts tokens and packs text under hard budgets.
// All prompt sizing in the pipeline goes through a single accountant
// so every stage measures with the same vocabulary.
type TokenAccountant struct {
	enc *tiktoken.Tiktoken
}

// NewTokenAccountant creates an accountant backed by the cl100k_base
// encoding.
func NewTokenAccountant() (*TokenAccountant, error) {
	enc, err := tiktoken.GetEncoding(tokenEncoding)
	if err != nil {
		return nil, fmt.Errorf("load %s encoding: %w", tokenEncoding, err)
	}
	return &TokenAccountant{enc: enc}, nil
}

// Count returns the number of tokens in text. Empty text counts zero.
func (t *TokenAccountant) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}

// PackContext joins document contents with blank lines, taking
// documents in rank order and stopping at the first one whose
// separator-inclusive cost would push the total over maxTokens.
// Documents are never truncated mid-text.
func (t *TokenAccountant) PackContext(docs []domain.RankedDocument, maxTokens int) string {
	var parts []string
	used := 0
	for _, doc := range docs {
		cost := t.Count(doc.Chunk.Content)
		if len(parts) > 0 {
			cost += t.Count("\n\n")
		}
		if used+cost > maxTokens {
			break
		}
		parts = append(parts, doc.Chunk.Content)
		used += cost
	}
	return strings.Join(parts, "\n\n")
}

package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campuskit/tutorbot/internal/core/domain"
	"github.com/campuskit/tutorbot/internal/core/ports/driven"
)

// lockStripes bounds the keyed-lock table. Sessions hashing to the
// same stripe share a lock, which only coarsens serialisation.
const lockStripes = 64

// MemoryService manages session conversation history: durable turn
// persistence with bounded retention, and token-budgeted serialisation
// for prompting.
type MemoryService struct {
	store     driven.TurnStore
	tokens    *TokenAccountant
	retention int

	locks [lockStripes]sync.Mutex
}

// NewMemoryService creates a memory service. retention is the number
// of turns each session keeps; older turns are evicted on append.
func NewMemoryService(store driven.TurnStore, tokens *TokenAccountant, retention int) *MemoryService {
	return &MemoryService{
		store:     store,
		tokens:    tokens,
		retention: retention,
	}
}

// History loads the retained turns for the session and serialises
// them under maxTokens. Returns the empty string when nothing fits.
func (m *MemoryService) History(ctx context.Context, key domain.SessionKey, maxTokens int) (string, error) {
	turns, err := m.store.Recent(ctx, key, m.retention)
	if err != nil {
		return "", fmt.Errorf("%w: load history for %s: %v", domain.ErrMemoryUnavailable, key.Name(), err)
	}
	return m.trimToBudget(turns, maxTokens), nil
}

// Append persists one turn at the end of the session. Appends on the
// same session key are serialised so concurrent requests cannot
// interleave their exchanges.
func (m *MemoryService) Append(ctx context.Context, key domain.SessionKey, role domain.Role, text string) error {
	lock := m.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	turn := domain.Turn{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   text,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.store.Append(ctx, key, turn); err != nil {
		return fmt.Errorf("%w: append %s turn to %s: %v", domain.ErrMemoryUnavailable, role, key.Name(), err)
	}
	return nil
}

// AppendExchange persists a question and its answer as consecutive
// turns under one session lock.
func (m *MemoryService) AppendExchange(ctx context.Context, key domain.SessionKey, question, answer string) error {
	lock := m.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	for _, turn := range []domain.Turn{
		{ID: uuid.NewString(), Role: domain.RoleUser, Content: question, CreatedAt: time.Now().UTC()},
		{ID: uuid.NewString(), Role: domain.RoleAssistant, Content: answer, CreatedAt: time.Now().UTC()},
	} {
		if err := m.store.Append(ctx, key, turn); err != nil {
			return fmt.Errorf("%w: append %s turn to %s: %v", domain.ErrMemoryUnavailable, turn.Role, key.Name(), err)
		}
	}
	return nil
}

func (m *MemoryService) lockFor(key domain.SessionKey) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(key.Name()))
	return &m.locks[h.Sum32()%lockStripes]
}

// trimToBudget serialises the longest trailing suffix of turns that
// fits within maxTokens. Suffix length is found by binary search:
// a longer suffix never costs fewer tokens.
func (m *MemoryService) trimToBudget(turns []domain.Turn, maxTokens int) string {
	full := serialiseTurns(turns)
	if m.tokens.Count(full) <= maxTokens {
		return full
	}

	lo, hi := 0, len(turns)
	best := ""
	for lo <= hi {
		mid := (lo + hi) / 2
		var tail []domain.Turn
		if mid > 0 {
			tail = turns[len(turns)-mid:]
		}
		s := serialiseTurns(tail)
		if m.tokens.Count(s) <= maxTokens {
			best = s
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return best
}

// serialiseTurns renders turns as "ROLE: content" lines, oldest first.
func serialiseTurns(turns []domain.Turn) string {
	lines := make([]string, len(turns))
	for i, t := range turns {
		lines[i] = fmt.Sprintf("%s: %s", t.Role.Label(), t.Content)
	}
	return strings.Join(lines, "\n")
}

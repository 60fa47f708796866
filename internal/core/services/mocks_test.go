package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/campuskit/tutorbot/internal/core/domain"
	"github.com/campuskit/tutorbot/internal/core/ports/driven"
)

// fakeTurnStore is an in-memory TurnStore with retention eviction.
type fakeTurnStore struct {
	mu        sync.Mutex
	turns     map[string][]domain.Turn
	retention int
	appendErr error
	recentErr error
}

func newFakeTurnStore(retention int) *fakeTurnStore {
	return &fakeTurnStore{
		turns:     make(map[string][]domain.Turn),
		retention: retention,
	}
}

func (f *fakeTurnStore) Append(_ context.Context, key domain.SessionKey, turn domain.Turn) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	name := key.Name()
	f.turns[name] = append(f.turns[name], turn)
	if f.retention > 0 && len(f.turns[name]) > f.retention {
		f.turns[name] = f.turns[name][len(f.turns[name])-f.retention:]
	}
	return nil
}

func (f *fakeTurnStore) Recent(_ context.Context, key domain.SessionKey, limit int) ([]domain.Turn, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := f.turns[key.Name()]
	if limit > 0 && len(stored) > limit {
		stored = stored[len(stored)-limit:]
	}
	out := make([]domain.Turn, len(stored))
	copy(out, stored)
	return out, nil
}

func (f *fakeTurnStore) Close() error { return nil }

func (f *fakeTurnStore) all(key domain.SessionKey) []domain.Turn {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := f.turns[key.Name()]
	out := make([]domain.Turn, len(stored))
	copy(out, stored)
	return out
}

// fakeEmbedder returns a fixed embedding for every text.
type fakeEmbedder struct {
	embedding []float32
	err       error
	calls     int
	batches   [][]string
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.embedding, nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	f.batches = append(f.batches, texts)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = f.embedding
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int              { return len(f.embedding) }
func (f *fakeEmbedder) ModelName() string            { return "fake-embedder" }
func (f *fakeEmbedder) Ping(_ context.Context) error { return nil }
func (f *fakeEmbedder) Close() error                 { return nil }

// fakeGenerator records prompts and returns a canned answer.
type fakeGenerator struct {
	answer   string
	err      error
	calls    int
	prompts  []string
	lastOpts driven.GenerateOptions
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.lastOpts = opts
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeGenerator) ModelName() string            { return "fake-generator" }
func (f *fakeGenerator) Ping(_ context.Context) error { return nil }
func (f *fakeGenerator) Close() error                 { return nil }

// fakeScorer returns preset scores in input order.
type fakeScorer struct {
	scores []float64
	err    error
}

func (f *fakeScorer) Score(_ context.Context, _ string, passages []string) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.scores != nil {
		return f.scores, nil
	}
	return make([]float64, len(passages)), nil
}

func (f *fakeScorer) Close() error { return nil }

// fakeIndex holds preset retrieval candidates.
type fakeIndex struct {
	key        domain.IndexKey
	candidates []domain.RetrievalCandidate
	searchErr  error
}

func (f *fakeIndex) Search(_ context.Context, _ []float32, k int) ([]domain.RetrievalCandidate, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	out := f.candidates
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func (f *fakeIndex) Len() int             { return len(f.candidates) }
func (f *fakeIndex) Key() domain.IndexKey { return f.key }

// fakeIndexLoader serves one index, or an error.
type fakeIndexLoader struct {
	index driven.SemanticIndex
	err   error
}

func (f *fakeIndexLoader) Load(_ context.Context, _ domain.IndexKey) (driven.SemanticIndex, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.index, nil
}

func (f *fakeIndexLoader) Close() error { return nil }

// fakeImageStore returns preset records.
type fakeImageStore struct {
	images       []domain.ImageRecord
	err          error
	lastDocument string
	lastPages    []int
}

func (f *fakeImageStore) ForDocumentAndPages(_ context.Context, document string, pages []int) ([]domain.ImageRecord, error) {
	f.lastDocument = document
	f.lastPages = pages
	if f.err != nil {
		return nil, f.err
	}
	return f.images, nil
}

// fakeIndexWriter records what was written.
type fakeIndexWriter struct {
	lastKey    domain.IndexKey
	lastChunks []domain.DocumentChunk
	err        error
}

func (f *fakeIndexWriter) Write(_ context.Context, key domain.IndexKey, chunks []domain.DocumentChunk) error {
	if f.err != nil {
		return f.err
	}
	f.lastKey = key
	f.lastChunks = chunks
	return nil
}

// fakePromptStore serves templates from a map.
type fakePromptStore struct {
	prompts map[string]string
	err     error
}

func (f *fakePromptStore) Load(name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	prompt, ok := f.prompts[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	return prompt, nil
}

func (f *fakePromptStore) Reload() {}

func intPtr(v int) *int { return &v }

func testSessionKey() domain.SessionKey {
	return domain.SessionKey{
		Username:  "alice",
		SessionID: "s1",
		Year:      "2024",
		Semester:  "1",
		Subject:   "circuits",
	}
}

func testAskRequest(question string) domain.AskRequest {
	return domain.AskRequest{
		Username:  "alice",
		Question:  question,
		SessionID: "s1",
		Year:      "2024",
		Semester:  "1",
		Subject:   "circuits",
	}
}

package domain

import (
	"fmt"
	"time"
)

// AIProvider identifies which inference backend serves a concern.
type AIProvider string

const (
	AIProviderOpenAI    AIProvider = "openai"
	AIProviderAnthropic AIProvider = "anthropic"
	AIProviderOllama    AIProvider = "ollama"
)

// GenerationSettings holds answer generation configuration.
type GenerationSettings struct {
	// Provider selects the generation backend.
	Provider AIProvider

	// Model is the chat completion model name.
	Model string

	// Temperature is the sampling temperature for generation.
	Temperature float64

	// BaseURL is the API endpoint, empty for the provider default.
	BaseURL string

	// APIKey is the API key for the generation provider.
	APIKey string

	// TimeoutSecs bounds one generation call end to end.
	TimeoutSecs int
}

// Timeout returns the generation deadline as a duration.
func (g GenerationSettings) Timeout() time.Duration {
	return time.Duration(g.TimeoutSecs) * time.Second
}

// EmbeddingSettings holds embedding provider configuration.
// Anthropic has no embedding API, so only openai and ollama are valid
// providers here.
type EmbeddingSettings struct {
	// Provider selects the embedding backend.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint, empty for the provider default.
	BaseURL string

	// APIKey is the API key for the embedding provider.
	APIKey string
}

// RerankerSettings holds cross-encoder scoring configuration.
type RerankerSettings struct {
	// BaseURL is the endpoint of the reranker inference server.
	BaseURL string

	// TimeoutSecs bounds one scoring call.
	TimeoutSecs int
}

// RetrievalSettings holds the retrieval pipeline configuration.
type RetrievalSettings struct {
	// IndexDir is the directory holding per-course index files.
	IndexDir string

	// KInitial is how many candidates vector search returns before
	// reranking.
	KInitial int

	// TopAfterRerank is how many documents survive reranking and feed
	// the prompt.
	TopAfterRerank int
}

// AnswerLimits holds the token budgets for each verbosity mode.
type AnswerLimits struct {
	DefaultMaxContextTokens  int
	DefaultMaxOutputTokens   int
	BriefMaxContextTokens    int
	BriefMaxOutputTokens     int
	DetailedMaxContextTokens int
	DetailedMaxOutputTokens  int
}

// MemorySettings holds conversation memory configuration.
type MemorySettings struct {
	// DBPath is the sqlite database file for turns and images,
	// empty for the default under the user data directory.
	DBPath string

	// HistoryMaxTokens caps how much serialised history may enter a
	// prompt.
	HistoryMaxTokens int

	// Retention is how many turns each session keeps. Older turns are
	// evicted on write.
	Retention int
}

// ServerSettings holds the HTTP API configuration.
type ServerSettings struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
}

// Settings holds all application settings.
type Settings struct {
	Generation GenerationSettings
	Embedding  EmbeddingSettings
	Reranker   RerankerSettings
	Retrieval  RetrievalSettings
	Limits     AnswerLimits
	Memory     MemorySettings
	Server     ServerSettings
}

// DefaultSettings returns settings with sensible defaults. API keys
// are left empty and must come from configuration or the environment.
func DefaultSettings() Settings {
	return Settings{
		Generation: GenerationSettings{
			Provider:    AIProviderOpenAI,
			Model:       "gpt-4o-mini",
			Temperature: 0.5,
			TimeoutSecs: 60,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
			Model:    "text-embedding-3-small",
		},
		Reranker: RerankerSettings{
			BaseURL:     "http://localhost:8787",
			TimeoutSecs: 30,
		},
		Retrieval: RetrievalSettings{
			IndexDir:       "vectorstores",
			KInitial:       10,
			TopAfterRerank: 5,
		},
		Limits: AnswerLimits{
			DefaultMaxContextTokens:  800,
			DefaultMaxOutputTokens:   500,
			BriefMaxContextTokens:    600,
			BriefMaxOutputTokens:     300,
			DetailedMaxContextTokens: 1000,
			DetailedMaxOutputTokens:  600,
		},
		Memory: MemorySettings{
			HistoryMaxTokens: 400,
			Retention:        10,
		},
		Server: ServerSettings{
			Addr: ":8080",
		},
	}
}

// Validate checks that the settings are internally coherent.
func (s Settings) Validate() error {
	switch s.Generation.Provider {
	case AIProviderOpenAI, AIProviderAnthropic, AIProviderOllama:
	default:
		return fmt.Errorf("%w: unknown generation provider %q", ErrInvalidInput, s.Generation.Provider)
	}
	switch s.Embedding.Provider {
	case AIProviderOpenAI, AIProviderOllama:
	case AIProviderAnthropic:
		return fmt.Errorf("%w: anthropic does not provide embeddings", ErrInvalidInput)
	default:
		return fmt.Errorf("%w: unknown embedding provider %q", ErrInvalidInput, s.Embedding.Provider)
	}
	if s.Generation.Model == "" {
		return fmt.Errorf("%w: generation model is required", ErrInvalidInput)
	}
	if s.Embedding.Model == "" {
		return fmt.Errorf("%w: embedding model is required", ErrInvalidInput)
	}
	if s.Retrieval.KInitial <= 0 {
		return fmt.Errorf("%w: k_initial must be positive", ErrInvalidInput)
	}
	if s.Retrieval.TopAfterRerank <= 0 {
		return fmt.Errorf("%w: top_after_rerank must be positive", ErrInvalidInput)
	}
	if s.Retrieval.TopAfterRerank > s.Retrieval.KInitial {
		return fmt.Errorf("%w: top_after_rerank cannot exceed k_initial", ErrInvalidInput)
	}
	for _, budget := range []struct {
		name  string
		value int
	}{
		{"default_max_context_tokens", s.Limits.DefaultMaxContextTokens},
		{"default_max_output_tokens", s.Limits.DefaultMaxOutputTokens},
		{"brief_max_context_tokens", s.Limits.BriefMaxContextTokens},
		{"brief_max_output_tokens", s.Limits.BriefMaxOutputTokens},
		{"detailed_max_context_tokens", s.Limits.DetailedMaxContextTokens},
		{"detailed_max_output_tokens", s.Limits.DetailedMaxOutputTokens},
	} {
		if budget.value <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidInput, budget.name)
		}
	}
	if s.Memory.Retention <= 0 {
		return fmt.Errorf("%w: memory retention must be positive", ErrInvalidInput)
	}
	if s.Memory.HistoryMaxTokens <= 0 {
		return fmt.Errorf("%w: history_max_tokens must be positive", ErrInvalidInput)
	}
	return nil
}

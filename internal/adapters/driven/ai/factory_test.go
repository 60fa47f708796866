package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/tutorbot/internal/core/domain"
)

func TestCreateGenerationService(t *testing.T) {
	tests := []struct {
		name      string
		settings  domain.GenerationSettings
		wantModel string
		wantErr   string
	}{
		{
			name:      "openai",
			settings:  domain.GenerationSettings{Provider: domain.AIProviderOpenAI, APIKey: "k", Model: "gpt-4o-mini"},
			wantModel: "gpt-4o-mini",
		},
		{
			name:     "openai without key",
			settings: domain.GenerationSettings{Provider: domain.AIProviderOpenAI, Model: "gpt-4o-mini"},
			wantErr:  "API key",
		},
		{
			name:      "ollama needs no key",
			settings:  domain.GenerationSettings{Provider: domain.AIProviderOllama, Model: "llama3.2"},
			wantModel: "llama3.2",
		},
		{
			name:      "anthropic",
			settings:  domain.GenerationSettings{Provider: domain.AIProviderAnthropic, APIKey: "k", Model: "claude-3-5-haiku-latest"},
			wantModel: "claude-3-5-haiku-latest",
		},
		{
			name:     "unknown provider",
			settings: domain.GenerationSettings{Provider: "aws", Model: "m"},
			wantErr:  "unsupported generation provider",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateGenerationService(tt.settings)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer svc.Close()
			assert.Equal(t, tt.wantModel, svc.ModelName())
		})
	}
}

func TestCreateEmbeddingService(t *testing.T) {
	svc, err := CreateEmbeddingService(domain.EmbeddingSettings{
		Provider: domain.AIProviderOpenAI,
		APIKey:   "k",
		Model:    "text-embedding-3-small",
	})
	require.NoError(t, err)
	defer svc.Close()
	assert.Equal(t, 1536, svc.Dimensions())

	svc, err = CreateEmbeddingService(domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		Model:    "nomic-embed-text",
	})
	require.NoError(t, err)
	defer svc.Close()
	assert.Equal(t, 768, svc.Dimensions())

	_, err = CreateEmbeddingService(domain.EmbeddingSettings{
		Provider: domain.AIProviderAnthropic,
		APIKey:   "k",
		Model:    "m",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not support embeddings")
}

package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/campuskit/tutorbot/internal/adapters/driven/ai"
	configfile "github.com/campuskit/tutorbot/internal/adapters/driven/config/file"
	indexsqlite "github.com/campuskit/tutorbot/internal/adapters/driven/index/sqlite"
	"github.com/campuskit/tutorbot/internal/adapters/driven/reranker/tei"
	storagesqlite "github.com/campuskit/tutorbot/internal/adapters/driven/storage/sqlite"
	"github.com/campuskit/tutorbot/internal/core/domain"
	"github.com/campuskit/tutorbot/internal/core/services"
	"github.com/campuskit/tutorbot/internal/logger"
)

// closers collects everything the wiring opened, closed in reverse
// order on shutdown.
var closers []io.Closer

// ensureServices builds the full pipeline from configuration unless a
// test already injected services.
func ensureServices() error {
	if chatService != nil && indexingService != nil {
		return nil
	}

	configStore, err := configfile.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settings, err := configStore.Load()
	if err != nil {
		return fmt.Errorf("loading config %s: %w", configStore.Path(), err)
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("config %s: %w", configStore.Path(), err)
	}

	tokens, err := services.NewTokenAccountant()
	if err != nil {
		return fmt.Errorf("loading tokenizer: %w", err)
	}

	embedder, err := ai.CreateEmbeddingService(settings.Embedding)
	if err != nil {
		return fmt.Errorf("creating embedding service: %w", err)
	}
	addCloser(embedder)

	generator, err := ai.CreateGenerationService(settings.Generation)
	if err != nil {
		return fmt.Errorf("creating generation service: %w", err)
	}
	addCloser(generator)

	scorer := tei.NewRerankScorer(tei.Config{
		BaseURL: settings.Reranker.BaseURL,
		Timeout: rerankerTimeout(settings),
	})
	addCloser(scorer)

	store, err := storagesqlite.NewStore(settings.Memory.DBPath)
	if err != nil {
		return fmt.Errorf("opening memory store: %w", err)
	}
	addCloser(store)

	loader, err := indexsqlite.NewLoader(settings.Retrieval.IndexDir)
	if err != nil {
		return fmt.Errorf("opening index loader: %w", err)
	}
	addCloser(loader)

	writer, err := indexsqlite.NewWriter(settings.Retrieval.IndexDir)
	if err != nil {
		return fmt.Errorf("opening index writer: %w", err)
	}

	promptStore, err := configfile.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("opening prompt store: %w", err)
	}

	memory := services.NewMemoryService(
		store.TurnStore(settings.Memory.Retention), tokens, settings.Memory.Retention)
	answers := services.NewAnswerBuilder(generator, tokens, settings)
	answers.SetPromptStore(promptStore)

	chatService = services.NewChatService(
		memory,
		services.NewQueryRewriter(),
		loader,
		services.NewRetriever(embedder),
		services.NewReranker(scorer),
		answers,
		store.ImageStore(),
		settings,
	)
	indexingService = services.NewIndexingService(embedder, writer)

	logger.Debug("Services wired: config=%s indexes=%s", configStore.Path(), settings.Retrieval.IndexDir)
	return nil
}

// loadedSettings re-reads configuration for commands that need raw
// settings, such as the server address.
func loadedSettings() (domain.Settings, error) {
	configStore, err := configfile.NewConfigStore(configDir)
	if err != nil {
		return domain.Settings{}, err
	}
	return configStore.Load()
}

func rerankerTimeout(settings domain.Settings) time.Duration {
	return time.Duration(settings.Reranker.TimeoutSecs) * time.Second
}

func addCloser(c io.Closer) {
	closers = append(closers, c)
}

// closeServices releases everything the wiring opened.
func closeServices() {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			logger.Warn("Close failed: %v", err)
		}
	}
	closers = nil
}

package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/campuskit/tutorbot/internal/core/domain"
	"github.com/campuskit/tutorbot/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is a file-based implementation of driven.ConfigStore using TOML.
// Configuration is stored in a TOML file within the tutorbot config directory.
// API keys may also come from the environment, which wins over the file.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
}

// fileSettings is the on-disk shape of the configuration. Every field
// is optional; anything left unset falls back to the default.
type fileSettings struct {
	Generation struct {
		Provider    *string  `toml:"provider,omitempty"`
		Model       *string  `toml:"model,omitempty"`
		Temperature *float64 `toml:"temperature,omitempty"`
		BaseURL     *string  `toml:"base_url,omitempty"`
		APIKey      *string  `toml:"api_key,omitempty"`
		TimeoutSecs *int     `toml:"timeout_secs,omitempty"`
	} `toml:"generation"`
	Embedding struct {
		Provider *string `toml:"provider,omitempty"`
		Model    *string `toml:"model,omitempty"`
		BaseURL  *string `toml:"base_url,omitempty"`
		APIKey   *string `toml:"api_key,omitempty"`
	} `toml:"embedding"`
	Reranker struct {
		BaseURL     *string `toml:"base_url,omitempty"`
		TimeoutSecs *int    `toml:"timeout_secs,omitempty"`
	} `toml:"reranker"`
	Retrieval struct {
		IndexDir       *string `toml:"index_dir,omitempty"`
		KInitial       *int    `toml:"k_initial,omitempty"`
		TopAfterRerank *int    `toml:"top_after_rerank,omitempty"`
	} `toml:"retrieval"`
	Limits struct {
		DefaultMaxContextTokens  *int `toml:"default_max_context_tokens,omitempty"`
		DefaultMaxOutputTokens   *int `toml:"default_max_output_tokens,omitempty"`
		BriefMaxContextTokens    *int `toml:"brief_max_context_tokens,omitempty"`
		BriefMaxOutputTokens     *int `toml:"brief_max_output_tokens,omitempty"`
		DetailedMaxContextTokens *int `toml:"detailed_max_context_tokens,omitempty"`
		DetailedMaxOutputTokens  *int `toml:"detailed_max_output_tokens,omitempty"`
	} `toml:"limits"`
	Memory struct {
		DBPath           *string `toml:"db_path,omitempty"`
		HistoryMaxTokens *int    `toml:"history_max_tokens,omitempty"`
		Retention        *int    `toml:"retention,omitempty"`
	} `toml:"memory"`
	Server struct {
		Addr *string `toml:"addr,omitempty"`
	} `toml:"server"`
}

// NewConfigStore creates a new TOML-based config store.
// If configDir is empty, defaults to ~/.tutorbot/config.toml.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".tutorbot")
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	return &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
	}, nil
}

// Load reads configuration from the TOML file, applying defaults for
// anything the file does not set and environment overrides last.
func (s *ConfigStore) Load() (domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings := domain.DefaultSettings()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return domain.Settings{}, fmt.Errorf("reading config: %w", err)
		}
		// No config file yet - that's fine, defaults apply
	} else {
		var fs fileSettings
		if err := toml.Unmarshal(data, &fs); err != nil {
			return domain.Settings{}, fmt.Errorf("parsing config: %w", err)
		}
		applyFile(&settings, fs)
	}

	applyEnv(&settings)
	return settings, nil
}

// Save persists the settings to disk with restricted permissions.
func (s *ConfigStore) Save(settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fs := toFile(settings)
	data, err := toml.Marshal(fs)
	if err != nil {
		return fmt.Errorf("serialising config: %w", err)
	}

	// API keys live in here, keep it owner-only
	return os.WriteFile(s.filePath, data, 0600)
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

func applyFile(settings *domain.Settings, fs fileSettings) {
	setProvider(&settings.Generation.Provider, fs.Generation.Provider)
	setString(&settings.Generation.Model, fs.Generation.Model)
	setFloat(&settings.Generation.Temperature, fs.Generation.Temperature)
	setString(&settings.Generation.BaseURL, fs.Generation.BaseURL)
	setString(&settings.Generation.APIKey, fs.Generation.APIKey)
	setInt(&settings.Generation.TimeoutSecs, fs.Generation.TimeoutSecs)

	setProvider(&settings.Embedding.Provider, fs.Embedding.Provider)
	setString(&settings.Embedding.Model, fs.Embedding.Model)
	setString(&settings.Embedding.BaseURL, fs.Embedding.BaseURL)
	setString(&settings.Embedding.APIKey, fs.Embedding.APIKey)

	setString(&settings.Reranker.BaseURL, fs.Reranker.BaseURL)
	setInt(&settings.Reranker.TimeoutSecs, fs.Reranker.TimeoutSecs)

	setString(&settings.Retrieval.IndexDir, fs.Retrieval.IndexDir)
	setInt(&settings.Retrieval.KInitial, fs.Retrieval.KInitial)
	setInt(&settings.Retrieval.TopAfterRerank, fs.Retrieval.TopAfterRerank)

	setInt(&settings.Limits.DefaultMaxContextTokens, fs.Limits.DefaultMaxContextTokens)
	setInt(&settings.Limits.DefaultMaxOutputTokens, fs.Limits.DefaultMaxOutputTokens)
	setInt(&settings.Limits.BriefMaxContextTokens, fs.Limits.BriefMaxContextTokens)
	setInt(&settings.Limits.BriefMaxOutputTokens, fs.Limits.BriefMaxOutputTokens)
	setInt(&settings.Limits.DetailedMaxContextTokens, fs.Limits.DetailedMaxContextTokens)
	setInt(&settings.Limits.DetailedMaxOutputTokens, fs.Limits.DetailedMaxOutputTokens)

	setString(&settings.Memory.DBPath, fs.Memory.DBPath)
	setInt(&settings.Memory.HistoryMaxTokens, fs.Memory.HistoryMaxTokens)
	setInt(&settings.Memory.Retention, fs.Memory.Retention)

	setString(&settings.Server.Addr, fs.Server.Addr)
}

// applyEnv layers environment variables over file values. API keys
// from the environment only fill keys the file leaves empty, so
// deployments can keep keys out of the file without overriding an
// explicit one; the reranker URL and listen address always win.
func applyEnv(settings *domain.Settings) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if settings.Generation.APIKey == "" {
			settings.Generation.APIKey = key
		}
		if settings.Embedding.APIKey == "" {
			settings.Embedding.APIKey = key
		}
	}
	if url := os.Getenv("TUTORBOT_RERANKER_URL"); url != "" {
		settings.Reranker.BaseURL = url
	}
	if addr := os.Getenv("TUTORBOT_ADDR"); addr != "" {
		settings.Server.Addr = addr
	}
}

func toFile(settings domain.Settings) fileSettings {
	var fs fileSettings
	genProvider := string(settings.Generation.Provider)
	embedProvider := string(settings.Embedding.Provider)
	fs.Generation.Provider = &genProvider
	fs.Generation.Model = &settings.Generation.Model
	fs.Generation.Temperature = &settings.Generation.Temperature
	fs.Generation.BaseURL = &settings.Generation.BaseURL
	fs.Generation.APIKey = &settings.Generation.APIKey
	fs.Generation.TimeoutSecs = &settings.Generation.TimeoutSecs
	fs.Embedding.Provider = &embedProvider
	fs.Embedding.Model = &settings.Embedding.Model
	fs.Embedding.BaseURL = &settings.Embedding.BaseURL
	fs.Embedding.APIKey = &settings.Embedding.APIKey
	fs.Reranker.BaseURL = &settings.Reranker.BaseURL
	fs.Reranker.TimeoutSecs = &settings.Reranker.TimeoutSecs
	fs.Retrieval.IndexDir = &settings.Retrieval.IndexDir
	fs.Retrieval.KInitial = &settings.Retrieval.KInitial
	fs.Retrieval.TopAfterRerank = &settings.Retrieval.TopAfterRerank
	fs.Limits.DefaultMaxContextTokens = &settings.Limits.DefaultMaxContextTokens
	fs.Limits.DefaultMaxOutputTokens = &settings.Limits.DefaultMaxOutputTokens
	fs.Limits.BriefMaxContextTokens = &settings.Limits.BriefMaxContextTokens
	fs.Limits.BriefMaxOutputTokens = &settings.Limits.BriefMaxOutputTokens
	fs.Limits.DetailedMaxContextTokens = &settings.Limits.DetailedMaxContextTokens
	fs.Limits.DetailedMaxOutputTokens = &settings.Limits.DetailedMaxOutputTokens
	fs.Memory.DBPath = &settings.Memory.DBPath
	fs.Memory.HistoryMaxTokens = &settings.Memory.HistoryMaxTokens
	fs.Memory.Retention = &settings.Memory.Retention
	fs.Server.Addr = &settings.Server.Addr
	return fs
}

func setProvider(dst *domain.AIProvider, src *string) {
	if src != nil {
		*dst = domain.AIProvider(*src)
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

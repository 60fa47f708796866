package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/tutorbot/internal/core/domain"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_WithNestedDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	nestedPath := filepath.Join(tmpDir, "nested", "deep", "path")

	store, err := NewConfigStore(nestedPath)

	require.NoError(t, err)
	require.NotNil(t, store)

	info, err := os.Stat(nestedPath)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	// On Unix systems, using a path under /dev/null should fail
	invalidPath := "/dev/null/cannot/create/dirs"

	store, err := NewConfigStore(invalidPath)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_Load_NoFile_ReturnsDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	settings, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultSettings(), settings)
}

func TestConfigStore_Load_FileOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	tmpDir := t.TempDir()

	content := `
[generation]
model = "gpt-4o"
temperature = 0.2

[retrieval]
k_initial = 20

[memory]
retention = 6
`
	err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600)
	require.NoError(t, err)

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	settings, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", settings.Generation.Model)
	assert.Equal(t, 0.2, settings.Generation.Temperature)
	assert.Equal(t, 20, settings.Retrieval.KInitial)
	assert.Equal(t, 6, settings.Memory.Retention)

	// Unset values keep their defaults
	defaults := domain.DefaultSettings()
	assert.Equal(t, defaults.Embedding.Model, settings.Embedding.Model)
	assert.Equal(t, defaults.Limits, settings.Limits)
	assert.Equal(t, defaults.Server.Addr, settings.Server.Addr)
}

func TestConfigStore_Load_ProviderOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	tmpDir := t.TempDir()

	content := `
[generation]
provider = "anthropic"
model = "claude-3-5-haiku-latest"

[embedding]
provider = "ollama"
model = "nomic-embed-text"
`
	err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600)
	require.NoError(t, err)

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	settings, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderAnthropic, settings.Generation.Provider)
	assert.Equal(t, "claude-3-5-haiku-latest", settings.Generation.Model)
	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
}

func TestConfigStore_Load_EnvAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env-test")

	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	settings, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-env-test", settings.Generation.APIKey)
	assert.Equal(t, "sk-env-test", settings.Embedding.APIKey)
}

func TestConfigStore_Load_FileKeyBeatsEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env-test")
	tmpDir := t.TempDir()

	content := `
[generation]
api_key = "sk-file-test"
`
	err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600)
	require.NoError(t, err)

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	settings, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-file-test", settings.Generation.APIKey)
	// Embedding key was not in the file, so the environment fills it
	assert.Equal(t, "sk-env-test", settings.Embedding.APIKey)
}

func TestConfigStore_Load_EnvRerankerURL(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("TUTORBOT_RERANKER_URL", "http://reranker:9000")

	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	settings, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, "http://reranker:9000", settings.Reranker.BaseURL)
}

func TestConfigStore_Load_CorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()

	corruptedContent := []byte("this is not valid TOML {{{[[")
	err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), corruptedContent, 0600)
	require.NoError(t, err)

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	_, err = store.Load()
	assert.Error(t, err)
}

func TestConfigStore_Load_EmptyFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	tmpDir := t.TempDir()

	err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("# comment\n"), 0600)
	require.NoError(t, err)

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	settings, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), settings)
}

func TestConfigStore_SaveAndReload(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	settings := domain.DefaultSettings()
	settings.Generation.Model = "gpt-4o"
	settings.Retrieval.TopAfterRerank = 3
	settings.Memory.HistoryMaxTokens = 250
	settings.Server.Addr = ":9090"

	require.NoError(t, store.Save(settings))

	reloaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, settings, reloaded)
}

func TestConfigStore_Save_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(domain.DefaultSettings()))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Load_ReadFileError(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Save(domain.DefaultSettings()))
	require.NoError(t, os.Chmod(store.Path(), 0000))

	_, err = store.Load()
	assert.Error(t, err)

	// Restore permissions for cleanup
	_ = os.Chmod(store.Path(), 0600)
}

package driven

import "github.com/campuskit/tutorbot/internal/core/domain"

// ConfigStore provides access to application configuration.
// Implementations handle persistence (e.g., TOML files) and
// environment overrides.
type ConfigStore interface {
	// Load reads configuration from storage, applying defaults for
	// anything the file does not set.
	Load() (domain.Settings, error)

	// Save persists the settings to storage.
	Save(settings domain.Settings) error

	// Path returns the configuration file path.
	Path() string
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campuskit/tutorbot/internal/adapters/driven/ai"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration and backend connectivity",
	Long: `Loads the configuration, validates it, and pings the configured
generation and embedding backends. Useful after editing the config
file or rotating API keys.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		settings, err := loadedSettings()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := settings.Validate(); err != nil {
			return err
		}
		cmd.Println("config: ok")

		failed := false
		if err := ai.ValidateGenerationConfig(settings.Generation); err != nil {
			cmd.Printf("generation (%s/%s): %v\n", settings.Generation.Provider, settings.Generation.Model, err)
			failed = true
		} else {
			cmd.Printf("generation (%s/%s): ok\n", settings.Generation.Provider, settings.Generation.Model)
		}

		if err := ai.ValidateEmbeddingConfig(settings.Embedding); err != nil {
			cmd.Printf("embedding (%s/%s): %v\n", settings.Embedding.Provider, settings.Embedding.Model, err)
			failed = true
		} else {
			cmd.Printf("embedding (%s/%s): ok\n", settings.Embedding.Provider, settings.Embedding.Model)
		}

		if failed {
			return fmt.Errorf("one or more backends are unreachable")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// Package cli wires the cobra command tree for the tutorbot binary.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/campuskit/tutorbot/internal/core/ports/driving"
	"github.com/campuskit/tutorbot/internal/logger"
)

// version is the build version, overridden at link time.
var version = "dev"

// Flags shared by all commands.
var (
	configDir string
	verbose   bool
)

// Services used by the commands. Wired lazily on first use so that
// tests can inject mocks before a command runs.
var (
	chatService     driving.ChatService
	indexingService driving.IndexingService
)

var rootCmd = &cobra.Command{
	Use:   "tutorbot",
	Short: "Course material question answering",
	Long: `Tutorbot answers student questions from indexed course material.

Questions are answered strictly from the retrieved textbook excerpts of
the selected course. Conversation history is kept per session so
follow-up questions stay in context.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.tutorbot)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

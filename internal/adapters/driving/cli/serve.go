package cli

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/campuskit/tutorbot/internal/adapters/driving/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API server.

The server exposes:
  POST /v1/chat   Answer a student question (X-Username header required)
  GET  /healthz   Health probe

The server shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	defer closeServices()

	if chatService == nil {
		return errors.New("chat service not configured")
	}

	addr := serveAddr
	if addr == "" {
		settings, err := loadedSettings()
		if err != nil {
			return err
		}
		addr = settings.Server.Addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := httpapi.NewServer(chatService, addr)
	return server.Run(ctx)
}

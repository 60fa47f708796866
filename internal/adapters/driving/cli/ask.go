package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campuskit/tutorbot/internal/core/domain"
)

var (
	askUsername string
	askSession  string
	askYear     string
	askSemester string
	askSubject  string
	askJSON     bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question against a course index",
	Long: `Asks a single question against the selected course material.

The answer is grounded in the indexed textbook excerpts. Repeated asks
with the same session keep conversation history, so follow-up questions
can rely on earlier exchanges.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askUsername, "user", "u", "local", "username the session belongs to")
	askCmd.Flags().StringVarP(&askSession, "session", "s", "cli", "session identifier")
	askCmd.Flags().StringVar(&askYear, "year", "", "academic year, e.g. 2024")
	askCmd.Flags().StringVar(&askSemester, "semester", "", "semester, e.g. 1")
	askCmd.Flags().StringVar(&askSubject, "subject", "", "subject the question targets")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the response as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	defer closeServices()

	if chatService == nil {
		return errors.New("chat service not configured")
	}

	req := domain.AskRequest{
		Username:  askUsername,
		Question:  args[0],
		SessionID: askSession,
		Year:      askYear,
		Semester:  askSemester,
		Subject:   askSubject,
	}

	resp, err := chatService.Answer(context.Background(), req)
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal response: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(resp.Answer)
	if len(resp.Images) > 0 {
		cmd.Println()
		cmd.Println("Figures:")
		for _, img := range resp.Images {
			cmd.Printf("  p.%d %s (%s)\n", img.Page, img.Filename, img.URL)
		}
	}
	return nil
}

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/campuskit/tutorbot/internal/chunker"
	"github.com/campuskit/tutorbot/internal/core/domain"
)

var (
	indexYear      string
	indexSemester  string
	indexSubject   string
	indexChunkSize int
	indexOverlap   int
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage course indexes",
}

var indexBuildCmd = &cobra.Command{
	Use:   "build [file...]",
	Short: "Build a course index from course material",
	Long: `Builds the semantic index for one course from the given files.

Plain-text files (.txt, .md) are split into overlapping chunks before
embedding. A .json file holds prepared chunks, an array of objects:

  [
    {"content": "...", "source": "transistors.pdf", "page": 12},
    {"content": "...", "source": "transistors.pdf"}
  ]

All chunks are embedded and written as a single index file under the
configured index directory, replacing any previous index for the
course. An id is generated for chunks that lack one.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndexBuild,
}

func init() {
	indexBuildCmd.Flags().StringVar(&indexYear, "year", "", "academic year, e.g. 2024")
	indexBuildCmd.Flags().StringVar(&indexSemester, "semester", "", "semester, e.g. 1")
	indexBuildCmd.Flags().StringVar(&indexSubject, "subject", "", "subject the material belongs to")
	indexBuildCmd.Flags().IntVar(&indexChunkSize, "chunk-size", chunker.DefaultChunkSize, "chunk size in characters for plain-text files")
	indexBuildCmd.Flags().IntVar(&indexOverlap, "overlap", chunker.DefaultChunkOverlap, "overlap between chunks in characters")
	indexCmd.AddCommand(indexBuildCmd)
	rootCmd.AddCommand(indexCmd)
}

// chunkFileEntry is one element of a prepared chunks file.
type chunkFileEntry struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Source  string `json:"source"`
	Page    *int   `json:"page"`
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	defer closeServices()

	if indexingService == nil {
		return errors.New("indexing service not configured")
	}

	split := chunker.New(
		chunker.WithChunkSize(indexChunkSize),
		chunker.WithOverlap(indexOverlap),
	)

	var chunks []domain.DocumentChunk
	for _, path := range args {
		loaded, err := loadChunks(split, path)
		if err != nil {
			return err
		}
		chunks = append(chunks, loaded...)
	}

	key := domain.IndexKey{Subject: indexSubject, Year: indexYear, Semester: indexSemester}
	if err := indexingService.BuildIndex(context.Background(), key, chunks); err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	cmd.Printf("Indexed %d chunks into %s\n", len(chunks), key.Name())
	return nil
}

// loadChunks reads one input file and returns its chunks. JSON files
// are parsed as prepared chunk lists, everything else is treated as
// plain text and split.
func loadChunks(split *chunker.Chunker, path string) ([]domain.DocumentChunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var entries []chunkFileEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("parsing chunks file %s: %w", path, err)
		}

		chunks := make([]domain.DocumentChunk, 0, len(entries))
		for _, e := range entries {
			id := e.ID
			if id == "" {
				id = uuid.NewString()
			}
			chunks = append(chunks, domain.DocumentChunk{
				ID:      id,
				Content: e.Content,
				Source:  e.Source,
				Page:    e.Page,
			})
		}
		return chunks, nil
	}

	return split.Split(filepath.Base(path), string(data)), nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/campuskit/tutorbot/internal/core/domain"
	"github.com/campuskit/tutorbot/internal/core/ports/driven"
	"github.com/campuskit/tutorbot/internal/logger"
)

// Ensure Writer implements the interface.
var _ driven.IndexWriter = (*Writer)(nil)

const indexSchema = `
CREATE TABLE chunks (
	position  INTEGER PRIMARY KEY,
	id        TEXT NOT NULL,
	content   TEXT NOT NULL,
	source    TEXT NOT NULL,
	page      INTEGER,
	embedding BLOB NOT NULL
);
`

// Writer persists a course index as a single SQLite file under the
// base directory. A write replaces the previous file atomically via a
// temp file and rename, so readers never see a half-written index.
type Writer struct {
	baseDir string
}

// NewWriter creates a writer over baseDir, creating the directory if
// needed.
func NewWriter(baseDir string) (*Writer, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}
	return &Writer{baseDir: baseDir}, nil
}

// Write stores all chunks for the key, replacing any existing index.
func (w *Writer) Write(ctx context.Context, key domain.IndexKey, chunks []domain.DocumentChunk) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no chunks to write", domain.ErrInvalidInput)
	}
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, c.ID)
		}
	}

	finalPath := filepath.Join(w.baseDir, key.Name()+".db")
	tmpPath := finalPath + ".tmp"
	os.Remove(tmpPath)

	if err := w.writeFile(ctx, tmpPath, chunks); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing index %s: %w", key.Name(), err)
	}

	logger.Info("Wrote index %s: %d chunks", key.Name(), len(chunks))
	return nil
}

func (w *Writer) writeFile(ctx context.Context, path string, chunks []domain.DocumentChunk) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("creating index file: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, indexSchema); err != nil {
		return fmt.Errorf("creating index schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (position, id, content, source, page, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range chunks {
		var page sql.NullInt64
		if c.Page != nil {
			page = sql.NullInt64{Int64: int64(*c.Page), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, i, c.ID, c.Content, c.Source, page,
			float32SliceToBytes(c.Embedding)); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing index: %w", err)
	}
	return nil
}

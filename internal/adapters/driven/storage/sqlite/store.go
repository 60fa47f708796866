package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/campuskit/tutorbot/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/campuskit/tutorbot/internal/core/domain"
	"github.com/campuskit/tutorbot/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// the turn and image store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified database path.
// If dbPath is empty, defaults to ~/.tutorbot/data/tutorbot.db.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".tutorbot", "data", "tutorbot.db")
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// TurnStore returns a TurnStore interface backed by this store.
// retention is the number of turns each session keeps.
func (s *Store) TurnStore(retention int) driven.TurnStore {
	return &turnStore{store: s, retention: retention}
}

// ImageStore returns an ImageStore interface backed by this store.
func (s *Store) ImageStore() driven.ImageStore {
	return &imageStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Turn Store ====================

// turnStore implements driven.TurnStore.
type turnStore struct {
	store     *Store
	retention int
}

var _ driven.TurnStore = (*turnStore)(nil)

// Append stores a turn and evicts the oldest turns beyond retention.
func (s *turnStore) Append(ctx context.Context, key domain.SessionKey, turn domain.Turn) error {
	name := key.Name()

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO turns (id, session_key, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, turn.ID, name, string(turn.Role), turn.Content, turn.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting turn: %w", err)
	}

	if s.retention > 0 {
		_, err = tx.ExecContext(ctx, `
			DELETE FROM turns
			WHERE session_key = ?
			  AND seq NOT IN (
				SELECT seq FROM turns WHERE session_key = ?
				ORDER BY seq DESC LIMIT ?
			  )
		`, name, name, s.retention)
		if err != nil {
			return fmt.Errorf("evicting old turns: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Recent returns up to limit turns in chronological order.
func (s *turnStore) Recent(ctx context.Context, key domain.SessionKey, limit int) ([]domain.Turn, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, role, content, created_at
		FROM turns WHERE session_key = ?
		ORDER BY seq DESC LIMIT ?
	`, key.Name(), limit)
	if err != nil {
		return nil, fmt.Errorf("querying turns: %w", err)
	}
	defer rows.Close()

	var turns []domain.Turn //nolint:prealloc // size unknown from query
	for rows.Next() {
		var t domain.Turn
		var role string
		if err := rows.Scan(&t.ID, &role, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		t.Role = domain.Role(role)
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating turns: %w", err)
	}

	// Query returns newest first; flip to chronological order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// Close is a no-op; the parent store owns the connection.
func (s *turnStore) Close() error {
	return nil
}

// ==================== Image Store ====================

// maxImagesPerPage caps how many figures one page contributes to an
// answer.
const maxImagesPerPage = 3

// imageStore implements driven.ImageStore.
type imageStore struct {
	store *Store
}

var _ driven.ImageStore = (*imageStore)(nil)

// SaveImage stores one extracted page image. Used by ingestion
// tooling, not by the question pipeline.
func (s *imageStore) SaveImage(ctx context.Context, img domain.ImageRecord) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO pdf_images (document, page, filename, image_url)
		VALUES (?, ?, ?, ?)
	`, img.Document, img.Page, img.Filename, img.URL)
	if err != nil {
		return fmt.Errorf("saving image: %w", err)
	}
	return nil
}

// ForDocumentAndPages returns images for the document on the given
// pages, ordered by page then insertion, capped per page.
func (s *imageStore) ForDocumentAndPages(ctx context.Context, document string, pages []int) ([]domain.ImageRecord, error) {
	if document == "" || len(pages) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(pages))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, 0, len(pages)+1)
	args = append(args, document)
	for _, p := range pages {
		args = append(args, p)
	}

	//nolint:gosec // placeholders are "?" repeats, values are bound
	query := fmt.Sprintf(`
		SELECT document, page, filename, image_url
		FROM pdf_images
		WHERE document = ? AND page IN (%s)
		ORDER BY page, id
	`, placeholders)

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying images: %w", err)
	}
	defer rows.Close()

	var images []domain.ImageRecord //nolint:prealloc // size unknown from query
	perPage := make(map[int]int)
	for rows.Next() {
		var img domain.ImageRecord
		if err := rows.Scan(&img.Document, &img.Page, &img.Filename, &img.URL); err != nil {
			return nil, fmt.Errorf("scanning image: %w", err)
		}
		if perPage[img.Page] >= maxImagesPerPage {
			continue
		}
		perPage[img.Page]++
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating images: %w", err)
	}

	return images, nil
}

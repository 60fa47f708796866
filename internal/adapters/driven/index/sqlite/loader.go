package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/campuskit/tutorbot/internal/core/domain"
	"github.com/campuskit/tutorbot/internal/core/ports/driven"
	"github.com/campuskit/tutorbot/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.IndexLoader = (*Loader)(nil)

// Loader resolves index keys to loaded indexes, caching each loaded
// index and invalidating the cache when the backing file changes.
type Loader struct {
	baseDir string
	watcher *fsnotify.Watcher

	mu    sync.Mutex
	cache map[string]*Index
	done  chan struct{}
}

// NewLoader creates a loader over baseDir, creating the directory if
// needed and starting a watcher for index file changes.
func NewLoader(baseDir string) (*Loader, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(baseDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", baseDir, err)
	}

	l := &Loader{
		baseDir: baseDir,
		watcher: watcher,
		cache:   make(map[string]*Index),
		done:    make(chan struct{}),
	}
	go l.watch()
	return l, nil
}

// Load returns the index for the key, reading it from disk on first
// use and from cache afterwards. A fresh load and a cached load are
// equivalent: the cache is dropped whenever the file changes.
func (l *Loader) Load(ctx context.Context, key domain.IndexKey) (driven.SemanticIndex, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	name := key.Name()

	l.mu.Lock()
	if ix, ok := l.cache[name]; ok {
		l.mu.Unlock()
		return ix, nil
	}
	l.mu.Unlock()

	ix, err := l.loadFromDisk(ctx, key)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	// Another request may have loaded it meanwhile; both copies were
	// read from the same file, either is fine to keep.
	if cached, ok := l.cache[name]; ok {
		return cached, nil
	}
	l.cache[name] = ix
	return ix, nil
}

// loadFromDisk reads the whole index file. All-or-nothing: any read
// or consistency error fails the load, never a truncated index.
func (l *Loader) loadFromDisk(ctx context.Context, key domain.IndexKey) (*Index, error) {
	path := l.pathFor(key)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrIndexNotFound, key.Name())
		}
		return nil, fmt.Errorf("stat index %s: %w", key.Name(), err)
	}

	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening index %s: %w", key.Name(), err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT id, content, source, page, embedding
		FROM chunks ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying index %s: %w", key.Name(), err)
	}
	defer rows.Close()

	var chunks []domain.DocumentChunk //nolint:prealloc // size unknown from query
	dims := -1
	for rows.Next() {
		var c domain.DocumentChunk
		var page sql.NullInt64
		var embeddingBlob []byte
		if err := rows.Scan(&c.ID, &c.Content, &c.Source, &page, &embeddingBlob); err != nil {
			return nil, fmt.Errorf("scanning chunk in %s: %w", key.Name(), err)
		}
		if page.Valid {
			p := int(page.Int64)
			c.Page = &p
		}
		c.Embedding = bytesToFloat32Slice(embeddingBlob)
		if len(c.Embedding) == 0 {
			return nil, fmt.Errorf("index %s: chunk %s has no embedding", key.Name(), c.ID)
		}
		if dims == -1 {
			dims = len(c.Embedding)
		} else if len(c.Embedding) != dims {
			return nil, fmt.Errorf("index %s: chunk %s has %d dimensions, expected %d",
				key.Name(), c.ID, len(c.Embedding), dims)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating index %s: %w", key.Name(), err)
	}

	logger.Debug("Loaded index %s: %d chunks", key.Name(), len(chunks))
	return &Index{key: key, chunks: chunks}, nil
}

// watch drops cache entries whose backing file was written or
// removed.
func (l *Loader) watch() {
	for {
		select {
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			name := strings.TrimSuffix(filepath.Base(event.Name), ".db")
			l.mu.Lock()
			if _, ok := l.cache[name]; ok {
				delete(l.cache, name)
				logger.Info("Index %s changed on disk, cache invalidated", name)
			}
			l.mu.Unlock()
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Index watcher error: %v", err)
		case <-l.done:
			return
		}
	}
}

// Close stops the watcher and drops all cached indexes.
func (l *Loader) Close() error {
	close(l.done)
	err := l.watcher.Close()

	l.mu.Lock()
	l.cache = make(map[string]*Index)
	l.mu.Unlock()
	return err
}

func (l *Loader) pathFor(key domain.IndexKey) string {
	return filepath.Join(l.baseDir, key.Name()+".db")
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

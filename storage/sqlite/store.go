// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/poiesic/skillmatch/core"
	"github.com/poiesic/skillmatch/storage"

	_ "modernc.org/sqlite"
)

// DatabaseFileName is the database file created inside the cache directory.
const DatabaseFileName = "embeddings.db"

const schema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	source_hash TEXT PRIMARY KEY,
	model       TEXT NOT NULL,
	skills      INTEGER NOT NULL,
	entry       BLOB NOT NULL,
	saved_at    INTEGER NOT NULL
)`

// Store keeps the latest embedding cache entry in a SQLite database.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	closed atomic.Bool
}

var _ storage.VectorStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewStore opens or creates the database at path. Use ":memory:" for a
// throwaway store.
func NewStore(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: database path is required", storage.ErrInvalidEntry)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	// one connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma failed: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema failed: %w", err)
	}

	s := &Store{db: db, path: path, logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			db.Close()
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "sqlite-store", "path", path)
	return s, nil
}

// Path returns the database path.
func (s *Store) Path() string { return s.path }

// Load returns the entry saved for sourceHash.
func (s *Store) Load(ctx context.Context, sourceHash string) (*core.EmbeddingCacheEntry, error) {
	if s.closed.Load() {
		return nil, storage.ErrStorageClosed
	}

	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT entry FROM cache_entries WHERE source_hash = ?`, sourceHash).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read entry: %w", err)
	}

	entry, err := storage.UnmarshalEntry(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	return entry, nil
}

// Save stores entry and drops entries of other sources in one transaction.
func (s *Store) Save(ctx context.Context, entry *core.EmbeddingCacheEntry) error {
	if s.closed.Load() {
		return storage.ErrStorageClosed
	}
	if entry == nil || entry.SourceHash == "" {
		return fmt.Errorf("%w: source hash is required", storage.ErrInvalidEntry)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE source_hash != ?`, entry.SourceHash); err != nil {
		return fmt.Errorf("failed to prune entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO cache_entries (source_hash, model, skills, entry, saved_at) VALUES (?, ?, ?, ?, ?)`,
		entry.SourceHash,
		entry.Model,
		len(entry.Vectors),
		storage.MarshalEntry(entry),
		time.Now().Unix(),
	); err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit entry: %w", err)
	}

	s.logger.Debug("saved embedding cache", "hash", entry.SourceHash, "skills", len(entry.Vectors))
	return nil
}

// Close closes the database. Closing twice is a no-op.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

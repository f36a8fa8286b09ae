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


package file

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/poiesic/skillmatch/core"
	"github.com/poiesic/skillmatch/storage"
)

const (
	// CacheFileName is the entry file inside the cache directory.
	CacheFileName = "embeddings.cache"

	defaultLockTimeout = 10 * time.Second
	lockRetryDelay     = 100 * time.Millisecond
)

// Store keeps the most recent cache entry in a single file. Writes go to a
// temp file in the same directory which is synced and renamed over the
// previous entry while holding an exclusive lock file.
type Store struct {
	dir         string
	path        string
	lock        *flock.Flock
	lockTimeout time.Duration
	logger      *slog.Logger
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

// WithLockTimeout bounds how long Load and Save wait for the lock file.
// Default is 10s.
func WithLockTimeout(timeout time.Duration) Option {
	return func(s *Store) error {
		if timeout <= 0 {
			return fmt.Errorf("lock timeout must be positive, got %v", timeout)
		}
		s.lockTimeout = timeout
		return nil
	}
}

// NewStore opens a file store in dir, creating the directory if needed.
func NewStore(dir string, opts ...Option) (storage.VectorStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: cache directory is required", storage.ErrInvalidEntry)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	path := filepath.Join(dir, CacheFileName)
	s := &Store{
		dir:         dir,
		path:        path,
		lock:        flock.New(path + ".lock"),
		lockTimeout: defaultLockTimeout,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "file-store", "path", path)
	return s, nil
}

// Path returns the entry file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the entry file and returns it if it was built for sourceHash.
func (s *Store) Load(ctx context.Context, sourceHash string) (*core.EmbeddingCacheEntry, error) {
	unlock, err := s.acquire(ctx, false)
	if err != nil {
		return nil, err
	}
	defer unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}

	entry, err := storage.UnmarshalEntry(data)
	if err != nil {
		s.logger.Warn("ignoring unreadable cache file", "err", err)
		return nil, storage.ErrNotFound
	}
	if entry.SourceHash != sourceHash {
		s.logger.Debug("cache built for another source", "cached", entry.SourceHash, "want", sourceHash)
		return nil, storage.ErrNotFound
	}
	return entry, nil
}

// Save atomically replaces the entry file.
func (s *Store) Save(ctx context.Context, entry *core.EmbeddingCacheEntry) error {
	if entry == nil || entry.SourceHash == "" {
		return fmt.Errorf("%w: source hash is required", storage.ErrInvalidEntry)
	}

	unlock, err := s.acquire(ctx, true)
	if err != nil {
		return err
	}
	defer unlock()

	tmp, err := os.CreateTemp(s.dir, CacheFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(storage.MarshalEntry(entry)); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close cache: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename cache: %w", err)
	}

	s.logger.Debug("saved embedding cache", "hash", entry.SourceHash, "skills", len(entry.Vectors))
	return nil
}

// Close releases the lock file handle.
func (s *Store) Close() error {
	return s.lock.Close()
}

// acquire takes the lock file, shared for readers and exclusive for writers.
func (s *Store) acquire(ctx context.Context, exclusive bool) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	var locked bool
	var err error
	if exclusive {
		locked, err = s.lock.TryLockContext(lockCtx, lockRetryDelay)
	} else {
		locked, err = s.lock.TryRLockContext(lockCtx, lockRetryDelay)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", storage.ErrLockTimeout, s.lockTimeout)
		}
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %v", storage.ErrLockTimeout, s.lockTimeout)
	}
	return func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("failed to release lock", "err", err)
		}
	}, nil
}

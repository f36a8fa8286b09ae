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


package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/skillmatch/core"
	"github.com/poiesic/skillmatch/storage"
)

// Store keeps embedding vectors in BadgerDB. Vectors are keyed by model and
// skill rather than by source file, so a rebuilt cache for an edited file
// reuses every vector whose skill survived the edit. A per-source manifest
// lists the skills that make up each cache entry.
type Store struct {
	backend *Backend
	logger  *slog.Logger
	closed  atomic.Bool
}

var (
	_ storage.VectorStore  = (*Store)(nil)
	_ storage.VectorLookup = (*Store)(nil)
)

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

// NewStore opens a persistent store rooted at path.
func NewStore(path string, opts ...Option) (*Store, error) {
	return newStore(path, false, opts...)
}

func newStore(path string, inMemory bool, opts ...Option) (*Store, error) {
	s := &Store{logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	backend, err := OpenBackend(path, inMemory, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}
	s.backend = backend
	s.logger = s.logger.With("component", "badger-store")
	return s, nil
}

// Load assembles the entry recorded for sourceHash. An entry whose manifest
// names a vector that is no longer present is treated as missing.
func (s *Store) Load(ctx context.Context, sourceHash string) (*core.EmbeddingCacheEntry, error) {
	if s.closed.Load() {
		return nil, storage.ErrStorageClosed
	}

	var entry *core.EmbeddingCacheEntry
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEntryKey(sourceHash))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}

		var manifest []string
		if err := item.Value(func(val []byte) error {
			manifest, err = storage.UnmarshalStrings(val)
			return err
		}); err != nil {
			return err
		}
		if len(manifest) == 0 {
			return fmt.Errorf("%w: empty manifest for %s", storage.ErrSerializationFailed, sourceHash)
		}

		model, skills := manifest[0], manifest[1:]
		entry = &core.EmbeddingCacheEntry{
			SourceHash: sourceHash,
			Model:      model,
			Vectors:    make(map[string][]float32, len(skills)),
		}
		for _, skill := range skills {
			if err := ctx.Err(); err != nil {
				return err
			}
			vec, err := readVector(tx, model, skill)
			if err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					s.logger.Warn("manifest names a missing vector", "hash", sourceHash, "skill", skill)
					return storage.ErrNotFound
				}
				return err
			}
			entry.Vectors[skill] = vec
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Save writes the entry's vectors followed by its manifest. The manifest is
// written last so a partially saved entry is never visible to Load.
func (s *Store) Save(ctx context.Context, entry *core.EmbeddingCacheEntry) error {
	if s.closed.Load() {
		return storage.ErrStorageClosed
	}
	if entry == nil || entry.SourceHash == "" {
		return fmt.Errorf("%w: source hash is required", storage.ErrInvalidEntry)
	}

	manifest := make([]string, 0, len(entry.Vectors)+1)
	manifest = append(manifest, entry.Model)

	err := s.backend.WithBatch(func(wb *badger.WriteBatch) error {
		for skill, vec := range entry.Vectors {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := wb.Set(makeVectorKey(entry.Model, skill), storage.MarshalVector(vec)); err != nil {
				return err
			}
			manifest = append(manifest, skill)
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeEntryKey(entry.SourceHash), storage.MarshalStrings(manifest)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	s.logger.Debug("saved embedding cache", "hash", entry.SourceHash, "skills", len(entry.Vectors))
	return nil
}

// LookupVectors returns the stored vectors for whichever of skills have one
// under model. Skills without a vector are absent from the result.
func (s *Store) LookupVectors(ctx context.Context, model string, skills []string) (map[string][]float32, error) {
	if s.closed.Load() {
		return nil, storage.ErrStorageClosed
	}

	found := make(map[string][]float32)
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, skill := range skills {
			if err := ctx.Err(); err != nil {
				return err
			}
			vec, err := readVector(tx, model, skill)
			if err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}
			found[skill] = vec
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return found, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.backend.Close()
}

func readVector(tx *badger.Txn, model, skill string) ([]float32, error) {
	item, err := tx.Get(makeVectorKey(model, skill))
	if err != nil {
		return nil, err
	}
	var vec []float32
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		vec, unmarshalErr = storage.UnmarshalVector(val)
		return unmarshalErr
	})
	return vec, err
}

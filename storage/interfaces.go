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


package storage

import (
	"context"

	"github.com/poiesic/skillmatch/core"
)

// VectorStore persists embedding cache entries keyed by source content hash.
// Implementations must be safe for concurrent use.
type VectorStore interface {
	// Load returns the entry saved for sourceHash.
	// Returns ErrNotFound if no entry exists for that hash.
	Load(ctx context.Context, sourceHash string) (*core.EmbeddingCacheEntry, error)

	// Save persists entry under entry.SourceHash. A reader never observes a
	// partially written entry.
	Save(ctx context.Context, entry *core.EmbeddingCacheEntry) error

	// Close releases resources held by the store.
	Close() error
}

// VectorLookup is implemented by stores that address vectors by skill
// content. After a source change it lets unchanged skills reuse their
// vectors instead of being embedded again.
type VectorLookup interface {
	// LookupVectors returns the stored vectors for the given skills under
	// model. Skills without a stored vector are absent from the result.
	LookupVectors(ctx context.Context, model string, skills []string) (map[string][]float32, error)
}

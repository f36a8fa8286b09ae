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


package embedcache

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/skillmatch/ai"
	"github.com/poiesic/skillmatch/core"
	"github.com/poiesic/skillmatch/storage"
)

const (
	// DefaultBatchSize is the number of skills sent per backend call.
	DefaultBatchSize = 100
	// DefaultMaxRetries is the number of attempts per batch.
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the first backoff delay between attempts.
	DefaultRetryDelay = 500 * time.Millisecond
	// DefaultModel names vectors when no model is configured.
	DefaultModel = "text-embedding-3-small"
)

// Cache holds one embedding per vocabulary skill and answers nearest-skill
// queries against them. Vectors are computed once per distinct source file
// content and persisted through a storage.VectorStore; afterwards the cache
// is read-only and safe for concurrent use.
type Cache struct {
	embedder   ai.Embedder
	store      storage.VectorStore
	model      string
	batchSize  int
	poolSize   int
	maxRetries int
	retryDelay time.Duration
	progress   io.Writer
	logger     *slog.Logger

	mu      sync.RWMutex
	vectors map[string][]float32
	skills  []string
}

var _ ai.SimilarityFinder = (*Cache)(nil)

// Option configures a Cache.
type Option func(*Cache) error

// WithBatchSize sets how many skills are embedded per backend call.
// Default is 100.
func WithBatchSize(size int) Option {
	return func(c *Cache) error {
		if size < 1 {
			return fmt.Errorf("%w: %d", ErrInvalidBatchSize, size)
		}
		c.batchSize = size
		return nil
	}
}

// WithPoolSize sets how many batches are embedded concurrently.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(c *Cache) error {
		c.poolSize = max(size, 1)
		return nil
	}
}

// WithMaxRetries sets the number of attempts per batch.
// Default is 3.
func WithMaxRetries(attempts int) Option {
	return func(c *Cache) error {
		if attempts < 1 {
			return fmt.Errorf("%w: %d", ErrInvalidMaxAttempts, attempts)
		}
		c.maxRetries = attempts
		return nil
	}
}

// WithRetryDelay sets the first backoff delay.
// Default is 500ms.
func WithRetryDelay(delay time.Duration) Option {
	return func(c *Cache) error {
		c.retryDelay = delay
		return nil
	}
}

// WithModel sets the model name recorded with cached vectors. A cache entry
// built with another model is not reused.
func WithModel(model string) Option {
	return func(c *Cache) error {
		if model != "" {
			c.model = model
		}
		return nil
	}
}

// WithProgress prints embedding progress to w.
func WithProgress(w io.Writer) Option {
	return func(c *Cache) error {
		c.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// New creates an empty cache. A nil embedder yields a cache that is never
// available; a nil store disables persistence.
func New(embedder ai.Embedder, store storage.VectorStore, opts ...Option) (*Cache, error) {
	c := &Cache{
		embedder:   embedder,
		store:      store,
		model:      DefaultModel,
		batchSize:  DefaultBatchSize,
		poolSize:   max(runtime.NumCPU()/2, 1),
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		logger:     slog.Default(),
		vectors:    map[string][]float32{},
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("component", "embedding-cache")
	return c, nil
}

// Model returns the model name vectors are recorded under.
func (c *Cache) Model() string {
	return c.model
}

// Initialize loads or computes vectors for skills. When the store holds an
// entry for the current content of sourcePath and model, it is loaded
// without calling the backend. Otherwise every distinct non-blank skill is
// embedded and the result is persisted. It reports whether vectors are
// available; every failure is logged and leaves the cache unavailable.
func (c *Cache) Initialize(ctx context.Context, sourcePath string, skills []string) bool {
	if c.embedder == nil {
		c.logger.Warn("embeddings disabled, no backend configured")
		return false
	}

	data, err := os.ReadFile(sourcePath)
	if err != nil {
		c.logger.Error("failed to read source for hashing", "path", sourcePath, "err", err)
		return false
	}
	hash := core.ContentHash(data)

	if entry := c.loadEntry(ctx, hash); entry != nil {
		c.install(entry.Vectors)
		c.logger.Info("source unchanged, using cached embeddings", "skills", len(entry.Vectors))
		return c.Available()
	}

	valid := distinctSkills(skills)
	c.logger.Info("generating embeddings", "skills", len(valid))

	vectors, err := c.build(ctx, valid)
	if err != nil {
		c.logger.Error("failed to generate embeddings", "err", fmt.Errorf("%w: %w", core.ErrBackendUnavailable, err))
		return false
	}
	c.install(vectors)

	if c.store != nil {
		entry := &core.EmbeddingCacheEntry{SourceHash: hash, Model: c.model, Vectors: vectors}
		if err := c.store.Save(ctx, entry); err != nil {
			c.logger.Warn("failed to persist embeddings", "err", err)
		}
	}

	c.logger.Info("embeddings ready", "skills", len(vectors))
	return c.Available()
}

func (c *Cache) loadEntry(ctx context.Context, hash string) *core.EmbeddingCacheEntry {
	if c.store == nil {
		return nil
	}
	entry, err := c.store.Load(ctx, hash)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			c.logger.Warn("failed to load cached embeddings", "err", err)
		}
		return nil
	}
	if entry.Model != c.model {
		c.logger.Info("cached embeddings use another model", "cached", entry.Model, "model", c.model)
		return nil
	}
	return entry
}

// build returns normalized vectors for skills, reusing whatever the store
// already holds under the current model.
func (c *Cache) build(ctx context.Context, skills []string) (map[string][]float32, error) {
	vectors := make(map[string][]float32, len(skills))

	missing := skills
	if lookup, ok := c.store.(storage.VectorLookup); ok && len(skills) > 0 {
		found, err := lookup.LookupVectors(ctx, c.model, skills)
		if err != nil {
			c.logger.Warn("vector lookup failed", "err", err)
		} else {
			missing = missing[:0:0]
			for _, skill := range skills {
				if vec, ok := found[skill]; ok {
					vectors[skill] = vec
				} else {
					missing = append(missing, skill)
				}
			}
			c.logger.Debug("reusing stored vectors", "reused", len(found), "missing", len(missing))
		}
	}

	embedded, err := c.embedAll(ctx, missing)
	if err != nil {
		return nil, err
	}
	maps.Copy(vectors, embedded)
	return vectors, nil
}

// embedAll embeds skills in batches on a bounded worker pool and waits for
// every batch. The first failure is returned.
func (c *Cache) embedAll(ctx context.Context, skills []string) (map[string][]float32, error) {
	if len(skills) == 0 {
		return map[string][]float32{}, nil
	}

	pool, err := ants.NewPool(c.poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	batches := slices.Collect(slices.Chunk(skills, c.batchSize))
	results := make([][][]float32, len(batches))
	errs := make([]error, len(batches))
	tracker := NewProgressTracker(c.progress, len(skills), c.batchSize)

	var wg sync.WaitGroup
	for i, batch := range batches {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			results[i], errs[i] = c.embedBatch(ctx, batch)
			if errs[i] == nil {
				tracker.Add(len(batch))
			}
		})
		if err != nil {
			wg.Done()
			errs[i] = err
		}
	}
	wg.Wait()
	if c.progress != nil {
		tracker.Finish()
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	vectors := make(map[string][]float32, len(skills))
	for i, batch := range batches {
		for j, skill := range batch {
			vectors[skill] = results[i][j]
		}
	}
	return vectors, nil
}

func (c *Cache) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	var embeddings [][]float32
	err := RetryWithBackoff(ctx, c.logger, c.maxRetries, c.retryDelay, func() error {
		var err error
		embeddings, err = c.embedder.EmbedTexts(ctx, batch)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to embed batch after %d attempts: %w", c.maxRetries, err)
	}
	if len(embeddings) != len(batch) {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingMismatch, len(batch), len(embeddings))
	}
	for i := range embeddings {
		embeddings[i] = NormalizeVector(embeddings[i])
	}
	return embeddings, nil
}

func (c *Cache) install(vectors map[string][]float32) {
	skills := slices.Sorted(maps.Keys(vectors))
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vectors = vectors
	c.skills = skills
}

// Available reports whether any skill vectors are loaded.
func (c *Cache) Available() bool {
	if c.embedder == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.vectors) > 0
}

// Vectors returns a copy of the skill to vector map.
func (c *Cache) Vectors() map[string][]float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.vectors)
}

// EmbedQuery embeds text with a live backend call. Query vectors are never
// cached.
func (c *Cache) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if c.embedder == nil {
		return nil, core.ErrBackendUnavailable
	}
	vec, err := c.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrBackendUnavailable, err)
	}
	return vec, nil
}

// FindSimilar returns up to topK skills whose cosine similarity to query is
// at least threshold, best first. Equal scores are ordered by skill.
func (c *Cache) FindSimilar(ctx context.Context, query string, topK int, threshold float64) ([]core.SkillScore, error) {
	if topK <= 0 || strings.TrimSpace(query) == "" || !c.Available() {
		return []core.SkillScore{}, nil
	}

	qvec, err := c.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	scores := make([]core.SkillScore, 0, topK)
	for _, skill := range c.skills {
		sim := CosineSimilarity(qvec, c.vectors[skill])
		if sim >= threshold {
			scores = append(scores, core.SkillScore{Skill: skill, Score: sim})
		}
	}
	c.mu.RUnlock()

	slices.SortStableFunc(scores, func(a, b core.SkillScore) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(scores) > topK {
		scores = scores[:topK]
	}
	return scores, nil
}

// distinctSkills drops blank entries and repeats, keeping first-seen order.
func distinctSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		if strings.TrimSpace(s) == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

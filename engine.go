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


package skillmatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/skillmatch/ai"
	"github.com/poiesic/skillmatch/ai/openai"
	"github.com/poiesic/skillmatch/catalog"
	"github.com/poiesic/skillmatch/compare"
	"github.com/poiesic/skillmatch/core"
	"github.com/poiesic/skillmatch/embedcache"
	"github.com/poiesic/skillmatch/search"
	"github.com/poiesic/skillmatch/semantic"
	"github.com/poiesic/skillmatch/storage"
	"github.com/poiesic/skillmatch/storage/file"
	"github.com/poiesic/skillmatch/table"
)

// DefaultCacheDir is where embedding vectors are persisted when neither a
// cache directory nor a vector store is configured.
const DefaultCacheDir = ".embeddings_cache"

// Engine is the read-only query surface over one catalog extract. It is
// built in a single blocking pass and is safe for concurrent queries.
type Engine struct {
	sourcePath string
	catalog    *catalog.Catalog
	resolver   *semantic.Resolver
	ranker     *search.Ranker
	cache      *embedcache.Cache
	provider   ai.AIProvider
	store      storage.VectorStore
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	columns      *table.ColumnMap
	aiConfig     *ai.Config
	provider     ai.AIProvider
	cacheDir     string
	store        storage.VectorStore
	aliasesFile  string
	taxonomyFile string
	weights      *search.Weights
	progress     io.Writer
	logger       *slog.Logger
}

// WithColumnMap overrides the logical to physical column mapping.
func WithColumnMap(columns *table.ColumnMap) Option {
	return func(o *engineOptions) {
		o.columns = columns
	}
}

// WithAIConfig configures the embedding backend. Embeddings stay disabled
// unless the config carries a credential.
func WithAIConfig(cfg *ai.Config) Option {
	return func(o *engineOptions) {
		o.aiConfig = cfg
	}
}

// WithProvider injects an embedding provider, bypassing WithAIConfig.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithCacheDir sets the directory of the file vector store.
func WithCacheDir(dir string) Option {
	return func(o *engineOptions) {
		o.cacheDir = dir
	}
}

// WithVectorStore injects the vector store, bypassing WithCacheDir.
func WithVectorStore(store storage.VectorStore) Option {
	return func(o *engineOptions) {
		o.store = store
	}
}

// WithAliasesFile replaces the built-in alias sets with a YAML file.
func WithAliasesFile(path string) Option {
	return func(o *engineOptions) {
		o.aliasesFile = path
	}
}

// WithTaxonomyFile replaces the built-in skill intents with a YAML file.
func WithTaxonomyFile(path string) Option {
	return func(o *engineOptions) {
		o.taxonomyFile = path
	}
}

// WithWeights overrides the ranking constants.
func WithWeights(w search.Weights) Option {
	return func(o *engineOptions) {
		o.weights = &w
	}
}

// WithProgress reports embedding progress to w.
func WithProgress(w io.Writer) Option {
	return func(o *engineOptions) {
		o.progress = w
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// NewEngine loads sourcePath and prepares every query component. A source
// that cannot be loaded is fatal. Embedding problems only disable the
// embedding tiers.
func NewEngine(ctx context.Context, sourcePath string, opts ...Option) (*Engine, error) {
	options := &engineOptions{
		columns:  table.DefaultColumnMap(),
		aiConfig: ai.DefaultConfig(),
		cacheDir: DefaultCacheDir,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	logger := options.logger

	loader, err := table.NewLoader(table.WithColumnMap(options.columns), table.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	tbl, err := loader.Load(sourcePath)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Aggregate(tbl, catalog.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	vocabulary := cat.Vocabulary()
	logger.Info("catalog loaded",
		"programs", cat.ProgramCount(),
		"courses", cat.CourseCount(),
		"skills", len(vocabulary))

	e := &Engine{
		sourcePath: sourcePath,
		catalog:    cat,
		logger:     logger.With("component", "engine"),
	}

	if err := e.initEmbeddings(ctx, options, vocabulary); err != nil {
		e.Close()
		return nil, err
	}

	resolverOpts := []semantic.Option{semantic.WithLogger(logger)}
	if options.aliasesFile != "" {
		aliases, err := semantic.LoadAliases(options.aliasesFile)
		if err != nil {
			e.Close()
			return nil, err
		}
		resolverOpts = append(resolverOpts, semantic.WithAliases(aliases))
	}
	if options.taxonomyFile != "" {
		taxonomy, err := semantic.LoadTaxonomy(options.taxonomyFile)
		if err != nil {
			e.Close()
			return nil, err
		}
		resolverOpts = append(resolverOpts, semantic.WithTaxonomy(taxonomy))
	}
	if e.EmbeddingsAvailable() {
		resolverOpts = append(resolverOpts, semantic.WithEmbeddingTier(e.cache))
	}
	e.resolver, err = semantic.NewResolver(vocabulary, resolverOpts...)
	if err != nil {
		e.Close()
		return nil, err
	}

	rankerOpts := []search.Option{search.WithResolver(e.resolver), search.WithLogger(logger)}
	if e.EmbeddingsAvailable() {
		rankerOpts = append(rankerOpts, search.WithEmbeddingCache(e.cache))
	}
	if options.weights != nil {
		rankerOpts = append(rankerOpts, search.WithWeights(*options.weights))
	}
	e.ranker, err = search.NewRanker(cat, rankerOpts...)
	if err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

// initEmbeddings sets up the provider, store and cache. Only invalid cache
// options are returned as errors.
func (e *Engine) initEmbeddings(ctx context.Context, options *engineOptions, vocabulary []string) error {
	e.store = options.store
	e.provider = options.provider
	if e.provider == nil {
		if !options.aiConfig.Enabled() {
			e.logger.Info("embeddings disabled, no credential configured")
			return nil
		}
		provider, err := openai.NewProvider(options.aiConfig)
		if err != nil {
			e.logger.Warn("embedding backend unavailable", "err", fmt.Errorf("%w: %w", core.ErrBackendUnavailable, err))
			return nil
		}
		e.provider = provider
	}

	if e.store == nil {
		store, err := file.NewStore(options.cacheDir, file.WithLogger(options.logger))
		if err != nil {
			e.logger.Warn("embedding cache not persisted", "dir", options.cacheDir, "err", err)
		} else {
			e.store = store
		}
	}

	cacheOpts := []embedcache.Option{
		embedcache.WithModel(e.provider.Model()),
		embedcache.WithProgress(options.progress),
		embedcache.WithLogger(options.logger),
	}
	if options.provider == nil && options.aiConfig.BatchSize > 0 {
		cacheOpts = append(cacheOpts, embedcache.WithBatchSize(options.aiConfig.BatchSize))
	}
	cache, err := embedcache.New(e.provider.Embedder(), e.store, cacheOpts...)
	if err != nil {
		return err
	}
	e.cache = cache
	cache.Initialize(ctx, e.sourcePath, vocabulary)
	return nil
}

// SearchPrograms returns up to topK programs ranked against query.
func (e *Engine) SearchPrograms(ctx context.Context, query string, topK int) ([]*core.ProgramMatch, error) {
	return e.ranker.SearchPrograms(ctx, query, topK)
}

// SearchProgramsWithMonitor is SearchPrograms with stage callbacks.
func (e *Engine) SearchProgramsWithMonitor(ctx context.Context, query string, topK int, monitor search.SearchMonitor) ([]*core.ProgramMatch, error) {
	return e.ranker.SearchProgramsWithMonitor(ctx, query, topK, monitor)
}

// GetProgramDetails returns one program.
func (e *Engine) GetProgramDetails(programKey string) (*core.ProgramEntity, bool) {
	return e.catalog.Program(programKey)
}

// GetProgramDeepDetails returns a program with all of its courses.
func (e *Engine) GetProgramDeepDetails(programKey string) (*core.DeepDetail, bool) {
	return e.catalog.DeepDetail(programKey)
}

// GetDetails returns flattened details for the known keys, in key order.
func (e *Engine) GetDetails(programKeys []string) []core.Detail {
	return e.catalog.Details(programKeys)
}

// ComparePrograms compares the first known program against each other one.
func (e *Engine) ComparePrograms(programKeys []string) []core.Comparison {
	return compare.CompareMany(e.catalog.Details(programKeys))
}

// Programs returns every program in source order.
func (e *Engine) Programs() []*core.ProgramEntity {
	return e.catalog.Programs()
}

// Vocabulary returns the sorted skill vocabulary.
func (e *Engine) Vocabulary() []string {
	return e.catalog.Vocabulary()
}

// Resolve maps a query to canonical skills.
func (e *Engine) Resolve(ctx context.Context, query, contextText string) core.ResolveResult {
	return e.resolver.Resolve(ctx, query, contextText)
}

// EmbeddingsAvailable reports whether the embedding tiers are active.
func (e *Engine) EmbeddingsAvailable() bool {
	return e.cache != nil && e.cache.Available()
}

// Close releases the embedding provider and vector store, including
// injected ones.
func (e *Engine) Close() error {
	var errs []error
	if e.provider != nil {
		if err := e.provider.Close(); err != nil {
			e.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
		e.provider = nil
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.logger.Error("error closing vector store", "err", err)
			errs = append(errs, err)
		}
		e.store = nil
	}
	return errors.Join(errs...)
}

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


package semantic

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/skillmatch/ai"
	"github.com/poiesic/skillmatch/core"
	"github.com/poiesic/skillmatch/intent"
)

// NoMatchExplanation is reported when no tier contributed.
const NoMatchExplanation = "No strong matches found"

// Resolver maps free text onto canonical skills through an ordered list of
// tiers: alias, taxonomy, fuzzy and, when enabled, embedding.
// A Resolver is immutable after construction and safe for concurrent use.
type Resolver struct {
	aliases  []AliasSet
	taxonomy []Intent
	finder   ai.SimilarityFinder

	fuzzyThreshold     float64
	strictThreshold    float64
	fuzzyTopK          int
	stopWords          []string
	embeddingTopK      int
	embeddingThreshold float64

	tiers  []Tier
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithAliases replaces the built-in alias table.
func WithAliases(sets []AliasSet) Option {
	return func(r *Resolver) error {
		r.aliases = sets
		return nil
	}
}

// WithTaxonomy replaces the built-in intent taxonomy.
func WithTaxonomy(intents []Intent) Option {
	return func(r *Resolver) error {
		r.taxonomy = intents
		return nil
	}
}

// WithEmbeddingTier enables the embedding tier. A nil finder leaves it disabled.
func WithEmbeddingTier(finder ai.SimilarityFinder) Option {
	return func(r *Resolver) error {
		r.finder = finder
		return nil
	}
}

// WithEmbeddingThreshold sets the minimum cosine similarity for embedding candidates.
// Default is 0.35.
func WithEmbeddingThreshold(threshold float64) Option {
	return func(r *Resolver) error {
		if threshold < 0 || threshold > 1 {
			return ErrInvalidThreshold
		}
		r.embeddingThreshold = threshold
		return nil
	}
}

// WithFuzzyThresholds sets the fuzzy acceptance threshold used when nothing
// is resolved yet and the stricter one used after a higher tier matched.
// Defaults are 0.7 and 0.9.
func WithFuzzyThresholds(open, strict float64) Option {
	return func(r *Resolver) error {
		if open < 0 || open > 1 || strict < 0 || strict > 1 {
			return ErrInvalidThreshold
		}
		r.fuzzyThreshold = open
		r.strictThreshold = strict
		return nil
	}
}

// WithStopWords sets the words the fuzzy tier never matches on its own.
// Default is the query stop word list of the built-in intent dictionary.
func WithStopWords(words []string) Option {
	return func(r *Resolver) error {
		r.stopWords = words
		return nil
	}
}

// NewResolver builds a resolver over the skill vocabulary.
func NewResolver(vocabulary []string, opts ...Option) (*Resolver, error) {
	r := &Resolver{
		aliases:            DefaultAliases(),
		taxonomy:           DefaultTaxonomy(),
		fuzzyThreshold:     DefaultFuzzyThreshold,
		strictThreshold:    DefaultStrictFuzzyThreshold,
		fuzzyTopK:          DefaultFuzzyTopK,
		stopWords:          intent.DefaultDictionary().QueryStopWords,
		embeddingTopK:      DefaultEmbeddingTopK,
		embeddingThreshold: DefaultEmbeddingThreshold,
		logger:             slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "resolver")

	r.tiers = []Tier{
		NewAliasTier(r.aliases),
		NewTaxonomyTier(r.taxonomy),
		newFuzzyTier(vocabulary, r.stopWords, r.fuzzyThreshold, r.strictThreshold, r.fuzzyTopK),
	}
	if r.finder != nil {
		r.tiers = append(r.tiers, &embeddingTier{
			finder:    r.finder,
			topK:      r.embeddingTopK,
			threshold: r.embeddingThreshold,
		})
	}
	return r, nil
}

// Tiers returns the tier sources in evaluation order.
func (r *Resolver) Tiers() []core.CandidateSource {
	out := make([]core.CandidateSource, 0, len(r.tiers))
	for _, t := range r.tiers {
		out = append(out, t.Name())
	}
	return out
}

// Resolve maps a query to canonical skills. contextText, when non-empty, is
// the text the taxonomy tier reads for disambiguation signals; otherwise the
// query itself is used. A failing tier is logged and skipped.
func (r *Resolver) Resolve(ctx context.Context, query, contextText string) core.ResolveResult {
	req := newRequest(query, contextText)
	state := &State{}

	var candidates []core.SemanticCandidate
	for _, tier := range r.tiers {
		proposed, err := tier.Propose(ctx, req, state)
		if err != nil {
			r.logger.Warn("resolver tier failed", "tier", tier.Name(), "err", err)
			continue
		}
		candidates = append(candidates, proposed...)
	}

	confidence := 0.0
	for _, c := range candidates {
		confidence = max(confidence, c.Score)
	}

	explanation := NoMatchExplanation
	if len(state.explanations) > 0 {
		explanation = strings.Join(state.explanations, "; ")
	}

	result := core.ResolveResult{
		NormalizedSkills: nonNil(state.normalized),
		SkillIntents:     nonNil(state.intents),
		QueryExpansions:  nonNil(state.expansions),
		Confidence:       confidence,
		Explanation:      explanation,
		Candidates:       candidates,
		OriginalQuery:    query,
	}
	if result.Candidates == nil {
		result.Candidates = []core.SemanticCandidate{}
	}
	r.logger.Debug("resolved query",
		"query", query,
		"skills", result.NormalizedSkills,
		"intents", result.SkillIntents,
		"confidence", confidence)
	return result
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}

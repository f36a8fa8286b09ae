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


package search

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/skillmatch/ai"
	"github.com/poiesic/skillmatch/catalog"
	"github.com/poiesic/skillmatch/core"
	"github.com/poiesic/skillmatch/intent"
)

// Resolver maps a query onto canonical skills and intent expansions.
type Resolver interface {
	Resolve(ctx context.Context, query, contextText string) core.ResolveResult
}

// Ranker scores catalog programs against queries. It holds no per-query
// state and is safe for concurrent use.
type Ranker struct {
	catalog   *catalog.Catalog
	resolver  Resolver
	extractor *intent.Extractor
	similar   ai.SimilarityFinder
	weights   Weights
	hasVocab  bool
	logger    *slog.Logger
}

// Option configures a Ranker.
type Option func(*Ranker) error

// WithResolver sets the semantic resolver. Without one, queries are ranked
// on their own words plus intent.
func WithResolver(resolver Resolver) Option {
	return func(r *Ranker) error {
		r.resolver = resolver
		return nil
	}
}

// WithIntentExtractor replaces the default intent extractor.
func WithIntentExtractor(extractor *intent.Extractor) Option {
	return func(r *Ranker) error {
		if extractor != nil {
			r.extractor = extractor
		}
		return nil
	}
}

// WithEmbeddingCache enables the embedding evidence tier.
func WithEmbeddingCache(finder ai.SimilarityFinder) Option {
	return func(r *Ranker) error {
		r.similar = finder
		return nil
	}
}

// WithWeights replaces the scoring constants.
func WithWeights(w Weights) Option {
	return func(r *Ranker) error {
		if err := w.Validate(); err != nil {
			return err
		}
		r.weights = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Ranker) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRanker creates a ranker over cat.
func NewRanker(cat *catalog.Catalog, opts ...Option) (*Ranker, error) {
	if cat == nil {
		return nil, ErrCatalogRequired
	}

	r := &Ranker{
		catalog:  cat,
		weights:  DefaultWeights(),
		hasVocab: len(cat.Vocabulary()) > 0,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if r.extractor == nil {
		extractor, err := intent.NewExtractor(intent.WithLogger(r.logger))
		if err != nil {
			return nil, err
		}
		r.extractor = extractor
	}
	r.logger = r.logger.With("component", "ranker")
	return r, nil
}

// SearchPrograms returns up to topK programs ranked by relevance.
func (r *Ranker) SearchPrograms(ctx context.Context, query string, topK int) ([]*core.ProgramMatch, error) {
	return r.SearchProgramsWithMonitor(ctx, query, topK, nil)
}

// SearchProgramsWithMonitor is SearchPrograms with callbacks at each stage.
func (r *Ranker) SearchProgramsWithMonitor(ctx context.Context, query string, topK int, monitor SearchMonitor) ([]*core.ProgramMatch, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query)

	results := []*core.ProgramMatch{}
	if topK <= 0 || strings.TrimSpace(query) == "" || !r.hasVocab {
		monitor.Finish(results)
		return results, nil
	}

	terms, in := r.queryTerms(ctx, query, monitor)
	similar := r.similarSkills(ctx, query)
	monitor.AfterSemanticLookup(similar)

	compiled := compileTerms(terms, toSet(in.TargetTerms), toSet(in.SourceTerms))
	for _, p := range r.catalog.Programs() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m := r.scoreProgram(p, compiled, similar)
		if m == nil {
			continue
		}
		monitor.ProgramScored(m)
		results = append(results, m)
	}

	slices.SortStableFunc(results, func(a, b *core.ProgramMatch) int {
		return cmp.Compare(b.Relevance, a.Relevance)
	})
	if len(results) > topK {
		results = results[:topK]
	}

	r.logger.Debug("search complete", "query", query, "terms", len(terms), "results", len(results))
	monitor.Finish(results)
	return results, nil
}

// queryTerms builds the ranking term set: query words, replaced by the
// target role's skills for role-based queries, otherwise extended with
// resolver skills and expansions.
func (r *Ranker) queryTerms(ctx context.Context, query string, monitor SearchMonitor) ([]string, intent.Intent) {
	terms := r.extractor.Terms(query)
	in := r.extractor.Extract(query)

	if in.RoleBased() {
		skills := make([]string, len(in.TargetSkills))
		for i, s := range in.TargetSkills {
			skills[i] = foldSkill(s)
		}
		terms = r.extractor.FilterTerms(skills)
		r.logger.Debug("role-based search", "role", in.TargetRole, "skills", terms)
	}
	if len(in.TargetTerms) > 0 {
		source := toSet(in.SourceTerms)
		terms = slices.DeleteFunc(terms, func(t string) bool {
			_, ok := source[t]
			return ok
		})
	}
	monitor.AfterIntent(in, terms)

	if in.RoleBased() || r.resolver == nil {
		return terms, in
	}

	res := r.resolver.Resolve(ctx, query, "")
	extra := make([]string, 0, len(res.NormalizedSkills)+len(res.QueryExpansions))
	for _, s := range res.NormalizedSkills {
		extra = append(extra, foldSkill(s))
	}
	for _, s := range res.QueryExpansions {
		extra = append(extra, foldSkill(s))
	}
	terms = core.AppendUnique(terms, extra...)
	monitor.AfterResolve(res, terms)
	return terms, in
}

func (r *Ranker) similarSkills(ctx context.Context, query string) []core.SkillScore {
	if r.similar == nil || !r.similar.Available() || r.weights.SimilarTopK == 0 {
		return nil
	}
	scores, err := r.similar.FindSimilar(ctx, query, r.weights.SimilarTopK, r.weights.SimilarThreshold)
	if err != nil {
		r.logger.Warn("embedding lookup failed, skipping tier", "err", err)
		return nil
	}
	return scores
}

// scoreProgram returns the program's match or nil when nothing matched.
func (r *Ranker) scoreProgram(p *core.ProgramEntity, terms []*term, similar []core.SkillScore) *core.ProgramMatch {
	w := r.weights
	var (
		score          float64
		matchedSkills  = []string{}
		semanticSkills []string
		evidence       []core.EvidenceSource
	)
	matchedTerms := make(map[string]struct{})
	addEvidence := func(e core.EvidenceSource) {
		if !slices.Contains(evidence, e) {
			evidence = append(evidence, e)
		}
	}
	hit := func(t *term, weight float64, e core.EvidenceSource) {
		score += weight
		matchedTerms[t.text] = struct{}{}
		addEvidence(e)
	}

	for _, s := range similar {
		for _, skill := range p.SkillsUnion {
			if strings.EqualFold(s.Skill, skill) {
				score += w.Embedding
				semanticSkills = core.AppendUnique(semanticSkills, skill)
				addEvidence(core.EvidenceSemanticMatch)
				break
			}
		}
	}

	for _, t := range terms {
		for _, skill := range p.SkillsUnion {
			if t.matches(skill) {
				hit(t, w.Skills.of(t.class), core.EvidenceCourseSkills)
				matchedSkills = core.AppendUnique(matchedSkills, skill)
			}
		}
	}

	courses := r.catalog.CoursesOf(p.ProgramKey)
	matchedCourses := []core.MatchedCourse{}
	for _, c := range courses {
		for _, skill := range p.SkillsByCourse[c.CourseKey] {
			if anyMatch(terms, skill) {
				matchedCourses = append(matchedCourses, core.MatchedCourse{CourseKey: c.CourseKey, Title: c.Title})
				break
			}
		}
	}

	for _, c := range courses {
		text := strings.TrimSpace(c.Title + " " + c.Summary)
		for _, t := range terms {
			if t.matches(text) {
				hit(t, w.Course.of(t.class), core.EvidenceCourseTitle)
			}
		}
	}

	programText := strings.TrimSpace(p.Title + " " + p.Summary)
	for _, t := range terms {
		if t.matches(programText) {
			hit(t, w.Program.of(t.class), core.EvidenceProgramTitle)
		}
	}

	for _, c := range courses {
		for _, title := range slices.Concat(c.LessonOutline, c.ProjectTitles) {
			if anyMatch(terms, title) {
				score += w.Outline
				addEvidence(core.EvidenceLessonTitle)
			}
		}
	}

	if score <= 0 {
		return nil
	}

	// matched terms are reported in query order
	termList := make([]string, 0, len(matchedTerms))
	for _, t := range terms {
		if _, ok := matchedTerms[t.text]; ok {
			termList = append(termList, t.text)
		}
	}

	return &core.ProgramMatch{
		Program:         p,
		Relevance:       w.relevance(score, len(matchedTerms), len(terms), len(semanticSkills)),
		Score:           score,
		MatchedSkills:   core.AppendUnique(matchedSkills, semanticSkills...),
		MatchedCourses:  matchedCourses,
		MatchedTerms:    termList,
		EvidenceSources: evidence,
	}
}

package search

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/skillmatch/catalog"
	"github.com/poiesic/skillmatch/core"
	"github.com/poiesic/skillmatch/intent"
	"github.com/poiesic/skillmatch/semantic"
	"github.com/poiesic/skillmatch/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var header = []string{
	"Program Key", "Program Title", "Program Summary",
	"Course Key", "Course Title", "Course Summary",
	"Course Skills Array", "Course Skills Subject Array",
	"Lesson Title", "Project Title",
}

var rows = [][]string{
	{"p1", "SQL Foundations", "Query relational data", "c1", "Intro to Databases", "Learn SQL joins", "SQL", "", "Select statements", "Sales report"},
	{"p1", "", "", "c2", "Python for Analysis", "", "Python", "", "Lists", ""},
	{"p2", "Data Scientist Nanodegree", "Become a data scientist", "d1", "Machine Learning Basics", "Supervised learning", "Machine Learning, Python", "Statistics", "Regression", "Predict churn"},
	{"p2", "", "", "d2", "Deep Learning", "", "Deep Learning", "Data Visualization", "Neural nets", ""},
	{"p3", "Excel for Analysts", "Spreadsheets for data analysts", "e1", "Spreadsheet Skills", "", "Excel", "Tableau", "Pivot tables", ""},
	{"p4", "Marketing 101", "Brand strategy", "m1", "Brand", "", "Marketing", "", "Positioning", ""},
}

func buildCatalog(t *testing.T, header []string, rows [][]string) *catalog.Catalog {
	t.Helper()
	tbl, err := table.FromRecords(header, rows, nil)
	require.NoError(t, err)
	cat, err := catalog.Aggregate(tbl)
	require.NoError(t, err)
	return cat
}

func newTestRanker(t *testing.T, opts ...Option) *Ranker {
	t.Helper()
	r, err := NewRanker(buildCatalog(t, header, rows), opts...)
	require.NoError(t, err)
	return r
}

func keys(results []*core.ProgramMatch) []string {
	out := make([]string, len(results))
	for i, m := range results {
		out[i] = m.Program.ProgramKey
	}
	return out
}

// recorder captures monitor callbacks.
type recorder struct {
	noopMonitor
	intent   intent.Intent
	terms    []string
	resolved bool
	similar  []core.SkillScore
	scored   int
	finished []*core.ProgramMatch
}

func (r *recorder) AfterIntent(in intent.Intent, terms []string) {
	r.intent = in
	r.terms = terms
}

func (r *recorder) AfterResolve(_ core.ResolveResult, terms []string) {
	r.resolved = true
	r.terms = terms
}

func (r *recorder) AfterSemanticLookup(skills []core.SkillScore) { r.similar = skills }
func (r *recorder) ProgramScored(_ *core.ProgramMatch)           { r.scored++ }
func (r *recorder) Finish(results []*core.ProgramMatch)          { r.finished = results }

func TestSearchPrograms_SingleSkillProgram(t *testing.T) {
	cat := buildCatalog(t,
		[]string{"Program Key", "Program Title", "Course Key", "Course Title", "Course Skills Array"},
		[][]string{{"nd100", "Data Foundations", "c1", "Foundations", "SQL, Python"}},
	)
	p, ok := cat.Program("nd100")
	require.True(t, ok)
	require.Equal(t, []string{"SQL", "Python"}, p.SkillsUnion)

	r, err := NewRanker(cat)
	require.NoError(t, err)

	results, err := r.SearchPrograms(t.Context(), "SQL", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Greater(t, results[0].Relevance, 0.0)
	assert.Contains(t, results[0].MatchedSkills, "SQL")
	assert.Equal(t, []core.EvidenceSource{core.EvidenceCourseSkills}, results[0].EvidenceSources)
	assert.InDelta(t, 0.9, results[0].Relevance, 1e-9)
}

func TestSearchPrograms_RoleBased(t *testing.T) {
	resolver := &fakeResolver{}
	r := newTestRanker(t, WithResolver(resolver))
	rec := &recorder{}

	results, err := r.SearchProgramsWithMonitor(t.Context(), "help data analysts become data scientists", 5, rec)
	require.NoError(t, err)

	require.True(t, rec.intent.RoleBased())
	assert.Equal(t, "data scientist", rec.intent.TargetRole)
	assert.Equal(t, intent.DefaultDictionary().Skills("data scientist"), rec.terms)
	assert.NotContains(t, rec.terms, "excel")
	assert.NotContains(t, rec.terms, "tableau")
	assert.False(t, rec.resolved)
	assert.Equal(t, 0, resolver.calls, "resolver is skipped for role-based queries")

	require.NotEmpty(t, results)
	assert.Equal(t, "p2", results[0].Program.ProgramKey)
	assert.NotContains(t, keys(results), "p3", "analyst-only program is not boosted into results")
	assert.Equal(t, results, rec.finished)
	assert.Equal(t, len(results), rec.scored)
}

func TestSearchPrograms_TargetAndSourceTerms(t *testing.T) {
	r := newTestRanker(t)
	rec := &recorder{}

	results, err := r.SearchProgramsWithMonitor(t.Context(), "from excel to python", 5, rec)
	require.NoError(t, err)

	assert.Equal(t, []string{"python"}, rec.terms, "source terms are dropped when a target exists")
	assert.Equal(t, []string{"p1", "p2"}, keys(results))

	// skills 25 (target) + course title 8 (target)
	assert.InDelta(t, 33.0, results[0].Score, 1e-9)
	assert.InDelta(t, 25.0, results[1].Score, 1e-9)
	assert.Equal(t, results[0].Relevance, results[1].Relevance, "tie keeps catalog order")
}

func TestSearchPrograms_MatchedCoursesAndEvidence(t *testing.T) {
	r := newTestRanker(t)

	results, err := r.SearchPrograms(t.Context(), "python", 5)
	require.NoError(t, err)
	require.Equal(t, []string{"p1", "p2"}, keys(results))

	p1 := results[0]
	assert.Equal(t, []core.MatchedCourse{{CourseKey: "c2", Title: "Python for Analysis"}}, p1.MatchedCourses)
	assert.Equal(t, []core.EvidenceSource{core.EvidenceCourseSkills, core.EvidenceCourseTitle}, p1.EvidenceSources)
	assert.Equal(t, []string{"python"}, p1.MatchedTerms)
	// skills 10 + course title 3
	assert.InDelta(t, 13.0, p1.Score, 1e-9)

	results, err = r.SearchPrograms(t.Context(), "neural regression", 5)
	require.NoError(t, err)
	require.Equal(t, []string{"p2"}, keys(results))
	assert.Equal(t, []core.EvidenceSource{core.EvidenceLessonTitle}, results[0].EvidenceSources)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.Empty(t, results[0].MatchedSkills)
	assert.Empty(t, results[0].MatchedCourses)
}

func TestSearchPrograms_WordBoundary(t *testing.T) {
	r := newTestRanker(t)

	// "analyst" is not a whole word in "analysts" or "Analysis"
	results, err := r.SearchPrograms(t.Context(), "analyst", 5)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = r.SearchPrograms(t.Context(), "ANALYSTS", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"p3"}, keys(results))
}

func TestSearchPrograms_EmptyInputs(t *testing.T) {
	r := newTestRanker(t)

	for _, tc := range []struct {
		name  string
		query string
		topK  int
	}{
		{"empty query", "", 5},
		{"blank query", "   ", 5},
		{"zero top-k", "python", 0},
		{"negative top-k", "python", -1},
		{"only stop words", "what do you have", 5},
		{"no match", "underwater basket weaving", 5},
	} {
		t.Run(tc.name, func(t *testing.T) {
			results, err := r.SearchPrograms(t.Context(), tc.query, tc.topK)
			require.NoError(t, err)
			assert.NotNil(t, results)
			assert.Empty(t, results)
		})
	}

	t.Run("empty vocabulary", func(t *testing.T) {
		cat := buildCatalog(t,
			[]string{"Program Key", "Program Title", "Course Key", "Course Title"},
			[][]string{{"p1", "Python Programming", "c1", "Python"}},
		)
		r, err := NewRanker(cat)
		require.NoError(t, err)
		results, err := r.SearchPrograms(t.Context(), "python", 5)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestSearchPrograms_Properties(t *testing.T) {
	r := newTestRanker(t, WithEmbeddingCache(&fakeFinder{
		available: true,
		scores:    []core.SkillScore{{Skill: "Machine Learning", Score: 0.8}, {Skill: "Statistics", Score: 0.5}},
	}))

	queries := []string{
		"python", "sql joins", "data", "learn machine learning",
		"help data analysts become data scientists", "from excel to python",
		"brand marketing", "deep learning and data visualization", "anything",
	}
	for _, q := range queries {
		for _, k := range []int{1, 2, 5} {
			results, err := r.SearchPrograms(t.Context(), q, k)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(results), k, q)
			for i, m := range results {
				assert.Greater(t, m.Score, 0.0, q)
				assert.GreaterOrEqual(t, m.Relevance, 0.0, q)
				assert.LessOrEqual(t, m.Relevance, 1.0, q)
				if i > 0 {
					assert.GreaterOrEqual(t, results[i-1].Relevance, m.Relevance, q)
				}
			}
		}
	}
}

func TestSearchPrograms_EmbeddingTier(t *testing.T) {
	finder := &fakeFinder{
		available: true,
		scores:    []core.SkillScore{{Skill: "machine learning", Score: 0.8}},
	}
	r := newTestRanker(t, WithEmbeddingCache(finder))
	rec := &recorder{}

	results, err := r.SearchProgramsWithMonitor(t.Context(), "teach computers to spot patterns", 5, rec)
	require.NoError(t, err)
	require.Equal(t, []string{"p2"}, keys(results))

	m := results[0]
	assert.Equal(t, []core.EvidenceSource{core.EvidenceSemanticMatch}, m.EvidenceSources)
	assert.Equal(t, []string{"Machine Learning"}, m.MatchedSkills)
	assert.InDelta(t, 15.0, m.Score, 1e-9)
	// four uncovered terms: 15 / (4*10 + 1*5) normalized, plus one bonus step
	assert.InDelta(t, 0.3*15.0/45.0+0.05, m.Relevance, 1e-9)
	assert.Equal(t, finder.scores, rec.similar)
	assert.Equal(t, 15, finder.lastTopK)
	assert.InDelta(t, 0.35, finder.lastThreshold, 1e-9)
}

func TestSearchPrograms_EmbeddingDegrades(t *testing.T) {
	for _, finder := range []*fakeFinder{
		{available: false, scores: []core.SkillScore{{Skill: "Machine Learning", Score: 1}}},
		{available: true, err: errors.New("backend down")},
	} {
		r := newTestRanker(t, WithEmbeddingCache(finder))
		results, err := r.SearchPrograms(t.Context(), "python", 5)
		require.NoError(t, err)
		assert.Equal(t, []string{"p1", "p2"}, keys(results))
		for _, m := range results {
			assert.NotContains(t, m.EvidenceSources, core.EvidenceSemanticMatch)
		}
	}
}

func TestSearchPrograms_ResolverTerms(t *testing.T) {
	resolver := &fakeResolver{result: core.ResolveResult{
		NormalizedSkills: []string{"machine_learning"},
		QueryExpansions:  []string{"Deep Learning", "Python"},
	}}
	r := newTestRanker(t, WithResolver(resolver))
	rec := &recorder{}

	results, err := r.SearchProgramsWithMonitor(t.Context(), "ML", 5, rec)
	require.NoError(t, err)

	assert.True(t, rec.resolved)
	assert.Equal(t, []string{"ml", "machine learning", "deep learning", "python"}, rec.terms)
	require.NotEmpty(t, results)
	assert.Equal(t, "p2", results[0].Program.ProgramKey)
	assert.Equal(t, []string{"Machine Learning", "Deep Learning", "Python"}, results[0].MatchedSkills)
}

func TestSearchPrograms_WithSemanticResolver(t *testing.T) {
	cat := buildCatalog(t, header, rows)
	resolver, err := semantic.NewResolver(cat.Vocabulary())
	require.NoError(t, err)
	r, err := NewRanker(cat, WithResolver(resolver))
	require.NoError(t, err)

	results, err := r.SearchPrograms(t.Context(), "Structured Query Language", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "p1", results[0].Program.ProgramKey)
	assert.Contains(t, results[0].MatchedSkills, "SQL")
}

func TestSearchPrograms_ContextCanceled(t *testing.T) {
	r := newTestRanker(t)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := r.SearchPrograms(ctx, "python", 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRanker_Errors(t *testing.T) {
	_, err := NewRanker(nil)
	assert.ErrorIs(t, err, ErrCatalogRequired)

	w := DefaultWeights()
	w.Skills.Source = -1
	_, err = NewRanker(buildCatalog(t, header, rows), WithWeights(w))
	assert.ErrorIs(t, err, ErrInvalidWeights)

	w = DefaultWeights()
	w.SimilarTopK = -1
	assert.ErrorIs(t, w.Validate(), ErrInvalidWeights)
	assert.NoError(t, DefaultWeights().Validate())
}

func TestWithWeights(t *testing.T) {
	w := DefaultWeights()
	w.Skills.Neutral = 100
	r := newTestRanker(t, WithWeights(w), WithLogger(nil), WithIntentExtractor(nil))

	results, err := r.SearchPrograms(t.Context(), "python", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	// skills 100 + course title 3
	assert.InDelta(t, 103.0, results[0].Score, 1e-9)
}

func TestRelevance(t *testing.T) {
	w := DefaultWeights()

	tests := []struct {
		name                         string
		score                        float64
		matched, total, semanticHits int
		want                         float64
	}{
		{"full coverage saturated score", 10, 1, 1, 0, 0.9},
		{"half coverage", 10, 1, 2, 0, 0.3 + 0.3*0.5},
		{"no terms", 15, 0, 0, 1, 0.3 + 0.05},
		{"bonus capped", 100, 2, 2, 5, 1},
		{"nothing", 0, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, w.relevance(tt.score, tt.matched, tt.total, tt.semanticHits), 1e-9)
		})
	}
}

type fakeResolver struct {
	result core.ResolveResult
	calls  int
}

func (f *fakeResolver) Resolve(_ context.Context, query, _ string) core.ResolveResult {
	f.calls++
	res := f.result
	res.OriginalQuery = query
	return res
}

type fakeFinder struct {
	available     bool
	scores        []core.SkillScore
	err           error
	lastTopK      int
	lastThreshold float64
}

func (f *fakeFinder) Available() bool { return f.available }

func (f *fakeFinder) FindSimilar(_ context.Context, _ string, topK int, threshold float64) ([]core.SkillScore, error) {
	f.lastTopK = topK
	f.lastThreshold = threshold
	return f.scores, f.err
}

func TestSearchPrograms_FillerWordsDoNotMatchSkills(t *testing.T) {
	cat := buildCatalog(t, header, [][]string{
		{"k1", "Containers in Practice", "Ship services", "k1c", "Docker Basics", "", "Docker", "", "Images", ""},
		{"k2", "Excel for Analysts", "Spreadsheets for data analysts", "k2c", "Spreadsheet Skills", "", "Excel", "Spreadsheets", "Pivot tables", ""},
	})
	resolver, err := semantic.NewResolver(cat.Vocabulary())
	require.NoError(t, err)
	r, err := NewRanker(cat, WithResolver(resolver))
	require.NoError(t, err)
	rec := &recorder{}

	results, err := r.SearchProgramsWithMonitor(t.Context(), "do you have anything on spreadsheets", 5, rec)
	require.NoError(t, err)
	assert.NotContains(t, rec.terms, "docker")
	assert.NotContains(t, rec.terms, "anything")
	assert.Equal(t, []string{"k2"}, keys(results))
}

package skillmatch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/skillmatch/ai"
	"github.com/poiesic/skillmatch/ai/mock"
	"github.com/poiesic/skillmatch/compare"
	"github.com/poiesic/skillmatch/search"
	"github.com/poiesic/skillmatch/storage/badger"
	"github.com/poiesic/skillmatch/storage/sqlite"
	"github.com/poiesic/skillmatch/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogCSV = `Program Key,Program Title,Program Summary,Program Duration Hours,Difficulty Level,Course Key,Course Title,Course Summary,Course Skills Array,Course Prereq Skills,Lesson Title,Project Title
nd001,SQL Foundations,Query relational data,40,Beginner,c1,Intro to Databases,Learn SQL joins,"SQL, Python",,Select statements,Sales report
nd001,,,,,c1,,,,,Joins,
nd002,Data Scientist Nanodegree,Become a data scientist,120,Advanced,d1,Machine Learning Basics,Supervised learning,"Machine Learning, Statistics","Python, SQL",Regression,Churn model
`

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(catalogCSV), 0o644))
	return path
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithCacheDir(filepath.Join(t.TempDir(), "cache"))}, opts...)
	e, err := NewEngine(t.Context(), writeCatalog(t), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func TestNewEngine(t *testing.T) {
	e := newTestEngine(t)

	assert.False(t, e.EmbeddingsAvailable(), "no credential configured")
	require.Len(t, e.Programs(), 2)
	assert.Equal(t, "nd001", e.Programs()[0].ProgramKey)
	assert.Equal(t, []string{"Machine Learning", "Python", "SQL", "Statistics"}, e.Vocabulary())
}

func TestNewEngine_Errors(t *testing.T) {
	t.Run("missing source", func(t *testing.T) {
		e, err := NewEngine(t.Context(), filepath.Join(t.TempDir(), "missing.csv"))
		assert.ErrorIs(t, err, table.ErrLoadFailure)
		assert.Nil(t, e)
	})

	t.Run("missing aliases file", func(t *testing.T) {
		_, err := NewEngine(t.Context(), writeCatalog(t), WithAliasesFile(filepath.Join(t.TempDir(), "nope.yaml")))
		assert.Error(t, err)
	})

	t.Run("invalid weights", func(t *testing.T) {
		w := search.DefaultWeights()
		w.Outline = -1
		_, err := NewEngine(t.Context(), writeCatalog(t), WithWeights(w))
		assert.ErrorIs(t, err, search.ErrInvalidWeights)
	})
}

func TestEngine_SearchPrograms(t *testing.T) {
	e := newTestEngine(t)

	results, err := e.SearchPrograms(t.Context(), "SQL", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "nd001", results[0].Program.ProgramKey)
	assert.Contains(t, results[0].MatchedSkills, "SQL")

	results, err = e.SearchPrograms(t.Context(), "", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestEngine_Lookups(t *testing.T) {
	e := newTestEngine(t)

	p, ok := e.GetProgramDetails("nd001")
	require.True(t, ok)
	assert.Equal(t, "SQL Foundations", p.Title)
	require.NotNil(t, p.DurationHours)
	assert.Equal(t, 40.0, *p.DurationHours)

	_, ok = e.GetProgramDetails("missing")
	assert.False(t, ok)

	deep, ok := e.GetProgramDeepDetails("nd001")
	require.True(t, ok)
	require.Len(t, deep.Courses, 1)
	assert.Equal(t, []string{"Select statements", "Joins"}, deep.Courses[0].LessonOutline)

	_, ok = e.GetProgramDeepDetails("missing")
	assert.False(t, ok)

	details := e.GetDetails([]string{"nd002", "missing", "nd001"})
	require.Len(t, details, 2)
	assert.Equal(t, "nd002", details[0].ProgramKey)
	assert.Equal(t, []string{"Python", "SQL"}, details[0].PrerequisiteSkills)
	assert.Equal(t, "nd001", details[1].ProgramKey)
}

func TestEngine_ComparePrograms(t *testing.T) {
	e := newTestEngine(t)

	comparisons := e.ComparePrograms([]string{"nd001", "nd002"})
	require.Len(t, comparisons, 1)
	c := comparisons[0]
	assert.Equal(t, "nd001", c.ProgramA)
	assert.Equal(t, "nd002", c.ProgramB)
	assert.Equal(t, []string{compare.HintShorter, compare.HintNewcomers, compare.HintFewPrereqs}, c.ChooseA)
	assert.Equal(t, []string{compare.HintDepth, compare.HintExperienced}, c.ChooseB)

	assert.Empty(t, e.ComparePrograms([]string{"nd001", "missing"}))
}

func TestEngine_Resolve(t *testing.T) {
	e := newTestEngine(t)

	res := e.Resolve(t.Context(), "Structured Query Language", "")
	assert.Contains(t, res.NormalizedSkills, "sql")
	assert.Equal(t, "Structured Query Language", res.OriginalQuery)
}

func TestEngine_EmbeddingCache(t *testing.T) {
	path := writeCatalog(t)
	cacheDir := filepath.Join(t.TempDir(), "cache")

	first := mock.NewMockProvider()
	e, err := NewEngine(t.Context(), path, WithProvider(first), WithCacheDir(cacheDir))
	require.NoError(t, err)
	assert.True(t, e.EmbeddingsAvailable())
	embedder := first.(*mock.MockProvider).GetMockEmbedder()
	assert.Equal(t, 4, embedder.EmbeddedCount())

	results, err := e.SearchPrograms(t.Context(), "statistics", 5)
	require.NoError(t, err)
	assert.NotEmpty(t, results)

	require.NoError(t, e.Close())
	assert.True(t, first.(*mock.MockProvider).Closed())
	assert.FileExists(t, filepath.Join(cacheDir, "embeddings.cache"))

	// unchanged source reuses the persisted vectors
	second := mock.NewMockProvider()
	e, err = NewEngine(t.Context(), path, WithProvider(second), WithCacheDir(cacheDir))
	require.NoError(t, err)
	defer e.Close()
	assert.True(t, e.EmbeddingsAvailable())
	assert.Equal(t, 0, second.(*mock.MockProvider).GetMockEmbedder().CallCount())
}

func TestEngine_BadgerVectorStore(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)

	e := newTestEngine(t, WithProvider(mock.NewMockProvider()), WithVectorStore(store))
	assert.True(t, e.EmbeddingsAvailable())

	vectors, err := store.LookupVectors(t.Context(), mock.MockModel, []string{"SQL", "Python"})
	require.NoError(t, err)
	assert.Len(t, vectors, 2)
}

func TestEngine_SQLiteVectorStore(t *testing.T) {
	path := writeCatalog(t)
	dbPath := filepath.Join(t.TempDir(), sqlite.DatabaseFileName)

	store, err := sqlite.NewStore(dbPath)
	require.NoError(t, err)
	e, err := NewEngine(t.Context(), path, WithProvider(mock.NewMockProvider()), WithVectorStore(store))
	require.NoError(t, err)
	assert.True(t, e.EmbeddingsAvailable())
	require.NoError(t, e.Close())

	store, err = sqlite.NewStore(dbPath)
	require.NoError(t, err)
	provider := mock.NewMockProvider()
	e, err = NewEngine(t.Context(), path, WithProvider(provider), WithVectorStore(store))
	require.NoError(t, err)
	defer e.Close()
	assert.True(t, e.EmbeddingsAvailable())
	assert.Equal(t, 0, provider.(*mock.MockProvider).GetMockEmbedder().CallCount())
}

func TestEngine_EmbeddingFailureDegrades(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(_ context.Context, _ []string) ([][]float32, error) {
		return nil, errors.New("backend down")
	}

	e := newTestEngine(t, WithProvider(mock.NewMockProviderWithEmbedder(embedder)))
	assert.False(t, e.EmbeddingsAvailable())

	results, err := e.SearchPrograms(t.Context(), "machine learning", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "nd002", results[0].Program.ProgramKey)
}

func TestEngine_AIConfigWithoutKey(t *testing.T) {
	e := newTestEngine(t, WithAIConfig(ai.NewConfig(ai.WithAPIKey("  "))))
	assert.False(t, e.EmbeddingsAvailable())
}

func TestEngine_Close(t *testing.T) {
	e, err := NewEngine(t.Context(), writeCatalog(t), WithProvider(mock.NewMockProvider()), WithCacheDir(t.TempDir()))
	require.NoError(t, err)

	assert.NoError(t, e.Close())
	assert.NoError(t, e.Close())
}

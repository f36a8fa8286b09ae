package catalog

import (
	"testing"

	"github.com/poiesic/skillmatch/core"
	"github.com/poiesic/skillmatch/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixtureHeader = []string{
	"Program Key", "Program Title", "Program Duration Hours", "Difficulty Level",
	"In Consumer Catalog", "Total Active Enrollments", "Partners",
	"Course Key", "Course Title", "Course Skills Array", "Course Skills Subject Array",
	"Skill Domains", "Third Party Tools", "Lesson Title", "Project Title", "Concept Titles",
}

var fixtureRows = [][]string{
	{"nd001", "Data Analyst", "40", "Beginner", "yes", "1200", "Acme", "c1", "SQL Basics", "SQL, Databases", "Data", "Data Science", "Postgres", "Select", "", "Queries"},
	{"nd001", "null", "nan", "null", "no", "null", "Acme, Globex", "c1", "null", "SQL", "null", "null", "null", "Joins", "Build a report", "Joins, Queries"},
	{"nd001", "Other Title", "50", "Advanced", "no", "99", "", "c2", "Python Intro", "Python", "Programming", "Software", "Jupyter", "Lists", "Analyze data", ""},
	{"nd002", "ML Engineer", "80", "Intermediate", "false", "", "", "c9", "Models", "Machine Learning", "", "AI", "", "Regression", "", ""},
	{"nd003", "Orphan Program", "", "", "", "", "", "null", "", "", "", "", "", "Intro", "", ""},
	{"null", "Ghost", "", "", "", "", "", "c5", "Ghost Course", "Haskell", "", "", "", "", "", ""},
}

func fixtureCatalog(t *testing.T) *Catalog {
	t.Helper()
	tbl, err := table.FromRecords(fixtureHeader, fixtureRows, nil)
	require.NoError(t, err)
	cat, err := Aggregate(tbl)
	require.NoError(t, err)
	return cat
}

func TestAggregate_Courses(t *testing.T) {
	cat := fixtureCatalog(t)

	require.Equal(t, 3, cat.CourseCount())

	c1, ok := cat.Course("nd001", "c1")
	require.True(t, ok)
	assert.Equal(t, "SQL Basics", c1.Title)
	assert.Equal(t, []string{"SQL", "Databases"}, c1.SkillsArray)
	assert.Equal(t, []string{"Data"}, c1.SkillsSubjectArray)
	assert.Equal(t, []string{"Data Science"}, c1.SkillDomains)
	assert.Equal(t, []string{"Postgres"}, c1.ThirdPartyTools)
	assert.Equal(t, []string{"Queries", "Joins"}, c1.ConceptTitles)
	assert.Equal(t, []string{"Select", "Joins"}, c1.LessonOutline)
	assert.Equal(t, 2, c1.LessonCount)
	assert.Equal(t, []string{"Build a report"}, c1.ProjectTitles)
	assert.Equal(t, 1, c1.ProjectCount)
	assert.True(t, c1.HandsOn)
	assert.Empty(t, c1.SoftwareRequirements)
	assert.NotNil(t, c1.SoftwareRequirements)
	assert.Nil(t, c1.DurationHours)

	c9, ok := cat.Course("nd002", "c9")
	require.True(t, ok)
	assert.False(t, c9.HandsOn)
	assert.Equal(t, 0, c9.ProjectCount)

	_, ok = cat.Course("nd003", "null")
	assert.False(t, ok, "rows with a null course key form no course")
	_, ok = cat.Course("null", "c5")
	assert.False(t, ok, "rows with a null program key form no course")

	for _, c := range cat.Courses() {
		assert.NoError(t, core.ValidateCourse(c))
	}
}

func TestAggregate_Programs(t *testing.T) {
	cat := fixtureCatalog(t)

	require.Equal(t, 3, cat.ProgramCount())
	keys := make([]string, 0)
	for _, p := range cat.Programs() {
		keys = append(keys, p.ProgramKey)
	}
	assert.Equal(t, []string{"nd001", "nd002", "nd003"}, keys)

	p, ok := cat.Program("nd001")
	require.True(t, ok)
	assert.Equal(t, "Data Analyst", p.Title)
	require.NotNil(t, p.DurationHours)
	assert.Equal(t, 40.0, *p.DurationHours)
	assert.Equal(t, "Beginner", p.DifficultyLevel)
	assert.True(t, p.InConsumerCatalog)
	require.NotNil(t, p.TotalActiveEnrollments)
	assert.Equal(t, 1200, *p.TotalActiveEnrollments)
	assert.Equal(t, []string{"Acme", "Globex"}, p.Partners)

	assert.Equal(t, []string{"c1", "c2"}, p.Courses)
	assert.Equal(t, 2, p.CourseCount)
	assert.Equal(t, []string{"SQL", "Databases", "Data", "Python", "Programming"}, p.SkillsUnion)
	assert.Equal(t, []string{"Data Science", "Software"}, p.SkillDomains)
	assert.Equal(t, map[string][]string{
		"c1": {"SQL", "Databases", "Data"},
		"c2": {"Python", "Programming"},
	}, p.SkillsByCourse)
	assert.Equal(t, 3, p.LessonCount)
	assert.Equal(t, 2, p.ProjectCount)

	require.NoError(t, core.ValidateProgram(p, cat.CoursesOf("nd001")...))

	orphan, ok := cat.Program("nd003")
	require.True(t, ok)
	assert.Empty(t, orphan.Courses)
	assert.NotNil(t, orphan.Courses)
	assert.Equal(t, 0, orphan.CourseCount)
	assert.Empty(t, orphan.SkillsUnion)
	assert.Empty(t, orphan.SkillsByCourse)
	assert.Nil(t, orphan.TotalActiveEnrollments)

	_, ok = cat.Program("null")
	assert.False(t, ok)
}

func TestAggregate_Vocabulary(t *testing.T) {
	cat := fixtureCatalog(t)
	assert.Equal(t, []string{"Data", "Databases", "Machine Learning", "Programming", "Python", "SQL"}, cat.Vocabulary())

	v := cat.Vocabulary()
	v[0] = "mutated"
	assert.Equal(t, "Data", cat.Vocabulary()[0])
}

func TestAggregate_MissingKeyColumns(t *testing.T) {
	t.Run("no program key", func(t *testing.T) {
		tbl, err := table.FromRecords([]string{"Course Key", "Course Title"}, [][]string{{"c1", "SQL"}}, nil)
		require.NoError(t, err)

		cat, err := Aggregate(tbl)
		require.NoError(t, err)
		assert.Equal(t, 0, cat.ProgramCount())
		assert.Equal(t, 0, cat.CourseCount())
		assert.Empty(t, cat.Vocabulary())
	})

	t.Run("no course key", func(t *testing.T) {
		tbl, err := table.FromRecords([]string{"Program Key", "Program Title"}, [][]string{{"p1", "Title"}}, nil)
		require.NoError(t, err)

		cat, err := Aggregate(tbl)
		require.NoError(t, err)
		assert.Equal(t, 1, cat.ProgramCount())
		assert.Equal(t, 0, cat.CourseCount())

		p, ok := cat.Program("p1")
		require.True(t, ok)
		assert.Empty(t, p.Courses)
	})

	t.Run("nil table", func(t *testing.T) {
		_, err := Aggregate(nil)
		assert.ErrorIs(t, err, ErrNilTable)
	})
}

func TestAggregate_Idempotent(t *testing.T) {
	tbl, err := table.FromRecords(fixtureHeader, fixtureRows, nil)
	require.NoError(t, err)

	a, err := Aggregate(tbl)
	require.NoError(t, err)
	b, err := Aggregate(tbl)
	require.NoError(t, err)

	assert.Equal(t, a.Programs(), b.Programs())
	assert.Equal(t, a.Courses(), b.Courses())
	assert.Equal(t, a.Vocabulary(), b.Vocabulary())
}

func TestBuildVocabulary(t *testing.T) {
	courses := []*core.CourseEntity{
		{SkillsArray: []string{"SQL", "Python"}, SkillsSubjectArray: []string{"Data"}},
		{SkillsArray: []string{"Python", ""}, SkillsSubjectArray: []string{"AI"}},
	}
	assert.Equal(t, []string{"AI", "Data", "Python", "SQL"}, BuildVocabulary(courses))
	assert.Empty(t, BuildVocabulary(nil))
	assert.NotNil(t, BuildVocabulary(nil))
}

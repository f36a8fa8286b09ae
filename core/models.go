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


package core

import (
	"encoding/hex"

	"github.com/go-crypt/x/blake2b"
)

// ContentHash returns the hex encoded BLAKE2b-256 digest of data.
// It keys embedding cache entries so that identical source content
// always maps to the same entry.
func ContentHash(data []byte) string {
	h, _ := blake2b.New(32, nil) // 32 bytes = 256 bits
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CourseID builds the map key for a course within a program.
func CourseID(programKey, courseKey string) string {
	return programKey + ":" + courseKey
}

// CourseEntity aggregates every lesson row that shares a (program, course) key.
type CourseEntity struct {
	ProgramKey string
	CourseKey  string
	Title      string
	Summary    string

	SkillsArray          []string
	SkillsSubjectArray   []string
	SkillDomains         []string
	PrereqSkills         []string
	ThirdPartyTools      []string
	SoftwareRequirements []string
	HardwareRequirements []string
	ConceptTitles        []string

	DurationHours *float64 // nil when absent in every row

	LessonOutline []string // distinct lesson titles, first-seen order
	LessonCount   int
	ProjectTitles []string // distinct project titles, first-seen order
	ProjectCount  int
	HandsOn       bool
}

// Skills returns the course skill array followed by the subject array.
func (c *CourseEntity) Skills() []string {
	return UniqueStrings(c.SkillsArray, c.SkillsSubjectArray)
}

// ProgramEntity aggregates every lesson row that shares a program key.
type ProgramEntity struct {
	ProgramKey       string
	Title            string
	Type             string
	Summary          string
	DurationHours    *float64
	DifficultyLevel  string
	PrimarySchool    string
	Persona          string
	URL              string
	Category         string
	SyllabusOverview string
	Version          string
	VersionReleased  string

	InConsumerCatalog   bool
	InEnterpriseCatalog bool

	PrereqSkills []string
	GTM          []string
	Partners     []string
	Clients      []string

	// TotalActiveEnrollments is nil when no row carries a numeric value.
	TotalActiveEnrollments *int

	Courses        []string
	CourseCount    int
	SkillsUnion    []string
	SkillDomains   []string
	SkillsByCourse map[string][]string

	// LessonCount and ProjectCount count non-null rows, not distinct titles.
	LessonCount  int
	ProjectCount int
}

// CandidateSource names the resolver tier that proposed a candidate.
type CandidateSource string

const (
	SourceAlias     CandidateSource = "alias"
	SourceTaxonomy  CandidateSource = "taxonomy"
	SourceFuzzy     CandidateSource = "fuzzy"
	SourceEmbedding CandidateSource = "embedding"
)

// SemanticCandidate is a single proposal from a resolver tier.
type SemanticCandidate struct {
	Skill          string
	Score          float64 // in [0,1]
	Source         CandidateSource
	CanonicalSkill string // optional
	IntentLabel    string // optional
}

// ResolveResult is the outcome of resolving a query against the skill vocabulary.
type ResolveResult struct {
	NormalizedSkills []string
	SkillIntents     []string
	QueryExpansions  []string
	Confidence       float64
	Explanation      string
	Candidates       []SemanticCandidate
	OriginalQuery    string
}

// SkillScore pairs a vocabulary skill with a similarity score.
type SkillScore struct {
	Skill string
	Score float64
}

// EmbeddingCacheEntry holds vocabulary vectors computed for one version of
// the source file.
type EmbeddingCacheEntry struct {
	SourceHash string
	Model      string
	Vectors    map[string][]float32
}

// EvidenceSource tags the scoring tier that contributed to a match.
type EvidenceSource string

const (
	EvidenceSemanticMatch EvidenceSource = "semantic_match"
	EvidenceCourseSkills  EvidenceSource = "course_skills"
	EvidenceCourseTitle   EvidenceSource = "course_title"
	EvidenceProgramTitle  EvidenceSource = "program_title"
	EvidenceLessonTitle   EvidenceSource = "lesson_title"
)

// MatchedCourse identifies a course whose skills matched a query term.
type MatchedCourse struct {
	CourseKey string
	Title     string
}

// ProgramMatch is a ranked search hit.
type ProgramMatch struct {
	Program         *ProgramEntity
	Relevance       float64
	Score           float64
	MatchedSkills   []string
	MatchedCourses  []MatchedCourse
	MatchedTerms    []string
	EvidenceSources []EvidenceSource
}

// Detail is the flattened per-program record built from the program's first course.
type Detail struct {
	ProgramKey         string
	ProgramTitle       string
	CourseTitle        string
	PrerequisiteSkills []string
	CourseSkills       []string
	Tools              []string
	Software           []string
	Hardware           []string
	LessonTitles       []string
	LessonSummaries    []string
	ProjectTitles      []string
	ConceptTitles      []string
	DurationHours      *float64
	DifficultyLevel    string
	Source             string
}

// DeepDetail is a program together with all of its courses.
type DeepDetail struct {
	Program *ProgramEntity
	Courses []*CourseEntity
}

// Dimension names one axis along which two programs are compared.
type Dimension string

const (
	DimensionDuration      Dimension = "duration_hours"
	DimensionDifficulty    Dimension = "difficulty_level"
	DimensionPrerequisites Dimension = "prerequisites"
	DimensionSkills        Dimension = "skills_taught"
	DimensionTools         Dimension = "tools"
	DimensionProjects      Dimension = "projects"
)

// Difference holds the two programs' values for one dimension. A and B are
// a float64, a string or a []string depending on the dimension.
type Difference struct {
	Dimension Dimension
	A         any
	B         any
}

// Comparison is a side-by-side view of two programs with short hints on
// when to pick each.
type Comparison struct {
	ProgramA    string
	ProgramB    string
	Differences []Difference
	ChooseA     []string
	ChooseB     []string
}

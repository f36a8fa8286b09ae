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


package catalog

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/skillmatch/core"
	"github.com/poiesic/skillmatch/table"
)

// ErrNilTable is returned by Aggregate when no table is supplied.
var ErrNilTable = errors.New("table is nil")

// Option configures aggregation.
type Option func(*aggregator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *aggregator) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

type aggregator struct {
	t      *table.Table
	logger *slog.Logger
}

// group is a run of rows sharing a key, in source order.
type group struct {
	key  string
	rows []table.Record
}

// groupBy partitions rows by keyFn, preserving first-seen group order.
// Rows for which keyFn reports false are skipped.
func groupBy(rows []table.Record, keyFn func(table.Record) (string, bool)) []*group {
	var groups []*group
	index := make(map[string]*group)
	for _, row := range rows {
		key, ok := keyFn(row)
		if !ok {
			continue
		}
		g, seen := index[key]
		if !seen {
			g = &group{key: key}
			index[key] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, row)
	}
	return groups
}

// Aggregate groups the table's rows into courses and programs. Missing key
// columns leave the affected map empty and are logged, never returned.
func Aggregate(t *table.Table, opts ...Option) (*Catalog, error) {
	if t == nil {
		return nil, ErrNilTable
	}
	a := &aggregator{t: t, logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	a.logger = a.logger.With("component", "catalog")

	c := &Catalog{
		programs: make(map[string]*core.ProgramEntity),
		courses:  make(map[string]*core.CourseEntity),
	}

	programCol, hasProgram := t.Column(table.CategoryProgram, "program_key")
	courseCol, hasCourse := t.Column(table.CategoryCourse, "course_key")
	if !hasProgram {
		a.logger.Warn("aggregation degraded", "err", fmt.Errorf("%w: program_key", core.ErrMissingColumn))
		c.vocabulary = BuildVocabulary(nil)
		return c, nil
	}
	if !hasCourse {
		a.logger.Warn("course aggregation skipped", "err", fmt.Errorf("%w: course_key", core.ErrMissingColumn))
	}

	if hasCourse {
		groups := groupBy(t.Rows, func(r table.Record) (string, bool) {
			pk, ck := r[programCol], r[courseCol]
			if pk.IsNull() || ck.IsNull() {
				return "", false
			}
			return core.CourseID(pk.Text(), ck.Text()), true
		})
		for _, g := range groups {
			course := a.buildCourse(g.rows, programCol, courseCol)
			c.courses[g.key] = course
			c.courseOrder = append(c.courseOrder, g.key)
		}
	}

	groups := groupBy(t.Rows, func(r table.Record) (string, bool) {
		pk := r[programCol]
		return pk.Text(), !pk.IsNull()
	})
	for _, g := range groups {
		program := a.buildProgram(g.key, g.rows, courseCol, hasCourse, c.courses)
		c.programs[g.key] = program
		c.programOrder = append(c.programOrder, g.key)
	}

	c.vocabulary = BuildVocabulary(c.Courses())
	a.logger.Debug("aggregated catalog",
		"programs", len(c.programs),
		"courses", len(c.courses),
		"skills", len(c.vocabulary))
	return c, nil
}

func (a *aggregator) buildCourse(rows []table.Record, programCol, courseCol string) *core.CourseEntity {
	course := &core.CourseEntity{
		ProgramKey:    rows[0][programCol].Text(),
		CourseKey:     rows[0][courseCol].Text(),
		Title:         a.firstText(rows, table.CategoryCourse, "course_title"),
		Summary:       a.firstText(rows, table.CategoryCourse, "course_summary"),
		DurationHours: a.firstNumber(rows, table.CategoryCourse, "course_duration_hours"),

		SkillsArray:          a.mergeArray(rows, table.CategoryCourse, "course_skills_array"),
		SkillsSubjectArray:   a.mergeArray(rows, table.CategoryCourse, "course_skills_subject_array"),
		SkillDomains:         a.mergeArray(rows, table.CategoryCourse, "skill_domains"),
		PrereqSkills:         a.mergeArray(rows, table.CategoryCourse, "course_prereq_skills"),
		ThirdPartyTools:      a.mergeArray(rows, table.CategoryCourse, "third_party_tools"),
		SoftwareRequirements: a.mergeArray(rows, table.CategoryCourse, "software_requirements"),
		HardwareRequirements: a.mergeArray(rows, table.CategoryCourse, "hardware_requirements"),
		ConceptTitles:        a.mergeArray(rows, table.CategoryLesson, "concept_titles"),

		LessonOutline: a.distinctText(rows, table.CategoryLesson, "lesson_title"),
		ProjectTitles: a.distinctText(rows, table.CategoryLesson, "project_title"),
	}
	course.LessonCount = len(course.LessonOutline)
	course.ProjectCount = len(course.ProjectTitles)
	course.HandsOn = len(course.ProjectTitles) > 0
	return course
}

func (a *aggregator) buildProgram(key string, rows []table.Record, courseCol string, hasCourse bool, courses map[string]*core.CourseEntity) *core.ProgramEntity {
	p := &core.ProgramEntity{
		ProgramKey:       key,
		Title:            a.firstText(rows, table.CategoryProgram, "program_title"),
		Type:             a.firstText(rows, table.CategoryProgram, "program_type"),
		Summary:          a.firstText(rows, table.CategoryProgram, "program_summary"),
		DurationHours:    a.firstNumber(rows, table.CategoryProgram, "program_duration_hours"),
		DifficultyLevel:  a.firstText(rows, table.CategoryProgram, "difficulty_level"),
		PrimarySchool:    a.firstText(rows, table.CategoryProgram, "primary_school"),
		Persona:          a.firstText(rows, table.CategoryProgram, "persona"),
		URL:              a.firstText(rows, table.CategoryProgram, "program_url"),
		Category:         a.firstText(rows, table.CategoryProgram, "program_category"),
		SyllabusOverview: a.firstText(rows, table.CategoryProgram, "syllabus_overview"),
		Version:          a.firstText(rows, table.CategoryProgram, "version"),
		VersionReleased:  a.firstText(rows, table.CategoryProgram, "version_released_at"),

		InConsumerCatalog:   a.firstFlag(rows, table.CategoryProgram, "in_consumer_catalog"),
		InEnterpriseCatalog: a.firstFlag(rows, table.CategoryProgram, "in_ent_catalog"),

		PrereqSkills: a.mergeArray(rows, table.CategoryProgram, "program_prereq_skills"),
		GTM:          a.mergeArray(rows, table.CategoryProgram, "gtm_array"),
		Partners:     a.mergeArray(rows, table.CategoryProgram, "partners"),
		Clients:      a.mergeArray(rows, table.CategoryProgram, "clients"),

		Courses:        []string{},
		SkillsByCourse: make(map[string][]string),
		LessonCount:    a.countNonNull(rows, table.CategoryLesson, "lesson_title"),
		ProjectCount:   a.countNonNull(rows, table.CategoryLesson, "project_title"),
	}

	if n := a.firstNumber(rows, table.CategoryProgram, "total_active_enrollments"); n != nil {
		v := int(*n)
		p.TotalActiveEnrollments = &v
	}

	if hasCourse {
		keys := make([]string, 0)
		for _, row := range rows {
			if ck := row[courseCol]; !ck.IsNull() {
				keys = append(keys, ck.Text())
			}
		}
		p.Courses = core.UniqueStrings(keys)
	}
	p.CourseCount = len(p.Courses)

	var skills, domains []string
	for _, ck := range p.Courses {
		course, ok := courses[core.CourseID(key, ck)]
		if !ok {
			continue
		}
		courseSkills := course.Skills()
		skills = append(skills, courseSkills...)
		domains = append(domains, course.SkillDomains...)
		if len(courseSkills) > 0 {
			p.SkillsByCourse[ck] = courseSkills
		}
	}
	p.SkillsUnion = core.UniqueStrings(skills)
	p.SkillDomains = core.UniqueStrings(domains)
	return p
}

// firstText returns the first non-empty text value in source order.
func (a *aggregator) firstText(rows []table.Record, category, logical string) string {
	for _, row := range rows {
		v := a.t.Get(row, category, logical)
		if v.IsNull() {
			continue
		}
		if s := v.Text(); s != "" {
			return s
		}
	}
	return ""
}

func (a *aggregator) firstNumber(rows []table.Record, category, logical string) *float64 {
	for _, row := range rows {
		if f, ok := a.t.Get(row, category, logical).Float(); ok {
			return &f
		}
	}
	return nil
}

func (a *aggregator) firstFlag(rows []table.Record, category, logical string) bool {
	for _, row := range rows {
		v := a.t.Get(row, category, logical)
		if !v.IsNull() {
			return v.Truth()
		}
	}
	return false
}

func (a *aggregator) mergeArray(rows []table.Record, category, logical string) []string {
	if !a.t.Has(category, logical) {
		return []string{}
	}
	var merged []string
	for _, row := range rows {
		items, err := a.t.Get(row, category, logical).Strings()
		if err != nil {
			a.logger.Debug("array field coerced to empty", "field", logical, "err", err)
			continue
		}
		merged = append(merged, items...)
	}
	return core.UniqueStrings(merged)
}

func (a *aggregator) distinctText(rows []table.Record, category, logical string) []string {
	var values []string
	for _, row := range rows {
		v := a.t.Get(row, category, logical)
		if !v.IsNull() {
			values = append(values, v.Text())
		}
	}
	return core.UniqueStrings(values)
}

func (a *aggregator) countNonNull(rows []table.Record, category, logical string) int {
	n := 0
	for _, row := range rows {
		if !a.t.Get(row, category, logical).IsNull() {
			n++
		}
	}
	return n
}

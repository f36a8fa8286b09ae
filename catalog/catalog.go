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
	"slices"
	"sort"

	"github.com/poiesic/skillmatch/core"
)

// Catalog is the read-only result of aggregation. Entities are built once and
// never modified afterwards, so a Catalog is safe for concurrent readers.
type Catalog struct {
	programs     map[string]*core.ProgramEntity
	courses      map[string]*core.CourseEntity
	programOrder []string
	courseOrder  []string
	vocabulary   []string
}

// Program returns a program by key.
func (c *Catalog) Program(key string) (*core.ProgramEntity, bool) {
	p, ok := c.programs[key]
	return p, ok
}

// Course returns a course by program and course key.
func (c *Catalog) Course(programKey, courseKey string) (*core.CourseEntity, bool) {
	course, ok := c.courses[core.CourseID(programKey, courseKey)]
	return course, ok
}

// Programs returns every program in first-seen source order.
func (c *Catalog) Programs() []*core.ProgramEntity {
	out := make([]*core.ProgramEntity, 0, len(c.programOrder))
	for _, key := range c.programOrder {
		out = append(out, c.programs[key])
	}
	return out
}

// Courses returns every course in first-seen source order.
func (c *Catalog) Courses() []*core.CourseEntity {
	out := make([]*core.CourseEntity, 0, len(c.courseOrder))
	for _, key := range c.courseOrder {
		out = append(out, c.courses[key])
	}
	return out
}

// CoursesOf returns the aggregated courses of a program in program order.
func (c *Catalog) CoursesOf(programKey string) []*core.CourseEntity {
	p, ok := c.programs[programKey]
	if !ok {
		return nil
	}
	out := make([]*core.CourseEntity, 0, len(p.Courses))
	for _, ck := range p.Courses {
		if course, ok := c.courses[core.CourseID(programKey, ck)]; ok {
			out = append(out, course)
		}
	}
	return out
}

// ProgramCount returns the number of programs.
func (c *Catalog) ProgramCount() int { return len(c.programs) }

// CourseCount returns the number of courses.
func (c *Catalog) CourseCount() int { return len(c.courses) }

// Vocabulary returns a copy of the skill vocabulary.
func (c *Catalog) Vocabulary() []string {
	return slices.Clone(c.vocabulary)
}

// BuildVocabulary returns the sorted distinct skills drawn from each course's
// skill array and skill subject array.
func BuildVocabulary(courses []*core.CourseEntity) []string {
	seen := make(map[string]struct{})
	for _, course := range courses {
		for _, s := range course.SkillsArray {
			if s != "" {
				seen[s] = struct{}{}
			}
		}
		for _, s := range course.SkillsSubjectArray {
			if s != "" {
				seen[s] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

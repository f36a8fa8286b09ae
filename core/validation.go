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

import "fmt"

// ValidateCourse validates a CourseEntity according to aggregation rules.
//
// Validation rules:
//   - ProgramKey and CourseKey must not be empty
//   - No array field contains a repeated element
//   - HandsOn matches whether any project titles exist
func ValidateCourse(course *CourseEntity) error {
	if course == nil {
		return fmt.Errorf("%w: course is nil", ErrInvalidCourse)
	}
	if course.ProgramKey == "" || course.CourseKey == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCourse, ErrEmptyKey)
	}

	fields := map[string][]string{
		"skills_array":          course.SkillsArray,
		"skills_subject_array":  course.SkillsSubjectArray,
		"skill_domains":         course.SkillDomains,
		"prereq_skills":         course.PrereqSkills,
		"third_party_tools":     course.ThirdPartyTools,
		"software_requirements": course.SoftwareRequirements,
		"hardware_requirements": course.HardwareRequirements,
		"concept_titles":        course.ConceptTitles,
		"lesson_outline":        course.LessonOutline,
		"project_titles":        course.ProjectTitles,
	}
	for name, values := range fields {
		if err := checkDistinct(name, values); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidCourse, err)
		}
	}

	if course.HandsOn != (len(course.ProjectTitles) > 0) {
		return fmt.Errorf("%w: hands_on does not match project titles", ErrInvalidCourse)
	}
	return nil
}

// ValidateProgram validates a ProgramEntity against its courses.
//
// Validation rules:
//   - ProgramKey must not be empty
//   - No array field contains a repeated element
//   - SkillsUnion contains every skill of every supplied course
func ValidateProgram(program *ProgramEntity, courses ...*CourseEntity) error {
	if program == nil {
		return fmt.Errorf("%w: program is nil", ErrInvalidProgram)
	}
	if program.ProgramKey == "" {
		return fmt.Errorf("%w: %w", ErrInvalidProgram, ErrEmptyKey)
	}

	fields := map[string][]string{
		"prereq_skills": program.PrereqSkills,
		"gtm":           program.GTM,
		"partners":      program.Partners,
		"clients":       program.Clients,
		"courses":       program.Courses,
		"skills_union":  program.SkillsUnion,
		"skill_domains": program.SkillDomains,
	}
	for name, values := range fields {
		if err := checkDistinct(name, values); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidProgram, err)
		}
	}

	union := make(map[string]struct{}, len(program.SkillsUnion))
	for _, s := range program.SkillsUnion {
		union[s] = struct{}{}
	}
	for _, c := range courses {
		for _, s := range c.Skills() {
			if _, ok := union[s]; !ok {
				return fmt.Errorf("%w: %w: %q from course %s", ErrInvalidProgram, ErrSkillsNotCovered, s, c.CourseKey)
			}
		}
	}
	return nil
}

func checkDistinct(field string, values []string) error {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			return fmt.Errorf("%w: %s repeats %q", ErrDuplicateValue, field, v)
		}
		seen[v] = struct{}{}
	}
	return nil
}

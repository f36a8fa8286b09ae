package catalog

import (
	"github.com/poiesic/skillmatch/core"
)

// DetailSource marks records produced from the tabular extract.
const DetailSource = "csv"

// DeepDetail returns a program with all of its aggregated courses.
func (c *Catalog) DeepDetail(programKey string) (*core.DeepDetail, bool) {
	p, ok := c.programs[programKey]
	if !ok {
		return nil, false
	}
	return &core.DeepDetail{
		Program: p,
		Courses: c.CoursesOf(programKey),
	}, true
}

// Details flattens each known program into a Detail built from its first
// course. Unknown keys and programs without an aggregated first course are
// skipped.
func (c *Catalog) Details(programKeys []string) []core.Detail {
	out := make([]core.Detail, 0, len(programKeys))
	for _, key := range programKeys {
		p, ok := c.programs[key]
		if !ok || len(p.Courses) == 0 {
			continue
		}
		course, ok := c.courses[core.CourseID(key, p.Courses[0])]
		if !ok {
			continue
		}
		out = append(out, core.Detail{
			ProgramKey:         key,
			ProgramTitle:       p.Title,
			CourseTitle:        course.Title,
			PrerequisiteSkills: course.PrereqSkills,
			CourseSkills:       course.Skills(),
			Tools:              course.ThirdPartyTools,
			Software:           course.SoftwareRequirements,
			Hardware:           course.HardwareRequirements,
			LessonTitles:       course.LessonOutline,
			LessonSummaries:    []string{},
			ProjectTitles:      course.ProjectTitles,
			ConceptTitles:      course.ConceptTitles,
			DurationHours:      p.DurationHours,
			DifficultyLevel:    p.DifficultyLevel,
			Source:             DetailSource,
		})
	}
	return out
}

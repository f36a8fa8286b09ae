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


// Package compare contrasts flattened program details and suggests which
// program suits which learner.
package compare

import (
	"strings"

	"github.com/poiesic/skillmatch/core"
)

// Hints attached to a Comparison.
const (
	HintShorter     = "Shorter timeline needed"
	HintDepth       = "More comprehensive depth needed"
	HintNewcomers   = "Learners are new to the field"
	HintExperienced = "Learners have prior experience"
	HintFewPrereqs  = "Minimal prerequisites available"
	HintHandsOn     = "Hands-on practice is critical"
)

const beginnerDifficulty = "beginner"

// Compare contrasts a and b. Duration is compared only when both programs
// report a positive duration.
func Compare(a, b core.Detail) core.Comparison {
	c := core.Comparison{
		ProgramA: a.ProgramKey,
		ProgramB: b.ProgramKey,
		ChooseA:  []string{},
		ChooseB:  []string{},
	}

	da, db := positive(a.DurationHours), positive(b.DurationHours)
	if da > 0 && db > 0 {
		c.Differences = append(c.Differences, core.Difference{Dimension: core.DimensionDuration, A: da, B: db})
		switch {
		case da < db:
			c.ChooseA = append(c.ChooseA, HintShorter)
			c.ChooseB = append(c.ChooseB, HintDepth)
		case db < da:
			c.ChooseB = append(c.ChooseB, HintShorter)
			c.ChooseA = append(c.ChooseA, HintDepth)
		}
	}

	c.Differences = append(c.Differences,
		core.Difference{Dimension: core.DimensionDifficulty, A: a.DifficultyLevel, B: b.DifficultyLevel},
		core.Difference{Dimension: core.DimensionPrerequisites, A: orEmpty(a.PrerequisiteSkills), B: orEmpty(b.PrerequisiteSkills)},
		core.Difference{Dimension: core.DimensionSkills, A: orEmpty(a.CourseSkills), B: orEmpty(b.CourseSkills)},
		core.Difference{Dimension: core.DimensionTools, A: orEmpty(a.Tools), B: orEmpty(b.Tools)},
		core.Difference{Dimension: core.DimensionProjects, A: orEmpty(a.ProjectTitles), B: orEmpty(b.ProjectTitles)},
	)

	aBeginner, bBeginner := isBeginner(a.DifficultyLevel), isBeginner(b.DifficultyLevel)
	switch {
	case aBeginner && !bBeginner:
		c.ChooseA = append(c.ChooseA, HintNewcomers)
		c.ChooseB = append(c.ChooseB, HintExperienced)
	case bBeginner && !aBeginner:
		c.ChooseB = append(c.ChooseB, HintNewcomers)
		c.ChooseA = append(c.ChooseA, HintExperienced)
	}

	switch pa, pb := len(a.PrerequisiteSkills), len(b.PrerequisiteSkills); {
	case pa < pb:
		c.ChooseA = append(c.ChooseA, HintFewPrereqs)
	case pb < pa:
		c.ChooseB = append(c.ChooseB, HintFewPrereqs)
	}

	switch pa, pb := len(a.ProjectTitles), len(b.ProjectTitles); {
	case pa > pb:
		c.ChooseA = append(c.ChooseA, HintHandsOn)
	case pb > pa:
		c.ChooseB = append(c.ChooseB, HintHandsOn)
	}

	return c
}

// CompareMany compares the first detail against each of the others. Fewer
// than two details yield no comparisons.
func CompareMany(details []core.Detail) []core.Comparison {
	out := []core.Comparison{}
	if len(details) < 2 {
		return out
	}
	for _, other := range details[1:] {
		out = append(out, Compare(details[0], other))
	}
	return out
}

// Dimension returns the difference recorded for d, if any.
func Dimension(c core.Comparison, d core.Dimension) (core.Difference, bool) {
	for _, diff := range c.Differences {
		if diff.Dimension == d {
			return diff, true
		}
	}
	return core.Difference{}, false
}

func positive(v *float64) float64 {
	if v == nil || *v <= 0 {
		return 0
	}
	return *v
}

func isBeginner(level string) bool {
	return strings.EqualFold(strings.TrimSpace(level), beginnerDifficulty)
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

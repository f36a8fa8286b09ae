package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/poiesic/skillmatch"
	"github.com/poiesic/skillmatch/ai"
	"github.com/poiesic/skillmatch/core"
	"github.com/urfave/cli/v2"
)

func searchCommand(c *cli.Context) error {
	query, err := queryArg(c)
	if err != nil {
		return err
	}
	e, err := openEngine(c)
	if err != nil {
		return err
	}
	defer e.Close()

	results, err := e.SearchPrograms(c.Context, query, c.Int("top-k"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Found %d programs\n", len(results))
	for i, m := range results {
		fmt.Fprintf(w, "%d: %s '%s' [%0.3f]\n", i+1, m.Program.ProgramKey, m.Program.Title, m.Relevance)
		if len(m.MatchedSkills) > 0 {
			fmt.Fprintf(w, "   skills:   %s\n", strings.Join(m.MatchedSkills, ", "))
		}
		if len(m.MatchedCourses) > 0 {
			titles := make([]string, len(m.MatchedCourses))
			for j, mc := range m.MatchedCourses {
				titles[j] = mc.Title
			}
			fmt.Fprintf(w, "   courses:  %s\n", strings.Join(titles, ", "))
		}
		evidence := make([]string, len(m.EvidenceSources))
		for j, ev := range m.EvidenceSources {
			evidence[j] = string(ev)
		}
		fmt.Fprintf(w, "   evidence: %s\n", strings.Join(evidence, ", "))
	}
	return nil
}

func detailsCommand(c *cli.Context) error {
	keys := c.Args().Slice()
	if len(keys) == 0 {
		return fmt.Errorf("at least one program key is required")
	}
	e, err := openEngine(c)
	if err != nil {
		return err
	}
	defer e.Close()

	w := c.App.Writer
	for _, key := range keys {
		if c.Bool("deep") {
			deep, ok := e.GetProgramDeepDetails(key)
			if !ok {
				return fmt.Errorf("program %q not found", key)
			}
			printProgram(w, deep.Program)
			for _, course := range deep.Courses {
				fmt.Fprintf(w, "   course %s '%s'\n", course.CourseKey, course.Title)
				fmt.Fprintf(w, "      skills:  %s\n", strings.Join(course.Skills(), ", "))
				fmt.Fprintf(w, "      lessons: %d, projects: %d\n", course.LessonCount, course.ProjectCount)
			}
			continue
		}
		p, ok := e.GetProgramDetails(key)
		if !ok {
			return fmt.Errorf("program %q not found", key)
		}
		printProgram(w, p)
	}
	return nil
}

func printProgram(w io.Writer, p *core.ProgramEntity) {
	fmt.Fprintf(w, "%s '%s'\n", p.ProgramKey, p.Title)
	if p.DifficultyLevel != "" {
		fmt.Fprintf(w, "   difficulty: %s\n", p.DifficultyLevel)
	}
	if p.DurationHours != nil {
		fmt.Fprintf(w, "   duration:   %.1f hours\n", *p.DurationHours)
	}
	fmt.Fprintf(w, "   courses:    %d\n", p.CourseCount)
	fmt.Fprintf(w, "   skills:     %s\n", strings.Join(p.SkillsUnion, ", "))
}

func compareCommand(c *cli.Context) error {
	keys := c.Args().Slice()
	if len(keys) < 2 {
		return fmt.Errorf("at least two program keys are required")
	}
	e, err := openEngine(c)
	if err != nil {
		return err
	}
	defer e.Close()

	comparisons := e.ComparePrograms(keys)
	if len(comparisons) == 0 {
		return fmt.Errorf("nothing to compare: fewer than two known programs")
	}

	w := c.App.Writer
	for _, cmp := range comparisons {
		fmt.Fprintf(w, "%s vs %s\n", cmp.ProgramA, cmp.ProgramB)
		for _, d := range cmp.Differences {
			fmt.Fprintf(w, "   %-16s %v | %v\n", d.Dimension, d.A, d.B)
		}
		fmt.Fprintf(w, "   choose %s if: %s\n", cmp.ProgramA, strings.Join(cmp.ChooseA, "; "))
		fmt.Fprintf(w, "   choose %s if: %s\n", cmp.ProgramB, strings.Join(cmp.ChooseB, "; "))
	}
	return nil
}

func resolveCommand(c *cli.Context) error {
	query, err := queryArg(c)
	if err != nil {
		return err
	}
	e, err := openEngine(c)
	if err != nil {
		return err
	}
	defer e.Close()

	res := e.Resolve(c.Context, query, c.String("context"))
	w := c.App.Writer
	fmt.Fprintf(w, "skills:     %s\n", strings.Join(res.NormalizedSkills, ", "))
	fmt.Fprintf(w, "intents:    %s\n", strings.Join(res.SkillIntents, ", "))
	fmt.Fprintf(w, "expansions: %s\n", strings.Join(res.QueryExpansions, ", "))
	fmt.Fprintf(w, "confidence: %0.3f\n", res.Confidence)
	fmt.Fprintf(w, "%s\n", res.Explanation)
	return nil
}

func vocabCommand(c *cli.Context) error {
	e, err := openEngine(c)
	if err != nil {
		return err
	}
	defer e.Close()

	for _, skill := range e.Vocabulary() {
		fmt.Fprintln(c.App.Writer, skill)
	}
	return nil
}

func warmCacheCommand(c *cli.Context) error {
	if c.String("api-key") == "" {
		return fmt.Errorf("an embedding credential is required (--api-key or %s)", ai.APIKeyEnv)
	}

	fmt.Fprintf(os.Stderr, "Source: %s\n", c.String("source"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	e, err := openEngine(c, skillmatch.WithProgress(os.Stderr))
	if err != nil {
		return err
	}
	defer e.Close()

	if !e.EmbeddingsAvailable() {
		return fmt.Errorf("embeddings could not be computed, see log for details")
	}
	fmt.Fprintf(c.App.Writer, "Embeddings ready for %d skills\n", len(e.Vocabulary()))
	return nil
}

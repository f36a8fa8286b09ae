package search

import (
	"regexp"
	"strings"
)

type termClass int

const (
	classNeutral termClass = iota
	classTarget
	classSource
)

// term is a query term with its word-boundary matcher.
type term struct {
	text    string
	class   termClass
	pattern *regexp.Regexp
}

func (t *term) matches(s string) bool {
	return s != "" && t.pattern.MatchString(s)
}

func compileTerms(texts []string, target, source map[string]struct{}) []*term {
	out := make([]*term, 0, len(texts))
	for _, text := range texts {
		class := classNeutral
		if _, ok := target[text]; ok {
			class = classTarget
		} else if _, ok := source[text]; ok {
			class = classSource
		}
		out = append(out, &term{
			text:    text,
			class:   class,
			pattern: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(text) + `\b`),
		})
	}
	return out
}

func anyMatch(terms []*term, s string) bool {
	for _, t := range terms {
		if t.matches(s) {
			return true
		}
	}
	return false
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// foldSkill turns a resolver skill or canonical key into a ranking term.
func foldSkill(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", " "))
}

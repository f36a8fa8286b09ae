package intent

import (
	"fmt"
	"regexp"
)

// Side says which state a captured phrase describes.
type Side int

const (
	// Target is the state the learner wants to reach.
	Target Side = iota
	// Source is what the learner already knows or is.
	Source
)

func (s Side) String() string {
	if s == Source {
		return "source"
	}
	return "target"
}

// Rule is one phrase pattern. Groups assigns a side to each capture group
// of Pattern in order.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Groups  []Side
}

// phraseEnd terminates a captured phrase.
const phraseEnd = `(?:\.|,|$|\s+(?:they|who|that|and|but))`

// DefaultRules is the ordered phrase table. Rules are tried in order and the
// first rule that captures a side supplies that side's terms.
var DefaultRules = []Rule{
	{
		Name:    "from-to",
		Pattern: regexp.MustCompile(`from\s+(?:a\s+)?(.+?)\s+(?:to|into)\s+(?:a\s+)?(.+?)` + phraseEnd),
		Groups:  []Side{Source, Target},
	},
	{
		Name:    "to-be",
		Pattern: regexp.MustCompile(`to\s+be\s+(?:a\s+)?(.+?)` + phraseEnd),
		Groups:  []Side{Target},
	},
	{
		Name:    "become",
		Pattern: regexp.MustCompile(`become\s+(?:a\s+)?(.+?)` + phraseEnd),
		Groups:  []Side{Target},
	},
	{
		Name:    "transition",
		Pattern: regexp.MustCompile(`(?:transition|move|switch)\s+to\s+(?:a\s+)?(.+?)` + phraseEnd),
		Groups:  []Side{Target},
	},
	{
		Name:    "upskill-as",
		Pattern: regexp.MustCompile(`(?:upskill|train|reskill).*?(?:as|to\s+be)\s+(?:a\s+)?(.+?)` + phraseEnd),
		Groups:  []Side{Target},
	},
	{
		Name:    "upskill-role",
		Pattern: regexp.MustCompile(`(?:upskill|train|reskill)\s+(?:\d+\s+)?(?:of\s+)?(?:my\s+|our\s+)?(.+?)\s+to\s+(?:become\s+)?(?:be\s+)?(?:a\s+)?(.+?)(?:\.|,|$|\s+(?:they|who|that|and|but|what))`),
		Groups:  []Side{Source, Target},
	},
	{
		Name:    "learn",
		Pattern: regexp.MustCompile(`(?:learn|learning)\s+(?:about\s+)?(.+?)` + phraseEnd),
		Groups:  []Side{Target},
	},
	{
		Name:    "already-know",
		Pattern: regexp.MustCompile(`already\s+(?:know|have|has|knowing|having|experienced|familiar)\s+(?:with\s+)?(.+?)(?:\.|,|$|\s+(?:they|who|that|and|but|what))`),
		Groups:  []Side{Source},
	},
	{
		Name:    "they-know",
		Pattern: regexp.MustCompile(`(?:they|who|people)\s+(?:already\s+)?knows?\s+(.+?)(?:\.|,|$|\s+(?:and|but|what))`),
		Groups:  []Side{Source},
	},
}

// roleContext holds, for one role, the patterns that place it on each side.
type roleContext struct {
	role   Role
	target []*regexp.Regexp
	source []*regexp.Regexp
}

var (
	targetTemplates = []string{
		`\bbecome\s+(?:a\s+)?%s`,
		`\bto\s+(?:be\s+)?(?:a\s+)?%s`,
		`\binto\s+(?:a\s+)?%s`,
		`\bas\s+(?:a\s+)?%s`,
	}
	sourceTemplates = []string{
		`\bfrom\s+(?:a\s+)?%s`,
		`\bupskill\s+(?:\d+\s+)?(?:of\s+)?(?:my\s+|our\s+)?%s`,
		`\btrain\s+(?:\d+\s+)?(?:of\s+)?(?:my\s+|our\s+)?%s`,
	}
)

func compileRoles(roles []Role) []roleContext {
	out := make([]roleContext, 0, len(roles))
	for _, r := range roles {
		name := regexp.QuoteMeta(r.Name)
		rc := roleContext{role: r}
		for _, tmpl := range targetTemplates {
			rc.target = append(rc.target, regexp.MustCompile(fmt.Sprintf(tmpl, name)))
		}
		for _, tmpl := range sourceTemplates {
			rc.source = append(rc.source, regexp.MustCompile(fmt.Sprintf(tmpl, name)))
		}
		out = append(out, rc)
	}
	return out
}

func matchAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

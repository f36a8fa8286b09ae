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


package intent

import (
	"log/slog"
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`[a-z]+`)

// Intent is the learner transition described by a query.
type Intent struct {
	// TargetTerms are words describing where the learner wants to go.
	TargetTerms []string
	// SourceTerms are words describing what the learner already has.
	SourceTerms []string
	TargetRole  string
	SourceRole  string
	// TargetSkills are the target role's mapped skills.
	TargetSkills []string
	// SourceSkills are the source role's mapped skills.
	SourceSkills []string
}

// RoleBased reports whether a target role with mapped skills was found. The
// ranking engine then searches for those skills instead of the query words.
func (in Intent) RoleBased() bool {
	return in.TargetRole != "" && len(in.TargetSkills) > 0
}

// Extractor finds role transitions in free-text queries. It is immutable
// and safe for concurrent use.
type Extractor struct {
	rules       []Rule
	roles       []roleContext
	intentStops map[string]struct{}
	queryStops  map[string]struct{}
	logger      *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor) error

// WithDictionary replaces the built-in role dictionary and stop words.
func WithDictionary(d *Dictionary) Option {
	return func(e *Extractor) error {
		if d == nil {
			d = DefaultDictionary()
		}
		e.apply(d)
		return nil
	}
}

// WithRules replaces the phrase rule table.
func WithRules(rules []Rule) Option {
	return func(e *Extractor) error {
		e.rules = rules
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewExtractor creates an extractor over the built-in dictionary and rules.
func NewExtractor(opts ...Option) (*Extractor, error) {
	e := &Extractor{
		rules:  DefaultRules,
		logger: slog.Default(),
	}
	e.apply(DefaultDictionary())
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "intent-extractor")
	return e, nil
}

func (e *Extractor) apply(d *Dictionary) {
	e.roles = compileRoles(d.Roles)
	e.intentStops = toSet(d.IntentStopWords)
	e.queryStops = toSet(d.QueryStopWords)
}

// Extract separates target and source terms in query and detects job titles.
func (e *Extractor) Extract(query string) Intent {
	lower := strings.ToLower(query)
	var in Intent

	for _, rc := range e.roles {
		if !strings.Contains(lower, rc.role.Name) {
			continue
		}
		if in.TargetRole == "" && matchAny(rc.target, lower) {
			in.TargetRole = rc.role.Name
			in.TargetSkills = rc.role.Skills
		}
		if in.SourceRole == "" && matchAny(rc.source, lower) {
			in.SourceRole = rc.role.Name
			in.SourceSkills = rc.role.Skills
		}
	}

	var target, source []string
	var haveTarget, haveSource bool
	for _, rule := range e.rules {
		m := rule.Pattern.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		ruleTarget, ruleSource := false, false
		for i, side := range rule.Groups {
			if i+1 >= len(m) {
				break
			}
			words := wordPattern.FindAllString(m[i+1], -1)
			switch {
			case side == Target && !haveTarget:
				target = append(target, words...)
				ruleTarget = true
			case side == Source && !haveSource:
				source = append(source, words...)
				ruleSource = true
			}
		}
		if ruleTarget || ruleSource {
			e.logger.Debug("phrase rule matched", "rule", rule.Name, "target", ruleTarget, "source", ruleSource)
		}
		haveTarget = haveTarget || ruleTarget
		haveSource = haveSource || ruleSource
	}

	in.TargetTerms = e.filter(target, e.intentStops)
	in.SourceTerms = e.filter(source, e.intentStops)

	if in.RoleBased() {
		e.logger.Debug("role-based query", "role", in.TargetRole, "skills", in.TargetSkills)
	}
	return in
}

// Terms lower-cases query, splits it into words and drops query stop words
// and single letters.
func (e *Extractor) Terms(query string) []string {
	return e.filter(wordPattern.FindAllString(strings.ToLower(query), -1), e.queryStops)
}

// FilterTerms drops query stop words and single-character terms from
// terms, keeping first-seen order without repeats.
func (e *Extractor) FilterTerms(terms []string) []string {
	return e.filter(terms, e.queryStops)
}

func (e *Extractor) filter(terms []string, stops map[string]struct{}) []string {
	out := make([]string, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		if len(t) <= 1 {
			continue
		}
		if _, stop := stops[t]; stop {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}

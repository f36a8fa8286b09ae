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


package semantic

import (
	"context"
	"slices"
	"strings"

	"github.com/poiesic/skillmatch/core"
)

// Request is one resolution request as seen by a tier.
type Request struct {
	// Query is the caller's text, unmodified.
	Query string
	// Lower is Query lower-cased.
	Lower string
	// Context is the lower-cased disambiguation context. It defaults to Lower.
	Context string
}

func newRequest(query, contextText string) *Request {
	lower := strings.ToLower(query)
	ctxLower := lower
	if strings.TrimSpace(contextText) != "" {
		ctxLower = strings.ToLower(contextText)
	}
	return &Request{Query: query, Lower: lower, Context: ctxLower}
}

// State accumulates the outcome of the tiers run so far. Tiers read it to
// decide whether to engage and record promotions through its methods.
type State struct {
	normalized   []string
	intents      []string
	expansions   []string
	explanations []string
}

// Normalized returns the skills promoted so far.
func (s *State) Normalized() []string { return s.normalized }

// Resolved reports whether any tier has promoted a skill.
func (s *State) Resolved() bool { return len(s.normalized) > 0 }

// Promote adds skill to the normalized set. The explanation clause is
// recorded only the first time the skill is promoted.
func (s *State) Promote(skill, clause string) {
	if slices.Contains(s.normalized, skill) {
		return
	}
	s.normalized = append(s.normalized, skill)
	s.explain(clause)
}

// AddIntent records an intent key and its preferred skills.
func (s *State) AddIntent(key, clause string, expansions []string) {
	if !slices.Contains(s.intents, key) {
		s.intents = append(s.intents, key)
		s.explain(clause)
	}
	s.expansions = core.AppendUnique(s.expansions, expansions...)
}

func (s *State) explain(clause string) {
	if clause != "" {
		s.explanations = append(s.explanations, clause)
	}
}

// Tier is one independent resolution strategy. Tiers run in a fixed order;
// an error from one tier is logged and does not stop the others.
type Tier interface {
	// Name identifies the tier in candidates and logs.
	Name() core.CandidateSource

	// Propose returns the tier's candidates for the request and promotes
	// any skills or intents into state.
	Propose(ctx context.Context, req *Request, state *State) ([]core.SemanticCandidate, error)
}

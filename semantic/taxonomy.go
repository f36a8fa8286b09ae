package semantic

import (
	"context"
	"sort"
	"strings"

	"github.com/poiesic/skillmatch/core"
)

// AvoidPenalty is subtracted from an intent's signal count per avoid signal present.
const AvoidPenalty = 0.5

type taxonomyTier struct {
	intents []Intent
}

// NewTaxonomyTier returns the intent disambiguation tier.
func NewTaxonomyTier(intents []Intent) Tier {
	return &taxonomyTier{intents: intents}
}

func (t *taxonomyTier) Name() core.CandidateSource { return core.SourceTaxonomy }

type scoredIntent struct {
	intent *Intent
	score  float64
}

func (t *taxonomyTier) Propose(_ context.Context, req *Request, state *State) ([]core.SemanticCandidate, error) {
	if !state.Resolved() && strings.TrimSpace(req.Lower) == "" {
		return nil, nil
	}

	resolved := make(map[string]struct{}, len(state.Normalized()))
	for _, s := range state.Normalized() {
		resolved[strings.ToLower(s)] = struct{}{}
	}

	var matches []scoredIntent
	for i := range t.intents {
		in := &t.intents[i]
		if len(resolved) > 0 {
			if _, ok := resolved[strings.ToLower(in.CanonicalSkill)]; !ok {
				continue
			}
		}
		if score, ok := intentScore(in, req.Context); ok {
			matches = append(matches, scoredIntent{intent: in, score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	out := make([]core.SemanticCandidate, 0, len(matches))
	for _, m := range matches {
		out = append(out, core.SemanticCandidate{
			Skill:          m.intent.CanonicalSkill,
			Score:          m.score,
			Source:         core.SourceTaxonomy,
			CanonicalSkill: m.intent.CanonicalSkill,
			IntentLabel:    m.intent.Label,
		})
		state.AddIntent(m.intent.Key, "Intent detected: "+m.intent.Label, m.intent.PreferredSkills)
	}
	return out, nil
}

// intentScore is the share of context signals present, less AvoidPenalty per
// avoid signal present, capped at 1. Intents that net zero or less do not apply.
func intentScore(in *Intent, text string) (float64, bool) {
	if len(in.ContextSignals) == 0 {
		return 0, false
	}
	var hits float64
	for _, sig := range in.ContextSignals {
		if strings.Contains(text, strings.ToLower(sig)) {
			hits++
		}
	}
	for _, sig := range in.AvoidSignals {
		if strings.Contains(text, strings.ToLower(sig)) {
			hits -= AvoidPenalty
		}
	}
	if hits <= 0 {
		return 0, false
	}
	return min(hits/float64(len(in.ContextSignals)), 1.0), true
}

package semantic

import (
	"context"
	"fmt"
	"strings"

	"github.com/poiesic/skillmatch/core"
)

// Alias scores.
const (
	AliasBoundaryScore  = 1.0
	AliasSubstringScore = 0.95
)

// aliasTier maps surface forms onto canonical skills.
type aliasTier struct {
	sets []AliasSet
}

// NewAliasTier returns the alias tier over the given table.
func NewAliasTier(sets []AliasSet) Tier {
	lowered := make([]AliasSet, 0, len(sets))
	for _, set := range sets {
		aliases := make([]string, 0, len(set.Aliases))
		for _, a := range set.Aliases {
			if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
				aliases = append(aliases, a)
			}
		}
		lowered = append(lowered, AliasSet{Canonical: set.Canonical, Aliases: aliases})
	}
	return &aliasTier{sets: lowered}
}

func (t *aliasTier) Name() core.CandidateSource { return core.SourceAlias }

func (t *aliasTier) Propose(_ context.Context, req *Request, state *State) ([]core.SemanticCandidate, error) {
	var out []core.SemanticCandidate
	for _, set := range t.sets {
		for _, alias := range set.Aliases {
			if !strings.Contains(req.Lower, alias) {
				continue
			}
			out = append(out, core.SemanticCandidate{
				Skill:          set.Canonical,
				Score:          aliasScore(req.Lower, alias),
				Source:         core.SourceAlias,
				CanonicalSkill: set.Canonical,
			})
			state.Promote(set.Canonical, fmt.Sprintf("Alias match: '%s'", set.Canonical))
			break
		}
	}
	return out, nil
}

// aliasScore rewards aliases that sit on token boundaries of the query.
func aliasScore(query, alias string) float64 {
	if strings.Contains(" "+query+" ", " "+alias+" ") ||
		strings.HasPrefix(query, alias) ||
		strings.HasSuffix(query, alias) {
		return AliasBoundaryScore
	}
	return AliasSubstringScore
}

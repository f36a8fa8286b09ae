package semantic

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/poiesic/skillmatch/core"
	"github.com/xrash/smetrics"
)

// Fuzzy tier defaults.
const (
	DefaultFuzzyThreshold       = 0.7
	DefaultStrictFuzzyThreshold = 0.9
	DefaultFuzzyTopK            = 5
)

// Jaro-Winkler prefix boost parameters.
const (
	jwBoostThreshold = 0.7
	jwPrefixSize     = 4
)

// Single query words shorter than this never match a skill on their own.
const minFuzzyWordLen = 3

// Pairs whose lengths differ by at least this factor are scaled down by
// their length ratio.
const lengthRatioCutoff = 1.5

type vocabEntry struct {
	skill string
	lower string
	words int
}

type fuzzyTier struct {
	vocab     []vocabEntry
	stops     map[string]struct{}
	threshold float64 // when nothing is resolved yet
	strict    float64 // when a higher tier already resolved a skill
	topK      int
}

func newFuzzyTier(vocabulary, stopWords []string, threshold, strict float64, topK int) *fuzzyTier {
	vocab := make([]vocabEntry, 0, len(vocabulary))
	for _, skill := range vocabulary {
		lower := strings.ToLower(strings.TrimSpace(skill))
		if lower == "" {
			continue
		}
		vocab = append(vocab, vocabEntry{skill: skill, lower: lower, words: len(strings.Fields(lower))})
	}
	stops := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	return &fuzzyTier{vocab: vocab, stops: stops, threshold: threshold, strict: strict, topK: topK}
}

func (t *fuzzyTier) Name() core.CandidateSource { return core.SourceFuzzy }

func (t *fuzzyTier) Propose(_ context.Context, req *Request, state *State) ([]core.SemanticCandidate, error) {
	query := strings.TrimSpace(req.Lower)
	if query == "" || len(t.vocab) == 0 {
		return nil, nil
	}

	threshold := t.threshold
	promote := !state.Resolved()
	if !promote {
		threshold = t.strict
	}

	var out []core.SemanticCandidate
	for _, m := range t.rank(query) {
		if m.Score < threshold {
			continue
		}
		out = append(out, core.SemanticCandidate{
			Skill:  m.Skill,
			Score:  m.Score,
			Source: core.SourceFuzzy,
		})
		if promote {
			state.Promote(m.Skill, fmt.Sprintf("Fuzzy match: '%s' (score: %.2f)", m.Skill, m.Score))
		}
	}
	return out, nil
}

// rank returns the topK vocabulary skills by similarity to query. Ties keep
// vocabulary order.
func (t *fuzzyTier) rank(query string) []core.SkillScore {
	words := strings.Fields(query)
	content := t.contentWords(words)
	scored := make([]core.SkillScore, 0, len(t.vocab))
	for _, v := range t.vocab {
		var s float64
		if v.words == 1 {
			s = bestWindow(content, 1, v.lower)
		} else {
			s = max(scaledJaroWinkler(query, v.lower), bestWindow(words, v.words, v.lower))
		}
		scored = append(scored, core.SkillScore{Skill: v.skill, Score: s})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > t.topK {
		scored = scored[:t.topK]
	}
	return scored
}

// contentWords drops stop words and short tokens.
func (t *fuzzyTier) contentWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) < minFuzzyWordLen {
			continue
		}
		if _, stop := t.stops[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}

// bestWindow is the best score between skill and any run of size words.
func bestWindow(words []string, size int, skill string) float64 {
	var best float64
	for i := 0; i+size <= len(words); i++ {
		window := strings.Join(words[i:i+size], " ")
		best = max(best, scaledJaroWinkler(window, skill))
	}
	return best
}

// scaledJaroWinkler is the Jaro-Winkler similarity of a and b, multiplied by
// the ratio of their lengths once one is lengthRatioCutoff times the other.
func scaledJaroWinkler(a, b string) float64 {
	short, long := float64(len(a)), float64(len(b))
	if short > long {
		short, long = long, short
	}
	if short == 0 {
		return 0
	}
	s := smetrics.JaroWinkler(a, b, jwBoostThreshold, jwPrefixSize)
	if long/short >= lengthRatioCutoff {
		s *= short / long
	}
	return s
}

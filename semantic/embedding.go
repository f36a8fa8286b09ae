package semantic

import (
	"context"
	"fmt"
	"strings"

	"github.com/poiesic/skillmatch/ai"
	"github.com/poiesic/skillmatch/core"
)

// Embedding tier defaults.
const (
	DefaultEmbeddingTopK      = 5
	DefaultEmbeddingThreshold = 0.35
)

type embeddingTier struct {
	finder    ai.SimilarityFinder
	topK      int
	threshold float64
}

func (t *embeddingTier) Name() core.CandidateSource { return core.SourceEmbedding }

func (t *embeddingTier) Propose(ctx context.Context, req *Request, state *State) ([]core.SemanticCandidate, error) {
	if state.Resolved() || strings.TrimSpace(req.Query) == "" {
		return nil, nil
	}
	if !t.finder.Available() {
		return nil, nil
	}

	similar, err := t.finder.FindSimilar(ctx, req.Query, t.topK, t.threshold)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrBackendUnavailable, err)
	}

	out := make([]core.SemanticCandidate, 0, len(similar))
	for _, s := range similar {
		s.Score = max(0, min(s.Score, 1))
		out = append(out, core.SemanticCandidate{
			Skill:  s.Skill,
			Score:  s.Score,
			Source: core.SourceEmbedding,
		})
		state.Promote(s.Skill, fmt.Sprintf("Embedding match: '%s' (score: %.2f)", s.Skill, s.Score))
	}
	return out, nil
}

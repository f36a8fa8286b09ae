package search

import "fmt"

// TierWeights scores one evidence tier by how a term was classified.
type TierWeights struct {
	Target  float64
	Neutral float64
	Source  float64
}

func (w TierWeights) of(c termClass) float64 {
	switch c {
	case classTarget:
		return w.Target
	case classSource:
		return w.Source
	default:
		return w.Neutral
	}
}

// Weights holds every constant used to score and blend. The defaults are
// heuristics tuned on a real catalog, not derived values.
type Weights struct {
	// Embedding is added once per embedding-similar skill the program teaches.
	Embedding float64
	Skills    TierWeights
	Course    TierWeights
	Program   TierWeights
	// Outline is added per lesson or project title matching any term.
	Outline float64

	Coverage      float64
	Score         float64
	TermNorm      float64
	SemanticNorm  float64
	SemanticBonus float64
	SemanticCap   float64

	// SimilarTopK and SimilarThreshold bound the embedding lookup.
	SimilarTopK      int
	SimilarThreshold float64
}

// DefaultWeights returns the standard scoring constants.
func DefaultWeights() Weights {
	return Weights{
		Embedding: 15,
		Skills:    TierWeights{Target: 25, Neutral: 10, Source: 2},
		Course:    TierWeights{Target: 8, Neutral: 3, Source: 1},
		Program:   TierWeights{Target: 6, Neutral: 2, Source: 0.5},
		Outline:   0.5,

		Coverage:      0.6,
		Score:         0.3,
		TermNorm:      10,
		SemanticNorm:  5,
		SemanticBonus: 0.05,
		SemanticCap:   0.1,

		SimilarTopK:      15,
		SimilarThreshold: 0.35,
	}
}

// Validate rejects negative weights, which would break score non-negativity.
func (w Weights) Validate() error {
	values := map[string]float64{
		"embedding":         w.Embedding,
		"skills.target":     w.Skills.Target,
		"skills.neutral":    w.Skills.Neutral,
		"skills.source":     w.Skills.Source,
		"course.target":     w.Course.Target,
		"course.neutral":    w.Course.Neutral,
		"course.source":     w.Course.Source,
		"program.target":    w.Program.Target,
		"program.neutral":   w.Program.Neutral,
		"program.source":    w.Program.Source,
		"outline":           w.Outline,
		"coverage":          w.Coverage,
		"score":             w.Score,
		"term_norm":         w.TermNorm,
		"semantic_norm":     w.SemanticNorm,
		"semantic_bonus":    w.SemanticBonus,
		"semantic_cap":      w.SemanticCap,
		"similar_threshold": w.SimilarThreshold,
	}
	for name, v := range values {
		if v < 0 {
			return fmt.Errorf("%w: %s = %v", ErrInvalidWeights, name, v)
		}
	}
	if w.SimilarTopK < 0 {
		return fmt.Errorf("%w: similar_top_k = %d", ErrInvalidWeights, w.SimilarTopK)
	}
	return nil
}

// relevance blends term coverage, normalized score and the embedding bonus
// into [0,1].
func (w Weights) relevance(score float64, matchedTerms, totalTerms, semanticMatches int) float64 {
	coverage := 0.0
	if totalTerms > 0 {
		coverage = float64(matchedTerms) / float64(totalTerms)
	}
	normalized := 0.0
	if denom := float64(totalTerms)*w.TermNorm + float64(semanticMatches)*w.SemanticNorm; denom > 0 {
		normalized = min(score/denom, 1)
	}
	bonus := min(float64(semanticMatches)*w.SemanticBonus, w.SemanticCap)
	return clamp01(w.Coverage*coverage + w.Score*normalized + bonus)
}

func clamp01(v float64) float64 {
	return max(0, min(v, 1))
}

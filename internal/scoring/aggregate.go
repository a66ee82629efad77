package scoring

import (
	"github.com/slopwatch/slopwatch/internal/types"
)

// Weights assigns each sub-metric's contribution to the overall score for
// one category. Absent metrics (zero weight) are excluded from the weighted
// mean entirely rather than counted as zero.
type Weights struct {
	Specificity    float64
	Actionability  float64
	Quantification float64
	Relevance      float64
	Completeness   float64
	Clarity        float64
	Novelty        float64
}

// WeightsFor returns the category's weight map. The switch is exhaustive
// over the closed Category enumeration; unknown values fall back to the
// general map, which is also the documented default.
func WeightsFor(category types.Category) Weights {
	switch category {
	case types.CategoryOptimization:
		return Weights{Specificity: 0.25, Actionability: 0.20, Quantification: 0.20, Relevance: 0.10, Completeness: 0.10, Clarity: 0.10, Novelty: 0.05}
	case types.CategoryDataAnalysis:
		return Weights{Specificity: 0.20, Actionability: 0.0, Quantification: 0.25, Relevance: 0.15, Completeness: 0.20, Clarity: 0.10, Novelty: 0.10}
	case types.CategoryActionPlan:
		return Weights{Specificity: 0.15, Actionability: 0.30, Quantification: 0.0, Relevance: 0.15, Completeness: 0.20, Clarity: 0.15, Novelty: 0.05}
	case types.CategoryReport:
		return Weights{Specificity: 0.15, Actionability: 0.0, Quantification: 0.15, Relevance: 0.15, Completeness: 0.25, Clarity: 0.20, Novelty: 0.10}
	case types.CategoryTriage:
		return Weights{Specificity: 0.20, Actionability: 0.25, Quantification: 0.10, Relevance: 0.20, Completeness: 0.10, Clarity: 0.15, Novelty: 0.0}
	case types.CategoryErrorMsg:
		return Weights{Specificity: 0.20, Actionability: 0.25, Quantification: 0.0, Relevance: 0.15, Completeness: 0.10, Clarity: 0.30, Novelty: 0.0}
	case types.CategoryGeneral:
		return Weights{Specificity: 0.20, Actionability: 0.15, Quantification: 0.10, Relevance: 0.15, Completeness: 0.15, Clarity: 0.15, Novelty: 0.10}
	default:
		return WeightsFor(types.CategoryGeneral)
	}
}

// Fixed penalties applied after the weighted mean.
const (
	penaltyGenericPhrases    = 0.10 // generic phrase count > 2
	penaltyCircularReasoning = 0.20
	penaltyHallucination     = 0.15 // hallucination risk > 0.5
	penaltyRedundancy        = 0.10 // redundancy ratio > 0.3
)

// Aggregate combines the profile's sub-scores into the overall score using
// the category weight map, then applies the fixed negative-indicator
// penalties and clamps to [0,1].
func Aggregate(p *types.QualityProfile, category types.Category) float64 {
	w := WeightsFor(category)

	sum := 0.0
	weightTotal := 0.0
	add := func(weight, metric float64) {
		if weight > 0 {
			sum += weight * metric
			weightTotal += weight
		}
	}
	add(w.Specificity, p.SpecificityScore)
	add(w.Actionability, p.ActionabilityScore)
	add(w.Quantification, p.QuantificationScore)
	add(w.Relevance, p.RelevanceScore)
	add(w.Completeness, p.CompletenessScore)
	add(w.Clarity, p.ClarityScore)
	add(w.Novelty, p.NoveltyScore)

	score := 0.0
	if weightTotal > 0 {
		score = sum / weightTotal
	}

	if p.GenericPhraseCount > 2 {
		score -= penaltyGenericPhrases
	}
	if p.CircularReasoning {
		score -= penaltyCircularReasoning
	}
	if p.HallucinationRisk > 0.5 {
		score -= penaltyHallucination
	}
	if p.RedundancyRatio > 0.3 {
		score -= penaltyRedundancy
	}

	return clamp01(score)
}

// Score runs every metric calculator over the content and returns the
// aggregated profile. noveltyScore is computed by the caller because novelty
// is the one metric with an external dependency; pass a neutral 0.5 when no
// recent-outputs store is available.
func Score(content string, category types.Category, context map[string]interface{}, noveltyScore float64) types.QualityProfile {
	p := types.QualityProfile{
		SpecificityScore:    Specificity(content, category),
		ActionabilityScore:  Actionability(content),
		QuantificationScore: Quantification(content),
		RelevanceScore:      Relevance(content, context),
		CompletenessScore:   Completeness(content, category),
		NoveltyScore:        clamp01(noveltyScore),
		ClarityScore:        Clarity(content),
		RedundancyRatio:     Redundancy(content),

		GenericPhraseCount: GenericPhraseCount(content),
		CircularReasoning:  CircularReasoning(content),
		HallucinationRisk:  HallucinationRisk(content, context),

		WordCount:         len(wordRe.FindAllString(content, -1)),
		SentenceCount:     len(splitSentences(content)),
		NumericTokenCount: len(numberRe.FindAllString(content, -1)),
	}

	p.OverallScore = Aggregate(&p, category)
	p.QualityLevel = types.QualityLevelForScore(p.OverallScore)
	return p
}

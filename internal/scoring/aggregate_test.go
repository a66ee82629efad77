package scoring

import (
	"math"
	"testing"

	"github.com/slopwatch/slopwatch/internal/types"
)

func TestWeightsFor_SumToOne(t *testing.T) {
	for _, category := range types.AllCategories() {
		w := WeightsFor(category)
		sum := w.Specificity + w.Actionability + w.Quantification +
			w.Relevance + w.Completeness + w.Clarity + w.Novelty
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("weights for %s sum to %v, want 1.0", category, sum)
		}
	}
}

func TestWeightsFor_UnknownFallsBackToGeneral(t *testing.T) {
	if WeightsFor(types.Category("bogus")) != WeightsFor(types.CategoryGeneral) {
		t.Error("unknown category should use the general weight map")
	}
}

func uniformProfile(v float64) *types.QualityProfile {
	return &types.QualityProfile{
		SpecificityScore:    v,
		ActionabilityScore:  v,
		QuantificationScore: v,
		RelevanceScore:      v,
		CompletenessScore:   v,
		NoveltyScore:        v,
		ClarityScore:        v,
	}
}

func TestAggregate_UniformScores(t *testing.T) {
	// With every sub-score equal, the weighted mean equals that score for
	// any category, including ones with zero-weight metrics.
	for _, category := range types.AllCategories() {
		got := Aggregate(uniformProfile(0.8), category)
		if math.Abs(got-0.8) > 1e-9 {
			t.Errorf("Aggregate(uniform 0.8, %s) = %v, want 0.8", category, got)
		}
	}
}

func TestAggregate_ZeroWeightMetricsExcluded(t *testing.T) {
	// Error messages weigh quantification at zero, so a zero quantification
	// score must not drag the mean down.
	p := uniformProfile(0.8)
	p.QuantificationScore = 0.0
	got := Aggregate(p, types.CategoryErrorMsg)
	if math.Abs(got-0.8) > 1e-9 {
		t.Errorf("Aggregate(error_message) = %v, want 0.8", got)
	}
}

func TestAggregate_Penalties(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.QualityProfile)
		want   float64
	}{
		{"generic phrases above two", func(p *types.QualityProfile) { p.GenericPhraseCount = 3 }, 0.7},
		{"generic phrases at two unpenalized", func(p *types.QualityProfile) { p.GenericPhraseCount = 2 }, 0.8},
		{"circular reasoning", func(p *types.QualityProfile) { p.CircularReasoning = true }, 0.6},
		{"hallucination risk above half", func(p *types.QualityProfile) { p.HallucinationRisk = 0.6 }, 0.65},
		{"redundancy above band", func(p *types.QualityProfile) { p.RedundancyRatio = 0.4 }, 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := uniformProfile(0.8)
			tt.mutate(p)
			got := Aggregate(p, types.CategoryGeneral)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Aggregate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregate_ClampsToZero(t *testing.T) {
	p := uniformProfile(0.1)
	p.CircularReasoning = true
	p.HallucinationRisk = 0.9
	if got := Aggregate(p, types.CategoryGeneral); got != 0 {
		t.Errorf("Aggregate = %v, want clamped 0", got)
	}
}

func TestScore_VagueOptimizationContent(t *testing.T) {
	p := Score(vagueOptimization, types.CategoryOptimization, nil, 0.5)

	if p.SpecificityScore != 0 {
		t.Errorf("specificity = %v, want 0", p.SpecificityScore)
	}
	if p.GenericPhraseCount != 2 {
		t.Errorf("generic count = %d, want 2", p.GenericPhraseCount)
	}
	if p.OverallScore >= 0.3 {
		t.Errorf("overall = %v, want < 0.3", p.OverallScore)
	}
	if p.QualityLevel != types.QualityUnacceptable {
		t.Errorf("level = %s, want unacceptable", p.QualityLevel)
	}
}

func TestScore_ConcreteOptimizationContent(t *testing.T) {
	p := Score(concreteOptimization, types.CategoryOptimization, nil, 0.5)

	if p.OverallScore < 0.6 {
		t.Errorf("overall = %v, want >= 0.6", p.OverallScore)
	}
	if p.SpecificityScore < 0.4 {
		t.Errorf("specificity = %v, want >= 0.4", p.SpecificityScore)
	}
	if p.QuantificationScore < 0.3 {
		t.Errorf("quantification = %v, want >= 0.3", p.QuantificationScore)
	}
	if p.GenericPhraseCount != 0 {
		t.Errorf("generic count = %d, want 0", p.GenericPhraseCount)
	}
	if p.WordCount != 14 {
		t.Errorf("word count = %d, want 14", p.WordCount)
	}
	if p.SentenceCount != 1 {
		t.Errorf("sentence count = %d, want 1", p.SentenceCount)
	}
}

func TestScore_Deterministic(t *testing.T) {
	ctx := map[string]interface{}{"user_request": "make the ingest pipeline faster"}
	first := Score(concreteOptimization, types.CategoryOptimization, ctx, 0.8)
	second := Score(concreteOptimization, types.CategoryOptimization, ctx, 0.8)
	if first.OverallScore != second.OverallScore {
		t.Errorf("scores differ across identical calls: %v vs %v", first.OverallScore, second.OverallScore)
	}
	if first.QualityLevel != second.QualityLevel {
		t.Errorf("levels differ: %s vs %s", first.QualityLevel, second.QualityLevel)
	}
}

func TestScore_ClampsNoveltyInput(t *testing.T) {
	p := Score("Some content.", types.CategoryGeneral, nil, 1.7)
	if p.NoveltyScore != 1.0 {
		t.Errorf("novelty = %v, want clamped 1.0", p.NoveltyScore)
	}
}

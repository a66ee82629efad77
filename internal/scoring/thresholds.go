package scoring

import (
	"fmt"

	"github.com/slopwatch/slopwatch/internal/types"
)

// Thresholds is a category's pass/fail record. Zero-valued min fields mean
// "not checked"; max fields need their Check* flag because zero is a valid
// ceiling (strict mode can scale a maximum down to 0).
type Thresholds struct {
	MinScore          float64
	MinSpecificity    float64
	MinActionability  float64
	MinQuantification float64
	MinRelevance      float64
	MinCompleteness   float64
	MinClarity        float64
	MaxRedundancy     float64
	MaxGenericPhrases int
	CheckRedundancy   bool
	CheckGenericCount bool
}

// Hard cutoffs independent of category and strictness: these fail a profile
// outright rather than being weighed into the score.
const hallucinationCutoff = 0.7

// Strict-mode scaling factors.
const (
	strictMinFactor = 1.2
	strictMaxFactor = 0.8
)

// ThresholdsFor returns the category's threshold record. Exhaustive over the
// closed Category enumeration.
func ThresholdsFor(category types.Category) Thresholds {
	switch category {
	case types.CategoryOptimization:
		return Thresholds{MinScore: 0.6, MinSpecificity: 0.4, MinQuantification: 0.3, MaxGenericPhrases: 1, CheckGenericCount: true}
	case types.CategoryDataAnalysis:
		return Thresholds{MinScore: 0.6, MinQuantification: 0.4, MaxGenericPhrases: 2, CheckGenericCount: true}
	case types.CategoryActionPlan:
		return Thresholds{MinScore: 0.6, MinActionability: 0.5, MaxGenericPhrases: 2, CheckGenericCount: true}
	case types.CategoryReport:
		return Thresholds{MinScore: 0.6, MinCompleteness: 0.4, MaxRedundancy: 0.2, CheckRedundancy: true, MaxGenericPhrases: 2, CheckGenericCount: true}
	case types.CategoryTriage:
		return Thresholds{MinScore: 0.55, MinActionability: 0.4}
	case types.CategoryErrorMsg:
		return Thresholds{MinScore: 0.5, MinClarity: 0.6}
	case types.CategoryGeneral:
		return Thresholds{MinScore: 0.5, MaxGenericPhrases: 3, CheckGenericCount: true}
	default:
		return ThresholdsFor(types.CategoryGeneral)
	}
}

// forStrict returns the thresholds scaled for strict mode: every minimum is
// multiplied by 1.2 and every maximum by 0.8.
func (t Thresholds) forStrict() Thresholds {
	t.MinScore *= strictMinFactor
	t.MinSpecificity *= strictMinFactor
	t.MinActionability *= strictMinFactor
	t.MinQuantification *= strictMinFactor
	t.MinRelevance *= strictMinFactor
	t.MinCompleteness *= strictMinFactor
	t.MinClarity *= strictMinFactor
	t.MaxRedundancy *= strictMaxFactor
	t.MaxGenericPhrases = int(float64(t.MaxGenericPhrases) * strictMaxFactor)
	return t
}

// Failure identifies which specific check a profile missed. Suggestion and
// retry-adjustment generation key off these values.
type Failure string

const (
	FailureOverallScore   Failure = "overall_score"
	FailureSpecificity    Failure = "specificity"
	FailureActionability  Failure = "actionability"
	FailureQuantification Failure = "quantification"
	FailureRelevance      Failure = "relevance"
	FailureCompleteness   Failure = "completeness"
	FailureClarity        Failure = "clarity"
	FailureRedundancy     Failure = "redundancy"
	FailureGenericPhrases Failure = "generic_phrases"
	FailureCircular       Failure = "circular_reasoning"
	FailureHallucination  Failure = "hallucination_risk"
)

// Validate compares a profile against its category thresholds and returns
// whether it passed plus every check it missed, in a fixed order.
//
// Circular reasoning and hallucination risk above the cutoff fail
// categorically, independent of the weighted score and of strict mode.
// All min comparisons are boundary inclusive: a score exactly equal to the
// minimum passes.
func Validate(p *types.QualityProfile, category types.Category, strict bool) (bool, []Failure) {
	t := ThresholdsFor(category)
	if strict {
		t = t.forStrict()
	}

	var failures []Failure

	if p.CircularReasoning {
		failures = append(failures, FailureCircular)
	}
	if p.HallucinationRisk > hallucinationCutoff {
		failures = append(failures, FailureHallucination)
	}

	if p.OverallScore < t.MinScore {
		failures = append(failures, FailureOverallScore)
	}
	if t.MinSpecificity > 0 && p.SpecificityScore < t.MinSpecificity {
		failures = append(failures, FailureSpecificity)
	}
	if t.MinActionability > 0 && p.ActionabilityScore < t.MinActionability {
		failures = append(failures, FailureActionability)
	}
	if t.MinQuantification > 0 && p.QuantificationScore < t.MinQuantification {
		failures = append(failures, FailureQuantification)
	}
	if t.MinRelevance > 0 && p.RelevanceScore < t.MinRelevance {
		failures = append(failures, FailureRelevance)
	}
	if t.MinCompleteness > 0 && p.CompletenessScore < t.MinCompleteness {
		failures = append(failures, FailureCompleteness)
	}
	if t.MinClarity > 0 && p.ClarityScore < t.MinClarity {
		failures = append(failures, FailureClarity)
	}
	if t.CheckRedundancy && p.RedundancyRatio > t.MaxRedundancy {
		failures = append(failures, FailureRedundancy)
	}
	if t.CheckGenericCount && p.GenericPhraseCount > t.MaxGenericPhrases {
		failures = append(failures, FailureGenericPhrases)
	}

	return len(failures) == 0, failures
}

// Issues renders human-readable issue strings for a set of failures.
func Issues(p *types.QualityProfile, failures []Failure) []string {
	var issues []string
	for _, f := range failures {
		switch f {
		case FailureCircular:
			issues = append(issues, "circular reasoning detected")
		case FailureHallucination:
			issues = append(issues, fmt.Sprintf("hallucination risk %.2f exceeds cutoff %.2f", p.HallucinationRisk, hallucinationCutoff))
		case FailureOverallScore:
			issues = append(issues, fmt.Sprintf("overall score %.2f below category minimum", p.OverallScore))
		case FailureSpecificity:
			issues = append(issues, "content lacks specific details")
		case FailureActionability:
			issues = append(issues, "content lacks actionable guidance")
		case FailureQuantification:
			issues = append(issues, "claims are not quantified")
		case FailureRelevance:
			issues = append(issues, "content drifts from the original request")
		case FailureCompleteness:
			issues = append(issues, "expected sections or vocabulary are missing")
		case FailureClarity:
			issues = append(issues, "content is hard to follow")
		case FailureRedundancy:
			issues = append(issues, fmt.Sprintf("redundancy ratio %.2f exceeds category maximum", p.RedundancyRatio))
		case FailureGenericPhrases:
			issues = append(issues, fmt.Sprintf("%d generic filler phrases exceed the category maximum", p.GenericPhraseCount))
		}
	}
	return issues
}

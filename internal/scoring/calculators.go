// Package scoring turns raw text into a multi-dimensional quality profile
// and a pass/fail verdict against per-category thresholds.
//
// Every calculator in this file is a pure function of its arguments so the
// same code serves the online gate and any offline batch scorer. All phrase
// and pattern data lives in patterns.go and is compiled once at init.
package scoring

import (
	"strings"

	"github.com/slopwatch/slopwatch/internal/types"
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Specificity rewards numeric tokens, named parameters, unit-bearing values,
// and domain vocabulary, and penalizes vague language. Optimization content
// earns a bonus for naming a concrete technique.
func Specificity(content string, category types.Category) float64 {
	score := 0.0

	if n := len(numberRe.FindAllString(content, -1)); n > 0 {
		score += min(0.3, 0.1*float64(n))
	}
	if namedParamRe.MatchString(content) {
		score += 0.15
	}
	if percentRe.MatchString(content) || durationRe.MatchString(content) || sizeRe.MatchString(content) {
		score += 0.2
	}
	if n := len(domainTermRe.FindAllString(content, -1)); n > 0 {
		score += min(0.2, 0.1*float64(n))
	}
	if category == types.CategoryOptimization && optTechRe.MatchString(content) {
		score += 0.15
	}
	if n := len(vagueTermRe.FindAllString(content, -1)); n > 0 {
		score -= min(0.3, 0.1*float64(n))
	}

	return clamp01(score)
}

// Actionability rewards imperative verbs, step markers, code-like spans, and
// file paths or URLs; hedging language pulls the score back down.
func Actionability(content string) float64 {
	score := 0.0

	if n := len(actionVerbRe.FindAllString(content, -1)); n > 0 {
		score += min(0.4, 0.15*float64(n))
	}
	if n := len(stepMarkerRe.FindAllString(content, -1)); n > 0 {
		score += min(0.2, 0.1*float64(n))
	}
	if codeSpanRe.MatchString(content) || namedParamRe.MatchString(content) {
		score += 0.2
	}
	if filePathRe.MatchString(content) || urlRe.MatchString(content) {
		score += 0.15
	}
	if n := len(hedgingRe.FindAllString(content, -1)); n > 0 {
		score -= min(0.3, 0.1*float64(n))
	}

	return clamp01(score)
}

// Quantification gives a capped increment for each distinct measurement
// pattern present: percentages, durations, sizes, multipliers, and
// before/after comparisons, plus a bonus scaled by plain numeric density.
func Quantification(content string) float64 {
	score := 0.0

	if percentRe.MatchString(content) {
		score += 0.25
	}
	if durationRe.MatchString(content) {
		score += 0.25
	}
	if sizeRe.MatchString(content) {
		score += 0.25
	}
	if multiplierRe.MatchString(content) {
		score += 0.25
	}
	if beforeAfterRe.MatchString(content) {
		score += 0.25
	}
	if n := len(numberRe.FindAllString(content, -1)); n > 0 {
		score += min(0.3, 0.1*float64(n))
	}

	return clamp01(score)
}

// Relevance measures token overlap between the content and the original
// request found at context["user_request"]. Long words (7+ chars) carry extra
// weight. Without a request in context the calculator deliberately returns a
// neutral 0.5 rather than an error.
func Relevance(content string, context map[string]interface{}) float64 {
	if context == nil {
		return 0.5
	}
	request, ok := context["user_request"].(string)
	if !ok || strings.TrimSpace(request) == "" {
		return 0.5
	}

	reqTokens := tokenSet(request)
	if len(reqTokens) == 0 {
		return 0.5
	}
	contentTokens := tokenSet(content)

	matched := 0
	longTotal := 0
	longMatched := 0
	for tok := range reqTokens {
		if contentTokens[tok] {
			matched++
		}
		if len(tok) >= 7 {
			longTotal++
			if contentTokens[tok] {
				longMatched++
			}
		}
	}

	overlap := float64(matched) / float64(len(reqTokens))
	longOverlap := overlap
	if longTotal > 0 {
		longOverlap = float64(longMatched) / float64(longTotal)
	}

	return clamp01(0.6*overlap + 0.4*longOverlap)
}

// expectedVocabulary returns the category's expected term set, or nil for
// categories scored by the generic fallback.
func expectedVocabulary(category types.Category) []string {
	switch category {
	case types.CategoryReport:
		return []string{"summary", "finding", "recommendation", "conclusion", "metric"}
	case types.CategoryDataAnalysis:
		return []string{"data", "trend", "average", "correlation", "distribution", "sample"}
	case types.CategoryActionPlan:
		return []string{"step", "owner", "deadline", "priority", "risk", "timeline"}
	case types.CategoryTriage:
		return []string{"severity", "impact", "root cause", "mitigation", "priority"}
	case types.CategoryOptimization, types.CategoryErrorMsg, types.CategoryGeneral:
		return nil
	default:
		return nil
	}
}

// Completeness checks category-expected vocabulary when the category defines
// one; otherwise it falls back to a generic check of length and the presence
// of contrastive or causal connectors.
func Completeness(content string, category types.Category) float64 {
	lower := strings.ToLower(content)

	if vocab := expectedVocabulary(category); vocab != nil {
		matched := 0
		for _, term := range vocab {
			if strings.Contains(lower, term) {
				matched++
			}
		}
		return clamp01(float64(matched) / float64(len(vocab)))
	}

	words := wordRe.FindAllString(content, -1)
	score := min(0.5, float64(len(words))/100)
	if n := len(connectorRe.FindAllString(content, -1)); n > 0 {
		score += min(0.45, 0.15*float64(n))
	}
	return clamp01(score)
}

// Clarity starts at 1.0 and deducts for run-on sentences, unexplained
// all-caps acronyms, and punctuation density, with a small bonus for
// explicit structure markers (bullets, numbered lists, headers).
func Clarity(content string) float64 {
	score := 1.0

	words := wordRe.FindAllString(content, -1)
	sentences := splitSentences(content)
	if len(sentences) > 0 {
		avg := float64(len(words)) / float64(len(sentences))
		switch {
		case avg > 45:
			score -= 0.25
		case avg > 30:
			score -= 0.15
		}
	}

	distinct := map[string]bool{}
	for _, acronym := range allCapsRe.FindAllString(content, -1) {
		if !acronymAllowlist[acronym] {
			distinct[acronym] = true
		}
	}
	if len(distinct) > 0 {
		score -= min(0.15, 0.05*float64(len(distinct)))
	}

	if len(words) > 0 {
		punct := strings.Count(content, ",") + strings.Count(content, ";") +
			strings.Count(content, ":") + strings.Count(content, "(") + strings.Count(content, ")")
		if float64(punct)/float64(len(words)) > 0.3 {
			score -= 0.1
		}
	}

	if structureMarkerRe.MatchString(content) {
		score += 0.1
	}

	return clamp01(score)
}

// redundancyOverlapThreshold is the pairwise word-overlap ratio at which two
// sentences count as duplicates of each other.
const redundancyOverlapThreshold = 0.7

// Redundancy computes the fraction of sentence pairs whose word sets overlap
// beyond the duplicate threshold. Single-sentence content is never redundant.
func Redundancy(content string) float64 {
	sentences := splitSentences(content)
	if len(sentences) < 2 {
		return 0
	}

	sets := make([]map[string]bool, len(sentences))
	for i, s := range sentences {
		sets[i] = tokenSet(s)
	}

	duplicates := 0
	total := 0
	for i := 0; i < len(sets); i++ {
		for j := i + 1; j < len(sets); j++ {
			total++
			if jaccard(sets[i], sets[j]) >= redundancyOverlapThreshold {
				duplicates++
			}
		}
	}

	return float64(duplicates) / float64(total)
}

// HallucinationRisk adds up three independent triggers: unexplained large
// numbers without a data-source marker, unfalsifiable universal claims
// lacking a citation, and a fixed list of impossible-claim phrases (each
// worth the larger increment). Clamped to [0,1].
func HallucinationRisk(content string, context map[string]interface{}) float64 {
	risk := 0.0

	hasDataSource := dataSourceRe.MatchString(content)
	if context != nil {
		if _, ok := context["data_source"]; ok {
			hasDataSource = true
		}
	}
	if !hasDataSource && bigNumberRe.MatchString(content) {
		risk += 0.25
	}

	if universalClaimRe.MatchString(content) && !citationRe.MatchString(content) {
		risk += 0.25
	}

	if n := len(impossibleRe.FindAllString(content, -1)); n > 0 {
		risk += 0.4 * float64(n)
	}

	return clamp01(risk)
}

// GenericPhraseCount counts filler-phrase matches in the content.
func GenericPhraseCount(content string) int {
	return len(genericPhraseRe.FindAllString(content, -1))
}

// CircularReasoning reports whether the content matches a known circular
// phrase or restates a term as its own justification.
func CircularReasoning(content string) bool {
	return circularPhraseRe.MatchString(content) || circularEcho(content)
}

// circularEcho detects the "X is X" / "X is the X" restatement shape. Token
// scan rather than regexp: RE2 has no backreferences.
func circularEcho(content string) bool {
	words := wordRe.FindAllString(strings.ToLower(content), -1)
	for i := 0; i+2 < len(words); i++ {
		if len(words[i]) < 4 || words[i+1] != "is" {
			continue
		}
		if words[i+2] == words[i] {
			return true
		}
		if i+3 < len(words) && words[i+3] == words[i] {
			return true
		}
	}
	return false
}

func splitSentences(content string) []string {
	parts := sentenceSplitRe.Split(content, -1)
	sentences := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

func tokenSet(s string) map[string]bool {
	set := map[string]bool{}
	for _, w := range wordRe.FindAllString(strings.ToLower(s), -1) {
		set[w] = true
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for tok := range a {
		if b[tok] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

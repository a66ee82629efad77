package scoring

import (
	"github.com/slopwatch/slopwatch/internal/types"
)

// suggestionText maps each failure to its fixed improvement suggestion.
// Multiple failures concatenate their suggestions in validation order; no
// deduplication happens beyond the natural uniqueness of the map.
var suggestionText = map[Failure]string{
	FailureCircular:       "Remove circular reasoning: support each claim with independent evidence instead of restating it.",
	FailureHallucination:  "Cite the data source for every figure and drop unverifiable absolute claims.",
	FailureOverallScore:   "Increase overall substance: concrete details, measurements, and clear next steps.",
	FailureSpecificity:    "Name concrete parameters, values, and components instead of general descriptions.",
	FailureActionability:  "State explicit actions (commands, settings, steps) the reader can execute.",
	FailureQuantification: "Quantify the impact: include percentages, durations, sizes, or before/after numbers.",
	FailureRelevance:      "Address the original request directly; trim unrelated material.",
	FailureCompleteness:   "Cover the expected sections for this content type (e.g., findings and recommendations for a report).",
	FailureClarity:        "Shorten sentences, expand acronyms on first use, and add list structure.",
	FailureRedundancy:     "Remove repeated sentences; each sentence should add new information.",
	FailureGenericPhrases: "Cut generic filler phrases; replace them with specific statements.",
}

// retryInstruction maps failures to the instruction handed back to the
// producer on retry.
var retryInstruction = map[Failure]string{
	FailureCircular:       "Do not justify a claim by restating it.",
	FailureHallucination:  "Only state figures you can attribute to the provided data.",
	FailureSpecificity:    "Include concrete parameter names and values.",
	FailureActionability:  "Give numbered, executable steps.",
	FailureQuantification: "Include measured numbers with units.",
	FailureRelevance:      "Answer the user's request directly.",
	FailureCompleteness:   "Include every expected section for this content type.",
	FailureClarity:        "Use short sentences and explain acronyms.",
	FailureRedundancy:     "Do not repeat sentences.",
	FailureGenericPhrases: "Avoid filler phrases such as 'it is important to note'.",
}

// Suggestions returns one fixed suggestion string per failed check, in
// validation order.
func Suggestions(failures []Failure) []string {
	var out []string
	for _, f := range failures {
		if s, ok := suggestionText[f]; ok {
			out = append(out, s)
		}
	}
	return out
}

// BuildRetryAdjustments derives the structured retry hint from the failed
// checks. Vagueness failures (generic phrases, low specificity) suggest a
// lower sampling temperature; otherwise the default is kept.
func BuildRetryAdjustments(failures []Failure) *types.RetryAdjustments {
	if len(failures) == 0 {
		return nil
	}

	temperature := 0.7
	for _, f := range failures {
		if f == FailureGenericPhrases || f == FailureSpecificity || f == FailureHallucination {
			temperature = 0.4
			break
		}
	}

	var instructions []string
	for _, f := range failures {
		if inst, ok := retryInstruction[f]; ok {
			instructions = append(instructions, inst)
		}
	}

	return &types.RetryAdjustments{
		Temperature:  temperature,
		Instructions: instructions,
	}
}

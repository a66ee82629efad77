package scoring

import (
	"regexp"
	"strings"
)

// Phrase lists are versioned data: tests pin against these slices, and the
// compiled matchers below are built from them exactly once at init.

// genericPhrases are filler constructions that add no information.
var genericPhrases = []string{
	"it is important to note",
	"it should be noted",
	"it goes without saying",
	"needless to say",
	"at the end of the day",
	"when it comes to",
	"in today's world",
	"in this day and age",
	"generally speaking",
	"in general",
	"as we all know",
	"plays a crucial role",
	"a wide range of",
	"in the realm of",
	"last but not least",
}

// vagueTerms are words that gesture at substance without providing it.
var vagueTerms = []string{
	"things",
	"stuff",
	"various aspects",
	"somehow",
	"significant improvement",
	"better performance",
	"more efficient",
	"optimize things",
	"some improvements",
	"certain issues",
	"appropriate measures",
	"relevant factors",
}

// hedgingPhrases weaken actionability.
var hedgingPhrases = []string{
	"might",
	"maybe",
	"perhaps",
	"possibly",
	"could potentially",
	"it depends",
	"may or may not",
	"in some cases",
	"not necessarily",
	"hard to say",
}

// circularPhrases indicate reasoning that restates its own conclusion.
var circularPhrases = []string{
	"because it is what it is",
	"it works because it works",
	"the reason is because",
	"this is needed because it is needed",
	"it is true because it is true",
	"by definition it is",
}

// impossibleClaims are assertions no honest analysis can make.
var impossibleClaims = []string{
	"100% guaranteed",
	"always works",
	"never fails",
	"zero risk",
	"completely eliminates",
	"perfect solution",
	"solves all",
	"works in all cases",
	"no downsides",
	"cannot fail",
}

// actionVerbStems match imperative verbs in any inflection.
var actionVerbStems = []string{
	"run", "execut", "install", "configur", "set", "updat", "replac",
	"add", "remov", "creat", "deploy", "enabl", "disabl", "measur",
	"reduc", "increas", "check", "verify", "migrat", "refactor",
	"implement", "apply", "restart", "rollback", "monitor", "tune",
}

// stepMarkers indicate ordered procedure structure.
var stepMarkers = []string{
	"first", "second", "third", "then", "next", "finally",
	"after that", "step 1", "step 2", "step one",
}

// domainTerms are technical vocabulary rewarded by the specificity metric.
var domainTerms = []string{
	"latency", "throughput", "memory", "cpu", "database", "query",
	"timeout", "bandwidth", "allocation", "heap", "goroutine",
	"connection pool", "error rate", "queue depth", "replication",
	"shard", "partition", "checkpoint", "rollout",
}

// optimizationTechniques earn the optimization-category specificity bonus.
var optimizationTechniques = []string{
	"cache", "caching", "batch", "batching", "parallel", "concurren",
	"index", "compress", "quantiz", "pooling", "lazy", "prefetch",
	"memoiz", "throughput", "latency", "p50", "p95", "p99",
	"vectoriz", "pipelin",
}

// connectorWords signal contrastive or causal structure in prose; the
// generic completeness fallback rewards them.
var connectorWords = []string{
	"because", "therefore", "however", "although", "so that",
	"as a result", "in contrast", "consequently", "which means",
}

// acronymAllowlist holds all-caps tokens that need no explanation.
var acronymAllowlist = map[string]bool{
	"API": true, "URL": true, "HTTP": true, "HTTPS": true, "CPU": true,
	"GPU": true, "RAM": true, "SQL": true, "JSON": true, "YAML": true,
	"REST": true, "CLI": true, "SDK": true, "RPC": true, "TLS": true,
}

// phraseAlternation builds a case-insensitive alternation matcher over a
// fixed phrase list. Phrases are quoted so punctuation stays literal.
func phraseAlternation(phrases []string) *regexp.Regexp {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

var (
	genericPhraseRe  = phraseAlternation(genericPhrases)
	vagueTermRe      = phraseAlternation(vagueTerms)
	hedgingRe        = phraseAlternation(hedgingPhrases)
	circularPhraseRe = phraseAlternation(circularPhrases)
	impossibleRe     = phraseAlternation(impossibleClaims)
	stepMarkerRe     = phraseAlternation(stepMarkers)
	domainTermRe     = phraseAlternation(domainTerms)
	connectorRe      = phraseAlternation(connectorWords)

	// Stem lists get a \w* tail instead of a closing word boundary.
	actionVerbRe = regexp.MustCompile(`(?i)\b(?:` + strings.Join(actionVerbStems, "|") + `)\w*\b`)
	optTechRe    = regexp.MustCompile(`(?i)\b(?:` + strings.Join(optimizationTechniques, "|") + `)\w*\b`)

	numberRe      = regexp.MustCompile(`\d+(?:\.\d+)?`)
	bigNumberRe   = regexp.MustCompile(`\b\d{4,}\b`)
	percentRe     = regexp.MustCompile(`\d+(?:\.\d+)?\s?%`)
	durationRe    = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s?(?:ns|us|µs|ms|s|sec|seconds?|min|minutes?|h|hours?|days?)\b`)
	sizeRe        = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s?(?:b|kb|mb|gb|tb|kib|mib|gib|bytes?)\b`)
	multiplierRe  = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?x\b`)
	beforeAfterRe = regexp.MustCompile(
		`(?i)\bfrom\s+\S+\s+to\s+\S+\b|\breduced?\s+from\b|\bincreased?\s+from\b|\bbefore\b[^.!?]*\bafter\b`)

	namedParamRe = regexp.MustCompile(`\b\w+\s?=\s?\S+`)
	codeSpanRe   = regexp.MustCompile("`[^`]+`|\\b\\w+\\(\\)")
	filePathRe   = regexp.MustCompile(`(?:/[\w.-]+){2,}|\b[\w-]+\.(?:go|py|js|ts|rs|java|sql|ya?ml|json|toml|md|sh)\b`)
	urlRe        = regexp.MustCompile(`https?://\S+`)

	universalClaimRe = regexp.MustCompile(`(?i)\b(?:always|never|all|every|none|everyone|nothing|guaranteed)\b`)
	citationRe       = regexp.MustCompile(`(?i)\baccording to\b|\bsource:|\bet al\b|\bcited\b|\[\d+\]|https?://`)
	dataSourceRe     = regexp.MustCompile(`(?i)\baccording to\b|\bbased on\b|\bmeasured\b|\bfrom the data\b|\bsource:|\bbenchmark\b`)

	allCapsRe         = regexp.MustCompile(`\b[A-Z]{3,}\b`)
	structureMarkerRe = regexp.MustCompile(`(?m)^\s*(?:[-*]\s|\d+[.)]\s|#+\s)`)

	sentenceSplitRe = regexp.MustCompile(`[.!?]+`)
	wordRe          = regexp.MustCompile(`[A-Za-z0-9_']+`)
)

// Package gate is the validation facade: it orchestrates the metric
// calculators, the aggregator, the threshold validator, and the verdict
// cache, and emits one metric event per scored validation.
package gate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/slopwatch/slopwatch/internal/novelty"
	"github.com/slopwatch/slopwatch/internal/scoring"
	"github.com/slopwatch/slopwatch/internal/types"
)

// Recorder receives one MetricEvent per scored validation. The monitoring
// engine implements this; buffer write failures never fail a validation.
type Recorder interface {
	Record(event types.MetricEvent) error
}

// Gate validates producer content against category quality thresholds.
type Gate struct {
	cache    *Cache
	novelty  novelty.Store
	recorder Recorder
}

// Config holds gate construction options. Novelty and Recorder are both
// optional collaborators; the gate degrades gracefully without them.
type Config struct {
	CacheSize int
	Novelty   novelty.Store
	Recorder  Recorder
}

// New creates a gate with the given configuration.
func New(cfg *Config) (*Gate, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	cache, err := NewCache(cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create verdict cache: %w", err)
	}
	return &Gate{
		cache:    cache,
		novelty:  cfg.Novelty,
		recorder: cfg.Recorder,
	}, nil
}

// Request carries one piece of content through validation. Context is an
// opaque passthrough except for the "user_request" key, which the relevance
// calculator reads, and "data_source", which marks figures as attributed.
type Request struct {
	Content    string
	Category   types.Category
	Context    map[string]interface{}
	Strict     bool
	ProducerID string

	// Correlation ids carried onto the emitted MetricEvent
	UserID   string
	ThreadID string
	RunID    string
}

// Validate scores the content and returns a verdict. It never returns an
// error: any internal failure produces a terminal unacceptable verdict with
// the failure text as the sole issue.
//
// Cache hits return the stored verdict unchanged and do not emit a metric
// event: one piece of content feeds producer statistics exactly once.
func (g *Gate) Validate(ctx context.Context, req Request) (verdict *types.ValidationVerdict) {
	defer func() {
		if r := recover(); r != nil {
			verdict = unacceptableVerdict(fmt.Sprintf("internal scoring error: %v", r))
		}
	}()

	if !req.Category.IsValid() {
		return unacceptableVerdict(fmt.Sprintf("invalid category: %q", req.Category))
	}

	fingerprint := Fingerprint(req.Content, req.Category)
	if cached, ok := g.cache.Get(fingerprint); ok {
		fmt.Printf("Gate: cache hit for %s (category=%s)\n", fingerprint[:12], req.Category)
		return cached
	}

	noveltyScore := g.noveltyScore(ctx, req.Content)

	profile := scoring.Score(req.Content, req.Category, req.Context, noveltyScore)
	passed, failures := scoring.Validate(&profile, req.Category, req.Strict)
	if !passed {
		profile.Issues = scoring.Issues(&profile, failures)
		profile.Suggestions = scoring.Suggestions(failures)
	}

	verdict = &types.ValidationVerdict{
		Profile:        profile,
		Passed:         passed,
		RetrySuggested: !passed && profile.OverallScore > 0.3,
	}
	if !passed {
		verdict.RetryAdjustments = scoring.BuildRetryAdjustments(failures)
	}

	g.cache.Put(fingerprint, verdict)
	g.emit(req, verdict)
	return verdict
}

// noveltyScore consults the recent-outputs store: 0.0 on exact duplicate,
// 0.8 when probably novel, 0.5 when the store is absent or unavailable.
func (g *Gate) noveltyScore(ctx context.Context, content string) float64 {
	if g.novelty == nil {
		return 0.5
	}

	hash := ContentHash(content)
	dup, err := g.novelty.IsRecentDuplicate(ctx, hash)
	if err != nil {
		fmt.Printf("warning: novelty store check failed: %v\n", err)
		return 0.5
	}
	if dup {
		return 0.0
	}

	if err := g.novelty.Record(ctx, hash); err != nil {
		fmt.Printf("warning: novelty store record failed: %v\n", err)
	}
	return 0.8
}

// emit hands the verdict to the recorder. Emission is fire-and-forget: a
// recorder failure is logged and the verdict is returned regardless.
func (g *Gate) emit(req Request, verdict *types.ValidationVerdict) {
	if g.recorder == nil {
		return
	}

	producer := req.ProducerID
	if producer == "" {
		producer = "unknown"
	}

	p := verdict.Profile
	event := types.MetricEvent{
		ID:         uuid.New().String(),
		Timestamp:  time.Now(),
		ProducerID: producer,
		Category:   req.Category,

		OverallScore:        p.OverallScore,
		QualityLevel:        p.QualityLevel,
		SpecificityScore:    p.SpecificityScore,
		ActionabilityScore:  p.ActionabilityScore,
		QuantificationScore: p.QuantificationScore,
		RelevanceScore:      p.RelevanceScore,
		CompletenessScore:   p.CompletenessScore,
		NoveltyScore:        p.NoveltyScore,
		ClarityScore:        p.ClarityScore,
		RedundancyRatio:     p.RedundancyRatio,
		GenericPhraseCount:  p.GenericPhraseCount,
		CircularReasoning:   p.CircularReasoning,
		HallucinationRisk:   p.HallucinationRisk,
		WordCount:           p.WordCount,

		Passed:         verdict.Passed,
		RetrySuggested: verdict.RetrySuggested,

		UserID:   req.UserID,
		ThreadID: req.ThreadID,
		RunID:    req.RunID,
	}

	if err := g.recorder.Record(event); err != nil {
		fmt.Printf("warning: failed to record metric event: %v\n", err)
	}
}

// CacheLen reports the number of memoized verdicts.
func (g *Gate) CacheLen() int {
	return g.cache.Len()
}

func unacceptableVerdict(issue string) *types.ValidationVerdict {
	return &types.ValidationVerdict{
		Profile: types.QualityProfile{
			QualityLevel: types.QualityUnacceptable,
			Issues:       []string{issue},
		},
		Passed:         false,
		RetrySuggested: false,
	}
}

package gate

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slopwatch/slopwatch/internal/novelty"
	"github.com/slopwatch/slopwatch/internal/types"
)

// captureRecorder collects emitted events for assertions.
type captureRecorder struct {
	events []types.MetricEvent
	err    error
}

func (r *captureRecorder) Record(event types.MetricEvent) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

func newTestGate(t *testing.T, rec Recorder) *Gate {
	t.Helper()
	g, err := New(&Config{Recorder: rec})
	require.NoError(t, err)
	return g
}

func TestValidate_RejectsVagueOptimizationContent(t *testing.T) {
	g := newTestGate(t, nil)

	verdict := g.Validate(context.Background(), Request{
		Content:  "It is important to note that we should optimize things in general.",
		Category: types.CategoryOptimization,
	})

	require.False(t, verdict.Passed)
	assert.Equal(t, types.QualityUnacceptable, verdict.Profile.QualityLevel)
	assert.NotEmpty(t, verdict.Profile.Issues)

	var found bool
	for _, s := range verdict.Profile.Suggestions {
		if strings.Contains(strings.ToLower(s), "generic") {
			found = true
		}
	}
	assert.True(t, found, "expected a generic-phrase suggestion, got %v", verdict.Profile.Suggestions)

	// Score is too low even to suggest a retry.
	assert.False(t, verdict.RetrySuggested)
}

func TestValidate_AcceptsConcreteOptimizationContent(t *testing.T) {
	g := newTestGate(t, nil)

	verdict := g.Validate(context.Background(), Request{
		Content:  "Reduce p95 latency from 420ms to 180ms by enabling KV cache and batch_size=32.",
		Category: types.CategoryOptimization,
	})

	require.True(t, verdict.Passed, "issues: %v", verdict.Profile.Issues)
	assert.GreaterOrEqual(t, verdict.Profile.OverallScore, 0.6)
	assert.Empty(t, verdict.Profile.Issues)
	assert.Nil(t, verdict.RetryAdjustments)
}

func TestValidate_RejectsRepetitiveReport(t *testing.T) {
	g := newTestGate(t, nil)

	content := "Summary: the service handles requests quickly. The service handles requests quickly today. " +
		"Latency stayed flat. Latency stayed flat overall."
	verdict := g.Validate(context.Background(), Request{
		Content:  content,
		Category: types.CategoryReport,
	})

	require.False(t, verdict.Passed)
	assert.Greater(t, verdict.Profile.RedundancyRatio, 0.2)
}

func TestValidate_InvalidCategory(t *testing.T) {
	rec := &captureRecorder{}
	g := newTestGate(t, rec)

	verdict := g.Validate(context.Background(), Request{Content: "text", Category: "bogus"})

	require.False(t, verdict.Passed)
	assert.Equal(t, types.QualityUnacceptable, verdict.Profile.QualityLevel)
	require.Len(t, verdict.Profile.Issues, 1)
	assert.Contains(t, verdict.Profile.Issues[0], "invalid category")
	assert.Empty(t, rec.events, "rejected requests must not emit events")
}

func TestValidate_CacheHitSkipsEmission(t *testing.T) {
	rec := &captureRecorder{}
	g := newTestGate(t, rec)

	req := Request{
		Content:    "Restart the ingest worker and verify the queue drains.",
		Category:   types.CategoryGeneral,
		ProducerID: "agent-1",
	}

	first := g.Validate(context.Background(), req)
	second := g.Validate(context.Background(), req)

	assert.Same(t, first, second, "cache hit should return the stored verdict")
	assert.Len(t, rec.events, 1, "one piece of content feeds statistics exactly once")
	assert.Equal(t, 1, g.CacheLen())
}

func TestValidate_EmittedEventFields(t *testing.T) {
	rec := &captureRecorder{}
	g := newTestGate(t, rec)

	verdict := g.Validate(context.Background(), Request{
		Content:    "Restart the ingest worker and verify the queue drains.",
		Category:   types.CategoryGeneral,
		ProducerID: "agent-1",
		UserID:     "u1",
		ThreadID:   "t1",
		RunID:      "r1",
	})

	require.Len(t, rec.events, 1)
	event := rec.events[0]
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Timestamp.IsZero())
	assert.Equal(t, "agent-1", event.ProducerID)
	assert.Equal(t, types.CategoryGeneral, event.Category)
	assert.Equal(t, verdict.Profile.OverallScore, event.OverallScore)
	assert.Equal(t, verdict.Passed, event.Passed)
	assert.Equal(t, "u1", event.UserID)
	assert.Equal(t, "t1", event.ThreadID)
	assert.Equal(t, "r1", event.RunID)
	require.NoError(t, event.Validate())
}

func TestValidate_EmptyProducerBecomesUnknown(t *testing.T) {
	rec := &captureRecorder{}
	g := newTestGate(t, rec)

	g.Validate(context.Background(), Request{Content: "some text", Category: types.CategoryGeneral})

	require.Len(t, rec.events, 1)
	assert.Equal(t, "unknown", rec.events[0].ProducerID)
}

func TestValidate_RecorderFailureDoesNotFailValidation(t *testing.T) {
	rec := &captureRecorder{err: fmt.Errorf("buffer closed")}
	g := newTestGate(t, rec)

	verdict := g.Validate(context.Background(), Request{
		Content:  "Restart the ingest worker and verify the queue drains.",
		Category: types.CategoryGeneral,
	})
	assert.NotNil(t, verdict)
}

func TestValidate_NoveltyDuplicateLowersScore(t *testing.T) {
	store := novelty.NewMemoryStore(10)
	g, err := New(&Config{Novelty: store})
	require.NoError(t, err)

	content := "Restart the ingest worker and verify the queue drains."
	first := g.Validate(context.Background(), Request{Content: content, Category: types.CategoryGeneral})
	assert.InDelta(t, 0.8, first.Profile.NoveltyScore, 1e-9)

	// Same content under a different category misses the verdict cache but
	// hits the content-hash novelty store.
	second := g.Validate(context.Background(), Request{Content: content, Category: types.CategoryTriage})
	assert.InDelta(t, 0.0, second.Profile.NoveltyScore, 1e-9)
}

func TestValidate_NeutralNoveltyWithoutStore(t *testing.T) {
	g := newTestGate(t, nil)
	verdict := g.Validate(context.Background(), Request{
		Content:  "Restart the ingest worker and verify the queue drains.",
		Category: types.CategoryGeneral,
	})
	assert.InDelta(t, 0.5, verdict.Profile.NoveltyScore, 1e-9)
}

func TestValidate_RetryBand(t *testing.T) {
	g := newTestGate(t, nil)

	// Fails thresholds but scores well above 0.3: worth retrying.
	verdict := g.Validate(context.Background(), Request{
		Content:  "Check the dashboards, then restart the ingest worker, and finally verify the queue drains because backlog hurts latency.",
		Category: types.CategoryOptimization,
	})
	require.False(t, verdict.Passed)
	require.Greater(t, verdict.Profile.OverallScore, 0.3)
	assert.True(t, verdict.RetrySuggested)
	require.NotNil(t, verdict.RetryAdjustments)
	assert.NotEmpty(t, verdict.RetryAdjustments.Instructions)
}

package monitor

import (
	"math"
	"strings"
	"testing"

	"github.com/slopwatch/slopwatch/internal/types"
)

func TestBuildAgentProfile_Empty(t *testing.T) {
	profile := BuildAgentProfile("a", nil)
	if profile.ProducerID != "a" {
		t.Errorf("producer = %s, want a", profile.ProducerID)
	}
	if profile.RequestCount != 0 || profile.SlopCount != 0 {
		t.Error("empty window should produce a zeroed profile")
	}
	if profile.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set")
	}
}

func TestBuildAgentProfile_Rollup(t *testing.T) {
	events := eventsWithScores("a", 0.95, 0.8, 0.6, 0.4, 0.1)
	profile := BuildAgentProfile("a", events)

	if profile.RequestCount != 5 {
		t.Errorf("request count = %d, want 5", profile.RequestCount)
	}
	if math.Abs(profile.AverageScore-0.57) > 1e-9 {
		t.Errorf("average = %v, want 0.57", profile.AverageScore)
	}
	// 0.4 is poor, 0.1 is unacceptable.
	if profile.SlopCount != 2 {
		t.Errorf("slop count = %d, want 2", profile.SlopCount)
	}

	dist := profile.LevelDistribution
	if dist[types.QualityExcellent] != 1 || dist[types.QualityGood] != 1 ||
		dist[types.QualityAcceptable] != 1 || dist[types.QualityPoor] != 1 ||
		dist[types.QualityUnacceptable] != 1 {
		t.Errorf("distribution = %v, want one event per level", dist)
	}
}

func TestBuildAgentProfile_Issues(t *testing.T) {
	events := eventsWithScores("a", 0.8, 0.8)
	events[0].CircularReasoning = true
	events[1].HallucinationRisk = 0.9
	events[1].GenericPhraseCount = 5

	profile := BuildAgentProfile("a", events)
	if len(profile.Issues) != 3 {
		t.Fatalf("issues = %v, want 3 entries", profile.Issues)
	}
	if !strings.Contains(profile.Issues[0], "circular") {
		t.Errorf("issues[0] = %q, want circular reasoning first", profile.Issues[0])
	}
}

func TestBuildAgentProfile_Recommendations(t *testing.T) {
	// Low average and majority slop trigger both recommendations.
	low := BuildAgentProfile("a", eventsWithScores("a", 0.2, 0.2, 0.2, 0.2))
	if len(low.Recommendations) < 2 {
		t.Errorf("recommendations = %v, want prompt review and slop tightening", low.Recommendations)
	}

	healthy := BuildAgentProfile("a", eventsWithScores("a", 0.9, 0.85, 0.8))
	if len(healthy.Recommendations) != 0 {
		t.Errorf("healthy producer got recommendations: %v", healthy.Recommendations)
	}

	retried := eventsWithScores("a", 0.8, 0.8, 0.8)
	for i := range retried {
		retried[i].RetrySuggested = true
	}
	withRetries := BuildAgentProfile("a", retried)
	found := false
	for _, rec := range withRetries.Recommendations {
		if strings.Contains(rec, "retries") {
			found = true
		}
	}
	if !found {
		t.Errorf("recommendations = %v, want a retry recommendation", withRetries.Recommendations)
	}
}

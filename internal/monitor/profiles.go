package monitor

import (
	"fmt"
	"time"

	"github.com/slopwatch/slopwatch/internal/types"
)

// BuildAgentProfile rolls one producer's buffered events into a summary.
// The result replaces the previous cycle's profile wholesale.
func BuildAgentProfile(producerID string, events []types.MetricEvent) *types.AgentQualityProfile {
	profile := &types.AgentQualityProfile{
		ProducerID:        producerID,
		RequestCount:      len(events),
		LevelDistribution: make(map[types.QualityLevel]int),
		UpdatedAt:         time.Now(),
	}
	if len(events) == 0 {
		return profile
	}

	circular := 0
	highRisk := 0
	generic := 0
	retries := 0
	for _, e := range events {
		profile.LevelDistribution[e.QualityLevel]++
		if e.QualityLevel == types.QualityPoor || e.QualityLevel == types.QualityUnacceptable {
			profile.SlopCount++
		}
		if e.CircularReasoning {
			circular++
		}
		if e.HallucinationRisk > 0.5 {
			highRisk++
		}
		if e.GenericPhraseCount > 2 {
			generic++
		}
		if e.RetrySuggested {
			retries++
		}
	}
	profile.AverageScore = averageScore(events)

	if circular > 0 {
		profile.Issues = append(profile.Issues, fmt.Sprintf("circular reasoning in %d of %d responses", circular, len(events)))
	}
	if highRisk > 0 {
		profile.Issues = append(profile.Issues, fmt.Sprintf("high hallucination risk in %d responses", highRisk))
	}
	if generic > 0 {
		profile.Issues = append(profile.Issues, fmt.Sprintf("heavy generic filler in %d responses", generic))
	}

	slopRate := float64(profile.SlopCount) / float64(len(events))
	if profile.AverageScore < 0.5 {
		profile.Recommendations = append(profile.Recommendations,
			"review this producer's prompt: average quality is below acceptable")
	}
	if slopRate > 0.3 {
		profile.Recommendations = append(profile.Recommendations,
			"tighten output requirements: more than 30% of responses are slop")
	}
	if retries > len(events)/2 {
		profile.Recommendations = append(profile.Recommendations,
			"most responses need retries; adjust generation parameters")
	}

	return profile
}

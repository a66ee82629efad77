package monitor

import (
	"github.com/slopwatch/slopwatch/internal/types"
)

// trendChangeBand is the percentage-change band inside which a trend is
// classified as stable rather than improving or degrading.
const trendChangeBand = 5.0

// trendMinSamples is the smallest window that yields a meaningful
// recent-vs-older comparison (two samples per half).
const trendMinSamples = 4

// AnalyzeTrend compares the recent half of a producer's buffered scores
// against the older half. It returns nil when there are too few samples to
// split into two windows.
//
// The forecast is a naive linear extrapolation: current + (current -
// previous). Confidence scales with sample size, saturating at 20 events.
func AnalyzeTrend(producerID string, events []types.MetricEvent, period string) *types.QualityTrend {
	if len(events) < trendMinSamples {
		return nil
	}

	mid := len(events) / 2
	previous := averageScore(events[:mid])
	current := averageScore(events[mid:])

	change := 0.0
	if previous > 0 {
		change = (current - previous) / previous * 100
	}

	direction := types.TrendStable
	switch {
	case change > trendChangeBand:
		direction = types.TrendImproving
	case change < -trendChangeBand:
		direction = types.TrendDegrading
	}

	confidence := float64(len(events)) / 20
	if confidence > 1 {
		confidence = 1
	}

	return &types.QualityTrend{
		ProducerID:      producerID,
		MetricType:      types.MetricQualityScore,
		Period:          period,
		Direction:       direction,
		ChangePercent:   change,
		CurrentAverage:  current,
		PreviousAverage: previous,
		Forecast:        clampScore(current + (current - previous)),
		Confidence:      confidence,
	}
}

func averageScore(events []types.MetricEvent) float64 {
	if len(events) == 0 {
		return 0
	}
	sum := 0.0
	for _, e := range events {
		sum += e.OverallScore
	}
	return sum / float64(len(events))
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

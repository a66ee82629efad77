// Package types defines the domain vocabulary shared by the quality gate
// and the monitoring pipeline: quality profiles, verdicts, metric events,
// alerts, trends, and producer rollups.
package types

import (
	"fmt"
	"time"
)

// Category classifies the content being scored. It is a closed enumeration:
// every weight map, threshold record, and vocabulary set is selected by an
// exhaustive switch over these values.
type Category string

const (
	CategoryOptimization Category = "optimization"
	CategoryDataAnalysis Category = "data_analysis"
	CategoryActionPlan   Category = "action_plan"
	CategoryReport       Category = "report"
	CategoryTriage       Category = "triage"
	CategoryErrorMsg     Category = "error_message"
	CategoryGeneral      Category = "general"
)

// AllCategories returns every valid category in a stable order.
func AllCategories() []Category {
	return []Category{
		CategoryOptimization,
		CategoryDataAnalysis,
		CategoryActionPlan,
		CategoryReport,
		CategoryTriage,
		CategoryErrorMsg,
		CategoryGeneral,
	}
}

// IsValid checks whether the category is a member of the closed enumeration.
func (c Category) IsValid() bool {
	switch c {
	case CategoryOptimization, CategoryDataAnalysis, CategoryActionPlan,
		CategoryReport, CategoryTriage, CategoryErrorMsg, CategoryGeneral:
		return true
	}
	return false
}

// QualityLevel is the discretized band for an overall score.
type QualityLevel string

const (
	QualityExcellent    QualityLevel = "excellent"
	QualityGood         QualityLevel = "good"
	QualityAcceptable   QualityLevel = "acceptable"
	QualityPoor         QualityLevel = "poor"
	QualityUnacceptable QualityLevel = "unacceptable"
)

// QualityLevelForScore maps an overall score onto the fixed bands.
// Boundaries are inclusive: a score of exactly 0.9 is excellent.
func QualityLevelForScore(score float64) QualityLevel {
	switch {
	case score >= 0.9:
		return QualityExcellent
	case score >= 0.7:
		return QualityGood
	case score >= 0.5:
		return QualityAcceptable
	case score >= 0.3:
		return QualityPoor
	default:
		return QualityUnacceptable
	}
}

// QualityProfile is the multi-dimensional quality assessment of one piece of
// content. It is created once per scoring call and never mutated afterward.
type QualityProfile struct {
	// Sub-scores, each in [0,1]
	SpecificityScore    float64 `json:"specificity_score"`
	ActionabilityScore  float64 `json:"actionability_score"`
	QuantificationScore float64 `json:"quantification_score"`
	RelevanceScore      float64 `json:"relevance_score"`
	CompletenessScore   float64 `json:"completeness_score"`
	NoveltyScore        float64 `json:"novelty_score"`
	ClarityScore        float64 `json:"clarity_score"`
	RedundancyRatio     float64 `json:"redundancy_ratio"`

	// Negative indicators
	GenericPhraseCount int     `json:"generic_phrase_count"`
	CircularReasoning  bool    `json:"circular_reasoning"`
	HallucinationRisk  float64 `json:"hallucination_risk"`

	// Descriptive counts
	WordCount         int `json:"word_count"`
	SentenceCount     int `json:"sentence_count"`
	NumericTokenCount int `json:"numeric_token_count"`

	// Derived
	OverallScore float64      `json:"overall_score"`
	QualityLevel QualityLevel `json:"quality_level"`

	Issues      []string `json:"issues,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// RetryAdjustments is a structured hint for the caller's retry orchestration:
// a suggested sampling temperature plus ordered instruction strings.
type RetryAdjustments struct {
	Temperature  float64  `json:"temperature"`
	Instructions []string `json:"instructions"`
}

// ValidationVerdict wraps a QualityProfile with the pass/fail outcome.
// Verdicts are cached by fingerprint and read-only downstream.
type ValidationVerdict struct {
	Profile          QualityProfile    `json:"profile"`
	Passed           bool              `json:"passed"`
	RetrySuggested   bool              `json:"retry_suggested"`
	RetryAdjustments *RetryAdjustments `json:"retry_adjustments,omitempty"`
}

// MetricEvent is the append-only record stored in the per-producer event
// buffer. The profile's scalar fields are flattened to suit columnar storage.
type MetricEvent struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	ProducerID string    `json:"producer_id"`
	Category   Category  `json:"category"`

	OverallScore        float64      `json:"overall_score"`
	QualityLevel        QualityLevel `json:"quality_level"`
	SpecificityScore    float64      `json:"specificity_score"`
	ActionabilityScore  float64      `json:"actionability_score"`
	QuantificationScore float64      `json:"quantification_score"`
	RelevanceScore      float64      `json:"relevance_score"`
	CompletenessScore   float64      `json:"completeness_score"`
	NoveltyScore        float64      `json:"novelty_score"`
	ClarityScore        float64      `json:"clarity_score"`
	RedundancyRatio     float64      `json:"redundancy_ratio"`
	GenericPhraseCount  int          `json:"generic_phrase_count"`
	CircularReasoning   bool         `json:"circular_reasoning"`
	HallucinationRisk   float64      `json:"hallucination_risk"`
	WordCount           int          `json:"word_count"`

	Passed         bool `json:"passed"`
	RetrySuggested bool `json:"retry_suggested"`

	// Correlation ids supplied by the caller
	UserID   string `json:"user_id,omitempty"`
	ThreadID string `json:"thread_id,omitempty"`
	RunID    string `json:"run_id,omitempty"`
}

// Validate checks that the event carries the fields the monitoring
// pipeline depends on.
func (e *MetricEvent) Validate() error {
	if e.ProducerID == "" {
		return fmt.Errorf("producer_id is required")
	}
	if !e.Category.IsValid() {
		return fmt.Errorf("invalid category: %s", e.Category)
	}
	if e.OverallScore < 0 || e.OverallScore > 1 {
		return fmt.Errorf("overall_score must be in [0,1] (got %f)", e.OverallScore)
	}
	return nil
}

// AlertSeverity is the ordered severity scale for quality alerts.
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityError    AlertSeverity = "error"
	SeverityCritical AlertSeverity = "critical"
)

// Rank returns the ordering of a severity: info < warning < error < critical.
func (s AlertSeverity) Rank() int {
	switch s {
	case SeverityInfo:
		return 0
	case SeverityWarning:
		return 1
	case SeverityError:
		return 2
	case SeverityCritical:
		return 3
	default:
		return -1
	}
}

// MetricType identifies which monitored metric an alert refers to. The
// first three are raised by the built-in alert checks; fallback_rate and
// error_rate are reserved for external alert producers that write to the
// store directly, since scored validations carry no fallback or error
// signal.
type MetricType string

const (
	MetricQualityScore MetricType = "quality_score"
	MetricSlopRate     MetricType = "slop_rate"
	MetricRetryRate    MetricType = "retry_rate"
	MetricFallbackRate MetricType = "fallback_rate"
	MetricErrorRate    MetricType = "error_rate"
)

// QualityAlert records a threshold breach for one producer. Alerts are never
// deleted, only marked acknowledged or resolved, so the set doubles as an
// audit trail.
type QualityAlert struct {
	ID           string                 `json:"id"`
	CreatedAt    time.Time              `json:"created_at"`
	Severity     AlertSeverity          `json:"severity"`
	MetricType   MetricType             `json:"metric_type"`
	ProducerID   string                 `json:"producer_id"`
	Message      string                 `json:"message"`
	CurrentValue float64                `json:"current_value"`
	Threshold    float64                `json:"threshold"`
	Details      map[string]interface{} `json:"details,omitempty"`
	Acknowledged bool                   `json:"acknowledged"`
	Resolved     bool                   `json:"resolved"`
}

// TrendDirection classifies how a producer's metric moved between windows.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDegrading TrendDirection = "degrading"
	TrendStable    TrendDirection = "stable"
)

// QualityTrend compares a producer's recent score window against the prior
// one. Recomputed each monitoring cycle; not persisted as history.
type QualityTrend struct {
	ProducerID      string         `json:"producer_id"`
	MetricType      MetricType     `json:"metric_type"`
	Period          string         `json:"period"`
	Direction       TrendDirection `json:"direction"`
	ChangePercent   float64        `json:"change_percent"`
	CurrentAverage  float64        `json:"current_average"`
	PreviousAverage float64        `json:"previous_average"`
	Forecast        float64        `json:"forecast"`
	Confidence      float64        `json:"confidence"`
}

// AgentQualityProfile is the per-producer rollup, replaced wholesale each
// monitoring cycle rather than incrementally merged.
type AgentQualityProfile struct {
	ProducerID        string               `json:"producer_id"`
	RequestCount      int                  `json:"request_count"`
	AverageScore      float64              `json:"average_score"`
	LevelDistribution map[QualityLevel]int `json:"level_distribution"`
	SlopCount         int                  `json:"slop_count"`
	Issues            []string             `json:"issues,omitempty"`
	Recommendations   []string             `json:"recommendations,omitempty"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// DashboardSnapshot is the single read model handed to dashboard consumers.
type DashboardSnapshot struct {
	GeneratedAt    time.Time              `json:"generated_at"`
	TotalEvents    int                    `json:"total_events"`
	AverageScore   float64                `json:"average_score"`
	OpenAlerts     int                    `json:"open_alerts"`
	CriticalAlerts int                    `json:"critical_alerts"`
	TopProducers   []*AgentQualityProfile `json:"top_producers"`
	RecentAlerts   []*QualityAlert        `json:"recent_alerts"`
	LevelHistogram map[QualityLevel]int   `json:"level_histogram"`
}

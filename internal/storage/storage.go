// Package storage persists metric events, producer profile snapshots, and
// the alert audit trail to SQLite. It is the external source of truth when
// multiple processes share one deployment.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/slopwatch/slopwatch/internal/types"
)

// Store is the SQLite persistence sink. It satisfies monitor.Sink.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// StoreMetricEvent persists one flattened metric event.
func (s *Store) StoreMetricEvent(ctx context.Context, event *types.MetricEvent) error {
	query := `
		INSERT INTO metric_events (
			id, timestamp, producer_id, category,
			overall_score, quality_level,
			specificity_score, actionability_score, quantification_score,
			relevance_score, completeness_score, novelty_score,
			clarity_score, redundancy_ratio,
			generic_phrase_count, circular_reasoning, hallucination_risk,
			word_count, passed, retry_suggested,
			user_id, thread_id, run_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		event.ID, event.Timestamp, event.ProducerID, string(event.Category),
		event.OverallScore, string(event.QualityLevel),
		event.SpecificityScore, event.ActionabilityScore, event.QuantificationScore,
		event.RelevanceScore, event.CompletenessScore, event.NoveltyScore,
		event.ClarityScore, event.RedundancyRatio,
		event.GenericPhraseCount, event.CircularReasoning, event.HallucinationRisk,
		event.WordCount, event.Passed, event.RetrySuggested,
		event.UserID, event.ThreadID, event.RunID,
	)
	if err != nil {
		return fmt.Errorf("failed to store metric event (producer=%s): %w", event.ProducerID, err)
	}
	return nil
}

// GetRecentEvents returns the most recent events across all producers,
// newest first.
func (s *Store) GetRecentEvents(ctx context.Context, limit int) ([]*types.MetricEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, eventColumns+" ORDER BY timestamp DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// GetEventsByProducer returns one producer's events, newest first.
func (s *Store) GetEventsByProducer(ctx context.Context, producerID string, limit int) ([]*types.MetricEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		eventColumns+" WHERE producer_id = ? ORDER BY timestamp DESC LIMIT ?", producerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events for %s: %w", producerID, err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

const eventColumns = `
	SELECT id, timestamp, producer_id, category,
	       overall_score, quality_level,
	       specificity_score, actionability_score, quantification_score,
	       relevance_score, completeness_score, novelty_score,
	       clarity_score, redundancy_ratio,
	       generic_phrase_count, circular_reasoning, hallucination_risk,
	       word_count, passed, retry_suggested,
	       user_id, thread_id, run_id
	FROM metric_events`

func scanEvents(rows *sql.Rows) ([]*types.MetricEvent, error) {
	var events []*types.MetricEvent
	for rows.Next() {
		var e types.MetricEvent
		var category, level string
		err := rows.Scan(
			&e.ID, &e.Timestamp, &e.ProducerID, &category,
			&e.OverallScore, &level,
			&e.SpecificityScore, &e.ActionabilityScore, &e.QuantificationScore,
			&e.RelevanceScore, &e.CompletenessScore, &e.NoveltyScore,
			&e.ClarityScore, &e.RedundancyRatio,
			&e.GenericPhraseCount, &e.CircularReasoning, &e.HallucinationRisk,
			&e.WordCount, &e.Passed, &e.RetrySuggested,
			&e.UserID, &e.ThreadID, &e.RunID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan metric event: %w", err)
		}
		e.Category = types.Category(category)
		e.QualityLevel = types.QualityLevel(level)
		events = append(events, &e)
	}
	return events, rows.Err()
}

// StoreAgentProfile upserts the latest rollup for a producer. Profiles are
// replaced wholesale each cycle, so only the newest snapshot is kept.
func (s *Store) StoreAgentProfile(ctx context.Context, profile *types.AgentQualityProfile) error {
	distribution, err := json.Marshal(profile.LevelDistribution)
	if err != nil {
		return fmt.Errorf("failed to marshal level distribution: %w", err)
	}
	issues, err := json.Marshal(profile.Issues)
	if err != nil {
		return fmt.Errorf("failed to marshal issues: %w", err)
	}
	recommendations, err := json.Marshal(profile.Recommendations)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	query := `
		INSERT INTO agent_profiles (
			producer_id, request_count, average_score, level_distribution,
			slop_count, issues, recommendations, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(producer_id) DO UPDATE SET
			request_count = excluded.request_count,
			average_score = excluded.average_score,
			level_distribution = excluded.level_distribution,
			slop_count = excluded.slop_count,
			issues = excluded.issues,
			recommendations = excluded.recommendations,
			updated_at = excluded.updated_at
	`
	_, err = s.db.ExecContext(ctx, query,
		profile.ProducerID, profile.RequestCount, profile.AverageScore, string(distribution),
		profile.SlopCount, string(issues), string(recommendations), profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store profile for %s: %w", profile.ProducerID, err)
	}
	return nil
}

// GetAgentProfile returns the stored rollup for a producer.
func (s *Store) GetAgentProfile(ctx context.Context, producerID string) (*types.AgentQualityProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT producer_id, request_count, average_score, level_distribution,
		       slop_count, issues, recommendations, updated_at
		FROM agent_profiles WHERE producer_id = ?`, producerID)
	return scanProfile(row)
}

// GetAgentProfiles returns all stored rollups ordered by average score
// descending.
func (s *Store) GetAgentProfiles(ctx context.Context) ([]*types.AgentQualityProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT producer_id, request_count, average_score, level_distribution,
		       slop_count, issues, recommendations, updated_at
		FROM agent_profiles ORDER BY average_score DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*types.AgentQualityProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner) (*types.AgentQualityProfile, error) {
	var p types.AgentQualityProfile
	var distribution, issues, recommendations string
	err := row.Scan(&p.ProducerID, &p.RequestCount, &p.AverageScore, &distribution,
		&p.SlopCount, &issues, &recommendations, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan profile: %w", err)
	}
	if err := json.Unmarshal([]byte(distribution), &p.LevelDistribution); err != nil {
		return nil, fmt.Errorf("failed to unmarshal level distribution: %w", err)
	}
	if err := json.Unmarshal([]byte(issues), &p.Issues); err != nil {
		return nil, fmt.Errorf("failed to unmarshal issues: %w", err)
	}
	if err := json.Unmarshal([]byte(recommendations), &p.Recommendations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recommendations: %w", err)
	}
	return &p, nil
}

// StoreAlert upserts an alert. Re-storing an alert updates its lifecycle
// flags; alert rows are never deleted.
func (s *Store) StoreAlert(ctx context.Context, alert *types.QualityAlert) error {
	details, err := json.Marshal(alert.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal alert details: %w", err)
	}

	query := `
		INSERT INTO alerts (
			id, created_at, severity, metric_type, producer_id, message,
			current_value, threshold, details, acknowledged, resolved
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			acknowledged = excluded.acknowledged,
			resolved = excluded.resolved
	`
	_, err = s.db.ExecContext(ctx, query,
		alert.ID, alert.CreatedAt, string(alert.Severity), string(alert.MetricType),
		alert.ProducerID, alert.Message, alert.CurrentValue, alert.Threshold,
		string(details), alert.Acknowledged, alert.Resolved,
	)
	if err != nil {
		return fmt.Errorf("failed to store alert %s: %w", alert.ID, err)
	}
	return nil
}

// GetOpenAlerts returns unresolved alerts, newest first.
func (s *Store) GetOpenAlerts(ctx context.Context) ([]*types.QualityAlert, error) {
	rows, err := s.db.QueryContext(ctx, alertColumns+" WHERE resolved = 0 ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query open alerts: %w", err)
	}
	defer rows.Close()
	return scanAlerts(rows)
}

// GetRecentAlerts returns the most recently created alerts, newest first.
func (s *Store) GetRecentAlerts(ctx context.Context, limit int) ([]*types.QualityAlert, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, alertColumns+" ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent alerts: %w", err)
	}
	defer rows.Close()
	return scanAlerts(rows)
}

// AcknowledgeAlert marks a stored alert acknowledged. Returns false for
// unknown ids.
func (s *Store) AcknowledgeAlert(ctx context.Context, id string) (bool, error) {
	return s.setAlertFlag(ctx, id, "acknowledged")
}

// ResolveAlert marks a stored alert resolved. Returns false for unknown ids.
func (s *Store) ResolveAlert(ctx context.Context, id string) (bool, error) {
	return s.setAlertFlag(ctx, id, "resolved")
}

func (s *Store) setAlertFlag(ctx context.Context, id, column string) (bool, error) {
	// column is one of two fixed literals, never user input
	res, err := s.db.ExecContext(ctx, "UPDATE alerts SET "+column+" = 1 WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to update alert %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const alertColumns = `
	SELECT id, created_at, severity, metric_type, producer_id, message,
	       current_value, threshold, details, acknowledged, resolved
	FROM alerts`

func scanAlerts(rows *sql.Rows) ([]*types.QualityAlert, error) {
	var alerts []*types.QualityAlert
	for rows.Next() {
		var a types.QualityAlert
		var severity, metricType, details string
		err := rows.Scan(&a.ID, &a.CreatedAt, &severity, &metricType, &a.ProducerID,
			&a.Message, &a.CurrentValue, &a.Threshold, &details, &a.Acknowledged, &a.Resolved)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		a.Severity = types.AlertSeverity(severity)
		a.MetricType = types.MetricType(metricType)
		if details != "" && details != "null" {
			if err := json.Unmarshal([]byte(details), &a.Details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal alert details: %w", err)
			}
		}
		alerts = append(alerts, &a)
	}
	return alerts, rows.Err()
}

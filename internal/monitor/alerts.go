package monitor

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/slopwatch/slopwatch/internal/types"
)

// criticalScoreCutoff is the per-event score below which the immediate
// alert path fires, independent of the periodic cycle.
const criticalScoreCutoff = 0.3

// AlertThresholds configures when the periodic check raises alerts. Quality
// score alerts fire when the average drops below a bound; rate alerts fire
// when a rate rises above one.
type AlertThresholds struct {
	QualityWarning  float64 `yaml:"quality_warning"`
	QualityError    float64 `yaml:"quality_error"`
	QualityCritical float64 `yaml:"quality_critical"`

	SlopRateWarning  float64 `yaml:"slop_rate_warning"`
	SlopRateError    float64 `yaml:"slop_rate_error"`
	SlopRateCritical float64 `yaml:"slop_rate_critical"`

	RetryRateWarning  float64 `yaml:"retry_rate_warning"`
	RetryRateError    float64 `yaml:"retry_rate_error"`
	RetryRateCritical float64 `yaml:"retry_rate_critical"`
}

// DefaultAlertThresholds returns the stock alerting thresholds.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		QualityWarning:  0.6,
		QualityError:    0.45,
		QualityCritical: 0.3,

		SlopRateWarning:  0.2,
		SlopRateError:    0.35,
		SlopRateCritical: 0.5,

		RetryRateWarning:  0.3,
		RetryRateError:    0.5,
		RetryRateCritical: 0.7,
	}
}

// AlertManager evaluates buffered data against severity thresholds and owns
// the alert lifecycle. Alerts are never deleted; resolution only flips a
// flag, keeping the full audit trail.
//
// Re-breaching an already-breached threshold on a later check creates an
// additional alert record; the manager does not deduplicate per incident.
// The immediate critical path is rate-limited per producer so a burst of
// failing events cannot create unbounded records.
type AlertManager struct {
	mu         sync.RWMutex
	thresholds AlertThresholds
	alerts     map[string]*types.QualityAlert
	order      []string // alert ids in creation order
	limiters   map[string]*rate.Limiter
}

// NewAlertManager creates an alert manager with the given thresholds.
func NewAlertManager(thresholds AlertThresholds) *AlertManager {
	return &AlertManager{
		thresholds: thresholds,
		alerts:     make(map[string]*types.QualityAlert),
		limiters:   make(map[string]*rate.Limiter),
	}
}

// RecordImmediate raises a critical alert synchronously when a single event
// scores below the critical cutoff. Critical failures must not wait for the
// next polling interval.
func (m *AlertManager) RecordImmediate(event types.MetricEvent) *types.QualityAlert {
	if event.OverallScore >= criticalScoreCutoff {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	limiter, ok := m.limiters[event.ProducerID]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(time.Minute), 1)
		m.limiters[event.ProducerID] = limiter
	}
	if !limiter.Allow() {
		return nil
	}

	return m.createLocked(types.SeverityCritical, types.MetricQualityScore, event.ProducerID,
		fmt.Sprintf("producer %s emitted content scoring %.2f, below the critical cutoff %.2f",
			event.ProducerID, event.OverallScore, criticalScoreCutoff),
		event.OverallScore, criticalScoreCutoff,
		map[string]interface{}{
			"event_id":      event.ID,
			"category":      string(event.Category),
			"quality_level": string(event.QualityLevel),
		})
}

// Check evaluates one producer's buffered events against every metric
// threshold and returns any alerts created. For each metric only the
// highest crossed severity fires.
func (m *AlertManager) Check(producerID string, events []types.MetricEvent) []*types.QualityAlert {
	if len(events) == 0 {
		return nil
	}

	avg := averageScore(events)
	slopRate := ratio(events, func(e types.MetricEvent) bool {
		return e.QualityLevel == types.QualityPoor || e.QualityLevel == types.QualityUnacceptable
	})
	retryRate := ratio(events, func(e types.MetricEvent) bool { return e.RetrySuggested })

	m.mu.Lock()
	defer m.mu.Unlock()

	var created []*types.QualityAlert

	// Quality score: lower is worse
	if severity, threshold, ok := m.belowSeverity(avg,
		m.thresholds.QualityCritical, m.thresholds.QualityError, m.thresholds.QualityWarning); ok {
		created = append(created, m.createLocked(severity, types.MetricQualityScore, producerID,
			fmt.Sprintf("producer %s average quality %.2f dropped below %.2f", producerID, avg, threshold),
			avg, threshold, map[string]interface{}{"sample_size": len(events)}))
	}

	// Slop rate: higher is worse
	if severity, threshold, ok := m.aboveSeverity(slopRate,
		m.thresholds.SlopRateCritical, m.thresholds.SlopRateError, m.thresholds.SlopRateWarning); ok {
		created = append(created, m.createLocked(severity, types.MetricSlopRate, producerID,
			fmt.Sprintf("producer %s slop rate %.2f exceeded %.2f", producerID, slopRate, threshold),
			slopRate, threshold, map[string]interface{}{"sample_size": len(events)}))
	}

	// Retry rate: higher is worse
	if severity, threshold, ok := m.aboveSeverity(retryRate,
		m.thresholds.RetryRateCritical, m.thresholds.RetryRateError, m.thresholds.RetryRateWarning); ok {
		created = append(created, m.createLocked(severity, types.MetricRetryRate, producerID,
			fmt.Sprintf("producer %s retry rate %.2f exceeded %.2f", producerID, retryRate, threshold),
			retryRate, threshold, map[string]interface{}{"sample_size": len(events)}))
	}

	return created
}

// belowSeverity picks the highest severity whose bound the value dropped
// below. Bounds are ordered critical < error < warning.
func (m *AlertManager) belowSeverity(value, critical, errBound, warning float64) (types.AlertSeverity, float64, bool) {
	switch {
	case value < critical:
		return types.SeverityCritical, critical, true
	case value < errBound:
		return types.SeverityError, errBound, true
	case value < warning:
		return types.SeverityWarning, warning, true
	}
	return "", 0, false
}

// aboveSeverity picks the highest severity whose bound the value exceeded.
// Bounds are ordered warning < error < critical.
func (m *AlertManager) aboveSeverity(value, critical, errBound, warning float64) (types.AlertSeverity, float64, bool) {
	switch {
	case value > critical:
		return types.SeverityCritical, critical, true
	case value > errBound:
		return types.SeverityError, errBound, true
	case value > warning:
		return types.SeverityWarning, warning, true
	}
	return "", 0, false
}

func (m *AlertManager) createLocked(severity types.AlertSeverity, metric types.MetricType, producerID, message string, value, threshold float64, details map[string]interface{}) *types.QualityAlert {
	alert := &types.QualityAlert{
		ID:           uuid.New().String(),
		CreatedAt:    time.Now(),
		Severity:     severity,
		MetricType:   metric,
		ProducerID:   producerID,
		Message:      message,
		CurrentValue: value,
		Threshold:    threshold,
		Details:      details,
	}
	m.alerts[alert.ID] = alert
	m.order = append(m.order, alert.ID)
	fmt.Printf("AlertManager: %s alert for %s (%s): %s\n", severity, producerID, metric, message)
	return alert
}

// Acknowledge marks an alert as seen by an operator. Returns false for
// unknown ids; acknowledging twice is a harmless no-op.
func (m *AlertManager) Acknowledge(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	alert, ok := m.alerts[id]
	if !ok {
		return false
	}
	alert.Acknowledged = true
	return true
}

// Resolve marks an alert as resolved. Returns false for unknown ids;
// resolving an already-resolved alert is an idempotent no-op.
func (m *AlertManager) Resolve(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	alert, ok := m.alerts[id]
	if !ok {
		return false
	}
	alert.Resolved = true
	return true
}

// Get returns a copy of the alert with the given id.
func (m *AlertManager) Get(id string) (*types.QualityAlert, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	alert, ok := m.alerts[id]
	if !ok {
		return nil, false
	}
	copied := *alert
	return &copied, true
}

// Open returns copies of all unresolved alerts in creation order.
func (m *AlertManager) Open() []*types.QualityAlert {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var open []*types.QualityAlert
	for _, id := range m.order {
		if alert := m.alerts[id]; !alert.Resolved {
			copied := *alert
			open = append(open, &copied)
		}
	}
	return open
}

// Recent returns copies of the n most recently created alerts, newest first.
func (m *AlertManager) Recent(n int) []*types.QualityAlert {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if n <= 0 || len(m.order) == 0 {
		return nil
	}
	start := len(m.order) - n
	if start < 0 {
		start = 0
	}

	var recent []*types.QualityAlert
	for i := len(m.order) - 1; i >= start; i-- {
		copied := *m.alerts[m.order[i]]
		recent = append(recent, &copied)
	}
	return recent
}

// CriticalCount returns the number of open critical alerts.
func (m *AlertManager) CriticalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, alert := range m.alerts {
		if alert.Severity == types.SeverityCritical && !alert.Resolved {
			count++
		}
	}
	return count
}

func ratio(events []types.MetricEvent, pred func(types.MetricEvent) bool) float64 {
	if len(events) == 0 {
		return 0
	}
	n := 0
	for _, e := range events {
		if pred(e) {
			n++
		}
	}
	return float64(n) / float64(len(events))
}

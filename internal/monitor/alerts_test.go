package monitor

import (
	"testing"

	"github.com/slopwatch/slopwatch/internal/types"
)

func TestRecordImmediate_FiresBelowCutoff(t *testing.T) {
	m := NewAlertManager(DefaultAlertThresholds())

	alert := m.RecordImmediate(event("a", 0.2))
	if alert == nil {
		t.Fatal("expected an immediate alert for a sub-critical score")
	}
	if alert.Severity != types.SeverityCritical {
		t.Errorf("severity = %s, want critical", alert.Severity)
	}
	if alert.MetricType != types.MetricQualityScore {
		t.Errorf("metric = %s, want quality_score", alert.MetricType)
	}
}

func TestRecordImmediate_NotAtOrAboveCutoff(t *testing.T) {
	m := NewAlertManager(DefaultAlertThresholds())

	if m.RecordImmediate(event("a", 0.3)) != nil {
		t.Error("score exactly at the cutoff should not alert")
	}
	if m.RecordImmediate(event("a", 0.8)) != nil {
		t.Error("healthy score should not alert")
	}
}

func TestRecordImmediate_RateLimitedPerProducer(t *testing.T) {
	m := NewAlertManager(DefaultAlertThresholds())

	// A burst of failing events from one producer yields a single alert.
	fired := 0
	for i := 0; i < 20; i++ {
		if m.RecordImmediate(event("flooder", 0.1)) != nil {
			fired++
		}
	}
	if fired != 1 {
		t.Errorf("burst fired %d alerts, want 1", fired)
	}

	// A different producer has its own limiter.
	if m.RecordImmediate(event("other", 0.1)) == nil {
		t.Error("second producer should not share the first producer's limiter")
	}
}

func TestCheck_PicksHighestCrossedSeverity(t *testing.T) {
	m := NewAlertManager(DefaultAlertThresholds())

	// Average 0.25 is below warning, error, and critical bounds: only one
	// critical alert fires, not three.
	events := eventsWithScores("a", 0.25, 0.25, 0.25, 0.25)
	var qualityAlerts []*types.QualityAlert
	for _, alert := range m.Check("a", events) {
		if alert.MetricType == types.MetricQualityScore {
			qualityAlerts = append(qualityAlerts, alert)
		}
	}
	if len(qualityAlerts) != 1 {
		t.Fatalf("got %d quality alerts, want 1", len(qualityAlerts))
	}
	if qualityAlerts[0].Severity != types.SeverityCritical {
		t.Errorf("severity = %s, want critical (not warning)", qualityAlerts[0].Severity)
	}
}

func TestCheck_WarningBand(t *testing.T) {
	m := NewAlertManager(DefaultAlertThresholds())

	// Average 0.5 crosses the warning bound only.
	events := eventsWithScores("a", 0.5, 0.5, 0.5, 0.5)
	alerts := m.Check("a", events)

	var quality *types.QualityAlert
	for _, alert := range alerts {
		if alert.MetricType == types.MetricQualityScore {
			quality = alert
		}
	}
	if quality == nil {
		t.Fatal("expected a quality alert")
	}
	if quality.Severity != types.SeverityWarning {
		t.Errorf("severity = %s, want warning", quality.Severity)
	}
}

func TestCheck_SlopRate(t *testing.T) {
	m := NewAlertManager(DefaultAlertThresholds())

	// Half the events are slop (poor or unacceptable): crosses the 0.35
	// error bound but not the 0.5 critical bound.
	events := eventsWithScores("a", 0.9, 0.9, 0.2, 0.2)
	var slop *types.QualityAlert
	for _, alert := range m.Check("a", events) {
		if alert.MetricType == types.MetricSlopRate {
			slop = alert
		}
	}
	if slop == nil {
		t.Fatal("expected a slop-rate alert")
	}
	if slop.Severity != types.SeverityError {
		t.Errorf("severity = %s, want error", slop.Severity)
	}
}

func TestCheck_RetryRate(t *testing.T) {
	m := NewAlertManager(DefaultAlertThresholds())

	events := eventsWithScores("a", 0.9, 0.9, 0.9, 0.9)
	for i := range events {
		events[i].RetrySuggested = true
	}
	var retry *types.QualityAlert
	for _, alert := range m.Check("a", events) {
		if alert.MetricType == types.MetricRetryRate {
			retry = alert
		}
	}
	if retry == nil {
		t.Fatal("expected a retry-rate alert")
	}
	if retry.Severity != types.SeverityCritical {
		t.Errorf("severity = %s, want critical for rate 1.0", retry.Severity)
	}
}

func TestCheck_HealthyProducerRaisesNothing(t *testing.T) {
	m := NewAlertManager(DefaultAlertThresholds())
	if alerts := m.Check("a", eventsWithScores("a", 0.9, 0.8, 0.85, 0.9)); len(alerts) != 0 {
		t.Errorf("healthy producer raised %d alerts: %+v", len(alerts), alerts)
	}
	if alerts := m.Check("a", nil); alerts != nil {
		t.Errorf("empty window raised alerts: %+v", alerts)
	}
}

func TestAlertLifecycle(t *testing.T) {
	m := NewAlertManager(DefaultAlertThresholds())
	alert := m.RecordImmediate(event("a", 0.1))
	if alert == nil {
		t.Fatal("expected an alert")
	}

	if !m.Acknowledge(alert.ID) {
		t.Error("acknowledging a known alert should succeed")
	}
	if m.Acknowledge("nope") {
		t.Error("acknowledging an unknown id should return false")
	}

	got, ok := m.Get(alert.ID)
	if !ok || !got.Acknowledged {
		t.Error("acknowledgement should be visible on read")
	}

	if m.CriticalCount() != 1 {
		t.Errorf("critical count = %d, want 1 while unresolved", m.CriticalCount())
	}
	if len(m.Open()) != 1 {
		t.Errorf("open = %d, want 1", len(m.Open()))
	}

	if !m.Resolve(alert.ID) {
		t.Error("resolving a known alert should succeed")
	}
	if !m.Resolve(alert.ID) {
		t.Error("resolving twice should stay true (idempotent)")
	}
	if m.Resolve("nope") {
		t.Error("resolving an unknown id should return false")
	}

	if len(m.Open()) != 0 {
		t.Error("resolved alerts should leave the open set")
	}
	if m.CriticalCount() != 0 {
		t.Error("resolved critical alerts should not count")
	}
	if _, ok := m.Get(alert.ID); !ok {
		t.Error("resolved alerts remain readable as audit trail")
	}
}

func TestRecent_NewestFirst(t *testing.T) {
	m := NewAlertManager(DefaultAlertThresholds())
	first := m.RecordImmediate(event("a", 0.1))
	second := m.RecordImmediate(event("b", 0.1))

	recent := m.Recent(5)
	if len(recent) != 2 {
		t.Fatalf("recent = %d alerts, want 2", len(recent))
	}
	if recent[0].ID != second.ID || recent[1].ID != first.ID {
		t.Error("recent alerts should come newest first")
	}

	if got := m.Recent(1); len(got) != 1 || got[0].ID != second.ID {
		t.Error("Recent(1) should return only the newest alert")
	}
}

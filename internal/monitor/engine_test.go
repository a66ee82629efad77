package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/slopwatch/slopwatch/internal/types"
)

// memorySink collects persisted records for assertions.
type memorySink struct {
	mu       sync.Mutex
	events   []types.MetricEvent
	profiles []types.AgentQualityProfile
	alerts   []types.QualityAlert
}

func (s *memorySink) StoreMetricEvent(_ context.Context, e *types.MetricEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *e)
	return nil
}

func (s *memorySink) StoreAgentProfile(_ context.Context, p *types.AgentQualityProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = append(s.profiles, *p)
	return nil
}

func (s *memorySink) StoreAlert(_ context.Context, a *types.QualityAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, *a)
	return nil
}

type captureBroadcaster struct {
	mu      sync.Mutex
	results []*CycleResult
	subs    [][]string
}

func (b *captureBroadcaster) Broadcast(_ context.Context, subscribers []string, result *CycleResult) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.results = append(b.results, result)
	b.subs = append(b.subs, subscribers)
	return nil
}

func TestEngine_RecordValidates(t *testing.T) {
	e := NewEngine(nil)

	if err := e.Record(event("a", 0.8)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := e.Record(types.MetricEvent{ProducerID: "", Category: types.CategoryGeneral}); err == nil {
		t.Error("event without producer should be rejected")
	}
	if e.Recorder().TotalLen() != 1 {
		t.Errorf("buffered = %d, want only the valid event", e.Recorder().TotalLen())
	}
}

func TestEngine_RecordRaisesImmediateCritical(t *testing.T) {
	e := NewEngine(nil)

	for i := 0; i < 20; i++ {
		if err := e.Record(event("degraded", 0.1)); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	// The burst is rate-limited to a single critical alert.
	if got := e.Alerts().CriticalCount(); got != 1 {
		t.Errorf("critical count = %d, want 1", got)
	}
}

func TestEngine_StartStopLifecycle(t *testing.T) {
	e := NewEngine(nil)

	if e.Running() {
		t.Fatal("new engine should be stopped")
	}

	e.Start(context.Background(), 50*time.Millisecond)
	if !e.Running() {
		t.Fatal("engine should be running after Start")
	}

	// Starting again is a no-op, and stopping twice is safe.
	e.Start(context.Background(), time.Second)
	e.Stop()
	if e.Running() {
		t.Error("engine should be stopped after Stop")
	}
	e.Stop()
}

func TestEngine_RunCycle(t *testing.T) {
	sink := &memorySink{}
	caster := &captureBroadcaster{}
	e := NewEngine(&EngineDeps{Sink: sink, Broadcaster: caster})
	e.Subscribe("dash-1")

	for _, score := range []float64{0.8, 0.8, 0.4, 0.4} {
		if err := e.Record(event("a", score)); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	if err := e.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	trend, ok := e.Trend("a")
	if !ok {
		t.Fatal("expected a computed trend")
	}
	if trend.Direction != types.TrendDegrading {
		t.Errorf("direction = %s, want degrading", trend.Direction)
	}

	profile, ok := e.Profile("a")
	if !ok {
		t.Fatal("expected a profile rollup")
	}
	if profile.RequestCount != 4 {
		t.Errorf("request count = %d, want 4", profile.RequestCount)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.events) != 4 {
		t.Errorf("persisted events = %d, want 4", len(sink.events))
	}
	if len(sink.profiles) != 1 {
		t.Errorf("persisted profiles = %d, want 1", len(sink.profiles))
	}

	caster.mu.Lock()
	defer caster.mu.Unlock()
	if len(caster.results) != 1 {
		t.Fatalf("broadcasts = %d, want 1", len(caster.results))
	}
	if len(caster.subs[0]) != 1 || caster.subs[0][0] != "dash-1" {
		t.Errorf("subscribers = %v, want [dash-1]", caster.subs[0])
	}
}

func TestEngine_PendingPersistedOnce(t *testing.T) {
	sink := &memorySink{}
	e := NewEngine(&EngineDeps{Sink: sink})

	_ = e.Record(event("a", 0.8))
	_ = e.RunCycle(context.Background())
	_ = e.RunCycle(context.Background())

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.events) != 1 {
		t.Errorf("persisted events = %d, want exactly 1 across cycles", len(sink.events))
	}
}

func TestEngine_SinklessCycleDrainsPending(t *testing.T) {
	e := NewEngine(&EngineDeps{BufferCapacity: 10})

	for i := 0; i < 100; i++ {
		_ = e.Record(event("a", 0.8))
	}
	_ = e.RunCycle(context.Background())

	for i := 0; i < 100; i++ {
		_ = e.Record(event("a", 0.8))
	}
	_ = e.RunCycle(context.Background())

	// The ring stays capped and the pending queue must not outlive the
	// cycle that observed it, even with nowhere to persist.
	if got := e.Recorder().TotalLen(); got != 10 {
		t.Errorf("buffered = %d, want the ring capacity 10", got)
	}
	if got := e.Recorder().PendingLen(); got != 0 {
		t.Errorf("pending after cycle = %d, want 0", got)
	}
}

func TestEngine_SubscribeUnsubscribe(t *testing.T) {
	e := NewEngine(nil)

	e.Subscribe("s1")
	e.Subscribe("s2")
	e.Subscribe("s1") // duplicate registration collapses
	if got := e.Subscribers(); len(got) != 2 {
		t.Errorf("subscribers = %v, want 2", got)
	}

	e.Unsubscribe("s1")
	e.Unsubscribe("missing")
	got := e.Subscribers()
	if len(got) != 1 || got[0] != "s2" {
		t.Errorf("subscribers = %v, want [s2]", got)
	}
}

func TestEngine_Dashboard(t *testing.T) {
	e := NewEngine(nil)

	for _, score := range []float64{0.9, 0.9} {
		_ = e.Record(event("good", score))
	}
	for _, score := range []float64{0.4, 0.4} {
		_ = e.Record(event("bad", score))
	}
	_ = e.RunCycle(context.Background())

	snap := e.Dashboard(1, 5)
	if snap.TotalEvents != 4 {
		t.Errorf("total events = %d, want 4", snap.TotalEvents)
	}
	if len(snap.TopProducers) != 1 {
		t.Fatalf("top producers = %d, want clipped to 1", len(snap.TopProducers))
	}
	if snap.TopProducers[0].ProducerID != "good" {
		t.Errorf("top producer = %s, want the highest average first", snap.TopProducers[0].ProducerID)
	}
	if snap.LevelHistogram[types.QualityExcellent] != 2 || snap.LevelHistogram[types.QualityPoor] != 2 {
		t.Errorf("histogram = %v", snap.LevelHistogram)
	}
}

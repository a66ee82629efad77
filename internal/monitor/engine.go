package monitor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/slopwatch/slopwatch/internal/types"
)

// Sink receives flattened metric events and per-producer profile snapshots
// for external persistence. Implementations live outside this package; the
// SQLite store satisfies it.
type Sink interface {
	StoreMetricEvent(ctx context.Context, event *types.MetricEvent) error
	StoreAgentProfile(ctx context.Context, profile *types.AgentQualityProfile) error
	StoreAlert(ctx context.Context, alert *types.QualityAlert) error
}

// Broadcaster hands a cycle's results to a real-time transport. The engine
// only maintains the subscriber-id set; it does not open sockets itself.
type Broadcaster interface {
	Broadcast(ctx context.Context, subscribers []string, result *CycleResult) error
}

// CycleResult is what one monitoring cycle produced.
type CycleResult struct {
	At     time.Time
	Trends map[string]*types.QualityTrend
	Alerts []*types.QualityAlert
}

// Engine is the root of the monitoring pipeline: a cancellable periodic
// task driving trend analysis, alert checks, profile rollups, broadcast,
// and persistence. It owns all mutable monitoring state, so independent
// engines can coexist in tests.
type Engine struct {
	mu sync.RWMutex

	recorder *Recorder
	alerts   *AlertManager
	sink     Sink
	caster   Broadcaster

	subscribers map[string]struct{}
	trends      map[string]*types.QualityTrend
	profiles    map[string]*types.AgentQualityProfile

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// EngineDeps holds engine construction dependencies. Sink and Broadcaster
// are optional; persistence and broadcast degrade to no-ops without them.
type EngineDeps struct {
	BufferCapacity  int
	AlertThresholds AlertThresholds
	Sink            Sink
	Broadcaster     Broadcaster
}

// NewEngine creates a stopped monitoring engine.
func NewEngine(deps *EngineDeps) *Engine {
	if deps == nil {
		deps = &EngineDeps{}
	}
	thresholds := deps.AlertThresholds
	if thresholds == (AlertThresholds{}) {
		thresholds = DefaultAlertThresholds()
	}
	return &Engine{
		recorder:    NewRecorder(deps.BufferCapacity),
		alerts:      NewAlertManager(thresholds),
		sink:        deps.Sink,
		caster:      deps.Broadcaster,
		subscribers: make(map[string]struct{}),
		trends:      make(map[string]*types.QualityTrend),
		profiles:    make(map[string]*types.AgentQualityProfile),
	}
}

// Record implements the gate's Recorder: it buffers the event and runs the
// immediate critical-alert check. Single sub-critical events must not wait
// for the next polling interval.
func (e *Engine) Record(event types.MetricEvent) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid metric event: %w", err)
	}
	e.recorder.Append(event)
	e.alerts.RecordImmediate(event)
	return nil
}

// Start transitions the engine to running and begins the periodic cycle.
// Starting an already-running engine is a no-op.
func (e *Engine) Start(ctx context.Context, interval time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}

	e.ctx, e.cancel = context.WithCancel(ctx)
	e.running = true

	e.wg.Add(1)
	go e.loop(interval)

	fmt.Printf("Engine: started (interval=%v)\n", interval)
}

// Stop cancels the periodic task and waits for any in-flight cycle to
// unwind. No cycle observes post-stop state after Stop returns.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.cancel()
	e.running = false
	e.mu.Unlock()

	e.wg.Wait()
	fmt.Println("Engine: stopped")
}

// Running reports whether the periodic task is active.
func (e *Engine) Running() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.running
}

func (e *Engine) loop(interval time.Duration) {
	defer e.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-e.ctx.Done():
			return
		case <-ticker.C:
			cycleCtx, cancel := context.WithTimeout(e.ctx, interval)
			if err := e.RunCycle(cycleCtx); err != nil {
				fmt.Printf("Engine: cycle failed: %v\n", err)
			}
			cancel()
		}
	}
}

// RunCycle executes one monitoring cycle: trends, alert checks, profile
// rollups, broadcast, then persistence. Step failures are collected and
// logged; a partial failure never aborts the remaining steps.
func (e *Engine) RunCycle(ctx context.Context) error {
	result := &CycleResult{
		At:     time.Now(),
		Trends: make(map[string]*types.QualityTrend),
	}

	producers := e.recorder.Producers()
	newProfiles := make(map[string]*types.AgentQualityProfile, len(producers))

	for _, producer := range producers {
		events := e.recorder.Events(producer)

		if trend := AnalyzeTrend(producer, events, "cycle"); trend != nil {
			result.Trends[producer] = trend
		}
		result.Alerts = append(result.Alerts, e.alerts.Check(producer, events)...)
		newProfiles[producer] = BuildAgentProfile(producer, events)
	}

	e.mu.Lock()
	for producer, trend := range result.Trends {
		e.trends[producer] = trend
	}
	e.profiles = newProfiles
	subscribers := make([]string, 0, len(e.subscribers))
	for id := range e.subscribers {
		subscribers = append(subscribers, id)
	}
	e.mu.Unlock()

	if e.caster != nil && len(subscribers) > 0 {
		if err := e.caster.Broadcast(ctx, subscribers, result); err != nil {
			fmt.Printf("warning: broadcast failed: %v\n", err)
		}
	}

	if err := e.persist(ctx, newProfiles, result.Alerts); err != nil {
		fmt.Printf("warning: persistence failed: %v\n", err)
	}

	return nil
}

// persist writes pending events, profile snapshots, and new alerts to the
// sink. Events and profiles flush concurrently; the sink is expected to be
// safe for concurrent writes. The pending queue is drained even without a
// sink so a sinkless engine stays bounded by its ring buffers.
func (e *Engine) persist(ctx context.Context, profiles map[string]*types.AgentQualityProfile, alerts []*types.QualityAlert) error {
	pending := e.recorder.TakePending()
	if e.sink == nil {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for i := range pending {
			if err := e.sink.StoreMetricEvent(gctx, &pending[i]); err != nil {
				return fmt.Errorf("failed to persist event %s: %w", pending[i].ID, err)
			}
		}
		return nil
	})
	g.Go(func() error {
		for _, profile := range profiles {
			if err := e.sink.StoreAgentProfile(gctx, profile); err != nil {
				return fmt.Errorf("failed to persist profile for %s: %w", profile.ProducerID, err)
			}
		}
		for _, alert := range alerts {
			if err := e.sink.StoreAlert(gctx, alert); err != nil {
				return fmt.Errorf("failed to persist alert %s: %w", alert.ID, err)
			}
		}
		return nil
	})
	return g.Wait()
}

// Subscribe registers a subscriber id to receive cycle results.
func (e *Engine) Subscribe(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subscribers[id] = struct{}{}
}

// Unsubscribe removes a subscriber id. Unknown ids are a no-op.
func (e *Engine) Unsubscribe(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.subscribers, id)
}

// Subscribers returns the registered subscriber ids.
func (e *Engine) Subscribers() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ids := make([]string, 0, len(e.subscribers))
	for id := range e.subscribers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Alerts exposes the alert manager for lifecycle operations.
func (e *Engine) Alerts() *AlertManager {
	return e.alerts
}

// Recorder exposes the event buffer, mainly for tests and the dashboard.
func (e *Engine) Recorder() *Recorder {
	return e.recorder
}

// Trend returns the latest computed trend for a producer, if any.
func (e *Engine) Trend(producerID string) (*types.QualityTrend, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, ok := e.trends[producerID]
	return t, ok
}

// Profile returns the latest rollup for a producer, if any.
func (e *Engine) Profile(producerID string) (*types.AgentQualityProfile, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.profiles[producerID]
	return p, ok
}

// Dashboard assembles the single read model for dashboard consumers: overall
// stats, top-N producers by average score, recent alerts, and the
// quality-level histogram.
func (e *Engine) Dashboard(topN, recentAlerts int) *types.DashboardSnapshot {
	snapshot := &types.DashboardSnapshot{
		GeneratedAt:    time.Now(),
		LevelHistogram: make(map[types.QualityLevel]int),
		OpenAlerts:     len(e.alerts.Open()),
		CriticalAlerts: e.alerts.CriticalCount(),
		RecentAlerts:   e.alerts.Recent(recentAlerts),
	}

	sum := 0.0
	var producers []*types.AgentQualityProfile
	for _, producer := range e.recorder.Producers() {
		events := e.recorder.Events(producer)
		snapshot.TotalEvents += len(events)
		for _, ev := range events {
			sum += ev.OverallScore
			snapshot.LevelHistogram[ev.QualityLevel]++
		}

		e.mu.RLock()
		profile, ok := e.profiles[producer]
		e.mu.RUnlock()
		if !ok {
			profile = BuildAgentProfile(producer, events)
		}
		producers = append(producers, profile)
	}

	if snapshot.TotalEvents > 0 {
		snapshot.AverageScore = sum / float64(snapshot.TotalEvents)
	}

	sort.Slice(producers, func(i, j int) bool {
		return producers[i].AverageScore > producers[j].AverageScore
	})
	if topN > 0 && len(producers) > topN {
		producers = producers[:topN]
	}
	snapshot.TopProducers = producers

	return snapshot
}

// Package monitor ingests every verdict emitted by the quality gate, rolls
// it into per-producer profiles and trends, and raises alerts when
// thresholds are crossed.
package monitor

import (
	"sync"

	"github.com/slopwatch/slopwatch/internal/types"
)

// Recorder accumulates metric events in fixed-capacity per-producer ring
// buffers. When a producer's buffer is full the oldest event is evicted.
type Recorder struct {
	mu       sync.RWMutex
	capacity int
	buffers  map[string][]types.MetricEvent

	// pending holds events not yet drained for persistence
	pending []types.MetricEvent
}

// DefaultBufferCapacity is the per-producer ring size when unconfigured.
const DefaultBufferCapacity = 500

// NewRecorder creates a recorder with the given per-producer capacity.
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	return &Recorder{
		capacity: capacity,
		buffers:  make(map[string][]types.MetricEvent),
	}
}

// Append stores the event in its producer's ring buffer. Events land in
// call-completion order, not call-start order: two concurrent validations
// may append in either order.
func (r *Recorder) Append(event types.MetricEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	buf := append(r.buffers[event.ProducerID], event)
	if len(buf) > r.capacity {
		copy(buf, buf[len(buf)-r.capacity:])
		buf = buf[:r.capacity]
	}
	r.buffers[event.ProducerID] = buf

	r.pending = append(r.pending, event)
}

// Events returns a copy of the producer's buffered events, oldest first.
func (r *Recorder) Events(producerID string) []types.MetricEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	buf := r.buffers[producerID]
	if len(buf) == 0 {
		return nil
	}
	out := make([]types.MetricEvent, len(buf))
	copy(out, buf)
	return out
}

// Producers returns every producer id with buffered events.
func (r *Recorder) Producers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.buffers))
	for id := range r.buffers {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of buffered events for one producer.
func (r *Recorder) Len(producerID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.buffers[producerID])
}

// TotalLen returns the number of buffered events across all producers.
func (r *Recorder) TotalLen() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, buf := range r.buffers {
		total += len(buf)
	}
	return total
}

// PendingLen returns the number of events awaiting a drain.
func (r *Recorder) PendingLen() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pending)
}

// TakePending drains and returns events appended since the last drain.
// The monitoring cycle uses this to persist each event exactly once.
func (r *Recorder) TakePending() []types.MetricEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.pending) == 0 {
		return nil
	}
	out := r.pending
	r.pending = nil
	return out
}

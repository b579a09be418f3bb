// Package monitor tracks rolling health, latency, and success-rate metrics
// per backend instance. Pure bookkeeping: it performs no I/O of its own
// except through the optional background prober.
package monitor

import (
	"sync"
	"time"

	"github.com/carohq/cmdai/internal/domain"
)

// Monitor owns all mutable health state shared across pipeline runs.
// Single-writer-many-reader snapshot semantics: readers never block
// writers and never observe a torn update. Snapshot reads without an
// intervening RecordOutcome return identical values.
type Monitor struct {
	mu         sync.RWMutex
	windows    map[string]*window
	windowSize int
	now        func() time.Time
}

type window struct {
	samples   []sample
	next      int
	count     int
	available bool
	probed    bool
	inFlight  int
	lastCheck time.Time
}

type sample struct {
	latency time.Duration
	success bool
}

// New creates a monitor with the given ring-buffer size per backend.
// Size <= 0 falls back to the documented default.
func New(windowSize int) *Monitor {
	if windowSize <= 0 {
		windowSize = domain.DefaultMonitorWindow
	}
	return &Monitor{
		windows:    make(map[string]*window),
		windowSize: windowSize,
		now:        time.Now,
	}
}

func (m *Monitor) windowFor(backend string) *window {
	w, ok := m.windows[backend]
	if !ok {
		w = &window{
			samples:   make([]sample, m.windowSize),
			available: true,
		}
		m.windows[backend] = w
	}
	return w
}

// RecordAttempt notes that a selection decision committed a request to the
// backend. Balanced later by RecordOutcome.
func (m *Monitor) RecordAttempt(backend string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windowFor(backend).inFlight++
}

// RecordOutcome appends one observation to the backend's ring buffer,
// evicting the oldest when full. Never fails.
func (m *Monitor) RecordOutcome(backend string, latency time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w := m.windowFor(backend)
	w.samples[w.next] = sample{latency: latency, success: success}
	w.next = (w.next + 1) % m.windowSize
	if w.count < m.windowSize {
		w.count++
	}
	if w.inFlight > 0 {
		w.inFlight--
	}
	// A real outcome is fresher than any probe result.
	if success {
		w.available = true
	}
	w.lastCheck = m.now()
}

// MarkAvailability records a probe result without adding a latency sample.
func (m *Monitor) MarkAvailability(backend string, available bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w := m.windowFor(backend)
	w.available = available
	w.probed = true
	w.lastCheck = m.now()
}

// Snapshot returns a read-only copy of the backend's rolling metrics.
// Never-seen backends get an optimistic default so they stay eligible
// for selection.
func (m *Monitor) Snapshot(backend string) domain.HealthSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, ok := m.windows[backend]
	if !ok {
		return domain.OptimisticSnapshot(backend)
	}
	return w.snapshot(backend)
}

// SnapshotAll returns copies for every backend the monitor has seen.
func (m *Monitor) SnapshotAll() map[string]domain.HealthSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]domain.HealthSnapshot, len(m.windows))
	for name, w := range m.windows {
		out[name] = w.snapshot(name)
	}
	return out
}

func (w *window) snapshot(backend string) domain.HealthSnapshot {
	snap := domain.HealthSnapshot{
		Backend:   backend,
		Available: w.available,
		InFlight:  w.inFlight,
		Samples:   w.count,
		LastCheck: w.lastCheck,
	}
	if w.count == 0 {
		// Probed but never exercised: keep the optimistic success rate.
		snap.SuccessRate = 1.0
		return snap
	}

	var total time.Duration
	successes := 0
	for i := 0; i < w.count; i++ {
		s := w.samples[i]
		total += s.latency
		if s.success {
			successes++
		}
	}
	snap.AvgLatency = total / time.Duration(w.count)
	snap.SuccessRate = float64(successes) / float64(w.count)
	return snap
}

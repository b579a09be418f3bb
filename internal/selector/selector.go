// Package selector chooses which backend instance serves a request, using
// performance-monitor data, the configured preference, and a fallback chain.
package selector

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/carohq/cmdai/internal/domain"
	"github.com/carohq/cmdai/internal/monitor"
)

// Selector ranks configured backends by a weighted health score. It is
// pure and non-blocking: all inputs come from descriptors and monitor
// snapshots.
type Selector struct {
	descriptors []domain.BackendDescriptor
	monitor     *monitor.Monitor
	weights     domain.SelectionWeights
	floor       float64
}

// New builds a selector over the configured backend roster.
func New(descriptors []domain.BackendDescriptor, m *monitor.Monitor, settings domain.SelectionSettings) *Selector {
	weights := settings.Weights
	if weights == (domain.SelectionWeights{}) {
		weights = domain.DefaultSelectionWeights()
	}
	floor := settings.SuccessRateFloor
	if floor == 0 {
		floor = domain.DefaultSuccessRateFloor
	}
	return &Selector{
		descriptors: descriptors,
		monitor:     m,
		weights:     weights,
		floor:       floor,
	}
}

type scored struct {
	descriptor domain.BackendDescriptor
	snapshot   domain.HealthSnapshot
	score      float64
}

// Select ranks healthy candidates and returns the top choice plus the
// ordered fallback chain. Backends named in exclude (failed earlier in the
// same run) are skipped. Each decision is reported to the monitor as an
// attempt; success or failure is recorded later by the orchestrator.
// Fails with domain.ErrNoBackendAvailable when every candidate is
// unavailable or excluded.
func (s *Selector) Select(exclude map[string]bool, preferred string) (domain.SelectionResult, error) {
	candidates := make([]scored, 0, len(s.descriptors))
	for _, desc := range s.descriptors {
		if exclude[desc.Name] {
			continue
		}
		snap := s.monitor.Snapshot(desc.Name)
		if !snap.Available {
			continue
		}
		if snap.Samples > 0 && snap.SuccessRate < s.floor {
			continue
		}
		candidates = append(candidates, scored{descriptor: desc, snapshot: snap})
	}
	if len(candidates) == 0 {
		return domain.SelectionResult{}, fmt.Errorf("select backend: %w", domain.ErrNoBackendAvailable)
	}

	s.rank(candidates, preferred)

	top := candidates[0]
	chain := make([]string, 0, len(candidates)-1)
	for _, c := range candidates[1:] {
		chain = append(chain, c.descriptor.Name)
	}

	result := domain.SelectionResult{
		Backend:          top.descriptor.Name,
		Reason:           s.reasonFor(top, preferred, len(s.descriptors)-len(candidates)),
		FallbackChain:    chain,
		EstimatedLatency: estimateLatency(top.snapshot),
	}
	s.monitor.RecordAttempt(top.descriptor.Name)
	return result, nil
}

// rank orders candidates best-first. A matching preferred backend always
// sorts to the front; the rest follow the weighted score.
func (s *Selector) rank(candidates []scored, preferred string) {
	maxLatency := time.Duration(0)
	for _, c := range candidates {
		if c.snapshot.AvgLatency > maxLatency {
			maxLatency = c.snapshot.AvgLatency
		}
	}
	for i := range candidates {
		candidates[i].score = s.score(candidates[i], maxLatency)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if preferred != "" {
			if candidates[i].descriptor.Name == preferred {
				return true
			}
			if candidates[j].descriptor.Name == preferred {
				return false
			}
		}
		return candidates[i].score > candidates[j].score
	})
}

func (s *Selector) score(c scored, maxLatency time.Duration) float64 {
	normalized := 0.0
	if maxLatency > 0 {
		normalized = float64(c.snapshot.AvgLatency) / float64(maxLatency)
	}
	return s.weights.Latency*(1-normalized) +
		s.weights.Success*c.snapshot.SuccessRate +
		s.weights.Priority*c.descriptor.Priority
}

func (s *Selector) reasonFor(top scored, preferred string, skipped int) string {
	var b strings.Builder
	if preferred == top.descriptor.Name {
		fmt.Fprintf(&b, "%s preferred by configuration", top.descriptor.Name)
	} else {
		fmt.Fprintf(&b, "%s ranked first (score %.2f, success %.0f%%, avg %s)",
			top.descriptor.Name, top.score, top.snapshot.SuccessRate*100, top.snapshot.AvgLatency)
	}
	if skipped > 0 {
		fmt.Fprintf(&b, "; %d backend(s) filtered as unavailable or excluded", skipped)
	}
	return b.String()
}

// estimateLatency reports the expected response time for the choice.
// Unexercised backends estimate one second rather than zero so deadline
// budgeting stays conservative.
func estimateLatency(snap domain.HealthSnapshot) time.Duration {
	if snap.AvgLatency > 0 {
		return snap.AvgLatency
	}
	return time.Second
}

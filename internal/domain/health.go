package domain

import "time"

// HealthSnapshot is a read-only copy of a backend's rolling metrics.
// It is owned by the performance monitor; callers always receive a copy
// and never observe a torn update.
type HealthSnapshot struct {
	Backend     string
	AvgLatency  time.Duration
	SuccessRate float64 // 0.0 to 1.0 over the sample window
	Available   bool
	InFlight    int
	Samples     int
	LastCheck   time.Time
}

// OptimisticSnapshot is the default returned for never-seen backends.
// Fresh backends are eligible for selection and ranked by configured
// priority until real observations arrive.
func OptimisticSnapshot(backend string) HealthSnapshot {
	return HealthSnapshot{
		Backend:     backend,
		SuccessRate: 1.0,
		Available:   true,
	}
}

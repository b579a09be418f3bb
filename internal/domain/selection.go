package domain

import "time"

// SelectionResult is the output of one selection decision. It is created
// fresh per request and never mutated after creation.
type SelectionResult struct {
	Backend          string
	Reason           string
	FallbackChain    []string
	EstimatedLatency time.Duration
}

// SelectionWeights tunes the backend ranking score:
//
//	score = Latency*(1-normalized_latency) + Success*success_rate + Priority*configured_priority
type SelectionWeights struct {
	Latency  float64 `yaml:"latency"`
	Success  float64 `yaml:"success"`
	Priority float64 `yaml:"priority"`
}

// DefaultSelectionWeights favors observed behavior over static preference.
func DefaultSelectionWeights() SelectionWeights {
	return SelectionWeights{Latency: 0.4, Success: 0.4, Priority: 0.2}
}

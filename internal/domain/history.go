package domain

import "time"

// HistoryRecord captures one completed pipeline run.
type HistoryRecord struct {
	RunID      string        `json:"run_id"`
	Timestamp  time.Time     `json:"timestamp"`
	Prompt     string        `json:"prompt"`
	Command    string        `json:"command"`
	Backend    string        `json:"backend"`
	RiskLevel  RiskLevel     `json:"risk_level"`
	Refused    bool          `json:"refused"`
	Executed   bool          `json:"executed"`
	ExitCode   int           `json:"exit_code"`
	Latency    time.Duration `json:"latency"`
	TokenCount int           `json:"token_count"`
}

// HistoryStats aggregates stored runs for the stats subcommand.
type HistoryStats struct {
	TotalRuns    int
	Executed     int
	Refused      int
	ByRiskLevel  map[RiskLevel]int
	ByBackend    map[string]int
	AvgLatency   time.Duration
	TotalTokens  int
	OldestRecord time.Time
}

package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/carohq/cmdai/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndRecordsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	records := []domain.HistoryRecord{
		{RunID: "r1", Timestamp: base, Prompt: "list files", Command: "ls -la", Backend: "ollama-local", RiskLevel: domain.RiskSafe, Executed: true, Latency: 120 * time.Millisecond, TokenCount: 30},
		{RunID: "r2", Timestamp: base.Add(time.Minute), Prompt: "clean everything", Command: "rm -rf /", Backend: "ollama-local", RiskLevel: domain.RiskCritical, Refused: true},
		{RunID: "r3", Timestamp: base.Add(2 * time.Minute), Prompt: "disk space", Command: "df -h", Backend: "offline", RiskLevel: domain.RiskSafe, Executed: true, ExitCode: 0, Latency: 5 * time.Millisecond, TokenCount: 8},
	}
	for _, rec := range records {
		if err := store.Save(rec); err != nil {
			t.Fatalf("saving %s: %v", rec.RunID, err)
		}
	}

	got, err := store.Records(0, "")
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	for i, wantID := range []string{"r3", "r2", "r1"} {
		if got[i].RunID != wantID {
			t.Fatalf("record %d: got %s, want %s", i, got[i].RunID, wantID)
		}
	}

	first := got[2]
	if first.Command != "ls -la" || first.RiskLevel != domain.RiskSafe || !first.Executed {
		t.Fatalf("round trip lost fields: %+v", first)
	}
	if first.Latency != 120*time.Millisecond {
		t.Fatalf("latency round trip: %s", first.Latency)
	}
	if !first.Timestamp.Equal(base) {
		t.Fatalf("timestamp round trip: %s", first.Timestamp)
	}
}

func TestRecordsLimitAndSearch(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, rec := range []domain.HistoryRecord{
		{RunID: "a", Prompt: "git status please", Command: "git status"},
		{RunID: "b", Prompt: "disk space", Command: "df -h"},
		{RunID: "c", Prompt: "show branches", Command: "git branch -a"},
	} {
		rec.Timestamp = base.Add(time.Duration(i) * time.Minute)
		if err := store.Save(rec); err != nil {
			t.Fatalf("saving: %v", err)
		}
	}

	limited, err := store.Records(2, "")
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(limited) != 2 || limited[0].RunID != "c" {
		t.Fatalf("limit not honored: %+v", limited)
	}

	matched, err := store.Records(0, "git")
	if err != nil {
		t.Fatalf("searching: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("expected 2 git records, got %d", len(matched))
	}
}

func TestSaveStampsMissingTimestamp(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save(domain.HistoryRecord{RunID: "x", Prompt: "p", Command: "c"}); err != nil {
		t.Fatalf("saving: %v", err)
	}
	got, err := store.Records(0, "")
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(got) != 1 || got[0].Timestamp.IsZero() {
		t.Fatalf("expected a stamped timestamp, got %+v", got)
	}
}

func TestStatsAggregation(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seed := []domain.HistoryRecord{
		{RunID: "a", Timestamp: base, Backend: "ollama-local", RiskLevel: domain.RiskSafe, Executed: true, Latency: 100 * time.Millisecond, TokenCount: 10},
		{RunID: "b", Timestamp: base.Add(time.Minute), Backend: "ollama-local", RiskLevel: domain.RiskCritical, Refused: true, Latency: 300 * time.Millisecond, TokenCount: 20},
		{RunID: "c", Timestamp: base.Add(2 * time.Minute), Backend: "offline", RiskLevel: domain.RiskSafe, Executed: true, Latency: 200 * time.Millisecond},
	}
	for _, rec := range seed {
		if err := store.Save(rec); err != nil {
			t.Fatalf("saving: %v", err)
		}
	}

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalRuns != 3 || stats.Executed != 2 || stats.Refused != 1 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.ByRiskLevel[domain.RiskSafe] != 2 || stats.ByRiskLevel[domain.RiskCritical] != 1 {
		t.Fatalf("unexpected risk breakdown: %+v", stats.ByRiskLevel)
	}
	if stats.ByBackend["ollama-local"] != 2 || stats.ByBackend["offline"] != 1 {
		t.Fatalf("unexpected backend breakdown: %+v", stats.ByBackend)
	}
	if stats.AvgLatency != 200*time.Millisecond {
		t.Fatalf("unexpected average latency %s", stats.AvgLatency)
	}
	if stats.TotalTokens != 30 {
		t.Fatalf("unexpected token total %d", stats.TotalTokens)
	}
	if !stats.OldestRecord.Equal(base) {
		t.Fatalf("unexpected oldest record %s", stats.OldestRecord)
	}
}

func TestClear(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save(domain.HistoryRecord{RunID: "a", Prompt: "p", Command: "c"}); err != nil {
		t.Fatalf("saving: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clearing: %v", err)
	}
	got, err := store.Records(0, "")
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected an empty table, got %d records", len(got))
	}
}

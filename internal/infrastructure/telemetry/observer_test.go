package telemetry

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/carohq/cmdai/internal/domain"
)

type recordingRepo struct {
	saved []domain.HistoryRecord
}

func (r *recordingRepo) Save(record domain.HistoryRecord) error {
	r.saved = append(r.saved, record)
	return nil
}

func (r *recordingRepo) Records(int, string) ([]domain.HistoryRecord, error) {
	return r.saved, nil
}

func (r *recordingRepo) Stats() (domain.HistoryStats, error) { return domain.HistoryStats{}, nil }
func (r *recordingRepo) Clear() error                        { r.saved = nil; return nil }

func TestHistoryObserverPersistsFailedRuns(t *testing.T) {
	repo := &recordingRepo{}
	observer := NewHistoryObserver(repo, nil)
	stamp := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	observer.Observe(domain.TelemetryEvent{
		Kind:      domain.TelemetryOutcome,
		RunID:     "run-1",
		Backend:   "ollama-local",
		Timestamp: stamp,
		Fields: map[string]interface{}{
			"failure": "unsafe",
			"prompt":  "clean everything",
			"command": "rm -rf /",
			"risk":    "critical",
			"refused": true,
			"latency": int64(250),
			"tokens":  int64(40),
		},
	})

	if len(repo.saved) != 1 {
		t.Fatalf("expected one saved record, got %d", len(repo.saved))
	}
	want := domain.HistoryRecord{
		RunID:      "run-1",
		Timestamp:  stamp,
		Prompt:     "clean everything",
		Command:    "rm -rf /",
		Backend:    "ollama-local",
		RiskLevel:  domain.RiskCritical,
		Refused:    true,
		Latency:    250 * time.Millisecond,
		TokenCount: 40,
	}
	if diff := cmp.Diff(want, repo.saved[0]); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestHistoryObserverSkipsSuccessfulOutcomes(t *testing.T) {
	repo := &recordingRepo{}
	observer := NewHistoryObserver(repo, nil)

	// Successful runs are persisted by the CLI once the execute decision
	// is made, so a clean outcome must not produce a record here.
	observer.Observe(domain.TelemetryEvent{
		Kind:    domain.TelemetryOutcome,
		RunID:   "run-2",
		Backend: "ollama-local",
		Fields:  map[string]interface{}{"failure": "", "command": "ls"},
	})
	if len(repo.saved) != 0 {
		t.Fatalf("successful outcomes must not be saved, got %d records", len(repo.saved))
	}
}

func TestHistoryObserverIgnoresNonOutcomeEvents(t *testing.T) {
	repo := &recordingRepo{}
	observer := NewHistoryObserver(repo, nil)

	for _, kind := range []domain.TelemetryKind{domain.TelemetrySelection, domain.TelemetryGeneration, domain.TelemetryValidation} {
		observer.Observe(domain.TelemetryEvent{
			Kind:   kind,
			RunID:  "run-3",
			Fields: map[string]interface{}{"failure": "no_command"},
		})
	}
	if len(repo.saved) != 0 {
		t.Fatalf("only outcomes may be persisted, got %d records", len(repo.saved))
	}
}

type countingObserver struct{ seen int }

func (o *countingObserver) Observe(domain.TelemetryEvent) { o.seen++ }

func TestMultiObserverFansOut(t *testing.T) {
	a := &countingObserver{}
	b := &countingObserver{}
	multi := MultiObserver{a, nil, NopObserver{}, b}

	multi.Observe(domain.TelemetryEvent{Kind: domain.TelemetryOutcome})
	multi.Observe(domain.TelemetryEvent{Kind: domain.TelemetrySelection})

	if a.seen != 2 || b.seen != 2 {
		t.Fatalf("fan-out broken: a=%d b=%d", a.seen, b.seen)
	}
}

func TestFieldHelpers(t *testing.T) {
	fields := map[string]interface{}{
		"s":     "text",
		"b":     true,
		"i":     7,
		"i64":   int64(8),
		"f64":   9.0,
		"wrong": struct{}{},
	}
	if got := stringField(fields, "s"); got != "text" {
		t.Fatalf("stringField: %q", got)
	}
	if stringField(fields, "missing") != "" || stringField(fields, "b") != "" {
		t.Fatal("stringField must default to empty")
	}
	if !boolField(fields, "b") || boolField(fields, "s") {
		t.Fatal("boolField mismatch")
	}
	for key, want := range map[string]int64{"i": 7, "i64": 8, "f64": 9, "wrong": 0, "missing": 0} {
		if got := int64Field(fields, key); got != want {
			t.Fatalf("int64Field(%q) = %d, want %d", key, got, want)
		}
	}
}

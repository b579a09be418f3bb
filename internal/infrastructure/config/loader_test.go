package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/carohq/cmdai/internal/domain"
)

func TestLoadWritesDefaultFileOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("CMDAI_CONFIG", path)

	cfg, err := NewFileLoader("").Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("default config was not materialized: %v", err)
	}
	if perm := info.Mode().Perm(); perm != domain.SecureFilePermissions {
		t.Fatalf("unexpected permissions %v", perm)
	}

	if len(cfg.Backends) == 0 {
		t.Fatal("default config must define a backend roster")
	}
	w := cfg.Selection.Weights
	if w.Latency != 0.4 || w.Success != 0.4 || w.Priority != 0.2 {
		t.Fatalf("unexpected selection weights %+v", w)
	}
	if cfg.Selection.SuccessRateFloor != 0.5 {
		t.Fatalf("unexpected success floor %v", cfg.Selection.SuccessRateFloor)
	}
	if cfg.Generation.DefaultDeadline != 5*time.Second {
		t.Fatalf("unexpected deadline %s", cfg.Generation.DefaultDeadline)
	}
	if cfg.Generation.GracePeriod != 2*time.Second {
		t.Fatalf("unexpected grace period %s", cfg.Generation.GracePeriod)
	}
	if cfg.Monitor.WindowSize != 50 {
		t.Fatalf("unexpected window size %d", cfg.Monitor.WindowSize)
	}
	if cfg.Monitor.ProbeInterval != 30*time.Second {
		t.Fatalf("unexpected probe interval %s", cfg.Monitor.ProbeInterval)
	}
	if !cfg.Safety.Enabled {
		t.Fatal("safety must be enabled by default")
	}
}

func TestLoadHydratesSparseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	sparse := []byte(`backends:
  - name: local
    kind: ollama
generation:
  default_deadline: 10s
`)
	if err := os.WriteFile(path, sparse, 0o600); err != nil {
		t.Fatalf("writing sparse config: %v", err)
	}

	cfg, err := NewFileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Generation.DefaultDeadline != 10*time.Second {
		t.Fatalf("explicit value was overwritten: %s", cfg.Generation.DefaultDeadline)
	}
	if cfg.Generation.GracePeriod != domain.DefaultGracePeriod {
		t.Fatalf("grace period not hydrated: %s", cfg.Generation.GracePeriod)
	}
	if cfg.Selection.Weights != domain.DefaultSelectionWeights() {
		t.Fatalf("weights not hydrated: %+v", cfg.Selection.Weights)
	}
	if cfg.Monitor.WindowSize != domain.DefaultMonitorWindow {
		t.Fatalf("window size not hydrated: %d", cfg.Monitor.WindowSize)
	}
	if cfg.Safety.RulesFile == "" {
		t.Fatal("rules file location not hydrated")
	}
	if cfg.Execution.Shell != "auto" {
		t.Fatalf("shell not hydrated: %q", cfg.Execution.Shell)
	}
	if cfg.ConfigFormatVersion != "1" {
		t.Fatalf("format version not hydrated: %q", cfg.ConfigFormatVersion)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("backends: [oops"), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := NewFileLoader(path).Load(context.Background()); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestResolvePathPrecedence(t *testing.T) {
	t.Setenv("CMDAI_CONFIG", "/tmp/from-env.yaml")

	if got := NewFileLoader("/tmp/explicit.yaml").resolvePath(); got != "/tmp/explicit.yaml" {
		t.Fatalf("explicit path must win, got %q", got)
	}
	if got := NewFileLoader("").resolvePath(); got != "/tmp/from-env.yaml" {
		t.Fatalf("env var must win over the default, got %q", got)
	}
}

package backends

import (
	"testing"

	"github.com/carohq/cmdai/internal/domain"
)

func testConfigs() []domain.BackendConfig {
	return []domain.BackendConfig{
		{Name: "local", Kind: "ollama", Priority: 0.9},
		{Name: "cloud", Kind: "remote", Priority: 0.6, AuthEnvVar: "CMDAI_TEST_KEY"},
		{Name: "offline", Kind: "heuristic", Priority: 0.1},
	}
}

func TestNewRegistryBuildsAllKinds(t *testing.T) {
	r, err := NewRegistry(testConfigs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	descriptors := r.Descriptors()
	if len(descriptors) != 3 {
		t.Fatalf("expected 3 descriptors, got %d", len(descriptors))
	}
	for i, want := range []domain.BackendKind{domain.BackendKindOllama, domain.BackendKindRemote, domain.BackendKindHeuristic} {
		if descriptors[i].Kind != want {
			t.Fatalf("descriptor %d: kind %q, want %q", i, descriptors[i].Kind, want)
		}
	}

	for _, name := range []string{"local", "cloud", "offline"} {
		b, ok := r.Resolve(name)
		if !ok {
			t.Fatalf("Resolve(%q) failed", name)
		}
		if b.Descriptor().Name != name {
			t.Fatalf("Resolve(%q) returned %q", name, b.Descriptor().Name)
		}
	}
	if _, ok := r.Resolve("missing"); ok {
		t.Fatal("Resolve must report unknown names")
	}
}

func TestNewRegistryRejectsDuplicateNames(t *testing.T) {
	_, err := NewRegistry([]domain.BackendConfig{
		{Name: "local", Kind: "ollama"},
		{Name: "local", Kind: "heuristic"},
	})
	if err == nil {
		t.Fatal("expected duplicate name error")
	}
}

func TestNewRegistryRejectsUnknownKind(t *testing.T) {
	_, err := NewRegistry([]domain.BackendConfig{{Name: "x", Kind: "carrier-pigeon"}})
	if err == nil {
		t.Fatal("expected unsupported kind error")
	}
}

func TestNewRegistryRejectsEmptyRoster(t *testing.T) {
	if _, err := NewRegistry(nil); err == nil {
		t.Fatal("expected error for an empty roster")
	}
}

// Package backends contains the thin adapters that implement the
// ports.Backend capability interface over concrete inference engines:
// a local Ollama daemon, an OpenAI-compatible remote API, and an offline
// heuristic fallback. The pipeline core never sees their internals.
package backends

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/carohq/cmdai/internal/domain"
	"github.com/carohq/cmdai/internal/ports"
)

// Registry resolves selected backend names to their adapters.
type Registry struct {
	byName  map[string]ports.Backend
	ordered []ports.Backend
}

// NewRegistry builds adapters for every configured backend.
func NewRegistry(configs []domain.BackendConfig) (*Registry, error) {
	client := &http.Client{Timeout: domain.DefaultHTTPClientTimeout}
	r := &Registry{byName: make(map[string]ports.Backend, len(configs))}

	for _, cfg := range configs {
		backend, err := build(cfg, client)
		if err != nil {
			return nil, err
		}
		name := backend.Descriptor().Name
		if _, dup := r.byName[name]; dup {
			return nil, fmt.Errorf("duplicate backend name %q", name)
		}
		r.byName[name] = backend
		r.ordered = append(r.ordered, backend)
	}
	if len(r.ordered) == 0 {
		return nil, fmt.Errorf("no backends configured")
	}
	return r, nil
}

func build(cfg domain.BackendConfig, client *http.Client) (ports.Backend, error) {
	switch domain.BackendKind(strings.ToLower(cfg.Kind)) {
	case domain.BackendKindOllama:
		return newOllamaBackend(cfg, client), nil
	case domain.BackendKindRemote:
		return newRemoteBackend(cfg, client), nil
	case domain.BackendKindHeuristic:
		return newHeuristicBackend(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported backend kind %q", cfg.Kind)
	}
}

// Resolve returns the adapter for a selected backend name.
func (r *Registry) Resolve(name string) (ports.Backend, bool) {
	b, ok := r.byName[name]
	return b, ok
}

// All returns the adapters in configuration order.
func (r *Registry) All() []ports.Backend {
	return r.ordered
}

// Descriptors returns the immutable identities in configuration order.
func (r *Registry) Descriptors() []domain.BackendDescriptor {
	out := make([]domain.BackendDescriptor, 0, len(r.ordered))
	for _, b := range r.ordered {
		out = append(out, b.Descriptor())
	}
	return out
}

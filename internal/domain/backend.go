// Package domain defines core business entities and value objects for cmdai.
//
// The domain layer is independent of infrastructure concerns and represents
// pure business logic and data structures. Backends, health metrics, and
// selection results live here; the concrete inference engines live behind
// the ports.Backend interface in the infrastructure layer.
package domain

// BackendKind identifies the family of inference engine behind a backend.
type BackendKind string

const (
	// BackendKindOllama is a local Ollama daemon reached over HTTP.
	BackendKindOllama BackendKind = "ollama"
	// BackendKindRemote is an OpenAI-compatible remote HTTP API.
	BackendKindRemote BackendKind = "remote"
	// BackendKindHeuristic is the offline pattern-table fallback engine.
	BackendKindHeuristic BackendKind = "heuristic"
)

// BackendDescriptor identifies one backend instance. Descriptors are created
// at startup from configuration and are immutable for the process lifetime.
type BackendDescriptor struct {
	Name              string
	Kind              BackendKind
	Priority          float64 // configured preference, 0.0 (lowest) to 1.0 (highest)
	SupportsStreaming bool
	SupportsCancel    bool
}

// BackendConfig declares one backend instance in the config file.
type BackendConfig struct {
	Name       string  `yaml:"name"`
	Kind       string  `yaml:"kind"`
	Endpoint   string  `yaml:"endpoint"`
	AuthEnvVar string  `yaml:"auth_env_var"`
	ModelID    string  `yaml:"model_id"`
	MaxTokens  int     `yaml:"max_tokens"`
	Priority   float64 `yaml:"priority"`
}

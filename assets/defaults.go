package assets

import (
	_ "embed"
)

// DefaultConfigYAML is the configuration written on first run.
//
//go:embed defaults/config.yaml
var DefaultConfigYAML []byte

// DefaultGuardrailYAML is the built-in danger/safe pattern rule set.
//
//go:embed defaults/guardrail.yaml
var DefaultGuardrailYAML []byte

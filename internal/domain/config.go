package domain

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Config mirrors ~/.cmdai/config.yaml. The core consumes this as a
// pre-validated value object; loading and parsing belong to the
// infrastructure config layer.
type Config struct {
	ConfigFormatVersion string             `yaml:"config_format_version"`
	Backends            []BackendConfig    `yaml:"backends"`
	Selection           SelectionSettings  `yaml:"selection"`
	Generation          GenerationSettings `yaml:"generation"`
	Monitor             MonitorSettings    `yaml:"monitor"`
	Safety              SafetySettings     `yaml:"safety"`
	Execution           ExecutionSettings  `yaml:"execution"`
	History             HistorySettings    `yaml:"history"`
}

// SelectionSettings tunes backend ranking.
type SelectionSettings struct {
	PreferredBackend string           `yaml:"preferred_backend"`
	Weights          SelectionWeights `yaml:"weights"`
	SuccessRateFloor float64          `yaml:"success_rate_floor"`
}

// GenerationSettings tunes the streaming generator.
type GenerationSettings struct {
	DefaultDeadline time.Duration `yaml:"default_deadline"`
	GracePeriod     time.Duration `yaml:"grace_period"`
}

// UnmarshalYAML accepts human-readable durations ("5s", "1500ms").
func (g *GenerationSettings) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		DefaultDeadline string `yaml:"default_deadline"`
		GracePeriod     string `yaml:"grace_period"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	var err error
	if g.DefaultDeadline, err = parseDuration(raw.DefaultDeadline); err != nil {
		return err
	}
	g.GracePeriod, err = parseDuration(raw.GracePeriod)
	return err
}

// MonitorSettings tunes the performance monitor.
type MonitorSettings struct {
	WindowSize    int           `yaml:"window_size"`
	ProbeInterval time.Duration `yaml:"probe_interval"`
}

// UnmarshalYAML accepts human-readable durations ("30s", "2m").
func (m *MonitorSettings) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		WindowSize    int    `yaml:"window_size"`
		ProbeInterval string `yaml:"probe_interval"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	m.WindowSize = raw.WindowSize
	var err error
	m.ProbeInterval, err = parseDuration(raw.ProbeInterval)
	return err
}

// MarshalYAML keeps dumped configs human-readable.
func (g GenerationSettings) MarshalYAML() (interface{}, error) {
	return map[string]string{
		"default_deadline": g.DefaultDeadline.String(),
		"grace_period":     g.GracePeriod.String(),
	}, nil
}

// MarshalYAML keeps dumped configs human-readable.
func (m MonitorSettings) MarshalYAML() (interface{}, error) {
	return map[string]interface{}{
		"window_size":    m.WindowSize,
		"probe_interval": m.ProbeInterval.String(),
	}, nil
}

func parseDuration(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	return time.ParseDuration(raw)
}

// SafetySettings defines validator behavior.
type SafetySettings struct {
	Enabled         bool             `yaml:"enabled"`
	RulesFile       string           `yaml:"rules_file"`
	BehavioralRules []BehavioralRule `yaml:"behavioral_rules"`
	// PolicyOverrides remaps risk levels to confirmation requirements
	// without touching analyzer code.
	PolicyOverrides map[RiskLevel]PolicyEntry `yaml:"policy_overrides"`
}

// BehavioralRule is a configurable structural check evaluated against
// command facts (has_pipe, has_sudo, recursive, targets_root, ...).
type BehavioralRule struct {
	ID        string `yaml:"id"`
	Condition string `yaml:"condition"`
	Level     string `yaml:"level"`
	Message   string `yaml:"message"`
}

// PolicyEntry maps one risk level to its confirmation requirement.
type PolicyEntry struct {
	Confirmations []ConfirmationType `yaml:"confirmations"`
	Refuse        bool               `yaml:"refuse"`
}

// ExecutionSettings controls how cleared commands run.
type ExecutionSettings struct {
	Shell                string `yaml:"shell"`
	ConfirmBeforeExecute bool   `yaml:"confirm_before_execute"`
}

// HistorySettings controls run persistence.
type HistorySettings struct {
	Enabled bool `yaml:"enabled"`
	Limit   int  `yaml:"limit"`
}

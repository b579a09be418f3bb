// Package config loads YAML configuration from ~/.cmdai/config.yaml
// (overridable via CMDAI_CONFIG). The first run writes the embedded,
// commented default file so users always have something to edit.
package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/carohq/cmdai/assets"
	"github.com/carohq/cmdai/internal/domain"
	"github.com/carohq/cmdai/internal/pkg/filesystem"
	"github.com/carohq/cmdai/internal/ports"
)

// FileLoader loads the configuration file, materializing the embedded
// defaults on first run.
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader. An empty path defers to CMDAI_CONFIG
// and then the default location.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.resolvePath()
	if err := ensureConfigDir(path); err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			data = assets.DefaultConfigYAML
			if err := os.WriteFile(path, data, domain.SecureFilePermissions); err != nil {
				return domain.Config{}, err
			}
		} else {
			return domain.Config{}, err
		}
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, err
	}

	return hydrateDefaults(cfg), nil
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath)
	}
	if custom := os.Getenv("CMDAI_CONFIG"); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filepath.Join(filesystem.UserHomeDir(), ".cmdai", "config.yaml")
}

func ensureConfigDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions)
}

// hydrateDefaults fills zero values so a sparse hand-edited file still
// yields a fully working configuration.
func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	w := cfg.Selection.Weights
	if w.Latency == 0 && w.Success == 0 && w.Priority == 0 {
		cfg.Selection.Weights = domain.DefaultSelectionWeights()
	}
	if cfg.Selection.SuccessRateFloor == 0 {
		cfg.Selection.SuccessRateFloor = domain.DefaultSuccessRateFloor
	}
	if cfg.Generation.DefaultDeadline == 0 {
		cfg.Generation.DefaultDeadline = domain.DefaultPipelineDeadline
	}
	if cfg.Generation.GracePeriod == 0 {
		cfg.Generation.GracePeriod = domain.DefaultGracePeriod
	}
	if cfg.Monitor.WindowSize == 0 {
		cfg.Monitor.WindowSize = domain.DefaultMonitorWindow
	}
	if cfg.Monitor.ProbeInterval == 0 {
		cfg.Monitor.ProbeInterval = domain.DefaultProbeInterval
	}
	if cfg.Safety.RulesFile == "" {
		cfg.Safety.RulesFile = filepath.Join(filesystem.UserHomeDir(), ".cmdai", "guardrail.yaml")
	}
	if cfg.Execution.Shell == "" {
		cfg.Execution.Shell = "auto"
	}
	if cfg.History.Limit == 0 {
		cfg.History.Limit = domain.DefaultHistoryLimit
	}
	return cfg
}

var _ ports.ConfigProvider = (*FileLoader)(nil)

// Package contextinfo gathers the environment snapshot that enriches
// prompts and feeds the contextual safety analyzer.
package contextinfo

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/carohq/cmdai/internal/domain"
	"github.com/carohq/cmdai/internal/ports"
)

// Collector implements ports.ContextCollector from process state. It never
// fails: missing pieces degrade to empty fields rather than errors.
type Collector struct{}

func NewCollector() *Collector {
	return &Collector{}
}

// Collect gathers working directory, shell, platform, and user.
func (c *Collector) Collect(ctx context.Context) (domain.EnvironmentSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.EnvironmentSnapshot{}, err
	}
	wd, _ := os.Getwd()
	return domain.EnvironmentSnapshot{
		WorkingDir: wd,
		Shell:      detectShell(),
		OS:         runtime.GOOS,
		User:       currentUser(),
	}, nil
}

func detectShell() string {
	if shell := os.Getenv("SHELL"); shell != "" {
		return filepath.Base(shell)
	}
	if runtime.GOOS == "windows" {
		return "powershell"
	}
	return "sh"
}

func currentUser() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return os.Getenv("USERNAME")
}

var _ ports.ContextCollector = (*Collector)(nil)

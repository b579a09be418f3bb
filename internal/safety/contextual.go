package safety

import (
	"path/filepath"
	"strings"

	"github.com/carohq/cmdai/internal/domain"
)

// systemDirs are roots whose working directories escalate risk: the same
// command is more dangerous run under /etc than under ~/projects.
var systemDirs = []string{
	"/etc", "/usr", "/bin", "/sbin", "/var", "/boot", "/lib", "/opt",
	"/System", "/Library", `C:\Windows`, `C:\Program Files`,
}

// ContextAnalyzer adjusts risk based on execution context. It never lowers
// a level: operating in a system directory raises the combined verdict one
// level, and a session-confirmed command relaxes the confirmation
// requirement but not the reported risk.
type ContextAnalyzer struct{}

// NewContextAnalyzer builds the context analyzer.
func NewContextAnalyzer() *ContextAnalyzer {
	return &ContextAnalyzer{}
}

// Adjust takes the combined level of the other analyzers and returns the
// context finding. Safe commands stay Safe regardless of directory;
// anything riskier escalates one level inside a system directory.
func (a *ContextAnalyzer) Adjust(base domain.RiskLevel, command string, env domain.EnvironmentSnapshot) domain.AnalyzerFinding {
	finding := domain.AnalyzerFinding{
		Analyzer:   "context",
		Level:      base,
		Confidence: 0.7,
	}

	if base != domain.RiskSafe && inSystemDirectory(env.WorkingDir) {
		finding.Level = base.Escalate()
		finding.Confidence = 0.8
		finding.Reasons = append(finding.Reasons,
			"working directory "+env.WorkingDir+" is a system location")
		finding.MatchedRules = append(finding.MatchedRules, "system-directory")
	}
	return finding
}

func inSystemDirectory(dir string) bool {
	if dir == "" {
		return false
	}
	clean := filepath.Clean(dir)
	for _, root := range systemDirs {
		if clean == root || strings.HasPrefix(clean, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

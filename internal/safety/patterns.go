package safety

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/carohq/cmdai/assets"
	"github.com/carohq/cmdai/internal/domain"
	"github.com/carohq/cmdai/internal/pkg/filesystem"
)

// DangerPattern describes one regex-based rule.
type DangerPattern struct {
	ID          string `yaml:"id"`
	Pattern     string `yaml:"pattern"`
	Level       string `yaml:"level"`
	Message     string `yaml:"message"`
	Alternative string `yaml:"alternative"`
}

// SafePattern marks commands known to be harmless, letting the analyzer
// report Safe with high confidence instead of merely "no match".
type SafePattern struct {
	ID      string `yaml:"id"`
	Pattern string `yaml:"pattern"`
}

// RulesFile is the YAML schema root for the pattern rule set.
type RulesFile struct {
	Rules struct {
		DangerPatterns []DangerPattern `yaml:"danger_patterns"`
		SafePatterns   []SafePattern   `yaml:"safe_patterns"`
	} `yaml:"rules"`
}

type compiledDanger struct {
	re   *regexp.Regexp
	rule DangerPattern
}

type compiledSafe struct {
	re   *regexp.Regexp
	rule SafePattern
}

// PatternAnalyzer matches the command against a compiled set of
// known-dangerous and known-safe regular expressions.
type PatternAnalyzer struct {
	danger []compiledDanger
	safe   []compiledSafe
}

// NewPatternAnalyzer loads rules from path, falling back to the embedded
// defaults when the file is missing or empty.
func NewPatternAnalyzer(path string) (*PatternAnalyzer, error) {
	rules, err := loadRules(path)
	if err != nil {
		return nil, err
	}

	a := &PatternAnalyzer{}
	for _, rule := range rules.Rules.DangerPatterns {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile danger pattern %s: %w", rule.ID, err)
		}
		a.danger = append(a.danger, compiledDanger{re: re, rule: rule})
	}
	for _, rule := range rules.Rules.SafePatterns {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile safe pattern %s: %w", rule.ID, err)
		}
		a.safe = append(a.safe, compiledSafe{re: re, rule: rule})
	}
	return a, nil
}

// Analyze returns the pattern verdict with the specific rule ids matched.
func (a *PatternAnalyzer) Analyze(command string, _ domain.EnvironmentSnapshot) domain.AnalyzerFinding {
	finding := domain.AnalyzerFinding{
		Analyzer:   "pattern",
		Level:      domain.RiskSafe,
		Confidence: 0.5,
	}

	for _, p := range a.danger {
		if !p.re.MatchString(command) {
			continue
		}
		level := parseRiskLevel(p.rule.Level)
		if level.MoreSevere(finding.Level) {
			finding.Level = level
		}
		finding.Confidence = 0.95
		finding.Reasons = append(finding.Reasons, p.rule.Message)
		finding.MatchedRules = append(finding.MatchedRules, p.rule.ID)
		if p.rule.Alternative != "" {
			finding.Alternatives = append(finding.Alternatives, p.rule.Alternative)
		}
	}
	if len(finding.MatchedRules) > 0 {
		return finding
	}

	for _, p := range a.safe {
		if p.re.MatchString(command) {
			finding.Confidence = 0.9
			finding.MatchedRules = append(finding.MatchedRules, p.rule.ID)
			return finding
		}
	}
	return finding
}

func loadRules(path string) (RulesFile, error) {
	var rules RulesFile
	if path != "" {
		data, err := os.ReadFile(filesystem.ExpandPath(path))
		if err == nil {
			if err := yaml.Unmarshal(data, &rules); err != nil {
				return RulesFile{}, fmt.Errorf("parse rules file: %w", err)
			}
			if len(rules.Rules.DangerPatterns) > 0 {
				return rules, nil
			}
		}
	}
	if err := yaml.Unmarshal(assets.DefaultGuardrailYAML, &rules); err != nil {
		return RulesFile{}, fmt.Errorf("parse embedded rules: %w", err)
	}
	return rules, nil
}

func parseRiskLevel(value string) domain.RiskLevel {
	switch strings.ToLower(value) {
	case "moderate", "medium", "low":
		return domain.RiskModerate
	case "high":
		return domain.RiskHigh
	case "critical":
		return domain.RiskCritical
	default:
		return domain.RiskSafe
	}
}

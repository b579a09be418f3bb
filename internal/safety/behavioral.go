package safety

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/carohq/cmdai/internal/domain"
)

// BehavioralAnalyzer inspects command structure independent of any single
// regex: piping, chaining, destructive flags combined with broad path
// globs. It flags combinations that look safe individually but are
// jointly risky. Custom rules from configuration are compiled expr
// conditions evaluated against the same fact set.
type BehavioralAnalyzer struct {
	rules []compiledBehavioral
}

type compiledBehavioral struct {
	rule    domain.BehavioralRule
	program *vm.Program
}

// NewBehavioralAnalyzer compiles the configured custom rules. Built-in
// structural checks always run regardless of configuration.
func NewBehavioralAnalyzer(rules []domain.BehavioralRule) (*BehavioralAnalyzer, error) {
	a := &BehavioralAnalyzer{}
	for _, rule := range rules {
		program, err := expr.Compile(rule.Condition, expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile behavioral rule %s: %w", rule.ID, err)
		}
		a.rules = append(a.rules, compiledBehavioral{rule: rule, program: program})
	}
	return a, nil
}

// commandFacts is the environment exposed to custom rule conditions.
func commandFacts(command string) map[string]interface{} {
	return map[string]interface{}{
		"command":      command,
		"has_pipe":     strings.Contains(command, "|"),
		"has_sudo":     reSudo.MatchString(command),
		"chained":      reChain.MatchString(command),
		"recursive":    reRecursiveFlag.MatchString(command),
		"force":        reForceFlag.MatchString(command),
		"wildcard":     strings.Contains(command, "*"),
		"destructive":  reDestructive.MatchString(command),
		"broad_path":   reBroadPath.MatchString(command),
		"system_path":  reSystemPath.MatchString(command),
		"pipe_to_sh":   rePipeToShell.MatchString(command),
		"redirect_dev": reRedirectDevice.MatchString(command),
		"word_count":   len(strings.Fields(command)),
	}
}

var (
	reSudo           = regexp.MustCompile(`(^|[|;&]\s*)sudo\s`)
	reChain          = regexp.MustCompile(`&&|;|\|\|`)
	reRecursiveFlag  = regexp.MustCompile(`(^|\s)-[a-zA-Z]*[rR][a-zA-Z]*(\s|$)|--recursive`)
	reForceFlag      = regexp.MustCompile(`(^|\s)-[a-zA-Z]*f[a-zA-Z]*(\s|$)|--force`)
	reDestructive    = regexp.MustCompile(`(^|[|;&]\s*)(sudo\s+)?(rm|chmod|chown|mv|dd|mkfs\.?\w*|shred|truncate)\s`)
	reBroadPath      = regexp.MustCompile(`(^|\s)(/|/\*|~|~/\*|\$HOME)(\s|$)`)
	reSystemPath     = regexp.MustCompile(`(^|\s)/(etc|usr|bin|sbin|var|boot|lib|dev)(/|\s|$)`)
	rePipeToShell    = regexp.MustCompile(`(curl|wget)\s+[^|]*\|\s*(sudo\s+)?(bash|sh|zsh|fish)`)
	reRedirectDevice = regexp.MustCompile(`>\s*/dev/(sd[a-z]|hd[a-z]|nvme)`)
)

// Analyze runs the built-in structural checks and the configured rules.
func (a *BehavioralAnalyzer) Analyze(command string, _ domain.EnvironmentSnapshot) domain.AnalyzerFinding {
	finding := domain.AnalyzerFinding{
		Analyzer:   "behavioral",
		Level:      domain.RiskSafe,
		Confidence: 0.6,
	}

	raise := func(level domain.RiskLevel, id string, reason string) {
		if level.MoreSevere(finding.Level) {
			finding.Level = level
		}
		finding.Confidence = 0.85
		finding.Reasons = append(finding.Reasons, reason)
		finding.MatchedRules = append(finding.MatchedRules, id)
	}

	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		raise(domain.RiskHigh, "empty-command", "empty command cannot be assessed")
		return finding
	}
	if hasControlCharacters(command) {
		raise(domain.RiskHigh, "control-chars", "command contains non-printable control characters")
	}

	facts := commandFacts(command)

	destructive := facts["destructive"].(bool)
	recursive := facts["recursive"].(bool)
	wildcard := facts["wildcard"].(bool)
	broad := facts["broad_path"].(bool)
	system := facts["system_path"].(bool)

	switch {
	case destructive && recursive && broad:
		raise(domain.RiskCritical, "destructive-recursive-broad",
			"destructive command with recursive flag targets a broad path")
	case destructive && (broad || (wildcard && system)):
		raise(domain.RiskHigh, "destructive-broad",
			"destructive command targets a broad or system path")
	case destructive && wildcard:
		raise(domain.RiskModerate, "destructive-wildcard",
			"destructive command combined with a wildcard glob")
	case destructive && recursive:
		raise(domain.RiskModerate, "destructive-recursive",
			"recursive destructive command")
	}

	if facts["pipe_to_sh"].(bool) {
		raise(domain.RiskHigh, "pipe-to-shell", "downloads remote content piped into a shell")
	}
	if facts["redirect_dev"].(bool) {
		raise(domain.RiskCritical, "redirect-block-device", "redirects output onto a raw block device")
	}
	if facts["has_sudo"].(bool) && facts["has_pipe"].(bool) {
		raise(domain.RiskHigh, "sudo-pipe", "sudo combined with piped input")
	}
	if facts["chained"].(bool) && destructive {
		raise(domain.RiskModerate, "chained-destructive", "command chain contains a destructive segment")
	}

	for _, rule := range a.rules {
		matched, err := expr.Run(rule.program, facts)
		if err != nil {
			continue
		}
		if ok, _ := matched.(bool); ok {
			raise(parseRiskLevel(rule.rule.Level), rule.rule.ID, rule.rule.Message)
		}
	}

	return finding
}

func hasControlCharacters(command string) bool {
	for _, r := range command {
		if r == '\t' || r == '\n' {
			continue
		}
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}

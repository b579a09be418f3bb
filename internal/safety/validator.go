// Package safety evaluates candidate commands through three cooperating
// analyzers (pattern, behavioral, contextual) and produces a risk verdict
// plus the confirmations a caller must collect before execution.
package safety

import (
	"strings"

	"github.com/carohq/cmdai/internal/domain"
	"github.com/carohq/cmdai/internal/ports"
)

// Validator combines the analyzer findings by taking the maximum risk
// level, ties broken toward the analyzer with higher stated confidence.
// Validate is total: it always returns a verdict and degrades to High
// risk on internal faults, because an unknown verdict must never be
// treated as safe.
type Validator struct {
	enabled    bool
	pattern    *PatternAnalyzer
	behavioral *BehavioralAnalyzer
	context    *ContextAnalyzer
	policy     Policy
	session    *Session
	logger     ports.Logger
}

// NewValidator wires the three analyzers and the policy table from
// configuration.
func NewValidator(cfg domain.SafetySettings, logger ports.Logger) (*Validator, error) {
	pattern, err := NewPatternAnalyzer(cfg.RulesFile)
	if err != nil {
		return nil, err
	}
	behavioral, err := NewBehavioralAnalyzer(cfg.BehavioralRules)
	if err != nil {
		return nil, err
	}
	return &Validator{
		enabled:    cfg.Enabled,
		pattern:    pattern,
		behavioral: behavioral,
		context:    NewContextAnalyzer(),
		policy:     PolicyFromConfig(cfg.PolicyOverrides),
		session:    NewSession(),
		logger:     logger,
	}, nil
}

// Session exposes the per-process confirmation memory so the CLI can
// record user confirmations.
func (v *Validator) Session() *Session {
	return v.session
}

// Validate evaluates one candidate command. Never fails.
func (v *Validator) Validate(command string, env domain.EnvironmentSnapshot, override bool) (result domain.ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			if v.logger != nil {
				v.logger.Error("validator fault, degrading to high risk", nil,
					map[string]interface{}{"panic": r})
			}
			result = fallbackVerdict()
		}
	}()

	if !v.enabled {
		return domain.ValidationResult{
			IsSafe:      true,
			Level:       domain.RiskSafe,
			Confidence:  0,
			Explanation: "validation disabled in configuration",
		}
	}

	patternFinding := v.pattern.Analyze(command, env)
	behavioralFinding := v.behavioral.Analyze(command, env)

	base := combine(patternFinding, behavioralFinding)
	contextFinding := v.context.Adjust(base.Level, command, env)
	final := combine(base, contextFinding)

	alreadyConfirmed := v.session.WasConfirmed(command)
	confirmations, refused := v.policy.Apply(final.Level, override, alreadyConfirmed)

	result = domain.ValidationResult{
		IsSafe:        final.Level == domain.RiskSafe,
		Level:         final.Level,
		Confidence:    final.Confidence,
		Explanation:   explain(final),
		Alternatives:  final.Alternatives,
		Confirmations: confirmations,
		Refused:       refused,
		Findings: []domain.AnalyzerFinding{
			patternFinding, behavioralFinding, contextFinding,
		},
	}
	return result
}

// combine merges two findings: maximum risk level wins, ties break toward
// the higher confidence; reasons and alternatives accumulate.
func combine(a, b domain.AnalyzerFinding) domain.AnalyzerFinding {
	winner, loser := a, b
	if b.Level.MoreSevere(a.Level) ||
		(b.Level == a.Level && b.Confidence > a.Confidence) {
		winner, loser = b, a
	}
	merged := domain.AnalyzerFinding{
		Analyzer:   winner.Analyzer,
		Level:      winner.Level,
		Confidence: winner.Confidence,
	}
	merged.Reasons = append(append(merged.Reasons, winner.Reasons...), loser.Reasons...)
	merged.MatchedRules = append(append(merged.MatchedRules, winner.MatchedRules...), loser.MatchedRules...)
	merged.Alternatives = append(append(merged.Alternatives, winner.Alternatives...), loser.Alternatives...)
	return merged
}

func explain(f domain.AnalyzerFinding) string {
	if len(f.Reasons) == 0 {
		return "no risky pattern or structure detected"
	}
	return strings.Join(f.Reasons, "; ")
}

func fallbackVerdict() domain.ValidationResult {
	confirmations, refused := DefaultPolicy().Apply(domain.RiskHigh, false, false)
	return domain.ValidationResult{
		IsSafe:        false,
		Level:         domain.RiskHigh,
		Confidence:    0.0,
		Explanation:   "internal validation error, treating command as high risk",
		Confirmations: confirmations,
		Refused:       refused,
	}
}

package safety

import "github.com/carohq/cmdai/internal/domain"

// Policy maps risk levels to confirmation requirements. A policy table,
// not per-command logic: it can be reconfigured without touching analyzer
// code.
type Policy map[domain.RiskLevel]domain.PolicyEntry

// DefaultPolicy implements the fixed mapping: Safe needs nothing; Moderate
// a single proceed prompt; High an explicit confirmation with the
// explanation displayed; Critical an explicit confirmation plus an
// alternative, refused unless the caller sets the override flag.
func DefaultPolicy() Policy {
	return Policy{
		domain.RiskSafe: {},
		domain.RiskModerate: {
			Confirmations: []domain.ConfirmationType{domain.ConfirmProceed},
		},
		domain.RiskHigh: {
			Confirmations: []domain.ConfirmationType{domain.ConfirmExplicit},
		},
		domain.RiskCritical: {
			Confirmations: []domain.ConfirmationType{domain.ConfirmExplicit, domain.ConfirmOverride},
			Refuse:        true,
		},
	}
}

// PolicyFromConfig overlays configured overrides onto the default table.
func PolicyFromConfig(overrides map[domain.RiskLevel]domain.PolicyEntry) Policy {
	policy := DefaultPolicy()
	for level, entry := range overrides {
		policy[level] = entry
	}
	return policy
}

// Apply resolves the confirmation requirement for a verdict.
// alreadyConfirmed drops the interactive prompts for a command the user
// confirmed earlier this session; override lifts a Critical refusal but
// never the confirmations themselves.
func (p Policy) Apply(level domain.RiskLevel, override bool, alreadyConfirmed bool) ([]domain.ConfirmationType, bool) {
	entry, ok := p[level]
	if !ok {
		entry = DefaultPolicy()[domain.RiskHigh]
	}

	confirmations := entry.Confirmations
	if alreadyConfirmed {
		confirmations = nil
	}

	refused := entry.Refuse && !override
	return confirmations, refused
}

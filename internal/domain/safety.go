package domain

// RiskLevel classifies how dangerous a candidate command is judged to be.
// Ordered: Safe < Moderate < High < Critical.
type RiskLevel string

const (
	RiskSafe     RiskLevel = "safe"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

var riskOrder = map[RiskLevel]int{
	RiskSafe:     0,
	RiskModerate: 1,
	RiskHigh:     2,
	RiskCritical: 3,
}

// Severity returns the ordinal position of the level. Unknown levels map
// to Critical so a corrupted value can never read as safe.
func (r RiskLevel) Severity() int {
	if ord, ok := riskOrder[r]; ok {
		return ord
	}
	return riskOrder[RiskCritical]
}

// MoreSevere reports whether r outranks other.
func (r RiskLevel) MoreSevere(other RiskLevel) bool {
	return r.Severity() > other.Severity()
}

// Escalate returns the level one step above r, saturating at Critical.
func (r RiskLevel) Escalate() RiskLevel {
	switch r {
	case RiskSafe:
		return RiskModerate
	case RiskModerate:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// ConfirmationType enumerates the interactions a caller must complete
// before executing a command.
type ConfirmationType string

const (
	// ConfirmProceed is a single "proceed?" yes/no prompt.
	ConfirmProceed ConfirmationType = "proceed"
	// ConfirmExplicit requires the user to type an affirmation after the
	// risk explanation has been displayed.
	ConfirmExplicit ConfirmationType = "explicit"
	// ConfirmOverride requires the caller-level override flag in addition
	// to an explicit confirmation.
	ConfirmOverride ConfirmationType = "override"
)

// AnalyzerFinding is the verdict of a single safety analyzer.
type AnalyzerFinding struct {
	Analyzer     string
	Level        RiskLevel
	Confidence   float64
	Reasons      []string
	MatchedRules []string
	Alternatives []string
}

// ValidationResult is the combined safety verdict for one candidate
// command. Created once per candidate; never mutated.
type ValidationResult struct {
	IsSafe        bool
	Level         RiskLevel
	Confidence    float64
	Explanation   string
	Alternatives  []string
	Confirmations []ConfirmationType
	// Refused is set when policy forbids execution (Critical without the
	// caller override flag).
	Refused  bool
	Findings []AnalyzerFinding
}

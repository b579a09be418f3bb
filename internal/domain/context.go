package domain

// EnvironmentSnapshot holds the execution context injected into prompts
// and consulted by the safety validator's context analyzer.
type EnvironmentSnapshot struct {
	WorkingDir string
	Shell      string
	OS         string
	User       string
}

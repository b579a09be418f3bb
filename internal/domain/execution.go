package domain

// ExecutionResult wraps details from the command executor. Execution only
// ever happens after the validator verdict and required confirmations.
type ExecutionResult struct {
	Ran        bool
	Stdout     string
	Stderr     string
	ExitCode   int
	DurationMS int64
	Err        error
}

package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/carohq/cmdai/internal/domain"
)

// RenderResult prints one pipeline run in a plain, ASCII-only format.
func RenderResult(w io.Writer, result domain.PipelineResult, err error) {
	switch result.Failure {
	case domain.FailureNoBackend:
		fmt.Fprintln(w, "No backend is available. Check `cmdai backends` for health details.")
		return
	case domain.FailureCancelled:
		fmt.Fprintln(w, "Cancelled.")
		return
	case domain.FailureNoCommand:
		fmt.Fprintln(w, "No usable command could be generated.")
		if err != nil {
			fmt.Fprintf(w, "  %v\n", err)
		}
		return
	}
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}

	fmt.Fprintln(w, "Generated command:")
	fmt.Fprintf(w, "  %s\n", result.Generation.Command)
	if result.Generation.Explanation != "" {
		fmt.Fprintf(w, "\n%s\n", result.Generation.Explanation)
	}
	fmt.Fprintf(w, "\nBackend: %s (%s, %d tokens", result.Generation.Backend, result.Generation.Elapsed.Round(10*time.Millisecond), result.Generation.TokenCount)
	if result.Attempts > 1 {
		fmt.Fprintf(w, ", attempt %d", result.Attempts)
	}
	fmt.Fprintln(w, ")")

	renderVerdict(w, result.Validation)
}

func renderVerdict(w io.Writer, verdict domain.ValidationResult) {
	fmt.Fprintf(w, "Risk: %s\n", strings.ToUpper(string(verdict.Level)))
	if verdict.Explanation != "" {
		fmt.Fprintf(w, "  %s\n", verdict.Explanation)
	}
	for _, alt := range verdict.Alternatives {
		fmt.Fprintf(w, "  safer alternative: %s\n", alt)
	}
	if verdict.Refused {
		fmt.Fprintln(w, "\nRefused: this command is too dangerous to execute.")
		fmt.Fprintln(w, "Re-run with --force if you are absolutely certain.")
	}
}

// RenderExecution prints the outcome of running the command.
func RenderExecution(w io.Writer, result domain.ExecutionResult) {
	if result.Stdout != "" {
		fmt.Fprint(w, result.Stdout)
		if !strings.HasSuffix(result.Stdout, "\n") {
			fmt.Fprintln(w)
		}
	}
	if result.Stderr != "" {
		fmt.Fprint(w, result.Stderr)
		if !strings.HasSuffix(result.Stderr, "\n") {
			fmt.Fprintln(w)
		}
	}
	switch {
	case !result.Ran && result.Err != nil:
		fmt.Fprintf(w, "Command failed to start: %v\n", result.Err)
	case result.ExitCode != 0:
		fmt.Fprintf(w, "Exit code: %d\n", result.ExitCode)
	}
}

// IsUserFacing reports whether err already produced friendly output and
// should not be echoed again by main.
func IsUserFacing(err error) bool {
	return errors.Is(err, domain.ErrNoBackendAvailable) || errors.Is(err, domain.ErrCancelled)
}

// Package cli is the cobra surface over the pipeline: the ask flow with
// its confirmation walk, plus backends/history/config/version subcommands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/carohq/cmdai/internal/app"
	"github.com/carohq/cmdai/internal/domain"
)

// Options holds CLI-level configuration.
type Options struct {
	ConfigPath string
	Verbose    bool
}

// askOptions are the ask flow's flag values. The bare-prompt path runs
// with the zero value.
type askOptions struct {
	backend  string
	deadline time.Duration
	execute  bool
	force    bool
}

// NewRootCmd wires the cobra root command. A bare prompt argument runs the
// ask flow directly, so `cmdai list large files` just works.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.ConfigPath, opts.Verbose)
	if err != nil {
		return nil, err
	}

	root := &cobra.Command{
		Use:   "cmdai [prompt]",
		Short: "cmdai - natural language to shell commands",
		Long:  "cmdai turns natural-language requests into shell commands, with backend fallback and safety validation.",
		// Unrecognized leading words are the prompt, not a subcommand typo.
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runAsk(cmd, container, args, askOptions{})
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			container.Close()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newAskCommand(container))
	root.AddCommand(newBackendsCommand(container))
	root.AddCommand(newHistoryCommand(container))
	root.AddCommand(newConfigCommand(container))
	root.AddCommand(newVersionCommand())
	return root, nil
}

func newAskCommand(container *app.Container) *cobra.Command {
	var opts askOptions

	cmd := &cobra.Command{
		Use:   "ask [natural language]",
		Short: "Generate a command from natural language",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, container, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.backend, "backend", "b", "", "Prefer a specific backend by name")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 0, "Overall deadline for the run (default from config)")
	cmd.Flags().BoolVarP(&opts.execute, "execute", "x", false, "Execute the command after confirmation")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Override a critical-risk refusal (still requires explicit confirmation)")

	return cmd
}

// runAsk is the shared ask flow behind both the root bare-prompt path and
// the ask subcommand.
func runAsk(cmd *cobra.Command, container *app.Container, args []string, opts askOptions) error {
	ctx := cmd.Context()
	env, err := container.Collector.Collect(ctx)
	if err != nil {
		return err
	}

	prompt := strings.Join(args, " ")
	result, runErr := container.Pipeline.Run(domain.PipelineRequest{
		Context:          ctx,
		Prompt:           prompt,
		Env:              env,
		Deadline:         opts.deadline,
		OverrideCritical: opts.force,
		PreferredBackend: opts.backend,
	})

	RenderResult(os.Stdout, result, runErr)
	if runErr != nil {
		if errors.Is(runErr, domain.ErrCancelled) {
			return nil
		}
		return runErr
	}
	if result.Failure != domain.FailureNone {
		return nil
	}

	executed, exitCode := runConfirmedCommand(cmd, container, result, opts.execute)
	saveRun(container, prompt, result, executed, exitCode)
	return nil
}

// confirmationSteps returns the confirmation walk for one execution. When
// the config asks to confirm every execution, a safe verdict still gets a
// plain proceed prompt.
func confirmationSteps(verdict domain.ValidationResult, confirmEverything bool) []domain.ConfirmationType {
	if len(verdict.Confirmations) > 0 || !confirmEverything {
		return verdict.Confirmations
	}
	return []domain.ConfirmationType{domain.ConfirmProceed}
}

// runConfirmedCommand walks the verdict's confirmation requirements and,
// if the user clears them all and asked for execution, runs the command.
func runConfirmedCommand(cmd *cobra.Command, container *app.Container, result domain.PipelineResult, execute bool) (bool, int) {
	if !execute {
		return false, 0
	}
	command := result.Generation.Command
	confirmations := confirmationSteps(result.Validation, container.Config.Execution.ConfirmBeforeExecute)

	prompter := NewPrompter(nil, nil)
	if len(confirmations) > 0 && !prompter.Enabled() {
		fmt.Fprintln(os.Stderr, "confirmation required but no interactive terminal; not executing")
		return false, 0
	}
	for _, confirmation := range confirmations {
		ok, err := prompter.Confirm(confirmation, result.Validation, command)
		if err != nil || !ok {
			fmt.Fprintln(os.Stdout, "Not executed.")
			return false, 0
		}
	}
	container.Validator.Session().MarkConfirmed(command)

	execResult, err := container.Executor.Execute(cmd.Context(), command)
	RenderExecution(os.Stdout, execResult)
	if err != nil {
		return false, execResult.ExitCode
	}
	return execResult.Ran, execResult.ExitCode
}

// saveRun persists a successful run once the executed flag is known.
// Failed and refused runs are persisted by the telemetry observer.
func saveRun(container *app.Container, prompt string, result domain.PipelineResult, executed bool, exitCode int) {
	if container.History == nil {
		return
	}
	err := container.History.Save(domain.HistoryRecord{
		RunID:      result.RunID,
		Timestamp:  time.Now(),
		Prompt:     prompt,
		Command:    result.Generation.Command,
		Backend:    result.Generation.Backend,
		RiskLevel:  result.Validation.Level,
		Refused:    result.Validation.Refused,
		Executed:   executed,
		ExitCode:   exitCode,
		Latency:    result.Generation.Elapsed,
		TokenCount: result.Generation.TokenCount,
	})
	if err != nil {
		container.Logger.Warn("failed to save run history", map[string]interface{}{"error": err.Error()})
	}
}

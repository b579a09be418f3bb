package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/carohq/cmdai/internal/domain"
	"github.com/carohq/cmdai/internal/ports"
)

// Prompter implements ConfirmationPrompter over stdio. Enabled reports
// false when stdin is not a terminal, so scripted invocations never hang
// waiting for input.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewPrompter constructs a prompter referencing stdio. Nil arguments fall
// back to os.Stdin/os.Stdout.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	interactive := true
	if in == nil {
		in = os.Stdin
		interactive = isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
	if out == nil {
		out = os.Stdout
	}
	return &Prompter{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: interactive,
	}
}

// Enabled reports whether the prompter can actually ask.
func (p *Prompter) Enabled() bool {
	return p.interactive
}

// Confirm asks the user for one confirmation step.
func (p *Prompter) Confirm(confirmation domain.ConfirmationType, verdict domain.ValidationResult, command string) (bool, error) {
	switch confirmation {
	case domain.ConfirmProceed:
		return p.ask("Execute? [y/N]: ")

	case domain.ConfirmExplicit:
		fmt.Fprintf(p.out, "\n%s risk: %s\n", strings.ToUpper(string(verdict.Level)), verdict.Explanation)
		for _, alt := range verdict.Alternatives {
			fmt.Fprintf(p.out, "  safer: %s\n", alt)
		}
		fmt.Fprint(p.out, "Type 'yes' to execute anyway: ")
		line, err := p.readLine()
		if err != nil {
			return false, err
		}
		return line == "yes", nil

	case domain.ConfirmOverride:
		fmt.Fprintf(p.out, "\nCRITICAL risk override requested.\n")
		fmt.Fprintf(p.out, "Type the command exactly to confirm you understand what it does:\n  %s\n> ", command)
		line, err := p.readLine()
		if err != nil {
			return false, err
		}
		return line == strings.TrimSpace(command), nil

	default:
		return false, fmt.Errorf("unknown confirmation type %q", confirmation)
	}
}

func (p *Prompter) ask(prompt string) (bool, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.readLine()
	if err != nil {
		return false, err
	}
	line = strings.ToLower(line)
	return line == "y" || line == "yes", nil
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

var _ ports.ConfirmationPrompter = (*Prompter)(nil)

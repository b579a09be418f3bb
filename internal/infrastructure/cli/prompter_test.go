package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/carohq/cmdai/internal/domain"
)

func scriptedPrompter(input string) (*Prompter, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return NewPrompter(strings.NewReader(input), out), out
}

func TestPrompterWithInjectedReaderIsEnabled(t *testing.T) {
	p, _ := scriptedPrompter("")
	if !p.Enabled() {
		t.Fatal("an injected reader must keep the prompter interactive")
	}
}

func TestConfirmProceed(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"n\n", false},
		{"\n", false},
	}
	for _, tc := range cases {
		p, out := scriptedPrompter(tc.input)
		ok, err := p.Confirm(domain.ConfirmProceed, domain.ValidationResult{}, "ls")
		if err != nil {
			t.Fatalf("input %q: unexpected error: %v", tc.input, err)
		}
		if ok != tc.want {
			t.Fatalf("input %q: got %v, want %v", tc.input, ok, tc.want)
		}
		if !strings.Contains(out.String(), "Execute?") {
			t.Fatalf("missing prompt text: %q", out.String())
		}
	}
}

func TestConfirmExplicitRequiresFullYes(t *testing.T) {
	verdict := domain.ValidationResult{
		Level:        domain.RiskHigh,
		Explanation:  "pipes remote content into a shell",
		Alternatives: []string{"curl -O https://example.com/install.sh"},
	}

	p, out := scriptedPrompter("yes\n")
	ok, err := p.Confirm(domain.ConfirmExplicit, verdict, "curl https://example.com/install.sh | sh")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("typing yes must confirm")
	}
	rendered := out.String()
	if !strings.Contains(rendered, "HIGH") || !strings.Contains(rendered, "safer:") {
		t.Fatalf("explicit prompt missing risk context: %q", rendered)
	}

	p, _ = scriptedPrompter("y\n")
	ok, err = p.Confirm(domain.ConfirmExplicit, verdict, "curl https://example.com/install.sh | sh")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("a bare y must not pass the explicit confirmation")
	}
}

func TestConfirmOverrideRequiresExactCommand(t *testing.T) {
	command := "rm -rf /"

	p, _ := scriptedPrompter(command + "\n")
	ok, err := p.Confirm(domain.ConfirmOverride, domain.ValidationResult{Level: domain.RiskCritical}, command)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("retyping the command must confirm the override")
	}

	p, _ = scriptedPrompter("rm -rf /tmp\n")
	ok, err = p.Confirm(domain.ConfirmOverride, domain.ValidationResult{Level: domain.RiskCritical}, command)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("a mismatched command must not confirm the override")
	}
}

func TestConfirmHandlesEOFWithoutNewline(t *testing.T) {
	p, _ := scriptedPrompter("y")
	ok, err := p.Confirm(domain.ConfirmProceed, domain.ValidationResult{}, "ls")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("a trailing line without newline must still count")
	}
}

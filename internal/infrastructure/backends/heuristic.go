package backends

import (
	"context"
	"strings"

	"github.com/carohq/cmdai/internal/domain"
	"github.com/carohq/cmdai/internal/ports"
)

// heuristicBackend is the offline fallback: a keyword table mapping common
// requests onto safe, read-only commands. It never needs network access,
// so it is always available and anchors the bottom of the fallback chain.
type heuristicBackend struct {
	desc domain.BackendDescriptor
}

func newHeuristicBackend(cfg domain.BackendConfig) ports.Backend {
	return &heuristicBackend{
		desc: domain.BackendDescriptor{
			Name:              cfg.Name,
			Kind:              domain.BackendKindHeuristic,
			Priority:          cfg.Priority,
			SupportsStreaming: false,
			SupportsCancel:    true,
		},
	}
}

func (h *heuristicBackend) Descriptor() domain.BackendDescriptor {
	return h.desc
}

func (h *heuristicBackend) Probe(context.Context) bool {
	return true
}

func (h *heuristicBackend) Invoke(ctx context.Context, req domain.GenerationRequest) <-chan domain.StreamEvent {
	out := make(chan domain.StreamEvent, 4)
	go func() {
		defer close(out)
		command, confidence := guessCommand(req.Prompt)
		if command == "" {
			emit(ctx, out, domain.ErrorEvent("no heuristic matches the request", true))
			return
		}
		if !emit(ctx, out, domain.PartialEvent(command, confidence)) {
			return
		}
		emit(ctx, out, domain.CompletedEvent(domain.GenerationResult{
			Command:     command,
			Explanation: "offline heuristic suggestion",
			Confidence:  confidence,
			Backend:     h.desc.Name,
		}))
	}()
	return out
}

type heuristicRule struct {
	keywords   []string
	command    string
	confidence float64
}

var heuristicRules = []heuristicRule{
	{[]string{"disk", "space"}, "df -h", 0.8},
	{[]string{"disk", "usage"}, "du -sh .", 0.7},
	{[]string{"list", "file"}, "ls -la", 0.8},
	{[]string{"largest", "file"}, "du -ah . | sort -rh | head -n 10", 0.6},
	{[]string{"memory"}, "free -h", 0.7},
	{[]string{"process"}, "ps aux", 0.6},
	{[]string{"port", "listen"}, "ss -tlnp", 0.6},
	{[]string{"git", "status"}, "git status", 0.9},
	{[]string{"git", "branch"}, "git branch -a", 0.8},
	{[]string{"git", "log"}, "git log --oneline -20", 0.8},
	{[]string{"docker", "container"}, "docker ps", 0.8},
	{[]string{"docker", "image"}, "docker images", 0.8},
	{[]string{"docker"}, "docker ps", 0.5},
	{[]string{"pod"}, "kubectl get pods", 0.6},
	{[]string{"ip", "address"}, "ip addr show", 0.7},
	{[]string{"current", "directory"}, "pwd", 0.9},
	{[]string{"environment", "variable"}, "env | sort", 0.7},
	{[]string{"uptime"}, "uptime", 0.9},
	{[]string{"date"}, "date", 0.8},
	{[]string{"who", "logged"}, "who", 0.7},
}

// guessCommand matches the prompt against the rule table. Every keyword of
// a rule must appear; the first match in table order wins.
func guessCommand(prompt string) (string, float64) {
	lowered := strings.ToLower(prompt)
	for _, rule := range heuristicRules {
		matched := true
		for _, kw := range rule.keywords {
			if !strings.Contains(lowered, kw) {
				matched = false
				break
			}
		}
		if matched {
			return rule.command, rule.confidence
		}
	}
	return "", 0
}

// Compile-time interface compliance check
var _ ports.Backend = (*heuristicBackend)(nil)

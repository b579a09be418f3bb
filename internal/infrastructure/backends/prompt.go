package backends

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/carohq/cmdai/internal/domain"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type promptData struct {
	Prompt       string
	WorkingDir   string
	Shell        string
	OS           string
	User         string
	PriorAttempt string
}

const systemPromptTemplate = `You are cmdai, a cautious shell assistant.
Reply with exactly one shell command inside a fenced code block, then a
one-line explanation. Never invent destructive commands the user did not
ask for.
Current environment:
- Directory: {{.WorkingDir}}
- Shell: {{.Shell}}
- OS: {{.OS}}
{{- if .PriorAttempt}}
The previous suggestion {{.PriorAttempt}} was rejected; propose a different command.
{{- end}}`

// buildMessages renders the chat transcript sent to an inference engine.
func buildMessages(req domain.GenerationRequest) ([]chatMessage, error) {
	data := promptData{
		Prompt:       strings.TrimSpace(req.Prompt),
		WorkingDir:   req.Env.WorkingDir,
		Shell:        req.Env.Shell,
		OS:           req.Env.OS,
		User:         req.Env.User,
		PriorAttempt: req.PriorAttempt,
	}

	tmpl, err := template.New("system").Parse(systemPromptTemplate)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}

	return []chatMessage{
		{Role: "system", Content: strings.TrimSpace(buf.String())},
		{Role: "user", Content: data.Prompt},
	}, nil
}

// extractCommand pulls the command out of a model reply: the first fenced
// code block wins, then an explicit "command:" line, then the raw reply.
func extractCommand(content string) string {
	if code := extractCodeBlock(content); code != "" {
		return code
	}
	if cmd := extractCommandLine(content); cmd != "" {
		return cmd
	}
	return strings.TrimSpace(content)
}

func extractCodeBlock(content string) string {
	start := strings.Index(content, "```")
	if start == -1 {
		return ""
	}
	suffix := content[start+3:]
	end := strings.Index(suffix, "```")
	if end == -1 {
		return ""
	}

	block := suffix[:end]
	lines := strings.Split(block, "\n")
	if len(lines) > 0 {
		switch strings.TrimSpace(lines[0]) {
		case "sh", "bash", "shell", "zsh", "console":
			lines = lines[1:]
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func extractCommandLine(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(line), "command:") {
			return strings.TrimSpace(line[len("command:"):])
		}
	}
	return ""
}

// extractExplanation returns the prose surrounding the code block, if any.
func extractExplanation(content, command string) string {
	stripped := content
	if idx := strings.Index(stripped, "```"); idx != -1 {
		head := stripped[:idx]
		tail := ""
		rest := stripped[idx+3:]
		if end := strings.Index(rest, "```"); end != -1 {
			tail = rest[end+3:]
		}
		stripped = head + " " + tail
	} else {
		stripped = strings.Replace(stripped, command, "", 1)
	}
	return strings.TrimSpace(strings.Join(strings.Fields(stripped), " "))
}

package backends

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/carohq/cmdai/internal/domain"
	"github.com/carohq/cmdai/internal/ports"
)

// ollamaBackend talks to a local Ollama daemon over its native chat API.
// Responses stream as newline-delimited JSON, which maps naturally onto
// partial events: every chunk extends the candidate command.
type ollamaBackend struct {
	desc       domain.BackendDescriptor
	endpoint   string
	modelID    string
	maxTokens  int
	httpClient *http.Client
}

func newOllamaBackend(cfg domain.BackendConfig, client *http.Client) ports.Backend {
	return &ollamaBackend{
		desc: domain.BackendDescriptor{
			Name:              cfg.Name,
			Kind:              domain.BackendKindOllama,
			Priority:          cfg.Priority,
			SupportsStreaming: true,
			SupportsCancel:    true,
		},
		endpoint:   valueOrDefault(cfg.Endpoint, "http://localhost:11434"),
		modelID:    valueOrDefault(cfg.ModelID, "llama3.2:3b"),
		maxTokens:  valueOrDefaultInt(cfg.MaxTokens, domain.DefaultMaxTokens),
		httpClient: client,
	}
}

func (o *ollamaBackend) Descriptor() domain.BackendDescriptor {
	return o.desc
}

// Probe checks daemon liveness via the cheap tags listing.
func (o *ollamaBackend) Probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.endpoint+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 400
}

type ollamaChatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  struct {
		NumPredict int `json:"num_predict,omitempty"`
	} `json:"options"`
}

func (o *ollamaBackend) Invoke(ctx context.Context, req domain.GenerationRequest) <-chan domain.StreamEvent {
	out := make(chan domain.StreamEvent, 8)
	go func() {
		defer close(out)
		o.stream(ctx, req, out)
	}()
	return out
}

func (o *ollamaBackend) stream(ctx context.Context, req domain.GenerationRequest, out chan<- domain.StreamEvent) {
	messages, err := buildMessages(req)
	if err != nil {
		emit(ctx, out, domain.ErrorEvent(err.Error(), false))
		return
	}

	payload := ollamaChatRequest{
		Model:    o.modelID,
		Messages: messages,
		Stream:   true,
	}
	payload.Options.NumPredict = o.maxTokens

	body, err := json.Marshal(payload)
	if err != nil {
		emit(ctx, out, domain.ErrorEvent(err.Error(), false))
		return
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint+"/api/chat", bytes.NewReader(body))
	if err != nil {
		emit(ctx, out, domain.ErrorEvent(err.Error(), false))
		return
	}
	httpReq.Header.Set("content-type", "application/json")

	if !emit(ctx, out, domain.ProgressEvent(5, "contacting ollama")) {
		return
	}

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		emit(ctx, out, domain.ErrorEvent(fmt.Sprintf("ollama: %v", err), true))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		emit(ctx, out, domain.ErrorEvent(fmt.Sprintf("ollama: %s", resp.Status), true))
		return
	}

	var (
		reply      strings.Builder
		tokenCount int
	)
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		chunk := gjson.GetBytes(line, "message.content").String()
		if chunk != "" {
			reply.WriteString(chunk)
			candidate := extractCommand(reply.String())
			if candidate != "" {
				if !emit(ctx, out, domain.PartialEvent(candidate, 0.5)) {
					return
				}
			}
		}
		if gjson.GetBytes(line, "done").Bool() {
			tokenCount = int(gjson.GetBytes(line, "eval_count").Int())
			break
		}
	}
	if err := scanner.Err(); err != nil {
		emit(ctx, out, domain.ErrorEvent(fmt.Sprintf("ollama stream: %v", err), true))
		return
	}

	content := reply.String()
	command := extractCommand(content)
	emit(ctx, out, domain.CompletedEvent(domain.GenerationResult{
		Command:     command,
		Explanation: extractExplanation(content, command),
		Confidence:  0.9,
		Backend:     o.desc.Name,
		TokenCount:  tokenCount,
	}))
}

// emit delivers an event unless the backend context is already dead. A
// false return tells the caller to stop producing.
func emit(ctx context.Context, out chan<- domain.StreamEvent, ev domain.StreamEvent) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// Compile-time interface compliance check
var _ ports.Backend = (*ollamaBackend)(nil)

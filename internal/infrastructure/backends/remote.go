package backends

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/carohq/cmdai/internal/domain"
	"github.com/carohq/cmdai/internal/ports"
)

// remoteBackend calls an OpenAI-compatible chat completions endpoint in a
// single shot. The response body is walked with JSON paths so any provider
// that keeps the choices/usage shape works unchanged.
type remoteBackend struct {
	desc       domain.BackendDescriptor
	endpoint   string
	authEnvVar string
	modelID    string
	maxTokens  int
	httpClient *http.Client
}

func newRemoteBackend(cfg domain.BackendConfig, client *http.Client) ports.Backend {
	return &remoteBackend{
		desc: domain.BackendDescriptor{
			Name:              cfg.Name,
			Kind:              domain.BackendKindRemote,
			Priority:          cfg.Priority,
			SupportsStreaming: false,
			SupportsCancel:    true,
		},
		endpoint:   valueOrDefault(cfg.Endpoint, "https://api.openai.com/v1/chat/completions"),
		authEnvVar: cfg.AuthEnvVar,
		modelID:    valueOrDefault(cfg.ModelID, "gpt-4o-mini"),
		maxTokens:  valueOrDefaultInt(cfg.MaxTokens, domain.DefaultMaxTokens),
		httpClient: client,
	}
}

func (r *remoteBackend) Descriptor() domain.BackendDescriptor {
	return r.desc
}

// Probe verifies credentials exist and the models listing answers. Without
// a key the backend reports unavailable instead of burning a request.
func (r *remoteBackend) Probe(ctx context.Context) bool {
	if r.apiKey() == "" {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.modelsURL(), nil)
	if err != nil {
		return false
	}
	req.Header.Set("authorization", "Bearer "+r.apiKey())
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 400
}

func (r *remoteBackend) Invoke(ctx context.Context, req domain.GenerationRequest) <-chan domain.StreamEvent {
	out := make(chan domain.StreamEvent, 8)
	go func() {
		defer close(out)
		r.generate(ctx, req, out)
	}()
	return out
}

func (r *remoteBackend) generate(ctx context.Context, req domain.GenerationRequest, out chan<- domain.StreamEvent) {
	key := r.apiKey()
	if key == "" {
		emit(ctx, out, domain.ErrorEvent(fmt.Sprintf("remote: %s is not set", valueOrDefault(r.authEnvVar, "API key env var")), true))
		return
	}

	messages, err := buildMessages(req)
	if err != nil {
		emit(ctx, out, domain.ErrorEvent(err.Error(), false))
		return
	}

	payload := struct {
		Model     string        `json:"model"`
		Messages  []chatMessage `json:"messages"`
		MaxTokens int           `json:"max_tokens,omitempty"`
	}{
		Model:     r.modelID,
		Messages:  messages,
		MaxTokens: r.maxTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		emit(ctx, out, domain.ErrorEvent(err.Error(), false))
		return
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		emit(ctx, out, domain.ErrorEvent(err.Error(), false))
		return
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("authorization", "Bearer "+key)

	if !emit(ctx, out, domain.ProgressEvent(10, "contacting "+r.desc.Name)) {
		return
	}

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		emit(ctx, out, domain.ErrorEvent(fmt.Sprintf("remote: %v", err), true))
		return
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		emit(ctx, out, domain.ErrorEvent(fmt.Sprintf("remote: %v", err), true))
		return
	}
	if resp.StatusCode >= 400 {
		detail := gjson.GetBytes(raw, "error.message").String()
		if detail == "" {
			detail = resp.Status
		}
		emit(ctx, out, domain.ErrorEvent(fmt.Sprintf("remote: %s", detail), resp.StatusCode >= 500))
		return
	}

	if !emit(ctx, out, domain.ProgressEvent(80, "parsing response")) {
		return
	}

	content := strings.TrimSpace(gjson.GetBytes(raw, "choices.0.message.content").String())
	if content == "" {
		emit(ctx, out, domain.ErrorEvent("remote: response carried no content", true))
		return
	}

	command := extractCommand(content)
	emit(ctx, out, domain.CompletedEvent(domain.GenerationResult{
		Command:     command,
		Explanation: extractExplanation(content, command),
		Confidence:  0.85,
		Backend:     r.desc.Name,
		TokenCount:  int(gjson.GetBytes(raw, "usage.total_tokens").Int()),
	}))
}

func (r *remoteBackend) apiKey() string {
	if r.authEnvVar == "" {
		return ""
	}
	return os.Getenv(r.authEnvVar)
}

// modelsURL rewrites the chat completions endpoint into its sibling models
// listing, keeping provider-specific path prefixes intact.
func (r *remoteBackend) modelsURL() string {
	parsed, err := url.Parse(r.endpoint)
	if err != nil {
		return r.endpoint
	}
	if idx := strings.Index(parsed.Path, "/chat/completions"); idx != -1 {
		parsed.Path = parsed.Path[:idx] + "/models"
	}
	return parsed.String()
}

// Compile-time interface compliance check
var _ ports.Backend = (*remoteBackend)(nil)

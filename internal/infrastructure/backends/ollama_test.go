package backends

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/carohq/cmdai/internal/domain"
)

func drain(t *testing.T, events <-chan domain.StreamEvent) []domain.StreamEvent {
	t.Helper()
	var out []domain.StreamEvent
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, open := <-events:
			if !open {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatal("timed out draining events")
		}
	}
}

func lastEvent(t *testing.T, events []domain.StreamEvent) domain.StreamEvent {
	t.Helper()
	if len(events) == 0 {
		t.Fatal("no events emitted")
	}
	return events[len(events)-1]
}

func TestOllamaStreamsToCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("content-type", "application/x-ndjson")
		w.Write([]byte(`{"message":{"content":"` + "```sh\\nls -la\\n```" + `"},"done":false}` + "\n"))
		w.Write([]byte(`{"message":{"content":"\nLists all files."},"done":false}` + "\n"))
		w.Write([]byte(`{"done":true,"eval_count":42}` + "\n"))
	}))
	defer srv.Close()

	backend := newOllamaBackend(domain.BackendConfig{
		Name:     "ollama-test",
		Kind:     "ollama",
		Endpoint: srv.URL,
	}, srv.Client())

	events := drain(t, backend.Invoke(context.Background(), domain.GenerationRequest{Prompt: "list files"}))

	last := lastEvent(t, events)
	if last.Kind != domain.EventCompleted {
		t.Fatalf("expected completion, got %s", last.Kind)
	}
	if last.Result.Command != "ls -la" {
		t.Fatalf("unexpected command %q", last.Result.Command)
	}
	if last.Result.TokenCount != 42 {
		t.Fatalf("expected eval_count to carry through, got %d", last.Result.TokenCount)
	}

	var sawPartial bool
	for _, ev := range events {
		if ev.Kind == domain.EventPartial {
			sawPartial = true
		}
	}
	if !sawPartial {
		t.Fatal("streaming chunks must surface as partial events")
	}
}

func TestOllamaServerErrorIsRecoverable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	backend := newOllamaBackend(domain.BackendConfig{Name: "ollama-test", Endpoint: srv.URL}, srv.Client())
	events := drain(t, backend.Invoke(context.Background(), domain.GenerationRequest{Prompt: "x"}))

	last := lastEvent(t, events)
	if last.Kind != domain.EventError {
		t.Fatalf("expected error event, got %s", last.Kind)
	}
	if !last.Err.Recoverable {
		t.Fatal("server-side errors must allow a fallback attempt")
	}
}

func TestOllamaProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	backend := newOllamaBackend(domain.BackendConfig{Name: "ollama-test", Endpoint: srv.URL}, srv.Client())
	if !backend.Probe(context.Background()) {
		t.Fatal("expected probe to succeed")
	}

	srv.Close()
	if backend.Probe(context.Background()) {
		t.Fatal("expected probe to fail against a closed server")
	}
}

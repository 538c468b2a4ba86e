package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stratoguide/internal/domain/ports/adapter"
)

func TestGroqAdapter_ChatWithUsage(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "llama-3.1-8b-instant",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Talk to customers."}}],
  "usage": {"prompt_tokens": 12, "completion_tokens": 4, "total_tokens": 16}
}`))
	}))
	defer srv.Close()

	g, err := NewGroqAdapter("test-key", srv.URL+"/openai/v1/", "", 256, 0)
	if err != nil {
		t.Fatal(err)
	}
	text, u, err := g.ChatWithUsage(context.Background(), "", []adapter.Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "How do I validate?"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if text != "Talk to customers." {
		t.Fatalf("text = %q", text)
	}
	if u.PromptTokens != 12 || u.TotalTokens != 16 {
		t.Fatalf("usage = %+v", u)
	}
	if got.Model != "llama-3.1-8b-instant" || len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Fatalf("request = %+v", got)
	}
}

func TestGroqAdapter_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "bad model", "type": "invalid_request_error"}}`))
	}))
	defer srv.Close()

	g, _ := NewGroqAdapter("k", srv.URL+"/", "nope", 0, 0)
	if _, err := g.Chat(context.Background(), "", []adapter.Message{{Role: "user", Content: "hi"}}); err == nil {
		t.Fatal("want error")
	}
}

func TestNewGroqAdapter_RequiresKey(t *testing.T) {
	if _, err := NewGroqAdapter("", "", "", 0, 0); err == nil {
		t.Fatal("want error for empty key")
	}
}

func TestToGenAIContents_SplitsSystem(t *testing.T) {
	sys, contents := toGenAIContents([]adapter.Message{
		{Role: "system", Content: "rules"},
		{Role: "user", Content: "q"},
		{Role: "assistant", Content: "a"},
	})
	if sys != "rules" || len(contents) != 2 || contents[1].Role != "model" {
		t.Fatalf("sys=%q contents=%d", sys, len(contents))
	}
}

func TestNoopAIAdapter_EchoesQuestion(t *testing.T) {
	a := NewNoopAIAdapter(0)
	out, err := a.Chat(context.Background(), "", []adapter.Message{{Role: "user", Content: "CONTEXT:\nx\n\nUSER QUESTION:\nWhat is PMF?"}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"What is PMF?"`) {
		t.Fatalf("out = %q", out)
	}
}

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIClientMergeLecture(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Fatalf("unexpected auth header: %q", got)
		}
		var payload struct {
			Model       string    `json:"model"`
			Messages    []Message `json:"messages"`
			Temperature float64   `json:"temperature"`
			MaxTokens   int       `json:"max_tokens"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload.MaxTokens != 4000 {
			t.Fatalf("expected max_tokens 4000, got %d", payload.MaxTokens)
		}
		prompt := payload.Messages[1].Content
		if !strings.Contains(prompt, "Current Notes:\n# Week 1") || !strings.Contains(prompt, "New Lecture Content:\nmitosis") {
			t.Fatalf("prompt missing sections: %s", prompt)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"  # Week 1\n- mitosis  "}}]}`))
	}))
	defer server.Close()

	c := &client{backend: &openAIClient{apiKey: "sk-test", model: "m", base: server.URL + "/v1", client: server.Client()}}
	merged, err := c.MergeLecture(context.Background(), "# Week 1", "mitosis")
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if merged != "# Week 1\n- mitosis" {
		t.Fatalf("unexpected merged notes: %q", merged)
	}
}

func TestOpenAIClientNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	c := &client{backend: &openAIClient{apiKey: "k", model: "m", base: server.URL, client: server.Client()}}
	if _, err := c.Diagram(context.Background(), "anything"); err == nil {
		t.Fatal("expected error when no choices are returned")
	}
}

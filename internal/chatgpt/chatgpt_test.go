package chatgpt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestComplete(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float32 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer token")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  Një përmbledhje.  "},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	c, err := NewClient(Config{
		APIKey:       "test-key",
		BaseURL:      server.URL + "/v1",
		Model:        "gpt-4o-mini",
		SystemPrompt: "You summarize news.",
		MaxTokens:    150,
		Temperature:  0.3,
	})
	if err != nil {
		t.Fatal(err)
	}

	out, err := c.Complete(context.Background(), "Summarize: x")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "Një përmbledhje." {
		t.Fatalf("unexpected completion %q", out)
	}

	if got.Model != "gpt-4o-mini" || got.MaxTokens != 150 {
		t.Errorf("unexpected request: %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "Summarize: x" {
		t.Errorf("unexpected messages: %+v", got.Messages)
	}
}

func TestCompleteHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
	}))
	defer server.Close()

	c, err := NewClient(Config{APIKey: "k", BaseURL: server.URL + "/v1"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Complete(context.Background(), "x"); err == nil {
		t.Fatalf("expected error on 429")
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatalf("expected error without API key")
	}
}

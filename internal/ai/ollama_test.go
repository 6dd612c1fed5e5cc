package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestOllamaGenerateSuccess(t *testing.T) {
	var captured ollamaChatRequest
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message":           map[string]any{"role": "assistant", "content": "hello from ollama"},
			"done":              true,
			"prompt_eval_count": 7,
			"eval_count":        3,
		})
	}))
	defer srv.Close()

	c := NewOllamaClient(RuntimeConfig{BaseURL: srv.URL, HTTPTimeout: 2 * time.Second, RetryMax: 1})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	messages := []Message{
		{Role: "system", Content: "You are a helpful assistant"},
		{Role: "user", Content: "Hello"},
	}
	resp, err := c.Generate(ctx, GenerateRequest{Model: "llama3:latest", Messages: messages, MaxTokens: 16, JSON: true})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if resp.Text() != "hello from ollama" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.RequestID == "" || resp.Usage.TotalTokens != 10 {
		t.Fatalf("unexpected metadata: %+v", resp)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" {
		t.Fatalf("messages not preserved: %+v", captured.Messages)
	}
	if captured.Format != "json" || captured.Stream {
		t.Fatalf("unexpected request flags: %+v", captured)
	}
	if captured.Options["num_predict"] != float64(16) {
		t.Fatalf("num_predict not forwarded: %v", captured.Options)
	}
}

func TestOllamaMissingModelIsTyped(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "model 'x' not found, try pulling it first"})
	}))
	defer srv.Close()

	c := NewOllamaClient(RuntimeConfig{BaseURL: srv.URL, RetryMax: 1})
	_, err := c.Generate(context.Background(), GenerateRequest{Model: "x", Messages: userMsg("hi")})
	var nf *ModelNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected ModelNotFoundError, got %T: %v", err, err)
	}
	if nf.Message == "" {
		t.Fatalf("expected message from string error envelope")
	}
}

func TestOllamaUnreachable(t *testing.T) {
	srv := newIPv4Server(t, http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewOllamaClient(RuntimeConfig{BaseURL: url, RetryMax: 1, HTTPTimeout: time.Second})
	_, err := c.Generate(context.Background(), GenerateRequest{Model: "x", Messages: userMsg("hi")})
	var ue *UnreachableError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnreachableError, got %T: %v", err, err)
	}
}

func TestOllamaGenerateEmptyMessages(t *testing.T) {
	c := NewOllamaClient(RuntimeConfig{})
	_, err := c.Generate(context.Background(), GenerateRequest{Model: "llama3:latest", Messages: []Message{}})
	if err == nil || err.Error() != "messages cannot be empty" {
		t.Fatalf("expected 'messages cannot be empty' error, got: %v", err)
	}
}

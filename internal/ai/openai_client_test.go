package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIClient_Generate(t *testing.T) {
	var captured openAIRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": [{"message": {"content": "{\"events\": []}"}}]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient("test-key", "")
	client.baseURL = server.URL

	text, err := client.Generate(context.Background(), "find the logo", [][]byte{{0xff, 0xd8}, {0xff, 0xd9}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != `{"events": []}` {
		t.Errorf("unexpected content %q", text)
	}

	if captured.Model != defaultOpenAIModel {
		t.Errorf("expected model %q, got %q", defaultOpenAIModel, captured.Model)
	}
	if len(captured.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(captured.Messages))
	}
	parts := captured.Messages[0].Content
	if len(parts) != 3 {
		t.Fatalf("expected text plus 2 images, got %d parts", len(parts))
	}
	if parts[0].Type != "text" || parts[0].Text != "find the logo" {
		t.Errorf("unexpected first part %+v", parts[0])
	}
	for _, p := range parts[1:] {
		if p.ImageURL == nil || !strings.HasPrefix(p.ImageURL.URL, "data:image/jpeg;base64,") {
			t.Errorf("expected jpeg data url, got %+v", p)
		}
	}
}

func TestOpenAIClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"api error", http.StatusTooManyRequests, `{"error": {"message": "rate limited", "type": "requests"}}`},
		{"bad status", http.StatusInternalServerError, `{}`},
		{"no choices", http.StatusOK, `{"choices": []}`},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewOpenAIClient("test-key", "gpt-4o-mini")
			client.baseURL = server.URL

			if _, err := client.Generate(context.Background(), "prompt", nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}

package ai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/genai"
)

func TestGenerateConfig_RequestsJSON(t *testing.T) {
	cfg := generateConfig()
	if cfg == nil {
		t.Fatal("expected a generation config")
	}
	if cfg.ResponseMIMEType != "application/json" {
		t.Errorf("expected application/json, got %q", cfg.ResponseMIMEType)
	}
}

func TestGeminiClient_Generate(t *testing.T) {
	var body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("failed to read request: %v", err)
		}
		body = string(data)
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates": [{"content": {"role": "model", "parts": [{"text": "{\"events\": []}"}]}}]}`))
	}))
	defer server.Close()

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend:     genai.BackendGeminiAPI,
		APIKey:      "test-key",
		HTTPOptions: genai.HTTPOptions{BaseURL: server.URL},
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	gemini := &GeminiClient{client: client, model: defaultGeminiModel}

	text, err := gemini.Generate(ctx, "find the logo", [][]byte{{0xff, 0xd8}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != `{"events": []}` {
		t.Errorf("unexpected content %q", text)
	}
	if !strings.Contains(body, `"responseMimeType":"application/json"`) {
		t.Errorf("expected JSON response mode in request, got %s", body)
	}
}

func TestNewGeminiClient_RequiresCredentials(t *testing.T) {
	if _, err := NewGeminiClient(context.Background(), "", "", "", ""); err == nil {
		t.Error("expected an error without project or API key")
	}
}

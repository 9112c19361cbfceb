package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash-001"

type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient talks to Vertex AI when project is set (credentials come
// from Application Default Credentials), otherwise to the Gemini API with apiKey.
func NewGeminiClient(ctx context.Context, project, location, apiKey, model string) (*GeminiClient, error) {
	if model == "" {
		model = defaultGeminiModel
	}

	cc := &genai.ClientConfig{}
	switch {
	case project != "":
		cc.Backend = genai.BackendVertexAI
		cc.Project = project
		cc.Location = location
	case apiKey != "":
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = apiKey
	default:
		return nil, fmt.Errorf("gemini requires a Google Cloud project or an API key")
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string, images [][]byte) (string, error) {
	parts := make([]*genai.Part, 0, len(images)+1)
	parts = append(parts, genai.NewPartFromText(prompt))
	for _, img := range images {
		parts = append(parts, genai.NewPartFromBytes(img, "image/jpeg"))
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, generateConfig())
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from gemini")
	}
	return text, nil
}

// generateConfig asks for a bare JSON body so the reply needs no fence
// stripping.
func generateConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
}

package summarizer

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"eo-tracker/config"
)

// vertexGenerator runs the same prompt against Vertex AI, authenticating
// with the ambient GCP credentials instead of an API key.
type vertexGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
}

func newVertexGenerator(ctx context.Context, cfg config.LLMConfig) (*vertexGenerator, error) {
	if cfg.VertexProject == "" || cfg.VertexLocation == "" {
		return nil, fmt.Errorf("vertex provider requires vertex_project and vertex_location")
	}

	client, err := genai.NewClient(ctx, cfg.VertexProject, cfg.VertexLocation)
	if err != nil {
		return nil, fmt.Errorf("create vertex client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SYSTEM_INSTRUCTION)},
	}

	return &vertexGenerator{client: client, model: model, name: cfg.Model}, nil
}

func (g *vertexGenerator) ModelName() string { return g.name }

func (g *vertexGenerator) Summarize(ctx context.Context, text string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(text))
	if err != nil {
		return "", &GenerationError{Backend: "vertex", Err: err}
	}

	summary := extractText(resp)
	if summary == "" {
		return "", &GenerationError{Backend: "vertex", Err: fmt.Errorf("empty response")}
	}
	return summary, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(b.String())
}

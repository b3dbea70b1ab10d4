package summarizer

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"eo-tracker/config"
)

// geminiGenerator calls the hosted Gemini API with an API key from the
// GEMINI_API_KEY environment variable.
type geminiGenerator struct {
	client *genai.Client
	model  string
}

func newGeminiGenerator(ctx context.Context, cfg config.LLMConfig) (*geminiGenerator, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &geminiGenerator{client: client, model: cfg.Model}, nil
}

func (g *geminiGenerator) ModelName() string { return g.model }

func (g *geminiGenerator) Summarize(ctx context.Context, text string) (string, error) {
	result, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(text),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: SYSTEM_INSTRUCTION}}},
		},
	)
	if err != nil {
		return "", &GenerationError{Backend: "gemini", Err: err}
	}

	summary := strings.TrimSpace(result.Text())
	if summary == "" {
		return "", &GenerationError{Backend: "gemini", Err: fmt.Errorf("empty response")}
	}
	return summary, nil
}

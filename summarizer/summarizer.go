// Package summarizer generates natural-language summaries of executive
// order text. Two interchangeable backends exist, the Gemini API
// (API-key) and Vertex AI (GCP-hosted inference), selected once at
// startup from configuration and never mixed at runtime. Retry logic is
// the queue's responsibility, not the generator's.
package summarizer

import (
	"context"
	"fmt"

	"eo-tracker/config"
)

const SYSTEM_INSTRUCTION = `
You are a plain-language explainer of United States executive orders, writing for a general audience with no legal background.
Given the full text of an executive order, produce a Markdown summary with EXACTLY this section structure:

## What It Does
A short paragraph stating what the order actually changes, in everyday language.

## Why It Matters
A short paragraph on practical consequences.

## Who Is Affected
A short paragraph or bullet list naming the agencies, industries, or groups the order touches.

## Key Provisions
A bullet list of the order's concrete directives.

## Background
A short paragraph of relevant context (prior orders, statutes, events).

## FAQ
At least 5 question-and-answer entries, each formatted as:
**Q: <question>**
A: <answer>

Additional constraints:
- Be neutral and factual; do not editorialize or speculate about motives.
- Do not wrap the output in a code fence. Respond with the raw Markdown only.
- Do not invent provisions that are not in the text.
`

// GenerationError marks a summarization backend failure or an unusable
// response. The queue converts it into a failed item eligible for retry.
type GenerationError struct {
	Backend string
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("summary generation failed (%s backend): %v", e.Backend, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Generator is the summarization capability.
type Generator interface {
	// Summarize returns a Markdown summary of the given document text.
	Summarize(ctx context.Context, text string) (string, error)

	// ModelName identifies the backing model, recorded on each summary.
	ModelName() string
}

// New builds the configured backend.
func New(ctx context.Context, cfg config.LLMConfig) (Generator, error) {
	switch cfg.Provider {
	case "gemini":
		return newGeminiGenerator(ctx, cfg)
	case "vertex":
		return newVertexGenerator(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

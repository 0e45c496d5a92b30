package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// GenerationOracle turns a prompt into prose. Callers treat it as a
// black box: failures degrade the operation, they never crash it.
type GenerationOracle interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenerationModelName is the Gemini model used for answer and document
// generation.
const GenerationModelName = "gemini-1.5-pro"

var ErrEmptyGeneration = errors.New("generation returned no text")

// GeminiOracle implements GenerationOracle on the Gemini API with a
// near-deterministic configuration, which legal output calls for.
type GeminiOracle struct {
	model *genai.GenerativeModel
}

// NewGeminiOracle creates a generation oracle backed by the given client.
func NewGeminiOracle(client *genai.Client) *GeminiOracle {
	model := client.GenerativeModel(GenerationModelName)
	model.SetTemperature(0.1)
	model.SetTopP(0.95)
	model.SetTopK(40)
	model.SetMaxOutputTokens(3072)

	return &GeminiOracle{model: model}
}

// Generate produces text for the prompt.
func (o *GeminiOracle) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", ErrEmptyGeneration
	}

	return text, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String())
}

// stripJSONFences removes a markdown code fence around a JSON payload.
// The model wraps structured output in ```json fences more often than not.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

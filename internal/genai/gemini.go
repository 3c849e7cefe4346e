// Package genai provides the LLM generation tier of the answer pipeline.
// This file contains the Gemini implementation of the Generator interface.
package genai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	domerrors "github.com/edubot/edubot-go/internal/errors"
)

// geminiGenerator generates chat responses via the Gemini API.
// It implements the Generator interface.
type geminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a Gemini-backed generator.
// Returns nil if apiKey is empty (generation disabled).
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (Generator, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: feature disabled when no API key
	}

	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiGenerator{
		client: client,
		model:  model,
	}, nil
}

// Generate sends the prompt to Gemini and returns the generated text.
// One attempt, no retry; any failure (transport, nil candidates, empty text)
// resolves to ErrGenerationFailure so the caller can route to fallback.
func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.client == nil {
		return "", domerrors.ErrGenerationUnavailable
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](GenerationTemperature),
		MaxOutputTokens: GenerationMaxOutputTokens,
		TopP:            genai.Ptr[float32](GenerationTopP),
		TopK:            genai.Ptr[float32](GenerationTopK),
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "generation API call failed",
			"provider", "gemini",
			"model", g.model,
			"prompt_length", len(prompt),
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return "", fmt.Errorf("%w: %v", domerrors.ErrGenerationFailure, err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: empty response", domerrors.ErrGenerationFailure)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}

	result := strings.TrimSpace(text.String())
	if result == "" {
		return "", fmt.Errorf("%w: no text in response", domerrors.ErrGenerationFailure)
	}

	if resp.UsageMetadata != nil {
		slog.DebugContext(ctx, "generation completed",
			"provider", "gemini",
			"model", g.model,
			"input_tokens", resp.UsageMetadata.PromptTokenCount,
			"output_tokens", resp.UsageMetadata.CandidatesTokenCount,
			"total_tokens", resp.UsageMetadata.TotalTokenCount,
			"duration_ms", duration.Milliseconds(),
			"response_length", len(result))
	}

	return result, nil
}

// IsEnabled returns true when a client is configured.
func (g *geminiGenerator) IsEnabled() bool {
	return g != nil && g.client != nil
}

// Provider returns the provider type for this generator.
func (g *geminiGenerator) Provider() Provider {
	return ProviderGemini
}

// Close releases resources.
// Safe to call on nil receiver.
func (g *geminiGenerator) Close() error {
	if g == nil {
		return nil
	}
	// Note: genai.Client does not require explicit cleanup in current SDK version
	return nil
}

// Package genai provides the LLM generation tier of the answer pipeline.
// This file contains the Groq (OpenAI-compatible) implementation of the
// Generator interface.
package genai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	domerrors "github.com/edubot/edubot-go/internal/errors"
)

// groqGenerator generates chat responses via Groq's OpenAI-compatible API.
// It implements the Generator interface.
type groqGenerator struct {
	client  openai.Client
	model   string
	enabled bool
}

// NewGroqGenerator creates a Groq-backed generator.
// Returns nil if apiKey is empty (generation disabled).
func NewGroqGenerator(_ context.Context, apiKey, model string) (Generator, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: feature disabled when no API key
	}

	if model == "" {
		model = "llama-3.3-70b-versatile"
	}

	client := openai.NewClient(
		option.WithBaseURL(GroqEndpoint),
		option.WithAPIKey(apiKey),
	)

	return &groqGenerator{
		client:  client,
		model:   model,
		enabled: true,
	}, nil
}

// Generate sends the prompt to Groq and returns the generated text.
// One attempt, no retry. TopK is not expressible through the OpenAI-compatible
// API and is omitted for this provider.
func (g *groqGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g == nil || !g.enabled {
		return "", domerrors.ErrGenerationUnavailable
	}

	params := openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(GenerationTemperature),
		MaxTokens:   openai.Int(GenerationMaxOutputTokens),
		TopP:        openai.Float(GenerationTopP),
	}

	start := time.Now()
	resp, err := g.client.Chat.Completions.New(ctx, params)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "generation API call failed",
			"provider", "groq",
			"model", g.model,
			"prompt_length", len(prompt),
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return "", fmt.Errorf("%w: %v", domerrors.ErrGenerationFailure, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", domerrors.ErrGenerationFailure)
	}

	result := strings.TrimSpace(resp.Choices[0].Message.Content)
	if result == "" {
		return "", fmt.Errorf("%w: no text in response", domerrors.ErrGenerationFailure)
	}

	if resp.Usage.TotalTokens > 0 {
		slog.DebugContext(ctx, "generation completed",
			"provider", "groq",
			"model", g.model,
			"input_tokens", resp.Usage.PromptTokens,
			"output_tokens", resp.Usage.CompletionTokens,
			"total_tokens", resp.Usage.TotalTokens,
			"duration_ms", duration.Milliseconds(),
			"response_length", len(result))
	}

	return result, nil
}

// IsEnabled returns true when a client is configured.
func (g *groqGenerator) IsEnabled() bool {
	return g != nil && g.enabled
}

// Provider returns the provider type for this generator.
func (g *groqGenerator) Provider() Provider {
	return ProviderGroq
}

// Close releases resources.
// Safe to call on nil receiver.
func (g *groqGenerator) Close() error {
	return nil
}

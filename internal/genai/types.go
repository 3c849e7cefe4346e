// Package genai provides the LLM generation tier of the answer pipeline.
// This file contains shared types, interfaces, and configuration.
//
// Architecture:
// - Gemini: Uses google.golang.org/genai (official SDK)
// - Groq: Uses github.com/openai/openai-go/v3 (OpenAI-compatible API)
//
// Each provider makes exactly one attempt per call; the chain tries providers
// in order and the resolver falls back to canned responses when all fail.
package genai

import "context"

// Provider represents an LLM provider.
type Provider string

const (
	// ProviderGemini represents Google's Gemini API (non-OpenAI-compatible).
	ProviderGemini Provider = "gemini"
	// ProviderGroq represents Groq's API (OpenAI-compatible, fast inference).
	ProviderGroq Provider = "groq"
	// ProviderNone is reported by a disabled generator.
	ProviderNone Provider = "none"
)

// String returns the string representation of the provider.
func (p Provider) String() string {
	return string(p)
}

// GroqEndpoint is the base URL for Groq's OpenAI-compatible API.
const GroqEndpoint = "https://api.groq.com/openai/v1/"

// Generation parameters shared by all providers. They mirror the values the
// assistant's responses were tuned against.
const (
	GenerationTemperature     = 0.7
	GenerationMaxOutputTokens = 500
	GenerationTopP            = 0.8
	GenerationTopK            = 40
)

// Generator produces a response for an assembled prompt.
//
// Contract: one attempt per call, no internal retry. Implementations never
// panic; every failure path resolves to an error return. An unconfigured
// generator reports IsEnabled() == false and Generate returns
// errors.ErrGenerationUnavailable.
type Generator interface {
	// Generate sends the prompt to the provider and returns generated text.
	Generate(ctx context.Context, prompt string) (string, error)
	// IsEnabled returns true if the generator is configured with a credential.
	IsEnabled() bool
	// Provider returns the provider type for logs and metrics.
	Provider() Provider
	// Close releases any resources held by the generator.
	Close() error
}

// Config holds configuration for the generation chain.
type Config struct {
	// GeminiAPIKey enables the Gemini provider when non-empty.
	GeminiAPIKey string
	// GeminiModel is the Gemini model identifier (default "gemini-2.0-flash").
	GeminiModel string
	// GroqAPIKey enables the Groq fallback provider when non-empty.
	GroqAPIKey string
	// GroqModel is the Groq model identifier (default "llama-3.3-70b-versatile").
	GroqModel string
}

// HasAnyProvider returns true if at least one provider is configured.
func (c *Config) HasAnyProvider() bool {
	return c.GeminiAPIKey != "" || c.GroqAPIKey != ""
}

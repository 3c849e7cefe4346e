// Package genai provides the LLM generation tier of the answer pipeline.
// This file contains the provider chain and its factory.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domerrors "github.com/edubot/edubot-go/internal/errors"
)

// chainGenerator tries each configured provider once, in order.
// It implements the Generator interface.
//
// This is deliberately not a retry loop: each provider gets a single attempt
// per resolution, and exhausting the chain surfaces one error the resolver
// converts into a canned fallback response.
type chainGenerator struct {
	generators []Generator
}

// NewChain builds a generator chain from the configuration.
// Gemini is primary, Groq is the fallback provider. Returns a disabled chain
// (IsEnabled() == false) when no provider is configured, never nil.
func NewChain(ctx context.Context, cfg Config) (Generator, error) {
	generators := make([]Generator, 0, 2)

	gemini, err := NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		slog.WarnContext(ctx, "failed to create gemini generator", "error", err)
	} else if gemini != nil {
		generators = append(generators, gemini)
	}

	groq, err := NewGroqGenerator(ctx, cfg.GroqAPIKey, cfg.GroqModel)
	if err != nil {
		slog.WarnContext(ctx, "failed to create groq generator", "error", err)
	} else if groq != nil {
		generators = append(generators, groq)
	}

	if len(generators) == 0 {
		slog.InfoContext(ctx, "no LLM provider configured, generation disabled")
	} else {
		slog.InfoContext(ctx, "generation chain configured",
			"primary", generators[0].Provider(),
			"chain_size", len(generators))
	}

	return &chainGenerator{generators: generators}, nil
}

// NewChainOf builds a chain from explicit generators. Used by tests and
// callers that construct providers themselves.
func NewChainOf(generators ...Generator) Generator {
	filtered := make([]Generator, 0, len(generators))
	for _, g := range generators {
		if g != nil && g.IsEnabled() {
			filtered = append(filtered, g)
		}
	}
	return &chainGenerator{generators: filtered}
}

// Generate tries each provider once and returns the first success.
// An expired deadline is reported as ErrTimeout so callers can tell a slow
// chain apart from providers that genuinely failed.
func (c *chainGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if len(c.generators) == 0 {
		return "", domerrors.ErrGenerationUnavailable
	}

	var errs []error
	for _, g := range c.generators {
		text, err := g.Generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", g.Provider(), err))

		// A canceled or expired context dooms every remaining provider too
		if ctx.Err() != nil {
			break
		}
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("%w: %v", domerrors.ErrTimeout, errors.Join(errs...))
	}
	return "", fmt.Errorf("%w: all providers failed: %v", domerrors.ErrGenerationFailure, errors.Join(errs...))
}

// IsEnabled returns true if at least one provider is configured.
func (c *chainGenerator) IsEnabled() bool {
	return len(c.generators) > 0
}

// Provider returns the primary provider, or ProviderNone for an empty chain.
func (c *chainGenerator) Provider() Provider {
	if len(c.generators) == 0 {
		return ProviderNone
	}
	return c.generators[0].Provider()
}

// Close closes every generator in the chain.
func (c *chainGenerator) Close() error {
	var errs []error
	for _, g := range c.generators {
		if err := g.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

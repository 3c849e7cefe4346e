// Package resolver implements the three-tier answer pipeline: knowledge base
// lookup first, LLM generation second, canned fallback last.
package resolver

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/edubot/edubot-go/internal/config"
	"github.com/edubot/edubot-go/internal/ctxutil"
	domerrors "github.com/edubot/edubot-go/internal/errors"
	"github.com/edubot/edubot-go/internal/fallback"
	"github.com/edubot/edubot-go/internal/genai"
	"github.com/edubot/edubot-go/internal/knowledge"
	"github.com/edubot/edubot-go/internal/metrics"
	"github.com/edubot/edubot-go/internal/prompt"
	"github.com/edubot/edubot-go/internal/ratelimit"
	"github.com/edubot/edubot-go/internal/storage"
)

// Source identifies which tier produced an answer.
const (
	SourceKnowledgeBase = "knowledge_base"
	SourceLLM           = "llm"
	SourceFallback      = "fallback"
)

// Result is a resolved answer and the tier that produced it.
type Result struct {
	Text   string
	Source string
}

// Resolver runs an utterance through the answer tiers in order.
// Every tier failure degrades to the next tier. Resolve only returns an
// error for invalid input, never for tier failures.
type Resolver struct {
	matcher    *knowledge.Matcher
	generator  genai.Generator
	responder  *fallback.Responder
	builder    *prompt.Builder
	limiter    *ratelimit.SessionLimiter
	metrics    *metrics.Metrics
	llmTimeout time.Duration
}

// Options carries the optional collaborators of a Resolver.
type Options struct {
	// Limiter gates the LLM tier per session. Nil disables gating.
	Limiter *ratelimit.SessionLimiter

	// Metrics records resolution outcomes. Nil disables instrumentation.
	Metrics *metrics.Metrics

	// LLMTimeout bounds one generation call. Zero means config.LLMRequest.
	LLMTimeout time.Duration
}

// New creates a resolver over the given tiers.
// matcher, generator, responder and builder must be non-nil; the generator
// may be a disabled chain when no provider is configured.
func New(matcher *knowledge.Matcher, generator genai.Generator, responder *fallback.Responder, builder *prompt.Builder, opts Options) *Resolver {
	llmTimeout := opts.LLMTimeout
	if llmTimeout <= 0 {
		llmTimeout = config.LLMRequest
	}

	return &Resolver{
		matcher:    matcher,
		generator:  generator,
		responder:  responder,
		builder:    builder,
		limiter:    opts.Limiter,
		metrics:    opts.Metrics,
		llmTimeout: llmTimeout,
	}
}

// Resolve produces an answer for the utterance.
//
// Tier order:
//  1. Knowledge base (course code pattern, then keyword scan)
//  2. LLM generation, when a provider is configured and the session is
//     within its rate limit
//  3. Canned fallback responder, which always produces text
//
// History is the prior conversation in chronological order; it only feeds
// the LLM prompt. Returns ErrInvalidInput for empty or whitespace-only
// utterances.
func (r *Resolver) Resolve(ctx context.Context, utterance string, history []storage.Message) (result Result, err error) {
	trimmed := strings.TrimSpace(utterance)
	if trimmed == "" {
		return Result{}, domerrors.ErrInvalidInput
	}

	start := time.Now()

	// A panic anywhere in the pipeline must not take down the request.
	// Degrade to the fallback tier like any other failure.
	defer func() {
		if rec := recover(); rec != nil {
			slog.ErrorContext(ctx, "resolution panicked, degrading to fallback",
				"panic", rec,
				"utterance_length", len(trimmed))
			result = Result{Text: r.responder.Respond(trimmed), Source: SourceFallback}
			err = nil
			r.recordResolution(result.Source, start)
		}
	}()

	if answer, ok := r.matcher.Match(trimmed); ok {
		r.recordResolution(SourceKnowledgeBase, start)
		return Result{Text: answer, Source: SourceKnowledgeBase}, nil
	}

	if text, ok := r.generate(ctx, trimmed, history); ok {
		r.recordResolution(SourceLLM, start)
		return Result{Text: text, Source: SourceLLM}, nil
	}

	r.recordResolution(SourceFallback, start)
	return Result{Text: r.responder.Respond(trimmed), Source: SourceFallback}, nil
}

// generate runs the LLM tier. Returns false whenever the tier cannot or
// should not answer, so the caller can degrade to the fallback responder.
func (r *Resolver) generate(ctx context.Context, utterance string, history []storage.Message) (string, bool) {
	if r.generator == nil || !r.generator.IsEnabled() {
		return "", false
	}

	provider := r.generator.Provider().String()

	if r.limiter != nil {
		sessionKey := ctxutil.GetSessionKey(ctx)
		if !r.limiter.Allow(sessionKey) {
			slog.InfoContext(ctx, "session over LLM rate limit, degrading to fallback",
				"provider", provider)
			r.metrics.RecordLLMRequest(provider, "rate_limited", 0)
			return "", false
		}
	}

	built := r.builder.Build(utterance, history)

	genCtx, cancel := context.WithTimeout(ctx, r.llmTimeout)
	defer cancel()

	start := time.Now()
	text, err := r.generator.Generate(genCtx, built)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "generation failed, degrading to fallback",
			"provider", provider,
			"duration_ms", duration.Milliseconds(),
			"error", err)
		r.metrics.RecordLLMRequest(provider, "error", duration.Seconds())
		return "", false
	}

	text = strings.TrimSpace(text)
	if text == "" {
		r.metrics.RecordLLMRequest(provider, "error", duration.Seconds())
		return "", false
	}

	r.metrics.RecordLLMRequest(provider, "success", duration.Seconds())
	return text, true
}

func (r *Resolver) recordResolution(source string, start time.Time) {
	r.metrics.RecordResolution(source, time.Since(start).Seconds())
}

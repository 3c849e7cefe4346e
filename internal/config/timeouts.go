// Package config provides application configuration management.
// This file centralizes timeout constants so their relationships stay visible.
package config

import "time"

// Timeout hierarchy. Inner timeouts must be shorter than outer ones, or the
// outer layer cancels work the inner layer still believes it can finish:
//
//	HTTPWrite (30s) > RequestProcessing (20s) > LLMRequest (10s)
const (
	// LLMRequest bounds a single LLM generation call. The adapter makes one
	// attempt per provider with no internal retry, so this is the only place
	// a hung upstream can be cut off.
	LLMRequest = 10 * time.Second

	// RequestProcessing bounds the whole resolve-and-persist path for one
	// message, including the knowledge scan and both storage writes.
	RequestProcessing = 20 * time.Second

	// HTTPRead bounds reading the request body. Chat payloads are small.
	HTTPRead = 10 * time.Second

	// HTTPWrite bounds writing the response, covering RequestProcessing.
	HTTPWrite = 30 * time.Second

	// HTTPIdle bounds keep-alive connections between requests.
	HTTPIdle = 120 * time.Second
)

// Background job cadence.
const (
	// RetentionInitialDelay postpones the first retention sweep so startup
	// traffic settles before the database takes a delete pass.
	RetentionInitialDelay = 1 * time.Minute

	// RetentionInterval is how often stale conversations are pruned.
	RetentionInterval = 12 * time.Hour

	// MetricsRefreshInterval is how often the data size gauges are updated.
	MetricsRefreshInterval = 5 * time.Minute

	// RateLimiterCleanup is how often idle session buckets are dropped.
	RateLimiterCleanup = 5 * time.Minute
)

// Default LLM models. The Gemini model mirrors the generation parameters the
// service was tuned against; the Groq model is the OpenAI-compatible fallback.
const (
	DefaultGeminiModel = "gemini-2.0-flash"
	DefaultGroqModel   = "llama-3.3-70b-versatile"
)

// Package sentry wraps the Sentry Go SDK for Better Stack error tracking.
// Errors raised while resolving answers or serving HTTP are forwarded to
// Better Stack's error collection backend through its Sentry-compatible
// ingest endpoint.
package sentry

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// Config holds the Better Stack error tracking configuration.
type Config struct {
	// Token is the Better Stack Errors application token.
	Token string

	// Host is the Better Stack Errors ingesting host (e.g., "errors.betterstack.com").
	Host string

	// Environment identifies the deployment environment (e.g., "production", "staging").
	Environment string

	// Release identifies the application release version.
	Release string

	// SampleRate controls error sampling (0.0-1.0, default 1.0 = 100%).
	SampleRate float64

	// Debug enables Sentry SDK debug logging.
	Debug bool
}

// Initialize sets up the Sentry SDK against Better Stack.
// If Token is empty, error tracking is disabled and nil is returned.
func Initialize(cfg Config) error {
	if cfg.Token == "" {
		return nil // Error tracking disabled
	}

	if cfg.Host == "" {
		return fmt.Errorf("sentry host is required when token is provided")
	}

	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 1.0
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              buildDSN(cfg.Token, cfg.Host),
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		SampleRate:       sampleRate,
		Debug:            cfg.Debug,
		AttachStacktrace: true,
	})
}

// buildDSN constructs the Better Stack DSN.
// The project ID (/1) is required by the Sentry SDK but ignored by Better Stack.
func buildDSN(token, host string) string {
	return fmt.Sprintf("https://%s@%s/1", token, host)
}

// Flush waits for buffered events to be sent.
// Returns true if all events were sent within the timeout.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// IsEnabled returns true if error tracking is initialized and active.
func IsEnabled() bool {
	return sentry.CurrentHub().Client() != nil
}

// CaptureException forwards an error to Better Stack.
func CaptureException(err error) {
	sentry.CaptureException(err)
}

// CaptureExceptionWithContext forwards an error using the hub bound to the
// request context when one exists.
func CaptureExceptionWithContext(ctx context.Context, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.CaptureException(err)
}

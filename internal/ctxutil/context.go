// Package ctxutil provides type-safe context value management.
// Uses private key types to prevent collisions.
package ctxutil

import (
	"context"
)

type contextKey string

const (
	sessionKeyKey     contextKey = "ctxutil.sessionKey"
	conversationIDKey contextKey = "ctxutil.conversationID"
	requestIDKey      contextKey = "ctxutil.requestID"
)

// WithSessionKey adds a session key to the context.
// The session key identifies the anonymous browser session and is used for
// rate limiting and conversation listing.
func WithSessionKey(ctx context.Context, sessionKey string) context.Context {
	return context.WithValue(ctx, sessionKeyKey, sessionKey)
}

// GetSessionKey retrieves the session key from the context.
// Returns the session key if found, empty string otherwise.
func GetSessionKey(ctx context.Context) string {
	if v := ctx.Value(sessionKeyKey); v != nil {
		if sessionKey, ok := v.(string); ok && sessionKey != "" {
			return sessionKey
		}
	}
	return ""
}

// WithConversationID adds a conversation ID to the context.
func WithConversationID(ctx context.Context, conversationID int64) context.Context {
	return context.WithValue(ctx, conversationIDKey, conversationID)
}

// GetConversationID retrieves the conversation ID from the context.
// Returns the conversation ID and true if found, zero and false otherwise.
func GetConversationID(ctx context.Context) (int64, bool) {
	if v := ctx.Value(conversationIDKey); v != nil {
		if id, ok := v.(int64); ok && id > 0 {
			return id, true
		}
	}
	return 0, false
}

// WithRequestID adds a request ID to the context for tracing.
// Request ID is generated per HTTP request for log correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
// Returns the request ID and true if found, empty string and false otherwise.
func GetRequestID(ctx context.Context) (string, bool) {
	if v := ctx.Value(requestIDKey); v != nil {
		if requestID, ok := v.(string); ok && requestID != "" {
			return requestID, true
		}
	}
	return "", false
}

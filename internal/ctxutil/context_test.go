package ctxutil

import (
	"context"
	"testing"
)

func TestSessionKeyRoundTrip(t *testing.T) {
	ctx := context.Background()

	if got := GetSessionKey(ctx); got != "" {
		t.Errorf("Expected empty session key on fresh context, got %q", got)
	}

	ctx = WithSessionKey(ctx, "sess-123")
	if got := GetSessionKey(ctx); got != "sess-123" {
		t.Errorf("Expected sess-123, got %q", got)
	}
}

func TestConversationIDRoundTrip(t *testing.T) {
	ctx := context.Background()

	if _, ok := GetConversationID(ctx); ok {
		t.Error("Expected no conversation ID on fresh context")
	}

	ctx = WithConversationID(ctx, 42)
	id, ok := GetConversationID(ctx)
	if !ok || id != 42 {
		t.Errorf("Expected (42, true), got (%d, %v)", id, ok)
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := context.Background()

	if _, ok := GetRequestID(ctx); ok {
		t.Error("Expected no request ID on fresh context")
	}

	ctx = WithRequestID(ctx, "req-abc")
	id, ok := GetRequestID(ctx)
	if !ok || id != "req-abc" {
		t.Errorf("Expected (req-abc, true), got (%q, %v)", id, ok)
	}
}

func TestEmptyValuesNotReturned(t *testing.T) {
	ctx := WithSessionKey(context.Background(), "")
	if got := GetSessionKey(ctx); got != "" {
		t.Errorf("Empty session key should not be returned, got %q", got)
	}
}

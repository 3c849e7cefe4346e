package ratelimit

import (
	"testing"
	"time"
)

func newTestSessionLimiter(burst float64) *SessionLimiter {
	return NewSessionLimiter(SessionLimiterConfig{
		Burst:         burst,
		RefillRate:    0.001,
		CleanupPeriod: time.Hour,
	})
}

func TestSessionLimiterIsolatesSessions(t *testing.T) {
	sl := newTestSessionLimiter(1)
	defer sl.Stop()

	if !sl.Allow("alice") {
		t.Fatal("first request for alice should be allowed")
	}
	if sl.Allow("alice") {
		t.Error("second request for alice should be denied")
	}
	if !sl.Allow("bob") {
		t.Error("bob has his own bucket and should be allowed")
	}
}

func TestSessionLimiterEmptyKeyNeverLimited(t *testing.T) {
	sl := newTestSessionLimiter(1)
	defer sl.Stop()

	for i := 0; i < 10; i++ {
		if !sl.Allow("") {
			t.Fatal("empty session key must never be limited")
		}
	}

	if sl.ActiveCount() != 0 {
		t.Errorf("empty key should not create a bucket, got %d active", sl.ActiveCount())
	}
}

func TestSessionLimiterOnDrop(t *testing.T) {
	sl := newTestSessionLimiter(1)
	defer sl.Stop()

	drops := 0
	sl.OnDrop(func() { drops++ })

	sl.Allow("alice")
	sl.Allow("alice")
	sl.Allow("alice")

	if drops != 2 {
		t.Errorf("expected 2 drops, got %d", drops)
	}
}

func TestSessionLimiterAvailable(t *testing.T) {
	sl := newTestSessionLimiter(3)
	defer sl.Stop()

	if got := sl.Available("unknown"); got != 3 {
		t.Errorf("unknown session should report full burst, got %v", got)
	}

	sl.Allow("alice")

	if got := sl.Available("alice"); got >= 3 {
		t.Errorf("alice should have fewer than 3 tokens, got %v", got)
	}
}

func TestSessionLimiterCleanup(t *testing.T) {
	sl := NewSessionLimiter(SessionLimiterConfig{
		Burst:         1,
		RefillRate:    1000, // refills immediately
		CleanupPeriod: 10 * time.Millisecond,
	})
	defer sl.Stop()

	updates := make(chan int, 16)
	sl.OnUpdate(func(count int) {
		select {
		case updates <- count:
		default:
		}
	})

	sl.Allow("alice")
	sl.Allow("bob")

	deadline := time.After(2 * time.Second)
	for {
		select {
		case count := <-updates:
			if count == 0 {
				return
			}
		case <-deadline:
			t.Fatalf("cleanup never removed refilled buckets, %d still active", sl.ActiveCount())
		}
	}
}

func TestSessionLimiterStopIdempotent(t *testing.T) {
	sl := newTestSessionLimiter(1)

	sl.Stop()
	sl.Stop() // must not panic
}

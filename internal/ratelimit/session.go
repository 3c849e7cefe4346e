package ratelimit

import (
	"sync"
	"time"
)

// SessionLimiterConfig configures a SessionLimiter instance.
type SessionLimiterConfig struct {
	Burst         float64       // Maximum tokens per session (burst capacity)
	RefillRate    float64       // Tokens refilled per second
	CleanupPeriod time.Duration // How often to clean up inactive buckets
}

// SessionLimiter tracks LLM usage per session key. Each session gets its own
// token bucket, and buckets that return to full capacity are removed by a
// background cleanup loop.
//
// Over-limit requests are not rejected outright by callers. The resolver
// simply skips the LLM tier and answers from the canned responder instead.
type SessionLimiter struct {
	mu       sync.RWMutex
	buckets  map[string]*Bucket
	config   SessionLimiterConfig
	onDrop   func()          // Optional callback when a request is dropped
	onUpdate func(count int) // Optional callback when active count changes
	stopCh   chan struct{}
}

// NewSessionLimiter creates a per-session rate limiter and starts its
// cleanup goroutine. Call Stop when done.
func NewSessionLimiter(cfg SessionLimiterConfig) *SessionLimiter {
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = 5 * time.Minute
	}

	sl := &SessionLimiter{
		buckets: make(map[string]*Bucket),
		config:  cfg,
		stopCh:  make(chan struct{}),
	}

	go sl.cleanupLoop()

	return sl
}

// OnDrop sets a callback invoked whenever a request exceeds the limit.
func (sl *SessionLimiter) OnDrop(fn func()) {
	sl.onDrop = fn
}

// OnUpdate sets a callback invoked when the active session count changes.
func (sl *SessionLimiter) OnUpdate(fn func(count int)) {
	sl.onUpdate = fn
}

// Allow checks if an LLM request for the given session is allowed.
// Returns true if allowed (token consumed), false if the limit is exceeded.
// An empty session key is never limited.
func (sl *SessionLimiter) Allow(sessionKey string) bool {
	if sessionKey == "" {
		return true
	}

	sl.mu.RLock()
	bucket, exists := sl.buckets[sessionKey]
	sl.mu.RUnlock()

	if !exists {
		sl.mu.Lock()
		// Double-check after acquiring write lock
		bucket, exists = sl.buckets[sessionKey]
		if !exists {
			bucket = NewBucket(sl.config.Burst, sl.config.RefillRate)
			sl.buckets[sessionKey] = bucket
		}
		sl.mu.Unlock()
	}

	allowed := bucket.Allow()
	if !allowed && sl.onDrop != nil {
		sl.onDrop()
	}
	return allowed
}

// Available returns the remaining tokens for a session.
// Returns Burst if the session has no bucket yet.
func (sl *SessionLimiter) Available(sessionKey string) float64 {
	if sessionKey == "" {
		return sl.config.Burst
	}

	sl.mu.RLock()
	bucket, exists := sl.buckets[sessionKey]
	sl.mu.RUnlock()

	if !exists {
		return sl.config.Burst
	}

	return bucket.Available()
}

// ActiveCount returns the number of sessions currently tracked.
func (sl *SessionLimiter) ActiveCount() int {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return len(sl.buckets)
}

// cleanupLoop periodically removes buckets that have refilled completely.
func (sl *SessionLimiter) cleanupLoop() {
	ticker := time.NewTicker(sl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-sl.stopCh:
			return
		case <-ticker.C:
			sl.mu.Lock()
			for key, bucket := range sl.buckets {
				if bucket.IsFull() {
					delete(sl.buckets, key)
				}
			}
			activeCount := len(sl.buckets)
			sl.mu.Unlock()

			if sl.onUpdate != nil {
				sl.onUpdate(activeCount)
			}
		}
	}
}

// Stop gracefully stops the cleanup goroutine.
// Safe to call multiple times.
func (sl *SessionLimiter) Stop() {
	select {
	case <-sl.stopCh:
		// Already stopped
	default:
		close(sl.stopCh)
	}
}

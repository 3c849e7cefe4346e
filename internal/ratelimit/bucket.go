// Package ratelimit provides token bucket rate limiting for the LLM tier.
package ratelimit

import (
	"sync"
	"time"
)

// Bucket implements a token bucket rate limiter.
// It is safe for concurrent use.
//
// Tokens refill at a constant rate (refillRate per second) up to a maximum
// capacity (burst). Each allowed request consumes one token.
type Bucket struct {
	mu         sync.Mutex
	tokens     float64
	burst      float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// NewBucket creates a token bucket starting at full capacity.
//
// Parameters:
//   - burst: maximum number of tokens in the bucket
//   - refillRate: tokens added per second
func NewBucket(burst, refillRate float64) *Bucket {
	return &Bucket{
		tokens:     burst,
		burst:      burst,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// refill adds tokens based on elapsed time since last refill.
// Must be called with mu held.
func (b *Bucket) refill() {
	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()

	b.tokens += elapsed * b.refillRate
	if b.tokens > b.burst {
		b.tokens = b.burst
	}
	b.lastRefill = now
}

// Allow reports whether a request is allowed, consuming one token if so.
// Non-blocking.
func (b *Bucket) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()

	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		return true
	}

	return false
}

// Available returns the current number of available tokens.
func (b *Bucket) Available() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()
	return b.tokens
}

// IsFull returns true if the bucket is back at full capacity.
// Used to detect inactive buckets that can be cleaned up.
func (b *Bucket) IsFull() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()
	return b.tokens >= b.burst
}

// Reset restores the bucket to full capacity.
func (b *Bucket) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens = b.burst
	b.lastRefill = time.Now()
}

package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket implements a token bucket rate limiter
type TokenBucket struct {
	mu         sync.Mutex
	tokens     int
	capacity   int
	rate       int // tokens per second
	lastRefill time.Time
}

// NewTokenBucket creates a new token bucket with the given rate and capacity
func NewTokenBucket(rate, capacity int) *TokenBucket {
	return &TokenBucket{
		tokens:     capacity,
		capacity:   capacity,
		rate:       rate,
		lastRefill: time.Now(),
	}
}

// Allow checks if a request can be allowed and consumes a token if available
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)

	tokensToAdd := int(elapsed.Seconds() * float64(tb.rate))
	if tokensToAdd > 0 {
		tb.tokens += tokensToAdd
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastRefill = now
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// idleTTL is how long an address bucket may go unused before it is swept.
const idleTTL = 10 * time.Minute

type bucketEntry struct {
	bucket   *TokenBucket
	lastSeen time.Time
}

// Limiter applies a per-remote-address token bucket to inbound handshake
// attempts. A rate <= 0 disables limiting entirely (Allow always true).
type Limiter struct {
	mu      sync.Mutex
	rate    int
	burst   int
	buckets map[string]*bucketEntry
	sweepAt time.Time
}

// NewLimiter returns a limiter allowing rate handshakes per second with the
// given burst per remote address. Returns nil when rate <= 0.
func NewLimiter(rate, burst int) *Limiter {
	if rate <= 0 {
		return nil
	}
	if burst < 1 {
		burst = rate
	}
	return &Limiter{
		rate:    rate,
		burst:   burst,
		buckets: make(map[string]*bucketEntry),
		sweepAt: time.Now().Add(idleTTL),
	}
}

// Allow reports whether a handshake attempt from addr may proceed.
// A nil limiter allows everything.
func (l *Limiter) Allow(addr string) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	now := time.Now()
	if now.After(l.sweepAt) {
		for k, e := range l.buckets {
			if now.Sub(e.lastSeen) > idleTTL {
				delete(l.buckets, k)
			}
		}
		l.sweepAt = now.Add(idleTTL)
	}
	e := l.buckets[addr]
	if e == nil {
		e = &bucketEntry{bucket: NewTokenBucket(l.rate, l.burst)}
		l.buckets[addr] = e
	}
	e.lastSeen = now
	l.mu.Unlock()
	return e.bucket.Allow()
}

package ratelimit

import (
	"testing"
	"time"
)

func TestTokenBucket(t *testing.T) {
	bucket := NewTokenBucket(2, 5) // 2 tokens per second, capacity of 5

	// Initial tokens should be at capacity
	for i := 0; i < 5; i++ {
		if !bucket.Allow() {
			t.Errorf("Expected initial request %d to be allowed", i)
		}
	}

	// Next request should be denied (bucket empty)
	if bucket.Allow() {
		t.Error("Expected request to be denied when bucket is empty")
	}

	// Wait and check if tokens are refilled
	time.Sleep(1100 * time.Millisecond)

	if !bucket.Allow() {
		t.Error("Expected request to be allowed after token refill")
	}
	if !bucket.Allow() {
		t.Error("Expected second request to be allowed after token refill")
	}
	if bucket.Allow() {
		t.Error("Expected third request to be denied")
	}
}

func TestLimiterPerAddress(t *testing.T) {
	l := NewLimiter(1, 2)

	// Each address gets its own burst.
	for i := 0; i < 2; i++ {
		if !l.Allow("10.0.0.1") {
			t.Errorf("Expected attempt %d from first address to be allowed", i)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Error("Expected attempt to be denied after burst exhausted")
	}
	if !l.Allow("10.0.0.2") {
		t.Error("Expected attempt from a fresh address to be allowed")
	}
}

func TestLimiterDisabled(t *testing.T) {
	if NewLimiter(0, 5) != nil {
		t.Error("Expected nil limiter when rate is 0")
	}
	var l *Limiter
	for i := 0; i < 100; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatal("Expected nil limiter to allow everything")
		}
	}
}

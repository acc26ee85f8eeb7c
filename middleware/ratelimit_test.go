// middleware/ratelimit_test.go
package middleware

import "testing"

func TestTokenBucketExhaustsAndRefills(t *testing.T) {
	bucket := NewTokenBucket(3, 0) // no refill, 3 tokens

	for i := 0; i < 3; i++ {
		if !bucket.Allow() {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if bucket.Allow() {
		t.Fatal("request 4 should be rejected once the bucket is empty")
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(2, 60)

	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatal("first two requests from one IP should pass")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("third request from the same IP should be limited")
	}
	if !rl.Allow("10.0.0.2") {
		t.Fatal("a different IP should have its own bucket")
	}
}

func TestRateLimitDisabledFlag(t *testing.T) {
	for _, val := range []string{"false", "0", "no"} {
		t.Setenv("RATE_LIMIT_ENABLED", val)
		if !rateLimitDisabled() {
			t.Errorf("RATE_LIMIT_ENABLED=%q should disable the limiter", val)
		}
	}
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	if rateLimitDisabled() {
		t.Error("RATE_LIMIT_ENABLED=true should keep the limiter on")
	}
}

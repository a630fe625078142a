package api

import (
	"testing"
	"time"
)

func TestFailureLimiterWindowAndForget(t *testing.T) {
	t.Parallel()

	limiter := newFailureLimiter(1, time.Hour)
	key := "127.0.0.1"
	now := time.Now().UTC()

	limiter.fail(key, now.Add(-2*time.Hour))
	if limiter.blocked(key, now) {
		t.Fatal("expected old failure to fall out of the window")
	}

	limiter.fail(key, now.Add(-30*time.Minute))
	if !limiter.blocked(key, now) {
		t.Fatal("expected one recent failure to hit limit 1")
	}

	limiter.forget(key)
	if limiter.blocked(key, now) {
		t.Fatal("expected forget to clear failures")
	}
}

func TestFailureLimiterPruneDropsStaleKeys(t *testing.T) {
	t.Parallel()

	limiter := newFailureLimiter(loginAttemptsLimit, 15*time.Minute)
	now := time.Now().UTC()
	limiter.fail("stale", now.Add(-time.Hour))
	limiter.fail("fresh", now.Add(-time.Minute))

	limiter.prune(now)
	if limiter.size() != 1 {
		t.Fatalf("expected one remaining key, got %d", limiter.size())
	}
}

func TestClientLimiterEnforcesBurst(t *testing.T) {
	t.Parallel()

	limiter := newClientLimiter(1, 2)
	now := time.Date(2026, time.March, 2, 12, 0, 0, 0, time.UTC)

	if !limiter.allow("10.0.0.1", now) || !limiter.allow("10.0.0.1", now) {
		t.Fatal("expected burst of two to be allowed")
	}
	if limiter.allow("10.0.0.1", now) {
		t.Fatal("expected third request in the same instant to be rejected")
	}
	if !limiter.allow("10.0.0.2", now) {
		t.Fatal("expected other clients to keep their own bucket")
	}
	if !limiter.allow("10.0.0.1", now.Add(time.Second)) {
		t.Fatal("expected a token to refill after one second")
	}
}

func TestClientLimiterPrunesIdleBuckets(t *testing.T) {
	t.Parallel()

	limiter := newClientLimiter(5, 5)
	now := time.Date(2026, time.March, 2, 12, 0, 0, 0, time.UTC)
	limiter.allow("idle", now.Add(-time.Hour))
	limiter.allow("active", now)

	limiter.prune(now, clientLimiterIdleTTL)
	if limiter.size() != 1 {
		t.Fatalf("expected one bucket after prune, got %d", limiter.size())
	}
}

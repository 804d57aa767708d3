package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// newTestLimiter returns a limiter driven by a manual clock
func newTestLimiter(t *testing.T, cfg RateLimitConfig) (*RateLimiter, *time.Time) {
	t.Helper()
	rl := NewRateLimiter(cfg)
	t.Cleanup(rl.Stop)

	now := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return now }
	return rl, &now
}

// ============================================================================
// NewRateLimiter Tests (Configuration)
// ============================================================================

func TestNewRateLimiter_DefaultConfig(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimitConfig{})
	defer rl.Stop()

	if rl.burst != 60 {
		t.Errorf("expected default burst 60, got %d", rl.burst)
	}
	if float64(rl.limit) != 1 {
		t.Errorf("expected default rate 1/s, got %v", rl.limit)
	}
}

func TestRateLimiter_StopTwice_DoesNotPanic(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimitConfig{})

	rl.Stop()
	rl.Stop()
}

// ============================================================================
// Allow() Tests
// ============================================================================

func TestAllow_BurstThenReject(t *testing.T) {
	t.Parallel()
	rl, _ := newTestLimiter(t, RateLimitConfig{RPS: 1, Burst: 3})

	for i := 0; i < 3; i++ {
		allowed, remaining, _ := rl.Allow("10.0.0.1")
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		if remaining != 2-i {
			t.Errorf("request %d: expected %d remaining, got %d", i+1, 2-i, remaining)
		}
	}

	allowed, remaining, retryAfter := rl.Allow("10.0.0.1")
	if allowed {
		t.Error("fourth request should be rejected")
	}
	if remaining != 0 {
		t.Errorf("expected 0 remaining, got %d", remaining)
	}
	if retryAfter <= 0 || retryAfter > time.Second {
		t.Errorf("expected retry within one second, got %v", retryAfter)
	}
}

func TestAllow_RefillsOverTime(t *testing.T) {
	t.Parallel()
	rl, now := newTestLimiter(t, RateLimitConfig{RPS: 1, Burst: 1})

	if allowed, _, _ := rl.Allow("k"); !allowed {
		t.Fatal("first request should be allowed")
	}
	if allowed, _, _ := rl.Allow("k"); allowed {
		t.Fatal("second request should be rejected")
	}

	*now = now.Add(time.Second)

	if allowed, _, _ := rl.Allow("k"); !allowed {
		t.Error("request after refill should be allowed")
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	t.Parallel()
	rl, _ := newTestLimiter(t, RateLimitConfig{RPS: 1, Burst: 1})

	rl.Allow("a")

	if allowed, _, _ := rl.Allow("b"); !allowed {
		t.Error("different key should have its own bucket")
	}
}

func TestAllow_Concurrent(t *testing.T) {
	t.Parallel()
	rl, _ := newTestLimiter(t, RateLimitConfig{RPS: 1, Burst: 50})

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _, _ := rl.Allow("shared"); ok {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowedCount != 50 {
		t.Errorf("expected exactly 50 allowed, got %d", allowedCount)
	}
}

func TestCleanupIdle_RemovesStaleClients(t *testing.T) {
	t.Parallel()
	rl, now := newTestLimiter(t, RateLimitConfig{Idle: time.Minute})

	rl.Allow("stale")
	*now = now.Add(2 * time.Minute)
	rl.Allow("fresh")
	rl.cleanupIdle()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.clients["stale"]; ok {
		t.Error("expected stale client to be removed")
	}
	if _, ok := rl.clients["fresh"]; !ok {
		t.Error("expected fresh client to remain")
	}
}

// ============================================================================
// RateLimit Middleware Tests
// ============================================================================

func TestRateLimit_SetsHeadersAndRejects(t *testing.T) {
	t.Parallel()
	rl, _ := newTestLimiter(t, RateLimitConfig{RPS: 1, Burst: 1})
	handler := RateLimit(rl)(&captureHandler{})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", rr.Code)
	}
	if rr.Header().Get("X-RateLimit-Limit") != "1" {
		t.Errorf("expected limit header 1, got %q", rr.Header().Get("X-RateLimit-Limit"))
	}

	// Same IP from another source port shares the bucket
	req2 := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req2.RemoteAddr = "192.0.2.1:5678"
	rr2 := httptest.NewRecorder()
	handler.ServeHTTP(rr2, req2)

	if rr2.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rr2.Code)
	}
	if rr2.Header().Get("Retry-After") != "1" {
		t.Errorf("expected Retry-After 1, got %q", rr2.Header().Get("Retry-After"))
	}
}

func TestClientKey_StripsPort(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	req.RemoteAddr = "[2001:db8::1]:443"
	if got := clientKey(req); got != "2001:db8::1" {
		t.Errorf("expected IPv6 host, got %q", got)
	}

	req.RemoteAddr = "no-port"
	if got := clientKey(req); got != "no-port" {
		t.Errorf("expected raw address fallback, got %q", got)
	}
}

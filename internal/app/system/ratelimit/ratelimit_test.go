package ratelimit_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/memberhub/internal/app/system/ratelimit"
)

func TestLimiter_Allow(t *testing.T) {
	l := ratelimit.New(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Error("attempt over the limit should be blocked")
	}
	if !l.Allow("10.0.0.2") {
		t.Error("a different key has its own window")
	}
}

func TestLimiter_WindowExpiry(t *testing.T) {
	l := ratelimit.New(1, 30*time.Millisecond)

	if !l.Allow("k") {
		t.Fatal("first attempt should pass")
	}
	if l.Allow("k") {
		t.Fatal("second attempt in the window should be blocked")
	}
	time.Sleep(50 * time.Millisecond)
	if !l.Allow("k") {
		t.Error("attempt after window expiry should pass")
	}
}

func TestLimiter_Remaining(t *testing.T) {
	l := ratelimit.New(5, time.Minute)
	if got := l.Remaining("k"); got != 5 {
		t.Errorf("fresh key remaining = %d", got)
	}
	l.Allow("k")
	l.Allow("k")
	if got := l.Remaining("k"); got != 3 {
		t.Errorf("remaining = %d, want 3", got)
	}
}

func TestLimiter_Reset(t *testing.T) {
	l := ratelimit.New(1, time.Minute)
	l.Allow("k")
	if l.Allow("k") {
		t.Fatal("should be blocked before reset")
	}
	l.Reset("k")
	if !l.Allow("k") {
		t.Error("reset should reopen the window")
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/auth/login", nil)
	r.RemoteAddr = "192.0.2.10:54321"
	if got := ratelimit.ClientIP(r); got != "192.0.2.10" {
		t.Errorf("remote addr ip = %q", got)
	}

	r.Header.Set("X-Real-IP", "198.51.100.7")
	if got := ratelimit.ClientIP(r); got != "198.51.100.7" {
		t.Errorf("x-real-ip = %q", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 198.51.100.7")
	if got := ratelimit.ClientIP(r); got != "203.0.113.9" {
		t.Errorf("x-forwarded-for = %q", got)
	}
}

func TestLoginLimiter_EmailLimit(t *testing.T) {
	ll := ratelimit.NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)

	for i := 0; i < 2; i++ {
		r := httptest.NewRequest("POST", "/api/auth/login", nil)
		r.RemoteAddr = "192.0.2.10:1000"
		if ok, _ := ll.Check(r, "Target@Example.com"); !ok {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}

	// Same account from a different IP is still blocked.
	r := httptest.NewRequest("POST", "/api/auth/login", nil)
	r.RemoteAddr = "192.0.2.99:1000"
	ok, reason := ll.Check(r, "target@example.com")
	if ok {
		t.Error("third attempt for the account should be blocked")
	}
	if reason == "" {
		t.Error("blocked attempt should carry a reason")
	}

	ll.ResetEmail("TARGET@example.com")
	r = httptest.NewRequest("POST", "/api/auth/login", nil)
	r.RemoteAddr = "192.0.2.99:1000"
	if ok, _ := ll.Check(r, "target@example.com"); !ok {
		t.Error("reset should reopen the account window")
	}
}

func TestLoginLimiter_IPLimit(t *testing.T) {
	ll := ratelimit.NewLoginLimiterWithConfig(2, time.Minute, 100, time.Minute)

	for i := 0; i < 2; i++ {
		r := httptest.NewRequest("POST", "/api/auth/login", nil)
		r.RemoteAddr = "192.0.2.10:1000"
		if ok, _ := ll.Check(r, ""); !ok {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}

	r := httptest.NewRequest("POST", "/api/auth/login", nil)
	r.RemoteAddr = "192.0.2.10:2000"
	if ok, _ := ll.Check(r, ""); ok {
		t.Error("third attempt from the IP should be blocked regardless of port")
	}
}

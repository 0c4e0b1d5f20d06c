// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fakeClock is advanced by hand so lockout tests do not sleep.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestProtection(t *testing.T, maxAttempts int, lockout, window time.Duration) (*LoginProtection, *fakeClock) {
	t.Helper()
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       10,
		IPBurst:           100,
		MaxFailedAttempts: maxAttempts,
		LockoutDuration:   lockout,
		AttemptWindow:     window,
	})
	t.Cleanup(lp.Close)
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	lp.now = clock.now
	return lp, clock
}

func TestDefaultLoginProtectionConfig(t *testing.T) {
	cfg := DefaultLoginProtectionConfig()

	if cfg.IPRateLimit != 0.5 || cfg.IPBurst != 5 {
		t.Errorf("rate = %v burst = %d, want 0.5 and 5", cfg.IPRateLimit, cfg.IPBurst)
	}
	if cfg.MaxFailedAttempts != 5 {
		t.Errorf("MaxFailedAttempts = %d, want 5", cfg.MaxFailedAttempts)
	}
	if cfg.LockoutDuration != 15*time.Minute || cfg.AttemptWindow != 15*time.Minute {
		t.Errorf("lockout = %v window = %v, want 15m", cfg.LockoutDuration, cfg.AttemptWindow)
	}
}

func TestNewLoginProtection_ZeroConfigUsesDefaults(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{})
	defer lp.Close()

	if lp.maxFailedAttempts != 5 {
		t.Errorf("maxFailedAttempts = %d, want 5", lp.maxFailedAttempts)
	}
	if lp.lockoutDuration != 15*time.Minute {
		t.Errorf("lockoutDuration = %v, want 15m", lp.lockoutDuration)
	}
	lp.Close() // idempotent
}

func TestLoginProtection_LockAndExpire(t *testing.T) {
	lp, clock := newTestProtection(t, 3, time.Minute, time.Hour)
	email := "ada@example.com"

	if locked, _ := lp.IsAccountLocked(email); locked {
		t.Fatal("account should not be locked initially")
	}

	for i := 1; i <= 2; i++ {
		if locked, _ := lp.RecordFailedAttempt(email); locked {
			t.Fatalf("attempt %d should not lock", i)
		}
	}
	locked, d := lp.RecordFailedAttempt(email)
	if !locked || d != time.Minute {
		t.Fatalf("third attempt: locked=%v duration=%v, want true 1m", locked, d)
	}

	clock.advance(20 * time.Second)
	locked, remaining := lp.IsAccountLocked(email)
	if !locked || remaining != 40*time.Second {
		t.Errorf("IsAccountLocked() = %v %v, want true 40s", locked, remaining)
	}

	clock.advance(time.Minute)
	if locked, _ := lp.IsAccountLocked(email); locked {
		t.Error("lock should expire")
	}
}

func TestLoginProtection_ExponentialBackoff(t *testing.T) {
	lp, clock := newTestProtection(t, 2, time.Minute, time.Hour)
	email := "ada@example.com"

	want := []time.Duration{time.Minute, 2 * time.Minute, 4 * time.Minute}
	for i, w := range want {
		lp.RecordFailedAttempt(email)
		locked, d := lp.RecordFailedAttempt(email)
		if !locked || d != w {
			t.Errorf("lockout %d = %v %v, want true %v", i+1, locked, d, w)
		}
		clock.advance(d + time.Second)
	}
}

func TestLoginProtection_BackoffCapped(t *testing.T) {
	lp, _ := newTestProtection(t, 1, 10*time.Hour, time.Hour)
	email := "ada@example.com"

	lp.RecordFailedAttempt(email) // first failure only starts the window
	var d time.Duration
	for range 4 {
		_, d = lp.RecordFailedAttempt(email)
	}
	if d != maxLockout {
		t.Errorf("duration = %v, want cap %v", d, maxLockout)
	}
}

func TestLoginProtection_RemainingAttempts(t *testing.T) {
	lp, clock := newTestProtection(t, 5, time.Minute, 10*time.Minute)
	email := "ada@example.com"

	if got := lp.GetRemainingAttempts(email); got != 5 {
		t.Errorf("initial remaining = %d, want 5", got)
	}
	lp.RecordFailedAttempt(email)
	lp.RecordFailedAttempt(email)
	lp.RecordFailedAttempt(email)
	if got := lp.GetRemainingAttempts(email); got != 2 {
		t.Errorf("remaining = %d, want 2", got)
	}

	clock.advance(11 * time.Minute)
	if got := lp.GetRemainingAttempts(email); got != 5 {
		t.Errorf("remaining after window = %d, want 5", got)
	}
	if locked, _ := lp.RecordFailedAttempt(email); locked {
		t.Error("attempt after window should restart the count")
	}
	if got := lp.GetRemainingAttempts(email); got != 4 {
		t.Errorf("remaining = %d, want 4", got)
	}
}

func TestLoginProtection_SuccessClears(t *testing.T) {
	lp, _ := newTestProtection(t, 3, time.Minute, time.Hour)
	email := "ada@example.com"

	lp.RecordFailedAttempt(email)
	lp.RecordFailedAttempt(email)
	lp.RecordSuccessfulLogin(email)

	if got := lp.GetRemainingAttempts(email); got != 3 {
		t.Errorf("remaining = %d, want 3", got)
	}
}

func TestLoginProtection_CleanupStaleEntries(t *testing.T) {
	lp, clock := newTestProtection(t, 5, time.Minute, time.Minute)

	lp.RecordFailedAttempt("old@example.com")
	clock.advance(2 * time.Minute)
	lp.RecordFailedAttempt("new@example.com")

	lp.cleanupStaleEntries()

	lp.attemptsMu.RLock()
	defer lp.attemptsMu.RUnlock()
	if _, ok := lp.failedAttempts["old@example.com"]; ok {
		t.Error("stale entry should be removed")
	}
	if _, ok := lp.failedAttempts["new@example.com"]; !ok {
		t.Error("recent entry should be kept")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xForwarded string
		xRealIP    string
		want       string
	}{
		{"remote addr", "192.168.1.1:12345", "", "", "192.168.1.1"},
		{"remote addr without port", "192.168.1.1", "", "", "192.168.1.1"},
		{"forwarded single", "127.0.0.1:8080", "10.0.0.1", "", "10.0.0.1"},
		{"forwarded multiple", "127.0.0.1:8080", "10.0.0.1, 10.0.0.2", "", "10.0.0.1"},
		{"forwarded with spaces", "127.0.0.1:8080", "  10.0.0.1  ", "", "10.0.0.1"},
		{"real ip", "127.0.0.1:8080", "", "10.0.0.5", "10.0.0.5"},
		{"forwarded wins", "127.0.0.1:8080", "10.0.0.1", "10.0.0.5", "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xForwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.xForwarded)
			}
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}

			if got := GetClientIP(req); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoginProtection_Middleware(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{IPRateLimit: 0.001, IPBurst: 2})
	defer lp.Close()

	h := lp.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(method string) int {
		req := httptest.NewRequest(method, "/login", nil)
		req.RemoteAddr = "10.1.1.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := range 2 {
		if code := do(http.MethodPost); code != http.StatusOK {
			t.Fatalf("POST %d status = %d, want 200", i+1, code)
		}
	}
	if code := do(http.MethodPost); code != http.StatusTooManyRequests {
		t.Errorf("POST over burst status = %d, want 429", code)
	}
	if code := do(http.MethodGet); code != http.StatusOK {
		t.Errorf("GET should never be limited, got %d", code)
	}
}

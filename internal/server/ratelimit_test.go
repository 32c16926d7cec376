package server

import (
	"sync"
	"testing"
	"time"

	"github.com/lawnchairsociety/abyssforge/internal/config"
)

// fakeClock is a settable time source for the limiter
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(cfg config.RateLimitConfig) (*LoginRateLimiter, *fakeClock) {
	clock := newFakeClock()
	return newLoginRateLimiter(cfg, clock.Now), clock
}

func TestLoginRateLimiter_Basic(t *testing.T) {
	rl := NewLoginRateLimiter(config.RateLimitConfig{
		MaxAttempts:       3,
		LockoutSeconds:    1,
		MaxLockoutSeconds: 10,
	})
	defer rl.Stop()

	ip := "192.168.1.1"

	if locked, _ := rl.RecordFailure(ip); locked {
		t.Error("first failure should not trigger lockout")
	}
	if locked, _ := rl.RecordFailure(ip); locked {
		t.Error("second failure should not trigger lockout")
	}

	locked, duration := rl.RecordFailure(ip)
	if !locked {
		t.Error("third failure should trigger lockout")
	}
	if duration != time.Second {
		t.Errorf("lockout duration = %v, want 1s", duration)
	}

	if isLocked, _ := rl.IsLocked(ip); !isLocked {
		t.Error("IP should be locked")
	}
}

func TestLoginRateLimiter_SuccessClears(t *testing.T) {
	rl, _ := newTestLimiter(config.RateLimitConfig{
		MaxAttempts:       3,
		LockoutSeconds:    1,
		MaxLockoutSeconds: 10,
	})

	ip := "192.168.1.1"
	rl.RecordFailure(ip)
	rl.RecordFailure(ip)

	rl.RecordSuccess(ip)

	if locked, _ := rl.RecordFailure(ip); locked {
		t.Error("first failure after success should not trigger lockout")
	}
	if locked, _ := rl.RecordFailure(ip); locked {
		t.Error("second failure after success should not trigger lockout")
	}
}

func TestLoginRateLimiter_LockoutExpires(t *testing.T) {
	rl, clock := newTestLimiter(config.RateLimitConfig{
		MaxAttempts:       1,
		LockoutSeconds:    30,
		MaxLockoutSeconds: 300,
	})

	ip := "192.168.1.1"
	rl.RecordFailure(ip)

	clock.Advance(10 * time.Second)
	locked, remaining := rl.IsLocked(ip)
	if !locked || remaining != 20*time.Second {
		t.Errorf("IsLocked() = %v, %v; want true, 20s", locked, remaining)
	}

	// failures while locked do not extend the lockout
	if locked, d := rl.RecordFailure(ip); !locked || d != 20*time.Second {
		t.Errorf("RecordFailure() while locked = %v, %v; want true, 20s", locked, d)
	}

	clock.Advance(20 * time.Second)
	if locked, _ := rl.IsLocked(ip); locked {
		t.Error("lockout should have expired")
	}
}

func TestLoginRateLimiter_ExponentialBackoff(t *testing.T) {
	rl, clock := newTestLimiter(config.RateLimitConfig{
		MaxAttempts:       1,
		LockoutSeconds:    1,
		MaxLockoutSeconds: 10,
	})

	ip := "192.168.1.1"
	want := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 10 * time.Second}

	for i, w := range want {
		locked, d := rl.RecordFailure(ip)
		if !locked {
			t.Fatalf("lockout %d: expected a lockout", i+1)
		}
		if d != w {
			t.Errorf("lockout %d = %v, want %v", i+1, d, w)
		}
		clock.Advance(d)
	}
}

func TestLoginRateLimiter_MaxLockout(t *testing.T) {
	rl, clock := newTestLimiter(config.RateLimitConfig{
		MaxAttempts:       1,
		LockoutSeconds:    1,
		MaxLockoutSeconds: 2,
	})

	ip := "192.168.1.1"
	_, d := rl.RecordFailure(ip)
	clock.Advance(d)

	for i := 0; i < 3; i++ {
		_, d = rl.RecordFailure(ip)
		if d != 2*time.Second {
			t.Errorf("lockout should be capped at 2s, got %v", d)
		}
		clock.Advance(d)
	}
}

func TestLoginRateLimiter_Defaults(t *testing.T) {
	rl, _ := newTestLimiter(config.RateLimitConfig{})

	ip := "192.168.1.1"
	for i := 0; i < 4; i++ {
		if locked, _ := rl.RecordFailure(ip); locked {
			t.Fatalf("failure %d should not lock with the default of 5 attempts", i+1)
		}
	}
	if _, d := rl.RecordFailure(ip); d != 30*time.Second {
		t.Errorf("default lockout = %v, want 30s", d)
	}
}

func TestLoginRateLimiter_MultipleIPs(t *testing.T) {
	rl, _ := newTestLimiter(config.RateLimitConfig{
		MaxAttempts:       2,
		LockoutSeconds:    1,
		MaxLockoutSeconds: 10,
	})

	ip1 := "192.168.1.1"
	ip2 := "192.168.1.2"

	rl.RecordFailure(ip1)
	rl.RecordFailure(ip1)

	if locked, _ := rl.IsLocked(ip1); !locked {
		t.Error("IP1 should be locked")
	}
	if locked, _ := rl.IsLocked(ip2); locked {
		t.Error("IP2 should not be locked")
	}
	if locked, _ := rl.RecordFailure(ip2); locked {
		t.Error("first failure for IP2 should not trigger lockout")
	}
}

func TestLoginRateLimiter_Attempts(t *testing.T) {
	rl, _ := newTestLimiter(config.RateLimitConfig{
		MaxAttempts:       5,
		LockoutSeconds:    30,
		MaxLockoutSeconds: 300,
	})

	ip := "192.168.1.1"
	if count := rl.Attempts(ip); count != 0 {
		t.Errorf("expected 0 attempts, got %d", count)
	}

	rl.RecordFailure(ip)
	if count := rl.Attempts(ip); count != 1 {
		t.Errorf("expected 1 attempt, got %d", count)
	}

	rl.RecordFailure(ip)
	rl.RecordFailure(ip)
	if count := rl.Attempts(ip); count != 3 {
		t.Errorf("expected 3 attempts, got %d", count)
	}
}

func TestLoginRateLimiter_Cleanup(t *testing.T) {
	rl, clock := newTestLimiter(config.RateLimitConfig{
		MaxAttempts:       1,
		LockoutSeconds:    30,
		MaxLockoutSeconds: 300,
	})

	rl.RecordFailure("192.168.1.1")
	rl.RecordFailure("192.168.1.2")
	rl.RecordSuccess("192.168.1.2")

	rl.cleanup()
	if _, ok := rl.attempts["192.168.1.1"]; !ok {
		t.Fatal("a current lockout should survive cleanup")
	}

	clock.Advance(30*time.Second + rateLimitForgetAfter + time.Second)
	rl.cleanup()
	if len(rl.attempts) != 0 {
		t.Errorf("expected every entry to be forgotten, %d left", len(rl.attempts))
	}
}

func TestLoginRateLimiter_StopTwice(t *testing.T) {
	rl := NewLoginRateLimiter(config.RateLimitConfig{})
	rl.Stop()
	rl.Stop()
}

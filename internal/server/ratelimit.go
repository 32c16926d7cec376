package server

import (
	"sync"
	"time"

	"github.com/lawnchairsociety/abyssforge/internal/config"
)

const (
	rateLimitCleanupInterval = 5 * time.Minute
	rateLimitForgetAfter     = 10 * time.Minute
)

// LoginRateLimiter locks out IPs that keep failing slot passphrases. Each
// lockout doubles the previous one up to the configured cap.
type LoginRateLimiter struct {
	mu          sync.Mutex
	attempts    map[string]*attemptInfo
	maxAttempts int
	lockout     time.Duration
	maxLockout  time.Duration
	now         func() time.Time
	stop        chan struct{}
	stopOnce    sync.Once
}

type attemptInfo struct {
	failed      int
	lockouts    int
	lockedUntil time.Time
}

// NewLoginRateLimiter creates a limiter and starts its cleanup goroutine.
// Zero config values fall back to 5 attempts, 30s and 300s.
func NewLoginRateLimiter(cfg config.RateLimitConfig) *LoginRateLimiter {
	rl := newLoginRateLimiter(cfg, time.Now)
	go rl.cleanupLoop()
	return rl
}

func newLoginRateLimiter(cfg config.RateLimitConfig, now func() time.Time) *LoginRateLimiter {
	rl := &LoginRateLimiter{
		attempts:    make(map[string]*attemptInfo),
		maxAttempts: cfg.MaxAttempts,
		lockout:     time.Duration(cfg.LockoutSeconds) * time.Second,
		maxLockout:  time.Duration(cfg.MaxLockoutSeconds) * time.Second,
		now:         now,
		stop:        make(chan struct{}),
	}
	if rl.maxAttempts <= 0 {
		rl.maxAttempts = 5
	}
	if rl.lockout <= 0 {
		rl.lockout = 30 * time.Second
	}
	if rl.maxLockout <= 0 {
		rl.maxLockout = 300 * time.Second
	}
	return rl
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (rl *LoginRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// IsLocked reports whether ip is locked out and for how much longer
func (rl *LoginRateLimiter) IsLocked(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	info, ok := rl.attempts[ip]
	if !ok {
		return false, 0
	}
	if remaining := info.lockedUntil.Sub(rl.now()); remaining > 0 {
		return true, remaining
	}
	return false, 0
}

// RecordFailure counts a failed login. It returns true with the lockout
// length when this failure (or an earlier one) has locked ip out.
func (rl *LoginRateLimiter) RecordFailure(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	info, ok := rl.attempts[ip]
	if !ok {
		info = &attemptInfo{}
		rl.attempts[ip] = info
	}

	now := rl.now()
	if remaining := info.lockedUntil.Sub(now); remaining > 0 {
		return true, remaining
	}

	info.failed++
	if info.failed < rl.maxAttempts {
		return false, 0
	}

	info.lockouts++
	info.failed = 0
	d := rl.lockoutFor(info.lockouts)
	info.lockedUntil = now.Add(d)
	return true, d
}

// lockoutFor doubles the base lockout per previous lockout, capped
func (rl *LoginRateLimiter) lockoutFor(lockouts int) time.Duration {
	d := rl.lockout
	for i := 1; i < lockouts; i++ {
		if d >= rl.maxLockout/2 {
			return rl.maxLockout
		}
		d *= 2
	}
	return min(d, rl.maxLockout)
}

// RecordSuccess forgets ip's failures
func (rl *LoginRateLimiter) RecordSuccess(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.attempts, ip)
}

// Attempts returns the failures counted toward ip's next lockout
func (rl *LoginRateLimiter) Attempts(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if info, ok := rl.attempts[ip]; ok {
		return info.failed
	}
	return 0
}

func (rl *LoginRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rateLimitCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

// cleanup drops entries unlocked long ago with no pending failures
func (rl *LoginRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rateLimitForgetAfter)
	for ip, info := range rl.attempts {
		if info.failed == 0 && info.lockedUntil.Before(cutoff) {
			delete(rl.attempts, ip)
		}
	}
}

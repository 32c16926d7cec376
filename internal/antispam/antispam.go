// Package antispam throttles how fast one connection may issue commands.
package antispam

import (
	"sync"
	"time"
)

// Config holds command throttle settings
type Config struct {
	Enabled     bool
	MaxCommands int           // commands allowed inside one window
	Window      time.Duration // sliding window length
}

// DefaultConfig allows a quick burst of play and stops scripted floods
func DefaultConfig() Config {
	return Config{
		Enabled:     true,
		MaxCommands: 30,
		Window:      10 * time.Second,
	}
}

// ConfigFromYAML creates a Config from YAML-loaded values. Zero values keep
// the defaults.
func ConfigFromYAML(enabled bool, maxCommands, windowSeconds int) Config {
	cfg := DefaultConfig()
	cfg.Enabled = enabled
	if maxCommands > 0 {
		cfg.MaxCommands = maxCommands
	}
	if windowSeconds > 0 {
		cfg.Window = time.Duration(windowSeconds) * time.Second
	}
	return cfg
}

// Tracker counts the commands of a single connection
type Tracker struct {
	mu     sync.Mutex
	config Config
	now    func() time.Time
	times  []time.Time // oldest first
	denied int
}

// NewTracker creates a tracker with the given config
func NewTracker(config Config) *Tracker {
	return newTracker(config, time.Now)
}

func newTracker(config Config, now func() time.Time) *Tracker {
	if config.MaxCommands <= 0 {
		config.MaxCommands = DefaultConfig().MaxCommands
	}
	if config.Window <= 0 {
		config.Window = DefaultConfig().Window
	}
	return &Tracker{
		config: config,
		now:    now,
		times:  make([]time.Time, 0, config.MaxCommands),
	}
}

// CheckResult is the verdict on one command
type CheckResult struct {
	Allowed     bool
	Reason      string
	WaitSeconds int // set when not allowed
}

// Check records a command if the window has room for it
func (t *Tracker) Check() CheckResult {
	if !t.config.Enabled {
		return CheckResult{Allowed: true}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.expire(now)

	if len(t.times) >= t.config.MaxCommands {
		t.denied++
		remaining := t.times[0].Add(t.config.Window).Sub(now)
		return CheckResult{
			Reason:      "You're sending commands too quickly. Please slow down.",
			WaitSeconds: int(remaining.Seconds()) + 1,
		}
	}

	t.times = append(t.times, now)
	return CheckResult{Allowed: true}
}

// Denied returns how many commands were refused so far
func (t *Tracker) Denied() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.denied
}

// expire drops timestamps that left the window
func (t *Tracker) expire(now time.Time) {
	cutoff := now.Add(-t.config.Window)
	kept := t.times[:0]
	for _, ts := range t.times {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	t.times = kept
}

// Reset clears the window
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.times = t.times[:0]
	t.denied = 0
}

package antispam

import (
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTracker(max int, window time.Duration) (*Tracker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return newTracker(Config{Enabled: true, MaxCommands: max, Window: window}, clock.now), clock
}

func TestThrottle(t *testing.T) {
	tracker, _ := newTestTracker(3, time.Second)

	for i := 0; i < 3; i++ {
		if result := tracker.Check(); !result.Allowed {
			t.Errorf("Command %d should be allowed", i+1)
		}
	}

	result := tracker.Check()
	if result.Allowed {
		t.Error("4th command should be throttled")
	}
	if result.Reason != "You're sending commands too quickly. Please slow down." {
		t.Errorf("Unexpected reason: %s", result.Reason)
	}
	if result.WaitSeconds != 2 {
		t.Errorf("Expected wait of 2 seconds, got %d", result.WaitSeconds)
	}
	if tracker.Denied() != 1 {
		t.Errorf("Expected 1 denied command, got %d", tracker.Denied())
	}
}

func TestWindowSlides(t *testing.T) {
	tracker, clock := newTestTracker(2, 10*time.Second)

	tracker.Check()
	clock.advance(6 * time.Second)
	tracker.Check()

	if tracker.Check().Allowed {
		t.Fatal("Window is full")
	}

	// the first command leaves the window, the second is still inside
	clock.advance(5 * time.Second)
	if !tracker.Check().Allowed {
		t.Error("Command should be allowed after the oldest expired")
	}
	if tracker.Check().Allowed {
		t.Error("Window should be full again")
	}
}

func TestDisabled(t *testing.T) {
	tracker := NewTracker(Config{Enabled: false, MaxCommands: 1})
	for i := 0; i < 10; i++ {
		if !tracker.Check().Allowed {
			t.Fatal("Disabled tracker should allow everything")
		}
	}
}

func TestReset(t *testing.T) {
	tracker, _ := newTestTracker(1, time.Minute)
	tracker.Check()
	if tracker.Check().Allowed {
		t.Fatal("Second command should be throttled")
	}

	tracker.Reset()
	if !tracker.Check().Allowed {
		t.Error("Command should be allowed after reset")
	}
	if tracker.Denied() != 0 {
		t.Error("Reset should clear the denied count")
	}
}

func TestConfigFromYAML(t *testing.T) {
	cfg := ConfigFromYAML(true, 0, 0)
	if cfg != DefaultConfig() {
		t.Errorf("Zero values should keep defaults, got %+v", cfg)
	}

	cfg = ConfigFromYAML(false, 5, 2)
	if cfg.Enabled || cfg.MaxCommands != 5 || cfg.Window != 2*time.Second {
		t.Errorf("Unexpected config: %+v", cfg)
	}
}

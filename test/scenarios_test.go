package test

import (
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lawnchairsociety/abyssforge/internal/config"
	"github.com/lawnchairsociety/abyssforge/internal/database"
	"github.com/lawnchairsociety/abyssforge/internal/rules"
	"github.com/lawnchairsociety/abyssforge/internal/server"
)

func startServer(t *testing.T) string {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "scenarios.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := config.DefaultConfig()
	cfg.Game.Seed = 11
	cfg.Game.AutosaveSeconds = 0
	cfg.Connections.MaxPerIP = 0
	cfg.Connections.MaxTotal = 0
	cfg.WebSocket.AllowedOrigins = nil

	srv := server.NewServer(cfg, db, rules.Ascension())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		srv.Shutdown()
		ts.Close()
	})
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func TestScenarios(t *testing.T) {
	if testing.Short() {
		t.Skip("integration scenarios")
	}
	url := startServer(t)

	for _, r := range RunAllTests(url) {
		if !r.Passed {
			t.Errorf("%s: %s", r.Name, r.Message)
		}
	}
}

func TestUniqueName(t *testing.T) {
	a, b := uniqueName("hero"), uniqueName("hero")
	if a == b {
		t.Errorf("uniqueName returned %q twice", a)
	}
	if !strings.HasPrefix(a, "hero-") || len(a) != len("hero-")+8 {
		t.Errorf("unexpected name %q", a)
	}
	if err := database.ValidateSlotName(a); err != nil {
		t.Errorf("%q is not a valid slot name: %v", a, err)
	}
}

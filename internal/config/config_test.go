package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.WebSocket.AllowedOrigins) != 0 {
		t.Errorf("expected empty allowed origins by default, got %v", cfg.WebSocket.AllowedOrigins)
	}
	if cfg.WebSocket.MaxMessageSize != 4096 {
		t.Errorf("expected max message size 4096, got %d", cfg.WebSocket.MaxMessageSize)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("expected sqlite driver, got %q", cfg.Database.Driver)
	}
	if cfg.Game.Preset != "ascension" {
		t.Errorf("expected ascension preset, got %q", cfg.Game.Preset)
	}
	if cfg.Game.GrantsEnabled {
		t.Error("grants should be off by default")
	}
}

func TestLoadConfig_FileNotExists(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for missing file, got %v", err)
	}
	if cfg == nil {
		t.Fatal("expected default config for missing file, got nil")
	}
	if cfg.Server.ListenAddr != ":4040" {
		t.Errorf("expected default listen addr, got %q", cfg.Server.ListenAddr)
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
websocket:
  allowed_origins:
    - "https://example.com"
  max_message_size: 8192
database:
  driver: postgres
  postgres:
    host: db.internal
    user: abyss
    conn_max_lifetime_seconds: 60
game:
  preset: classic
  seed: 42
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.WebSocket.AllowedOrigins) != 1 || cfg.WebSocket.AllowedOrigins[0] != "https://example.com" {
		t.Errorf("unexpected origins %v", cfg.WebSocket.AllowedOrigins)
	}
	if cfg.WebSocket.MaxMessageSize != 8192 {
		t.Errorf("expected max message size 8192, got %d", cfg.WebSocket.MaxMessageSize)
	}
	if cfg.Game.Preset != "classic" || cfg.Game.Seed != 42 {
		t.Errorf("unexpected game config %+v", cfg.Game)
	}
	// Sections the file omits keep their defaults
	if cfg.RateLimit.MaxAttempts != 5 {
		t.Errorf("expected default max attempts, got %d", cfg.RateLimit.MaxAttempts)
	}
	if !cfg.Commands.ThrottleEnabled || cfg.Commands.MaxPerWindow != 30 {
		t.Errorf("expected default command throttle, got %+v", cfg.Commands)
	}

	db := cfg.DatabaseConfig()
	if db.Driver != "postgres" || db.Postgres.Host != "db.internal" || db.Postgres.User != "abyss" {
		t.Errorf("unexpected database config %+v", db)
	}
	if db.Postgres.Port != 5432 {
		t.Errorf("expected default port 5432, got %d", db.Postgres.Port)
	}
	if db.Postgres.ConnMaxLifetime != time.Minute {
		t.Errorf("expected 1m lifetime, got %v", db.Postgres.ConnMaxLifetime)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "websocket: [unclosed")

	cfg, err := LoadConfig(path)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
	if cfg == nil {
		t.Fatal("expected default config on error, got nil")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv(EnvDBDriver, "postgres")
	t.Setenv(EnvPGHost, "pg.example")
	t.Setenv(EnvPGPort, "6543")
	t.Setenv(EnvPGPassword, "hunter2")
	t.Setenv(EnvSeed, "7")
	t.Setenv(EnvRulesPreset, "classic")

	cfg, err := LoadConfig(writeConfig(t, "database:\n  driver: sqlite\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Database.Driver != "postgres" {
		t.Errorf("env should override file driver, got %q", cfg.Database.Driver)
	}
	pg := cfg.DatabaseConfig().Postgres
	if pg.Host != "pg.example" || pg.Port != 6543 || pg.Password != "hunter2" {
		t.Errorf("unexpected postgres overrides %+v", pg)
	}
	if cfg.Game.Seed != 7 || cfg.Game.Preset != "classic" {
		t.Errorf("unexpected game overrides %+v", cfg.Game)
	}
}

func TestLoadConfig_BadEnvNumber(t *testing.T) {
	t.Setenv(EnvPGPort, "not-a-port")

	if _, err := LoadConfig("/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error for non-numeric port")
	}
}

func TestDurations(t *testing.T) {
	h := HTTPConfig{}
	if h.ShutdownTimeout() != 10*time.Second {
		t.Errorf("expected 10s fallback, got %v", h.ShutdownTimeout())
	}
	h.ShutdownSeconds = 3
	if h.ShutdownTimeout() != 3*time.Second {
		t.Errorf("expected 3s, got %v", h.ShutdownTimeout())
	}

	g := GameConfig{}
	if g.AutosaveInterval() != 0 {
		t.Errorf("expected autosave off, got %v", g.AutosaveInterval())
	}
	g.AutosaveSeconds = 30
	if g.AutosaveInterval() != 30*time.Second {
		t.Errorf("expected 30s, got %v", g.AutosaveInterval())
	}
}

func TestIsOriginAllowed_EmptyList_SameOrigin(t *testing.T) {
	cfg := &WebSocketConfig{AllowedOrigins: []string{}}

	tests := []struct {
		name        string
		origin      string
		requestHost string
		want        bool
	}{
		{"same origin http", "http://localhost:4040", "localhost:4040", true},
		{"same origin https", "https://example.com", "example.com", true},
		{"different origin", "http://evil.com", "localhost:4040", false},
		{"different port", "http://localhost:3000", "localhost:4040", false},
		{"empty origin allowed", "", "localhost:4040", true},
		{"trailing slash", "http://localhost:4040/", "localhost:4040", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.IsOriginAllowed(tt.origin, tt.requestHost); got != tt.want {
				t.Errorf("IsOriginAllowed(%q, %q) = %v, want %v", tt.origin, tt.requestHost, got, tt.want)
			}
		})
	}
}

func TestIsOriginAllowed_Wildcard(t *testing.T) {
	cfg := &WebSocketConfig{AllowedOrigins: []string{"*"}}

	for _, origin := range []string{"http://localhost:4040", "http://evil.com", ""} {
		if !cfg.IsOriginAllowed(origin, "localhost:4040") {
			t.Errorf("wildcard should allow %q", origin)
		}
	}
}

func TestIsOriginAllowed_SpecificOrigins(t *testing.T) {
	cfg := &WebSocketConfig{AllowedOrigins: []string{"https://example.com", "http://localhost:3000"}}

	tests := []struct {
		origin string
		want   bool
	}{
		{"https://example.com", true},
		{"http://localhost:3000", true},
		{"http://example.com", false},
		{"https://evil.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			if got := cfg.IsOriginAllowed(tt.origin, "localhost:4040"); got != tt.want {
				t.Errorf("IsOriginAllowed(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestValidatePassphrase(t *testing.T) {
	tests := []struct {
		name   string
		cfg    PassphraseConfig
		pass   string
		wantOK bool
	}{
		{"long enough", PassphraseConfig{MinLength: 6}, "abcdef", true},
		{"too short", PassphraseConfig{MinLength: 6}, "abc", false},
		{"floor applies", PassphraseConfig{MinLength: 1}, "abc", false},
		{"leading space", PassphraseConfig{MinLength: 4}, " abcd", false},
		{"digit required", PassphraseConfig{MinLength: 4, RequireDigit: true}, "abcdef", false},
		{"digit present", PassphraseConfig{MinLength: 4, RequireDigit: true}, "abc1ef", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.cfg.ValidatePassphrase(tt.pass)
			if (msg == "") != tt.wantOK {
				t.Errorf("ValidatePassphrase(%q) = %q, wantOK %v", tt.pass, msg, tt.wantOK)
			}
		})
	}
}

func TestRequirementsText(t *testing.T) {
	cfg := PassphraseConfig{MinLength: 8, RequireDigit: true}
	if got := cfg.RequirementsText(); got != "min 8 chars, digit" {
		t.Errorf("RequirementsText() = %q", got)
	}
}

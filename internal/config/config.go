// Package config loads the server's YAML configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/abyssforge/internal/database"
)

// Environment overrides, typically set through a .env file
const (
	EnvListenAddr  = "ABYSS_LISTEN_ADDR"
	EnvDBDriver    = "ABYSS_DB_DRIVER"
	EnvSQLitePath  = "ABYSS_SQLITE_PATH"
	EnvPGHost      = "ABYSS_PG_HOST"
	EnvPGPort      = "ABYSS_PG_PORT"
	EnvPGUser      = "ABYSS_PG_USER"
	EnvPGPassword  = "ABYSS_PG_PASSWORD"
	EnvPGDatabase  = "ABYSS_PG_DATABASE"
	EnvRulesFile   = "ABYSS_RULES_FILE"
	EnvRulesPreset = "ABYSS_RULES_PRESET"
	EnvSeed        = "ABYSS_SEED"
)

// ServerConfig holds server-wide configuration settings.
type ServerConfig struct {
	Server      HTTPConfig        `yaml:"server"`
	WebSocket   WebSocketConfig   `yaml:"websocket"`
	Passphrase  PassphraseConfig  `yaml:"passphrase"`
	Connections ConnectionsConfig `yaml:"connections"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Commands    CommandsConfig    `yaml:"commands"`
	Database    DatabaseConfig    `yaml:"database"`
	Game        GameConfig        `yaml:"game"`
}

// HTTPConfig is the listener
type HTTPConfig struct {
	ListenAddr string `yaml:"listen_addr"`

	// ShutdownSeconds bounds the graceful shutdown
	ShutdownSeconds int `yaml:"shutdown_seconds"`

	// MetricsEnabled serves Prometheus metrics on /metrics
	MetricsEnabled bool `yaml:"metrics_enabled"`
}

// RateLimitConfig holds lockout settings for failed slot logins.
type RateLimitConfig struct {
	MaxAttempts       int `yaml:"max_attempts"`
	LockoutSeconds    int `yaml:"lockout_seconds"`
	MaxLockoutSeconds int `yaml:"max_lockout_seconds"` // cap for exponential backoff
}

// CommandsConfig throttles how fast one connection may send commands
type CommandsConfig struct {
	ThrottleEnabled bool `yaml:"throttle_enabled"`
	MaxPerWindow    int  `yaml:"max_per_window"`
	WindowSeconds   int  `yaml:"window_seconds"`
}

// ConnectionsConfig holds connection limit settings. 0 means unlimited.
type ConnectionsConfig struct {
	MaxPerIP int `yaml:"max_per_ip"`
	MaxTotal int `yaml:"max_total"`
}

// PassphraseConfig is the policy for new save slot passphrases
type PassphraseConfig struct {
	MinLength    int  `yaml:"min_length"`
	RequireDigit bool `yaml:"require_digit"`
}

// WebSocketConfig holds WebSocket-specific settings.
type WebSocketConfig struct {
	// AllowedOrigins lists origins allowed to connect. Empty enforces
	// same-origin; "*" allows everything.
	AllowedOrigins []string `yaml:"allowed_origins"`

	MaxMessageSize int64 `yaml:"max_message_size"`
}

// DatabaseConfig is the YAML form of database.Config
type DatabaseConfig struct {
	Driver     string         `yaml:"driver"`
	SQLitePath string         `yaml:"sqlite_path"`
	Postgres   PostgresConfig `yaml:"postgres"`
}

// PostgresConfig is the YAML form of database.PostgresConfig
type PostgresConfig struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	User                   string `yaml:"user"`
	Password               string `yaml:"password"`
	Database               string `yaml:"database"`
	SSLMode                string `yaml:"sslmode"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeSeconds int    `yaml:"conn_max_lifetime_seconds"`
}

// GameConfig selects the rules every session plays under
type GameConfig struct {
	// RulesFile is a rules YAML; when empty Preset is used as-is
	RulesFile string `yaml:"rules_file"`
	Preset    string `yaml:"preset"`

	// Seed fixes the RNG for reproducible sessions; 0 seeds from the clock
	Seed int64 `yaml:"seed"`

	// AutosaveSeconds saves logged-in sessions periodically; 0 disables
	AutosaveSeconds int `yaml:"autosave_seconds"`

	// GrantsEnabled allows the debug supply command
	GrantsEnabled bool `yaml:"grants_enabled"`
}

// DefaultConfig returns a ServerConfig with secure defaults.
func DefaultConfig() *ServerConfig {
	pg := database.DefaultPostgresConfig()
	return &ServerConfig{
		Server: HTTPConfig{
			ListenAddr:      ":4040",
			ShutdownSeconds: 10,
			MetricsEnabled:  true,
		},
		WebSocket: WebSocketConfig{
			AllowedOrigins: []string{},
			MaxMessageSize: 4096,
		},
		Passphrase: PassphraseConfig{MinLength: 6},
		Connections: ConnectionsConfig{
			MaxPerIP: 3,
			MaxTotal: 100,
		},
		RateLimit: RateLimitConfig{
			MaxAttempts:       5,
			LockoutSeconds:    30,
			MaxLockoutSeconds: 300,
		},
		Commands: CommandsConfig{
			ThrottleEnabled: true,
			MaxPerWindow:    30,
			WindowSeconds:   10,
		},
		Database: DatabaseConfig{
			Driver:     "sqlite",
			SQLitePath: "data/abyssforge.db",
			Postgres: PostgresConfig{
				Host:                   pg.Host,
				Port:                   pg.Port,
				SSLMode:                pg.SSLMode,
				MaxOpenConns:           pg.MaxOpenConns,
				MaxIdleConns:           pg.MaxIdleConns,
				ConnMaxLifetimeSeconds: int(pg.ConnMaxLifetime / time.Second),
			},
		},
		Game: GameConfig{
			RulesFile:       "data/rules.yaml",
			Preset:          "ascension",
			AutosaveSeconds: 60,
		},
	}
}

// LoadConfig loads server configuration from a YAML file and applies
// environment overrides. A missing file means defaults; a file that cannot
// be parsed is an error.
func LoadConfig(path string) (*ServerConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return config, fmt.Errorf("failed to read server config: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return DefaultConfig(), fmt.Errorf("failed to parse server config: %w", err)
		}
	}

	if err := config.applyEnv(); err != nil {
		return config, err
	}
	return config, nil
}

func (c *ServerConfig) applyEnv() error {
	str := map[string]*string{
		EnvListenAddr:  &c.Server.ListenAddr,
		EnvDBDriver:    &c.Database.Driver,
		EnvSQLitePath:  &c.Database.SQLitePath,
		EnvPGHost:      &c.Database.Postgres.Host,
		EnvPGUser:      &c.Database.Postgres.User,
		EnvPGPassword:  &c.Database.Postgres.Password,
		EnvPGDatabase:  &c.Database.Postgres.Database,
		EnvRulesFile:   &c.Game.RulesFile,
		EnvRulesPreset: &c.Game.Preset,
	}
	for key, dst := range str {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	if v := os.Getenv(EnvPGPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPGPort, err)
		}
		c.Database.Postgres.Port = port
	}
	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		c.Game.Seed = seed
	}
	return nil
}

// DatabaseConfig converts to the database package's config
func (c *ServerConfig) DatabaseConfig() database.Config {
	pg := c.Database.Postgres
	return database.Config{
		Driver:     c.Database.Driver,
		SQLitePath: c.Database.SQLitePath,
		Postgres: database.PostgresConfig{
			Host:            pg.Host,
			Port:            pg.Port,
			User:            pg.User,
			Password:        pg.Password,
			Database:        pg.Database,
			SSLMode:         pg.SSLMode,
			MaxOpenConns:    pg.MaxOpenConns,
			MaxIdleConns:    pg.MaxIdleConns,
			ConnMaxLifetime: time.Duration(pg.ConnMaxLifetimeSeconds) * time.Second,
		},
	}
}

// ShutdownTimeout is the graceful shutdown bound
func (c *HTTPConfig) ShutdownTimeout() time.Duration {
	if c.ShutdownSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ShutdownSeconds) * time.Second
}

// AutosaveInterval is zero when autosave is off
func (c *GameConfig) AutosaveInterval() time.Duration {
	if c.AutosaveSeconds <= 0 {
		return 0
	}
	return time.Duration(c.AutosaveSeconds) * time.Second
}

// IsOriginAllowed reports whether a WebSocket origin may connect: "*" and
// exact matches pass, and an empty list falls back to same-origin.
func (c *WebSocketConfig) IsOriginAllowed(origin, requestHost string) bool {
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}
	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// isSameOrigin compares the origin's host to the request host. Non-browser
// clients send no Origin and are treated as same-origin.
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true
	}
	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	return strings.TrimSuffix(originHost, "/") == requestHost
}

// ValidatePassphrase returns a message describing what is wrong with a new
// passphrase, or "" if it is acceptable.
func (c *PassphraseConfig) ValidatePassphrase(passphrase string) string {
	minLen := max(c.MinLength, database.MinPassphraseLength)
	if len(passphrase) < minLen {
		return "Passphrase must be at least " + strconv.Itoa(minLen) + " characters."
	}
	if strings.TrimSpace(passphrase) != passphrase {
		return "Passphrase cannot start or end with spaces."
	}
	if c.RequireDigit && !strings.ContainsFunc(passphrase, unicode.IsDigit) {
		return "Passphrase must contain at least one digit."
	}
	return ""
}

// RequirementsText describes the passphrase policy
func (c *PassphraseConfig) RequirementsText() string {
	parts := []string{"min " + strconv.Itoa(max(c.MinLength, database.MinPassphraseLength)) + " chars"}
	if c.RequireDigit {
		parts = append(parts, "digit")
	}
	return strings.Join(parts, ", ")
}

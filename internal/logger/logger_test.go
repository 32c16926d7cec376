package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARNING", slog.LevelWarn},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"invalid", slog.LevelInfo}, // Default to INFO
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseLogLevel(tt.input)
			if result != tt.expected {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig returned error for missing file: %v", err)
	}
	if config != DefaultConfig() {
		t.Errorf("config = %+v, want defaults", config)
	}
	if config.FilePath != "logs/abyssd.log" {
		t.Errorf("Default FilePath = %q", config.FilePath)
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logging.yaml")
	yamlContent := `logging:
  level: DEBUG
  console_enabled: false
  console_format: json
  file_enabled: true
  file_path: test.log
  file_max_size_mb: 20
`
	if err := os.WriteFile(path, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if config.Level != "DEBUG" {
		t.Errorf("Level = %q, want DEBUG", config.Level)
	}
	if config.ConsoleEnabled {
		t.Error("ConsoleEnabled = true, want false")
	}
	if config.ConsoleFormat != "json" {
		t.Errorf("ConsoleFormat = %q, want json", config.ConsoleFormat)
	}
	if !config.FileEnabled || config.FilePath != "test.log" {
		t.Errorf("file settings = %v %q", config.FileEnabled, config.FilePath)
	}
	if config.FileMaxSizeMB != 20 || config.FileMaxBackups != 5 {
		t.Errorf("sizes = %d/%d, want 20/5", config.FileMaxSizeMB, config.FileMaxBackups)
	}
}

func TestLoadConfigOmittedBoolKeepsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logging.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: WARN\n"), 0644); err != nil {
		t.Fatal(err)
	}
	config, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if !config.ConsoleEnabled {
		t.Error("console should stay enabled when the key is omitted")
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logging.yaml")
	if err := os.WriteFile(path, []byte("logging: [not, a, map"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestEnvVarOverride(t *testing.T) {
	t.Setenv(EnvLevel, "ERROR")
	t.Setenv(EnvConsoleFormat, "json")
	t.Setenv(EnvFileEnabled, "true")
	t.Setenv(EnvFilePath, "/custom/path.log")

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if config.Level != "ERROR" {
		t.Errorf("Level = %q, want ERROR (from env var)", config.Level)
	}
	if config.ConsoleFormat != "json" {
		t.Errorf("ConsoleFormat = %q, want json (from env var)", config.ConsoleFormat)
	}
	if !config.FileEnabled {
		t.Error("FileEnabled = false, want true (from env var)")
	}
	if config.FilePath != "/custom/path.log" {
		t.Errorf("FilePath = %q (from env var)", config.FilePath)
	}
}

func TestSetOutputText(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "text", "INFO")

	Info("Test message", "key", "value")
	Debug("This should not appear")
	Warningf("depth %d", 12)

	output := buf.String()
	if !strings.Contains(output, "Test message") || !strings.Contains(output, "key=value") {
		t.Errorf("Output missing INFO record: %s", output)
	}
	if strings.Contains(output, "This should not appear") {
		t.Errorf("Output contains DEBUG message when level is INFO: %s", output)
	}
	if !strings.Contains(output, "depth 12") {
		t.Errorf("Output missing formatted warning: %s", output)
	}
}

func TestSetOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "json", "INFO")

	With("session", "abc").Info("JSON test", "field2", 42)

	output := buf.String()
	for _, want := range []string{`"msg":"JSON test"`, `"session":"abc"`, `"field2":42`} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing %s: %s", want, output)
		}
	}
}

func TestAlwaysBypassesLogLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "text", "ERROR")

	Info("hidden")
	Always("equipment destroyed", "item", "传说神兵")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("INFO should be filtered: %s", output)
	}
	if !strings.Contains(output, "level=ALWAYS") || !strings.Contains(output, "equipment destroyed") {
		t.Errorf("ALWAYS record missing: %s", output)
	}
}

func TestInitializeFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "test.log")
	cfg := DefaultConfig()
	cfg.ConsoleEnabled = false
	cfg.FileEnabled = true
	cfg.FilePath = path
	cfg.FileFormat = "json"

	if err := Initialize(cfg); err != nil {
		t.Fatal(err)
	}
	Info("written to file", "n", 1)
	if err := Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"written to file"`) {
		t.Errorf("file content = %s", data)
	}

	cfg.FilePath = ""
	if err := Initialize(cfg); err == nil {
		t.Error("expected error for file logging without a path")
	}
}

type failingHandler struct{}

func (failingHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("disk full") }
func (h failingHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h failingHandler) WithGroup(string) slog.Handler           { return h }

func TestMultiHandlerKeepsWritingAfterFailure(t *testing.T) {
	var buf bytes.Buffer
	h := newMultiHandler(failingHandler{}, slog.NewTextHandler(&buf, nil))
	l := slog.New(h)

	l.Info("still here")
	if !strings.Contains(buf.String(), "still here") {
		t.Error("second handler should still receive the record")
	}

	err := h.Handle(context.Background(), slog.NewRecord(time.Time{}, slog.LevelInfo, "x", 0))
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("expected joined error, got %v", err)
	}
}

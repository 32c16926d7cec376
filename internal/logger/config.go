package logger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the YAML file
const (
	EnvLevel         = "ABYSS_LOG_LEVEL"
	EnvConsoleFormat = "ABYSS_LOG_CONSOLE_FORMAT"
	EnvFileEnabled   = "ABYSS_LOG_FILE_ENABLED"
	EnvFilePath      = "ABYSS_LOG_FILE_PATH"
)

// Config holds logging configuration
type Config struct {
	Level          string
	ConsoleEnabled bool
	ConsoleFormat  string
	FileEnabled    bool
	FilePath       string
	FileFormat     string
	FileMaxSizeMB  int
	FileMaxBackups int
	FileMaxAgeDays int
	FileCompress   bool
}

// fileConfig is the YAML shape. Pointers tell "unset" apart from false.
type fileConfig struct {
	Level          string `yaml:"level"`
	ConsoleEnabled *bool  `yaml:"console_enabled"`
	ConsoleFormat  string `yaml:"console_format"`
	FileEnabled    *bool  `yaml:"file_enabled"`
	FilePath       string `yaml:"file_path"`
	FileFormat     string `yaml:"file_format"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb"`
	FileMaxBackups int    `yaml:"file_max_backups"`
	FileMaxAgeDays int    `yaml:"file_max_age_days"`
	FileCompress   *bool  `yaml:"file_compress"`
}

// LoggingConfig wraps the Config for YAML parsing
type LoggingConfig struct {
	Logging fileConfig `yaml:"logging"`
}

// DefaultConfig returns console-only INFO logging
func DefaultConfig() Config {
	return Config{
		Level:          "INFO",
		ConsoleEnabled: true,
		ConsoleFormat:  "text",
		FilePath:       "logs/abyssd.log",
		FileFormat:     "text",
		FileMaxSizeMB:  10,
		FileMaxBackups: 5,
		FileMaxAgeDays: 30,
	}
}

// LoadConfig loads logging configuration from a YAML file and applies
// environment variable overrides. A missing file is not an error; a file
// that exists but cannot be parsed is.
func LoadConfig(configPath string) (Config, error) {
	config := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// defaults
		case err != nil:
			return config, fmt.Errorf("failed to read logging config: %w", err)
		default:
			var lc LoggingConfig
			if err := yaml.Unmarshal(data, &lc); err != nil {
				return config, fmt.Errorf("failed to parse logging config: %w", err)
			}
			config.merge(lc.Logging)
		}
	}

	config.applyEnv()
	return config, nil
}

func (c *Config) merge(f fileConfig) {
	if f.Level != "" {
		c.Level = f.Level
	}
	if f.ConsoleEnabled != nil {
		c.ConsoleEnabled = *f.ConsoleEnabled
	}
	if f.ConsoleFormat != "" {
		c.ConsoleFormat = f.ConsoleFormat
	}
	if f.FileEnabled != nil {
		c.FileEnabled = *f.FileEnabled
	}
	if f.FilePath != "" {
		c.FilePath = f.FilePath
	}
	if f.FileFormat != "" {
		c.FileFormat = f.FileFormat
	}
	if f.FileMaxSizeMB > 0 {
		c.FileMaxSizeMB = f.FileMaxSizeMB
	}
	if f.FileMaxBackups > 0 {
		c.FileMaxBackups = f.FileMaxBackups
	}
	if f.FileMaxAgeDays > 0 {
		c.FileMaxAgeDays = f.FileMaxAgeDays
	}
	if f.FileCompress != nil {
		c.FileCompress = *f.FileCompress
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvLevel); v != "" {
		c.Level = v
	}
	if v := os.Getenv(EnvConsoleFormat); v != "" {
		c.ConsoleFormat = v
	}
	if v := os.Getenv(EnvFileEnabled); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.FileEnabled = enabled
		}
	}
	if v := os.Getenv(EnvFilePath); v != "" {
		c.FilePath = v
	}
}

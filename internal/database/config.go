package database

import (
	"fmt"
	"time"
)

// Config selects and configures the save store
type Config struct {
	// Driver is "sqlite" or "postgres"
	Driver string

	SQLitePath string

	Postgres PostgresConfig
}

// PostgresConfig holds PostgreSQL connection and pool settings
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig stores saves in a SQLite file
func DefaultConfig(sqlitePath string) Config {
	return Config{
		Driver:     string(DialectSQLite),
		SQLitePath: sqlitePath,
	}
}

// DefaultPostgresConfig returns local connection settings with a modest pool
func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Host:            "localhost",
		Port:            5432,
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// DSN is the lib/pq connection string
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// Redacted describes the connection without the password, for logs
func (c PostgresConfig) Redacted() string {
	return fmt.Sprintf("%s@%s:%d/%s", c.User, c.Host, c.Port, c.Database)
}

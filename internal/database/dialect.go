package database

import (
	"fmt"
	"strings"
)

// Dialect hides the SQL differences between SQLite and PostgreSQL that the
// save store runs into.
type Dialect interface {
	// DriverName is the database/sql driver: "sqlite" or "postgres"
	DriverName() string

	// Placeholder returns the parameter marker for a 1-indexed position
	Placeholder(position int) string

	// SupportsLastInsertID is false when inserts need a RETURNING clause
	SupportsLastInsertID() bool
	ReturningClause(column string) string

	// SerialPrimaryKey is the column definition of an auto-increment id
	SerialPrimaryKey() string

	// CaseInsensitiveText is the column type for slot names, which compare
	// without regard to case
	CaseInsensitiveText() string

	// InitStatements run once per connection pool, before migrations
	InitStatements() []string

	IsDuplicateKeyError(err error) bool
}

// DialectType identifies a dialect
type DialectType string

const (
	DialectSQLite   DialectType = "sqlite"
	DialectPostgres DialectType = "postgres"
)

// NewDialect returns the dialect for a type. Anything unknown is SQLite.
func NewDialect(dialectType DialectType) Dialect {
	switch dialectType {
	case DialectPostgres:
		return &PostgresDialect{}
	default:
		return &SQLiteDialect{}
	}
}

// SQLiteDialect is modernc.org/sqlite
type SQLiteDialect struct{}

func (d *SQLiteDialect) DriverName() string              { return "sqlite" }
func (d *SQLiteDialect) Placeholder(position int) string { return "?" }
func (d *SQLiteDialect) SupportsLastInsertID() bool      { return true }
func (d *SQLiteDialect) ReturningClause(string) string   { return "" }
func (d *SQLiteDialect) SerialPrimaryKey() string        { return "INTEGER PRIMARY KEY AUTOINCREMENT" }
func (d *SQLiteDialect) CaseInsensitiveText() string     { return "TEXT COLLATE NOCASE" }

// InitStatements enables foreign keys and WAL, and waits on locks instead
// of failing at once.
func (d *SQLiteDialect) InitStatements() []string {
	return []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
}

func (d *SQLiteDialect) IsDuplicateKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// PostgresDialect is github.com/lib/pq
type PostgresDialect struct{}

func (d *PostgresDialect) DriverName() string { return "postgres" }

func (d *PostgresDialect) Placeholder(position int) string {
	return fmt.Sprintf("$%d", position)
}

func (d *PostgresDialect) SupportsLastInsertID() bool { return false }

func (d *PostgresDialect) ReturningClause(column string) string {
	return fmt.Sprintf(" RETURNING %s", column)
}

func (d *PostgresDialect) SerialPrimaryKey() string    { return "SERIAL PRIMARY KEY" }
func (d *PostgresDialect) CaseInsensitiveText() string { return "CITEXT" }

func (d *PostgresDialect) InitStatements() []string {
	return []string{"CREATE EXTENSION IF NOT EXISTS citext"}
}

// IsDuplicateKeyError matches unique_violation (SQLSTATE 23505)
func (d *PostgresDialect) IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "23505") ||
		strings.Contains(msg, "unique constraint")
}

// Package database persists save slots, expedition history and boss kills
// in SQLite (default) or PostgreSQL.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Database wraps the connection pool and the dialect it speaks
type Database struct {
	db      *sql.DB
	dialect Dialect
	qb      *QueryBuilder
}

// Open opens or creates the SQLite database at path
func Open(path string) (*Database, error) {
	return OpenWithConfig(DefaultConfig(path))
}

// OpenWithConfig opens the configured store and brings its schema up to date
func OpenWithConfig(cfg Config) (*Database, error) {
	dialect := NewDialect(DialectType(cfg.Driver))

	var dsn string
	switch dialect.(type) {
	case *PostgresDialect:
		dsn = cfg.Postgres.DSN()
	default:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite path is empty")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = cfg.SQLitePath
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, ok := dialect.(*SQLiteDialect); ok {
		// PRAGMAs are per connection; one connection keeps them in force
		db.SetMaxOpenConns(1)
	} else {
		pg := cfg.Postgres
		if pg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(pg.MaxOpenConns)
		}
		if pg.MaxIdleConns > 0 {
			db.SetMaxIdleConns(pg.MaxIdleConns)
		}
		if pg.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(pg.ConnMaxLifetime)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	for _, stmt := range dialect.InitStatements() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init statement %q failed: %w", stmt, err)
		}
	}

	d := &Database{db: db, dialect: dialect, qb: NewQueryBuilder(dialect)}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return d, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// Driver names the dialect in use
func (d *Database) Driver() string {
	return d.dialect.DriverName()
}

// DB returns the underlying pool for tools that need raw access
func (d *Database) DB() *sql.DB {
	return d.db
}

func (d *Database) migrate() error {
	serial := d.dialect.SerialPrimaryKey()
	ci := d.dialect.CaseInsensitiveText()

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS saves (
			slot ` + ci + ` PRIMARY KEY,
			passphrase_hash TEXT NOT NULL DEFAULT '',
			ruleset TEXT NOT NULL,
			data TEXT NOT NULL,
			checksum TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS expeditions (
			id ` + serial + `,
			slot ` + ci + ` NOT NULL REFERENCES saves(slot) ON DELETE CASCADE,
			start_depth INTEGER NOT NULL,
			depth INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			gold INTEGER NOT NULL DEFAULT 0,
			materials INTEGER NOT NULL DEFAULT 0,
			equipment INTEGER NOT NULL DEFAULT 0,
			experience INTEGER NOT NULL DEFAULT 0,
			items_lost INTEGER NOT NULL DEFAULT 0,
			ended_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS boss_kills (
			id ` + serial + `,
			slot ` + ci + ` NOT NULL,
			depth INTEGER NOT NULL,
			monster TEXT NOT NULL,
			killed_at TIMESTAMP NOT NULL,
			is_first_kill INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE INDEX IF NOT EXISTS idx_expeditions_slot ON expeditions(slot)`,
		`CREATE INDEX IF NOT EXISTS idx_boss_kills_depth ON boss_kills(depth)`,
	}

	// Columns added after the first release; errors mean the column exists
	safeMigrations := []string{
		`ALTER TABLE saves ADD COLUMN checksum TEXT NOT NULL DEFAULT ''`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	for _, m := range safeMigrations {
		_, _ = d.db.Exec(m)
	}
	return nil
}

// rowExecer is satisfied by both *sql.DB and *sql.Tx
type rowExecer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

// insert runs an INSERT and returns the new row id on either dialect
func (d *Database) insert(exec rowExecer, query string, args ...any) (int64, error) {
	if d.dialect.SupportsLastInsertID() {
		res, err := exec.Exec(d.qb.Build(query), args...)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}
	var id int64
	err := exec.QueryRow(d.qb.BuildWithReturning(query, "id"), args...).Scan(&id)
	return id, err
}

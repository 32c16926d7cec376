package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// BossKill is one recorded boss kill
type BossKill struct {
	ID          int64
	Slot        string
	Depth       int
	Monster     string
	KilledAt    time.Time
	IsFirstKill bool
}

// KillCount is one boss leaderboard line
type KillCount struct {
	Slot      string
	KillCount int
}

// RecordBossKill stores a kill and reports whether it is the first kill of
// that depth's boss on this server.
func (d *Database) RecordBossKill(slot string, depth int, monster string) (bool, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRow(d.qb.Build(`SELECT COUNT(*) FROM boss_kills WHERE depth = ?`), depth).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count boss kills: %w", err)
	}
	first := count == 0

	if _, err := d.insert(tx,
		`INSERT INTO boss_kills (slot, depth, monster, killed_at, is_first_kill) VALUES (?, ?, ?, ?, ?)`,
		slot, depth, monster, time.Now().UTC(), boolInt(first),
	); err != nil {
		return false, fmt.Errorf("failed to record boss kill: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit boss kill: %w", err)
	}
	return first, nil
}

// FirstKill returns the first kill of a depth's boss, or nil if it has
// never fallen.
func (d *Database) FirstKill(depth int) (*BossKill, error) {
	kill, err := scanKill(d.db.QueryRow(d.qb.Build(`
		SELECT id, slot, depth, monster, killed_at, is_first_kill
		FROM boss_kills
		WHERE depth = ? AND is_first_kill = 1
		LIMIT 1`), depth))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &kill, nil
}

// FirstKills returns every first kill, shallowest first
func (d *Database) FirstKills() ([]BossKill, error) {
	return d.queryKills(`
		SELECT id, slot, depth, monster, killed_at, is_first_kill
		FROM boss_kills
		WHERE is_first_kill = 1
		ORDER BY depth ASC`)
}

// SlotBossKills returns a slot's kills in order
func (d *Database) SlotBossKills(slot string) ([]BossKill, error) {
	return d.queryKills(`
		SELECT id, slot, depth, monster, killed_at, is_first_kill
		FROM boss_kills
		WHERE slot = ?
		ORDER BY id ASC`, slot)
}

// BossKillLeaderboard ranks slots by kills
func (d *Database) BossKillLeaderboard(limit int) ([]KillCount, error) {
	rows, err := d.db.Query(d.qb.Build(`
		SELECT slot, COUNT(*) AS kills
		FROM boss_kills
		GROUP BY slot
		ORDER BY kills DESC, slot ASC
		LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var results []KillCount
	for rows.Next() {
		var entry KillCount
		if err := rows.Scan(&entry.Slot, &entry.KillCount); err != nil {
			return nil, err
		}
		results = append(results, entry)
	}
	return results, rows.Err()
}

// ImportBossKill copies a kill verbatim; used by migrate-saves
func (d *Database) ImportBossKill(k BossKill) error {
	_, err := d.insert(d.db,
		`INSERT INTO boss_kills (slot, depth, monster, killed_at, is_first_kill) VALUES (?, ?, ?, ?, ?)`,
		k.Slot, k.Depth, k.Monster, k.KilledAt, boolInt(k.IsFirstKill))
	if err != nil {
		return fmt.Errorf("failed to import boss kill: %w", err)
	}
	return nil
}

func (d *Database) queryKills(query string, args ...any) ([]BossKill, error) {
	rows, err := d.db.Query(d.qb.Build(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query boss kills: %w", err)
	}
	defer rows.Close()

	var kills []BossKill
	for rows.Next() {
		kill, err := scanKill(rows)
		if err != nil {
			return nil, err
		}
		kills = append(kills, kill)
	}
	return kills, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanKill(row scanner) (BossKill, error) {
	var kill BossKill
	var first int
	if err := row.Scan(&kill.ID, &kill.Slot, &kill.Depth, &kill.Monster, &kill.KilledAt, &first); err != nil {
		return BossKill{}, err
	}
	kill.IsFirstKill = first != 0
	return kill, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// AllBossKills returns every kill in insertion order
func (d *Database) AllBossKills() ([]BossKill, error) {
	return d.queryKills(`
		SELECT id, slot, depth, monster, killed_at, is_first_kill
		FROM boss_kills
		ORDER BY id ASC`)
}

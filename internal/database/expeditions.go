package database

import (
	"fmt"
	"time"
)

// ExpeditionRecord is one finished expedition
type ExpeditionRecord struct {
	ID         int64
	Slot       string
	StartDepth int
	Depth      int
	Outcome    string
	Gold       int
	Materials  int
	Equipment  int
	Experience int
	ItemsLost  int
	EndedAt    time.Time
}

func (d *Database) insertExpedition(tx rowExecer, e ExpeditionRecord) (int64, error) {
	id, err := d.insert(tx,
		`INSERT INTO expeditions (slot, start_depth, depth, outcome, gold, materials, equipment, experience, items_lost, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Slot, e.StartDepth, e.Depth, e.Outcome, e.Gold, e.Materials, e.Equipment, e.Experience, e.ItemsLost, e.EndedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record expedition: %w", err)
	}
	return id, nil
}

// RecordExpedition stores one expedition outside of a save
func (d *Database) RecordExpedition(e ExpeditionRecord) (int64, error) {
	if e.EndedAt.IsZero() {
		e.EndedAt = time.Now().UTC()
	}
	return d.insertExpedition(d.db, e)
}

// RecentExpeditions returns a slot's newest expeditions first
func (d *Database) RecentExpeditions(slot string, limit int) ([]ExpeditionRecord, error) {
	rows, err := d.db.Query(d.qb.Build(`
		SELECT id, slot, start_depth, depth, outcome, gold, materials, equipment, experience, items_lost, ended_at
		FROM expeditions
		WHERE slot = ?
		ORDER BY id DESC
		LIMIT ?`), slot, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query expeditions: %w", err)
	}
	defer rows.Close()

	var out []ExpeditionRecord
	for rows.Next() {
		var e ExpeditionRecord
		if err := rows.Scan(&e.ID, &e.Slot, &e.StartDepth, &e.Depth, &e.Outcome, &e.Gold,
			&e.Materials, &e.Equipment, &e.Experience, &e.ItemsLost, &e.EndedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expedition: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeepestExpeditions is the depth leaderboard: each slot's best depth
func (d *Database) DeepestExpeditions(limit int) ([]DepthEntry, error) {
	rows, err := d.db.Query(d.qb.Build(`
		SELECT slot, MAX(depth) AS best
		FROM expeditions
		GROUP BY slot
		ORDER BY best DESC, slot ASC
		LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var out []DepthEntry
	for rows.Next() {
		var e DepthEntry
		if err := rows.Scan(&e.Slot, &e.Depth); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DepthEntry is one leaderboard line
type DepthEntry struct {
	Slot  string
	Depth int
}

// AllExpeditions returns every expedition in insertion order
func (d *Database) AllExpeditions() ([]ExpeditionRecord, error) {
	rows, err := d.db.Query(`
		SELECT id, slot, start_depth, depth, outcome, gold, materials, equipment, experience, items_lost, ended_at
		FROM expeditions ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query expeditions: %w", err)
	}
	defer rows.Close()

	var out []ExpeditionRecord
	for rows.Next() {
		var e ExpeditionRecord
		if err := rows.Scan(&e.ID, &e.Slot, &e.StartDepth, &e.Depth, &e.Outcome, &e.Gold,
			&e.Materials, &e.Equipment, &e.Experience, &e.ItemsLost, &e.EndedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expedition: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

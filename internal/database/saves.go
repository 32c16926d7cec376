package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt cost for slot passphrases
const bcryptCost = 12

// MinPassphraseLength is the shortest passphrase a slot accepts
const MinPassphraseLength = 4

var (
	ErrSlotNotFound       = errors.New("save slot not found")
	ErrSlotExists         = errors.New("save slot already exists")
	ErrInvalidCredentials = errors.New("invalid slot or passphrase")
	ErrInvalidSlotName    = errors.New("slot names are 2-24 letters, digits, - or _")
)

// SaveRecord is one stored save slot
type SaveRecord struct {
	Slot           string
	PassphraseHash string
	Ruleset        string
	Data           []byte
	Checksum       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ValidateSlotName checks a slot name is safe to show and store
func ValidateSlotName(slot string) error {
	if len(slot) < 2 || len(slot) > 24 {
		return ErrInvalidSlotName
	}
	for _, r := range slot {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return ErrInvalidSlotName
		}
	}
	return nil
}

// CreateSave claims a new slot. The passphrase is hashed with bcrypt.
func (d *Database) CreateSave(slot, passphrase, ruleset string, data []byte, checksum string) (*SaveRecord, error) {
	slot = strings.TrimSpace(slot)
	if err := ValidateSlotName(slot); err != nil {
		return nil, err
	}
	if len(passphrase) < MinPassphraseLength {
		return nil, fmt.Errorf("passphrase must be at least %d characters", MinPassphraseLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash passphrase: %w", err)
	}

	now := time.Now().UTC()
	rec := &SaveRecord{
		Slot:           slot,
		PassphraseHash: string(hash),
		Ruleset:        ruleset,
		Data:           data,
		Checksum:       checksum,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := d.ImportSave(*rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ImportSave inserts a complete record as-is, hash included. Used by
// CreateSave and by migrate-saves.
func (d *Database) ImportSave(rec SaveRecord) error {
	_, err := d.db.Exec(d.qb.Build(
		`INSERT INTO saves (slot, passphrase_hash, ruleset, data, checksum, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		rec.Slot, rec.PassphraseHash, rec.Ruleset, string(rec.Data), rec.Checksum, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		if d.dialect.IsDuplicateKeyError(err) {
			return ErrSlotExists
		}
		return fmt.Errorf("failed to create save: %w", err)
	}
	return nil
}

// Authenticate checks a slot's passphrase and returns its record. Unknown
// slots and wrong passphrases fail the same way.
func (d *Database) Authenticate(slot, passphrase string) (*SaveRecord, error) {
	rec, err := d.LoadSave(slot)
	if err != nil {
		if errors.Is(err, ErrSlotNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.PassphraseHash), []byte(passphrase)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return rec, nil
}

// LoadSave reads a slot (case-insensitive)
func (d *Database) LoadSave(slot string) (*SaveRecord, error) {
	var rec SaveRecord
	var data string
	err := d.db.QueryRow(d.qb.Build(
		`SELECT slot, passphrase_hash, ruleset, data, checksum, created_at, updated_at
		FROM saves WHERE slot = ?`), slot,
	).Scan(&rec.Slot, &rec.PassphraseHash, &rec.Ruleset, &data, &rec.Checksum, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to load save: %w", err)
	}
	rec.Data = []byte(data)
	return &rec, nil
}

// SlotExists reports whether a slot has been claimed
func (d *Database) SlotExists(slot string) (bool, error) {
	var count int
	err := d.db.QueryRow(d.qb.Build(`SELECT COUNT(*) FROM saves WHERE slot = ?`), slot).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check slot: %w", err)
	}
	return count > 0, nil
}

// WriteSave replaces a slot's data and writes any finished expeditions in
// the same transaction, so a death's item loss and its history row land
// together or not at all.
func (d *Database) WriteSave(slot string, data []byte, checksum string, finished []ExpeditionRecord) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.Exec(d.qb.Build(
		`UPDATE saves SET data = ?, checksum = ?, updated_at = ? WHERE slot = ?`),
		string(data), checksum, now, slot,
	)
	if err != nil {
		return fmt.Errorf("failed to write save: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to write save: %w", err)
	}
	if n == 0 {
		return ErrSlotNotFound
	}

	for _, e := range finished {
		if e.EndedAt.IsZero() {
			e.EndedAt = now
		}
		e.Slot = slot
		if _, err := d.insertExpedition(tx, e); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit save: %w", err)
	}
	return nil
}

// DeleteSave removes a slot and, by cascade, its expedition history
func (d *Database) DeleteSave(slot string) error {
	res, err := d.db.Exec(d.qb.Build(`DELETE FROM saves WHERE slot = ?`), slot)
	if err != nil {
		return fmt.Errorf("failed to delete save: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSlotNotFound
	}
	return nil
}

// AllSaves lists every slot in name order
func (d *Database) AllSaves() ([]SaveRecord, error) {
	rows, err := d.db.Query(`
		SELECT slot, passphrase_hash, ruleset, data, checksum, created_at, updated_at
		FROM saves ORDER BY slot`)
	if err != nil {
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}
	defer rows.Close()

	var saves []SaveRecord
	for rows.Next() {
		var rec SaveRecord
		var data string
		if err := rows.Scan(&rec.Slot, &rec.PassphraseHash, &rec.Ruleset, &data, &rec.Checksum, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan save: %w", err)
		}
		rec.Data = []byte(data)
		saves = append(saves, rec)
	}
	return saves, rows.Err()
}

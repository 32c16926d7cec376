package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/lawnchairsociety/abyssforge/internal/database"
	"github.com/lawnchairsociety/abyssforge/internal/savegame"
)

// summary counts what a migration copied
type summary struct {
	Saves        int
	SkippedSaves int
	Corrupt      int
	Expeditions  int
	BossKills    int
}

// migrate copies every save from src to dst. Slots the target already has
// are left alone along with their history, so the tool can be rerun.
func migrate(src, dst *database.Database, dryRun bool) (summary, error) {
	var sum summary

	saves, err := src.AllSaves()
	if err != nil {
		return sum, err
	}

	copied := make(map[string]bool, len(saves))
	for _, rec := range saves {
		if err := savegame.Verify(rec.Data, rec.Checksum); err != nil {
			log.Printf("  %s: %v (copied as-is)", rec.Slot, err)
			sum.Corrupt++
		}

		exists, err := dst.SlotExists(rec.Slot)
		if err != nil {
			return sum, err
		}
		if exists {
			sum.SkippedSaves++
			continue
		}

		if !dryRun {
			if err := dst.ImportSave(rec); err != nil {
				if errors.Is(err, database.ErrSlotExists) {
					sum.SkippedSaves++
					continue
				}
				return sum, fmt.Errorf("slot %s: %w", rec.Slot, err)
			}
		}
		copied[rec.Slot] = true
		sum.Saves++
	}

	expeditions, err := src.AllExpeditions()
	if err != nil {
		return sum, err
	}
	for _, e := range expeditions {
		if !copied[e.Slot] {
			continue
		}
		if !dryRun {
			if _, err := dst.RecordExpedition(e); err != nil {
				return sum, err
			}
		}
		sum.Expeditions++
	}

	kills, err := src.AllBossKills()
	if err != nil {
		return sum, err
	}
	for _, k := range kills {
		if !copied[k.Slot] {
			continue
		}
		if !dryRun {
			if err := dst.ImportBossKill(k); err != nil {
				return sum, err
			}
		}
		sum.BossKills++
	}

	return sum, nil
}

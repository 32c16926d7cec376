package server

import (
	"fmt"
	"sync"

	"github.com/lawnchairsociety/abyssforge/internal/database"
	"github.com/lawnchairsociety/abyssforge/internal/game"
	"github.com/lawnchairsociety/abyssforge/internal/logger"
	"github.com/lawnchairsociety/abyssforge/internal/savegame"
)

// slotRecorder collects a slot's finished expeditions until the next save
// writes them together with the player record. Boss kills go to the
// database at once so first-kill credit is decided when the boss falls.
type slotRecorder struct {
	srv     *Server
	mu      sync.Mutex
	pending []database.ExpeditionRecord
}

func newSlotRecorder(srv *Server) *slotRecorder {
	return &slotRecorder{srv: srv}
}

func (r *slotRecorder) RecordExpedition(slot string, e game.Expedition) error {
	r.mu.Lock()
	r.pending = append(r.pending, database.ExpeditionRecord{
		Slot:       slot,
		StartDepth: e.StartDepth,
		Depth:      e.Depth,
		Outcome:    e.Outcome,
		Gold:       e.Gold,
		Materials:  e.Materials,
		Equipment:  e.Equipment,
		Experience: e.Experience,
		ItemsLost:  e.ItemsLost,
	})
	r.mu.Unlock()

	expeditionsTotal.WithLabelValues(e.Outcome).Inc()
	expeditionDepth.Observe(float64(e.Depth))
	return nil
}

func (r *slotRecorder) RecordBossKill(slot string, depth int, monster string) error {
	bossKillsTotal.Inc()
	first, err := r.srv.db.RecordBossKill(slot, depth, monster)
	if err != nil {
		return err
	}
	if first {
		logger.Always("First boss kill", "slot", slot, "depth", depth, "monster", monster)
		r.srv.Broadcast(fmt.Sprintf("*** %s is the first to slay %s at depth %d! ***", slot, monster, depth))
	}
	return nil
}

// take hands the pending records to a save and clears them
func (r *slotRecorder) take() []database.ExpeditionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	recs := r.pending
	r.pending = nil
	return recs
}

// restore puts back records a failed save did not write
func (r *slotRecorder) restore(recs []database.ExpeditionRecord) {
	if len(recs) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(recs, r.pending...)
}

// saveSession writes the player record and the pending history in one
// transaction. The caller holds the connection's lock.
func (s *Server) saveSession(sess *game.Session, rec *slotRecorder) error {
	data, err := savegame.Encode(sess.Player())
	if err != nil {
		savesTotal.WithLabelValues("error").Inc()
		return err
	}

	var finished []database.ExpeditionRecord
	if rec != nil {
		finished = rec.take()
	}
	if err := s.db.WriteSave(sess.Slot(), data, savegame.Checksum(data), finished); err != nil {
		if rec != nil {
			rec.restore(finished)
		}
		savesTotal.WithLabelValues("error").Inc()
		return err
	}

	savesTotal.WithLabelValues("ok").Inc()
	logger.Debug("Saved slot", "slot", sess.Slot(), "expeditions", len(finished), "bytes", len(data))
	return nil
}

// settleExpedition ends an expedition left open by a disconnect or a
// shutdown. A pending battle is fought out first, so leaving never
// escapes a fight. A fallen hero pays the death penalty.
func settleExpedition(sess *game.Session) {
	run, ok := sess.Run()
	if !ok {
		return
	}
	if run.Battle.Pending() {
		if _, err := sess.Fight(); err != nil {
			logger.Error("Failed to settle battle", "slot", sess.Slot(), "error", err)
			return
		}
		run, _ = sess.Run()
	}

	if run.Dead {
		if _, err := sess.AcknowledgeDeath(); err != nil {
			logger.Error("Failed to settle death", "slot", sess.Slot(), "error", err)
		}
		return
	}
	if _, err := sess.Withdraw(); err != nil {
		logger.Error("Failed to settle expedition", "slot", sess.Slot(), "error", err)
	}
}

// loadSession restores a slot's player. A checksum mismatch is logged and
// the record is still decoded, since decoding repairs what it can.
func (s *Server) loadSession(rec *database.SaveRecord) (*game.Session, *slotRecorder, error) {
	r, ok := s.rules[rec.Ruleset]
	if !ok {
		logger.Warning("Save uses unknown ruleset, using default", "slot", rec.Slot, "ruleset", rec.Ruleset)
		r = s.defaultRules
	}

	if err := savegame.Verify(rec.Data, rec.Checksum); err != nil {
		logger.Warning("Save checksum mismatch", "slot", rec.Slot, "error", err)
	}
	p, err := savegame.Decode(r, rec.Data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode save %s: %w", rec.Slot, err)
	}

	sess := game.NewSession(rec.Slot, r, p, s.newSource())
	recorder := newSlotRecorder(s)
	sess.SetRecorder(recorder)
	return sess, recorder, nil
}

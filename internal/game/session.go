// Package game sequences engine results onto one player. A Session owns a
// player record and at most one expedition; it is not safe for concurrent
// use and the server gives every connection its own.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lawnchairsociety/abyssforge/internal/combat"
	"github.com/lawnchairsociety/abyssforge/internal/dice"
	"github.com/lawnchairsociety/abyssforge/internal/dungeon"
	"github.com/lawnchairsociety/abyssforge/internal/forge"
	"github.com/lawnchairsociety/abyssforge/internal/items"
	"github.com/lawnchairsociety/abyssforge/internal/leveling"
	"github.com/lawnchairsociety/abyssforge/internal/logger"
	"github.com/lawnchairsociety/abyssforge/internal/player"
	"github.com/lawnchairsociety/abyssforge/internal/rules"
	"github.com/lawnchairsociety/abyssforge/internal/shop"
)

var (
	ErrInExpedition = errors.New("you are in the abyss; withdraw first")
	ErrNoExpedition = errors.New("you are not on an expedition")
	ErrNoExperience = errors.New("this ruleset has no experience")
)

// Outcome of a finished expedition
const (
	OutcomeWithdrew = "withdrew"
	OutcomeDied     = "died"
)

// Expedition is the history record of one finished run
type Expedition struct {
	StartDepth int
	Depth      int
	Outcome    string
	Gold       int
	Materials  int
	Equipment  int
	Experience int
	ItemsLost  int
}

// Recorder receives history the session produces. Failures are logged and
// never interrupt play.
type Recorder interface {
	RecordExpedition(slot string, e Expedition) error
	RecordBossKill(slot string, depth int, monster string) error
}

// StepResult is an Advance plus what it did to the player
type StepResult struct {
	dungeon.Step
	LevelUps []leveling.LevelUp
	NewBest  bool
}

// BattleResult is a finished battle plus what it did to the player
type BattleResult struct {
	dungeon.BattleReport
	LevelUps []leveling.LevelUp
}

// Session drives one player through the town and the abyss
type Session struct {
	slot     string
	rules    *rules.Ruleset
	player   *player.Player
	shop     *shop.Shop
	forge    *forge.Generator
	engine   *dungeon.Engine
	run      *dungeon.Run
	recorder Recorder
	log      *slog.Logger
}

// NewSession binds a player to a ruleset. The forge and the dungeon share
// rng so one seed replays a whole session.
func NewSession(slot string, r *rules.Ruleset, p *player.Player, rng dice.Source) *Session {
	gen := forge.NewGenerator(r, rng)
	return &Session{
		slot:   slot,
		rules:  r,
		player: p,
		shop:   shop.New(r.Catalog),
		forge:  gen,
		engine: dungeon.NewEngine(r, gen, rng),
		log:    logger.With("slot", slot, "ruleset", r.Name),
	}
}

// SetRecorder attaches a history sink
func (s *Session) SetRecorder(rec Recorder) {
	s.recorder = rec
}

func (s *Session) Slot() string           { return s.slot }
func (s *Session) Rules() *rules.Ruleset  { return s.rules }
func (s *Session) Player() *player.Player { return s.player }
func (s *Session) Shop() *shop.Shop       { return s.shop }
func (s *Session) InExpedition() bool     { return s.run != nil }
func (s *Session) Hero() dungeon.Hero     { return dungeon.HeroOf(s.player) }

// Run returns a copy of the current expedition
func (s *Session) Run() (dungeon.Run, bool) {
	if s.run == nil {
		return dungeon.Run{}, false
	}
	return *s.run, true
}

func (s *Session) inTown() error {
	if s.run != nil {
		return ErrInExpedition
	}
	return nil
}

func (s *Session) current() (dungeon.Run, error) {
	if s.run == nil {
		return dungeon.Run{}, ErrNoExpedition
	}
	return *s.run, nil
}

// Buy purchases qty units of a material by template ID or quality name
func (s *Session) Buy(key string, qty int) ([]items.Material, error) {
	if err := s.inTown(); err != nil {
		return nil, err
	}
	bought, err := s.shop.BuyMany(s.player, key, qty)
	if err != nil {
		return nil, err
	}
	s.log.Debug("bought materials", "material", bought[0].Name, "qty", qty, "gold", s.player.Gold)
	return bought, nil
}

// Forge consumes the listed materials and adds the result to the
// inventory. Nothing is consumed when forging fails.
func (s *Session) Forge(slot items.Slot, materialIDs []string) (items.Equipment, error) {
	if err := s.inTown(); err != nil {
		return items.Equipment{}, err
	}
	if len(materialIDs) == 0 {
		return items.Equipment{}, forge.ErrNoMaterials
	}
	if len(materialIDs) > s.rules.ForgeSlots {
		return items.Equipment{}, fmt.Errorf("%w: at most %d", forge.ErrTooManyMaterials, s.rules.ForgeSlots)
	}

	bag := s.player.Materials
	taken, err := s.player.TakeMaterials(materialIDs)
	if err != nil {
		return items.Equipment{}, err
	}
	qualities := make([]items.Quality, len(taken))
	for i, m := range taken {
		qualities[i] = m.Quality
	}

	eq, err := s.forge.Generate(forge.Request{Slot: slot, Materials: qualities, PlayerLevel: s.player.Level})
	if err != nil {
		s.player.Materials = bag
		return items.Equipment{}, err
	}
	s.player.AddEquipment(eq)
	s.player.Stats().RecordForge()
	s.log.Info("forged equipment", "item", eq.Name, "id", items.ShortID(eq.ID), "quality", eq.Quality.String(), "value", eq.Value)
	return eq, nil
}

// Equip wears an inventory item
func (s *Session) Equip(id string) (items.Equipment, error) {
	if err := s.inTown(); err != nil {
		return items.Equipment{}, err
	}
	return s.player.Equip(id)
}

// Unequip empties a slot
func (s *Session) Unequip(slot items.Slot) (items.Equipment, error) {
	if err := s.inTown(); err != nil {
		return items.Equipment{}, err
	}
	return s.player.Unequip(slot)
}

// Sell trades an unequipped item for its value
func (s *Session) Sell(id string) (items.Equipment, error) {
	if err := s.inTown(); err != nil {
		return items.Equipment{}, err
	}
	sold, err := s.player.Sell(id)
	if err != nil {
		return items.Equipment{}, err
	}
	s.log.Debug("sold equipment", "item", sold.Name, "value", sold.Value)
	return sold, nil
}

// StartExpedition enters the abyss at floor (0 for the surface)
func (s *Session) StartExpedition(floor int) (dungeon.Run, error) {
	if err := s.inTown(); err != nil {
		return dungeon.Run{}, err
	}
	run, err := s.engine.Start(s.Hero(), floor)
	if err != nil {
		return dungeon.Run{}, err
	}
	s.run = &run
	s.player.Stats().RecordExpedition()
	s.log.Info("expedition started", "depth", run.Depth, "hp", run.HP)
	return run, nil
}

// Proceed advances one depth
func (s *Session) Proceed() (StepResult, error) {
	run, err := s.current()
	if err != nil {
		return StepResult{}, err
	}
	next, step, err := s.engine.Advance(run, s.Hero())
	if err != nil {
		return StepResult{}, err
	}
	s.run = &next

	res := StepResult{Step: step}
	res.NewBest = s.player.RecordDepth(step.Depth)
	if step.Experience > 0 {
		res.LevelUps = s.player.GainExperience(step.Experience)
	}
	s.log.Debug("advanced", "depth", step.Depth, "event", string(step.Kind))
	return res, nil
}

// Fight resolves the pending battle to the end
func (s *Session) Fight() (BattleResult, error) {
	run, err := s.current()
	if err != nil {
		return BattleResult{}, err
	}
	next, report, err := s.engine.Fight(run, s.Hero())
	if err != nil {
		return BattleResult{}, err
	}
	s.run = &next
	return s.settleBattle(next, report), nil
}

// Strike plays one round. The result is nil until the battle ends.
func (s *Session) Strike() ([]combat.Event, *BattleResult, error) {
	run, err := s.current()
	if err != nil {
		return nil, nil, err
	}
	next, events, report, err := s.engine.Strike(run, s.Hero())
	if err != nil {
		return nil, nil, err
	}
	s.run = &next
	if report == nil {
		return events, nil, nil
	}
	res := s.settleBattle(next, *report)
	return events, &res, nil
}

func (s *Session) settleBattle(run dungeon.Run, report dungeon.BattleReport) BattleResult {
	res := BattleResult{BattleReport: report}
	st := s.player.Stats()
	st.RecordDamage(report.DamageDealt, report.DamageTaken)
	if !report.Victory {
		s.log.Info("defeated", "depth", run.Depth, "rounds", report.Rounds)
		return res
	}

	st.RecordKill(report.Boss)
	if report.Experience > 0 {
		res.LevelUps = s.player.GainExperience(report.Experience)
	}
	if report.Boss && s.recorder != nil && run.Battle != nil {
		if err := s.recorder.RecordBossKill(s.slot, run.Depth, run.Battle.MonsterName); err != nil {
			s.log.Warn("failed to record boss kill", "error", err)
		}
	}
	s.log.Debug("battle won", "depth", run.Depth, "boss", report.Boss, "rounds", report.Rounds, "exp", report.Experience)
	return res
}

// Withdraw ends the expedition and brings the loot home
func (s *Session) Withdraw() (dungeon.Loot, error) {
	run, err := s.current()
	if err != nil {
		return dungeon.Loot{}, err
	}
	if err := dungeon.Withdraw(run, s.player); err != nil {
		return dungeon.Loot{}, err
	}
	s.run = nil
	s.record(run, OutcomeWithdrew, 0)
	s.log.Info("expedition withdrawn", "depth", run.Depth, "gold", run.Loot.Gold,
		"materials", len(run.Loot.Materials), "equipment", len(run.Loot.Equipment))
	return run.Loot, nil
}

// AcknowledgeDeath settles a dead expedition and returns the destroyed gear
func (s *Session) AcknowledgeDeath() ([]items.Equipment, error) {
	run, err := s.current()
	if err != nil {
		return nil, err
	}
	lost, err := dungeon.OnDeath(run, s.player)
	if err != nil {
		return nil, err
	}
	s.run = nil
	s.record(run, OutcomeDied, len(lost))
	for _, eq := range lost {
		s.log.Log(context.Background(), logger.LevelAlways, "equipment destroyed on death", "item", eq.Name, "id", eq.ID, "depth", run.Depth)
	}
	return lost, nil
}

func (s *Session) record(run dungeon.Run, outcome string, lost int) {
	if s.recorder == nil {
		return
	}
	e := Expedition{
		StartDepth: run.StartDepth,
		Depth:      run.Depth,
		Outcome:    outcome,
		Experience: run.Loot.Experience,
		ItemsLost:  lost,
	}
	if outcome == OutcomeWithdrew {
		e.Gold = run.Loot.Gold
		e.Materials = len(run.Loot.Materials)
		e.Equipment = len(run.Loot.Equipment)
	}
	if err := s.recorder.RecordExpedition(s.slot, e); err != nil {
		s.log.Warn("failed to record expedition", "error", err)
	}
}

// GrantGold hands out the ruleset's debug gold supply
func (s *Session) GrantGold() int {
	s.player.AddGold(s.rules.GrantGold)
	s.log.Info("granted gold", "amount", s.rules.GrantGold)
	return s.rules.GrantGold
}

// GrantExperience hands out the ruleset's debug experience supply
func (s *Session) GrantExperience() ([]leveling.LevelUp, error) {
	if !s.rules.Experience() {
		return nil, ErrNoExperience
	}
	s.log.Info("granted experience", "amount", s.rules.GrantExperience)
	return s.player.GainExperience(s.rules.GrantExperience), nil
}

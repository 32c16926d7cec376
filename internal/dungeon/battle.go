package dungeon

import (
	"fmt"
	"math"

	"github.com/lawnchairsociety/abyssforge/internal/combat"
	"github.com/lawnchairsociety/abyssforge/internal/dice"
	"github.com/lawnchairsociety/abyssforge/internal/forge"
	"github.com/lawnchairsociety/abyssforge/internal/items"
	"github.com/lawnchairsociety/abyssforge/internal/leveling"
	"github.com/lawnchairsociety/abyssforge/internal/rules"
)

// Drop tables
var (
	bossRecipe   = []items.Quality{items.Rare, items.Refined, items.Refined}
	minionRecipe = []items.Quality{items.Common, items.Refined, items.Common}
)

const (
	classicEquipmentRoll   = 0.7 // equipment drops when the roll is above
	ascensionEquipmentRoll = 0.5 // equipment drops when the roll is below
	dropRareRoll           = 0.95
	dropRefinedRoll        = 0.7
	bossExperience         = 100
	monsterExperience      = 30
)

// BattleReport summarizes a finished battle
type BattleReport struct {
	Victory     bool
	Boss        bool
	Rounds      int
	Events      []combat.Event
	Experience  int
	Equipment   *items.Equipment
	Material    *items.Material
	DamageDealt int
	DamageTaken int
}

func (e *Engine) pendingBattle(run Run) error {
	if run.Dead {
		return ErrRunDead
	}
	if !run.Battle.Pending() {
		return ErrNoBattle
	}
	return nil
}

func battleState(run Run, hero Hero) combat.State {
	s := combat.NewState(hero.Stats, run.HP, run.MaxHP, run.Battle.MonsterHP, run.Battle.MonsterATK)
	s.Round = run.Battle.Round
	return s
}

func applyState(run *Run, s combat.State) {
	run.HP = s.PlayerHP
	run.Battle.MonsterHP = s.MonsterHP
	run.Battle.Round = s.Round
}

// Fight resolves the pending battle to the end and rolls its rewards
func (e *Engine) Fight(run Run, hero Hero) (Run, BattleReport, error) {
	if err := e.pendingBattle(run); err != nil {
		return run, BattleReport{}, err
	}

	next := run.clone()
	out, err := combat.Resolve(battleState(next, hero), e.rng)
	if err != nil {
		return run, BattleReport{}, fmt.Errorf("resolve battle: %w", err)
	}
	applyState(&next, out.Final)

	report, err := e.finish(&next, hero, out.Victory)
	if err != nil {
		return run, BattleReport{}, err
	}
	report.Events = out.Events
	report.DamageDealt = out.DamageDealt
	report.DamageTaken = out.DamageTaken
	return next, report, nil
}

// Strike plays a single round of the pending battle. The report is nil
// until the round that ends the fight.
func (e *Engine) Strike(run Run, hero Hero) (Run, []combat.Event, *BattleReport, error) {
	if err := e.pendingBattle(run); err != nil {
		return run, nil, nil, err
	}

	next := run.clone()
	s, events, err := combat.Round(battleState(next, hero), e.rng)
	if err != nil {
		return run, nil, nil, fmt.Errorf("battle round: %w", err)
	}
	applyState(&next, s)

	if !s.Finished() {
		return next, events, nil, nil
	}

	report, err := e.finish(&next, hero, s.Victory())
	if err != nil {
		return run, nil, nil, err
	}
	report.Events = events
	for _, ev := range events {
		if ev.Kind != combat.Damage {
			continue
		}
		if ev.Target == combat.Monster {
			report.DamageDealt += ev.Amount
		} else {
			report.DamageTaken += ev.Amount
		}
	}
	return next, events, &report, nil
}

// finish marks the battle over and rolls rewards on a win. Draw order
// after a win: equipment/material roll, slot coin, forge draws.
func (e *Engine) finish(run *Run, hero Hero, victory bool) (BattleReport, error) {
	b := run.Battle
	b.Finished = true
	b.Victory = victory
	report := BattleReport{Victory: victory, Boss: b.Boss, Rounds: b.Round}

	if !victory {
		run.Dead = true
		run.Event = EventDefeat
		if e.rules.Experience() {
			run.addLog(e.rules.LogLimit, "[Defeat] You collapse in a pool of blood. Experience already earned is kept.")
		} else {
			run.addLog(e.rules.LogLimit, "[Defeat] You collapse in a pool of blood.")
		}
		return report, nil
	}

	run.Event = EventVictory
	if e.rules.Experience() {
		base := monsterExperience
		if b.Boss {
			base = bossExperience
		}
		report.Experience = int(math.Floor(float64(base) * leveling.ExpScale(run.Depth)))
		run.Loot.Experience += report.Experience
	}

	eq, mat, err := e.rollDrops(b.Boss, hero.Level)
	if err != nil {
		return report, err
	}
	if eq != nil {
		run.Loot.Equipment = append(run.Loot.Equipment, *eq)
		report.Equipment = eq
	}
	if mat != nil {
		run.Loot.Materials = append(run.Loot.Materials, *mat)
		report.Material = mat
	}

	line := "[Victory] The battle is over."
	if report.Experience > 0 {
		line = fmt.Sprintf("[Victory] The battle is over. Gained %d exp.", report.Experience)
	}
	run.addLog(e.rules.LogLimit, line)
	return report, nil
}

func (e *Engine) rollDrops(boss bool, level int) (*items.Equipment, *items.Material, error) {
	if level < 1 {
		level = 1
	}

	if boss {
		eq, err := e.dropEquipment(bossRecipe, level, true)
		if err != nil {
			return nil, nil, err
		}
		mat := e.rules.Catalog.ByQuality(items.Rare).Instance()
		return eq, &mat, nil
	}

	roll := e.rng.Float64()
	if e.rules.Variant == rules.VariantClassic {
		if roll > classicEquipmentRoll {
			eq, err := e.dropEquipment(minionRecipe, level, false)
			return eq, nil, err
		}
		return nil, nil, nil
	}

	if roll < ascensionEquipmentRoll {
		eq, err := e.dropEquipment(minionRecipe, level, false)
		return eq, nil, err
	}

	matRoll := e.rng.Float64()
	quality := items.Common
	switch {
	case matRoll > dropRareRoll:
		quality = items.Rare
	case matRoll > dropRefinedRoll:
		quality = items.Refined
	}
	mat := e.rules.Catalog.ByQuality(quality).Instance()
	return nil, &mat, nil
}

func (e *Engine) dropEquipment(recipe []items.Quality, level int, boss bool) (*items.Equipment, error) {
	slot := items.Armor
	if dice.Pick(e.rng) {
		slot = items.Weapon
	}
	eq, err := e.forge.Generate(forge.Request{Slot: slot, Materials: recipe, PlayerLevel: level, BossDrop: boss})
	if err != nil {
		return nil, fmt.Errorf("generate drop: %w", err)
	}
	return &eq, nil
}

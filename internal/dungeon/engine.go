package dungeon

import (
	"fmt"
	"math"

	"github.com/lawnchairsociety/abyssforge/internal/dice"
	"github.com/lawnchairsociety/abyssforge/internal/forge"
	"github.com/lawnchairsociety/abyssforge/internal/items"
	"github.com/lawnchairsociety/abyssforge/internal/leveling"
	"github.com/lawnchairsociety/abyssforge/internal/rules"
)

// Event thresholds
const (
	classicMonsterChance   = 0.5
	classicLootChance      = 0.9
	ascensionMonsterChance = 0.35
	ascensionRestRoll      = 0.9
	ascensionRestMinDepth  = 5
	forcedRestInterval     = 15
	restHealRatio          = 0.4
	lootGoldPerDepth       = 15
	lootRareRoll           = 0.98
	lootRefinedRoll        = 0.7
)

// Engine runs expeditions under one ruleset. It keeps no per-run state.
type Engine struct {
	rules *rules.Ruleset
	forge *forge.Generator
	rng   dice.Source
}

// NewEngine creates an engine. The generator should draw from the same
// source so a single seed reproduces a whole expedition.
func NewEngine(r *rules.Ruleset, gen *forge.Generator, rng dice.Source) *Engine {
	return &Engine{rules: r, forge: gen, rng: rng}
}

// Rules returns the engine's ruleset
func (e *Engine) Rules() *rules.Ruleset {
	return e.rules
}

// Start opens an expedition at startFloor*10. Floors past 0 need the
// ascension rules and a best depth that reached them.
func (e *Engine) Start(hero Hero, startFloor int) (Run, error) {
	if startFloor < 0 {
		return Run{}, fmt.Errorf("%w: floor %d", ErrFloorLocked, startFloor)
	}
	if startFloor > 0 {
		if !e.rules.FloorSelect() {
			return Run{}, fmt.Errorf("%w: %s rules always start at floor 0", ErrFloorLocked, e.rules.Name)
		}
		if startFloor > MaxStartFloor(hero.BestDepth) {
			return Run{}, fmt.Errorf("%w: floor %d needs best depth %d", ErrFloorLocked, startFloor, startFloor*BossInterval)
		}
	}
	if hero.Stats.HP <= 0 {
		return Run{}, ErrNoHealth
	}

	depth := startFloor * BossInterval
	run := Run{
		Depth:         depth,
		StartDepth:    depth,
		HP:            hero.Stats.HP,
		MaxHP:         hero.Stats.HP,
		Loot:          Loot{Materials: []items.Material{}, Equipment: []items.Equipment{}},
		LastRestDepth: depth,
		Event:         EventStart,
	}
	run.addLog(e.rules.LogLimit, fmt.Sprintf("You step into the abyss (start: depth %d)...", depth))
	return run, nil
}

// Advance moves the run one depth deeper and rolls what waits there.
// A won battle still attached to the run is cleared first.
func (e *Engine) Advance(run Run, hero Hero) (Run, Step, error) {
	if run.Dead {
		return run, Step{}, ErrRunDead
	}
	if run.Battle.Pending() {
		return run, Step{}, ErrBattlePending
	}

	next := run.clone()
	next.Battle = nil
	depth := run.Depth + 1
	next.Depth = depth
	step := Step{Depth: depth}

	if IsBossDepth(depth) {
		next.Battle = NewBoss(depth)
		next.Event = EventBoss
		step.Kind = EventBoss
		step.Battle = next.Battle
		next.addLog(e.rules.LogLimit, fmt.Sprintf("[Warning] Depth %d: a boss chamber!", depth))
		return next, step, nil
	}

	roll := e.rng.Float64()
	if e.rules.Variant == rules.VariantAscension {
		forced := depth-run.LastRestDepth >= forcedRestInterval
		switch {
		case forced || (depth > ascensionRestMinDepth && roll >= ascensionRestRoll):
			step.ForcedRest = forced
			e.rest(&next, &step)
		case roll < ascensionMonsterChance:
			e.monster(&next, &step)
		default:
			e.loot(&next, &step)
		}
		return next, step, nil
	}

	switch {
	case roll < classicMonsterChance:
		e.monster(&next, &step)
	case roll < classicLootChance:
		e.loot(&next, &step)
	default:
		e.rest(&next, &step)
	}
	return next, step, nil
}

func (e *Engine) rest(run *Run, step *Step) {
	heal := int(math.Floor(float64(run.MaxHP) * restHealRatio))
	before := run.HP
	run.HP = min(run.MaxHP, run.HP+heal)
	run.LastRestDepth = run.Depth
	run.Event = EventRest

	step.Kind = EventRest
	step.Healed = run.HP - before
	run.addLog(e.rules.LogLimit, fmt.Sprintf("[Depth %d] Found a safe camp and recovered %d HP.", run.Depth, heal))
}

func (e *Engine) monster(run *Run, step *Step) {
	run.Battle = NewMonster(run.Depth)
	run.Event = EventMonster

	step.Kind = EventMonster
	step.Battle = run.Battle
	run.addLog(e.rules.LogLimit, fmt.Sprintf("[Depth %d] A monster blocks the way!", run.Depth))
}

// loot draws the material tier roll, then gold, then (ascension) experience
func (e *Engine) loot(run *Run, step *Step) {
	tierRoll := e.rng.Float64()
	gold := int(math.Floor(e.rng.Float64() * lootGoldPerDepth * float64(run.Depth)))

	quality := items.Common
	switch {
	case tierRoll > lootRareRoll:
		quality = items.Rare
	case tierRoll > lootRefinedRoll:
		quality = items.Refined
	}
	mat := e.rules.Catalog.ByQuality(quality).Instance()

	run.Loot.Gold += gold
	run.Loot.Materials = append(run.Loot.Materials, mat)
	run.Event = EventLoot

	step.Kind = EventLoot
	step.Gold = gold
	step.Material = &mat

	if !e.rules.Experience() {
		run.addLog(e.rules.LogLimit, fmt.Sprintf("[Depth %d] Searched the ruins: %d gold and %s.", run.Depth, gold, mat.Name))
		return
	}

	exp := int(math.Floor((12 + e.rng.Float64()*6) * leveling.ExpScale(run.Depth)))
	run.Loot.Experience += exp
	step.Experience = exp
	run.addLog(e.rules.LogLimit, fmt.Sprintf("[Depth %d] Searched the ruins: %d gold, %s and %d exp.", run.Depth, gold, mat.Name, exp))
}

package balance

import (
	"fmt"
	"sort"

	"github.com/lawnchairsociety/abyssforge/internal/dice"
	"github.com/lawnchairsociety/abyssforge/internal/dungeon"
	"github.com/lawnchairsociety/abyssforge/internal/game"
	"github.com/lawnchairsociety/abyssforge/internal/rules"
)

// maxSteps bounds a single simulated expedition
const maxSteps = 10000

// Policy decides when a simulated hero turns back
type Policy struct {
	StartFloor   int
	RetreatBelow float64 // withdraw when HP falls under this share of max HP
	MaxDepth     int     // withdraw on reaching this depth; 0 means never
}

// ExpeditionResult is the outcome of one simulated expedition
type ExpeditionResult struct {
	Died       bool
	Depth      int
	Gold       int
	Experience int
	Equipment  int
	BossKills  int
}

// ExpeditionSummary aggregates many simulated expeditions
type ExpeditionSummary struct {
	Simulations  int
	Deaths       int
	DeathRate    float64
	AvgDepth     float64
	MedianDepth  int
	P90Depth     int
	MaxDepth     int
	AvgGold      float64
	AvgExp       float64
	AvgEquipment float64
	AvgBossKills float64
}

// RunExpedition plays one expedition to the end with a fresh hero
func RunExpedition(r *rules.Ruleset, loadout Loadout, policy Policy, rng dice.Source) (ExpeditionResult, error) {
	p, err := loadout.Build(r, rng)
	if err != nil {
		return ExpeditionResult{}, err
	}
	if policy.StartFloor > 0 {
		p.MaxDungeonDepth = policy.StartFloor * dungeon.BossInterval
	}

	sess := game.NewSession("balance", r, p, rng)
	if _, err := sess.StartExpedition(policy.StartFloor); err != nil {
		return ExpeditionResult{}, err
	}

	var res ExpeditionResult
	for step := 0; step < maxSteps; step++ {
		if _, err := sess.Proceed(); err != nil {
			return res, err
		}
		run, _ := sess.Run()
		if run.Battle.Pending() {
			report, err := sess.Fight()
			if err != nil {
				return res, err
			}
			if report.Victory && report.Boss {
				res.BossKills++
			}
		}

		run, _ = sess.Run()
		res.Depth = run.Depth
		if run.Dead {
			if _, err := sess.AcknowledgeDeath(); err != nil {
				return res, err
			}
			res.Died = true
			res.Experience = run.Loot.Experience
			return res, nil
		}
		if policy.shouldWithdraw(run) {
			loot, err := sess.Withdraw()
			if err != nil {
				return res, err
			}
			res.Gold = loot.Gold
			res.Experience = loot.Experience
			res.Equipment = len(loot.Equipment)
			return res, nil
		}
	}
	return res, fmt.Errorf("expedition did not end within %d steps", maxSteps)
}

func (p Policy) shouldWithdraw(run dungeon.Run) bool {
	if p.MaxDepth > 0 && run.Depth >= p.MaxDepth {
		return true
	}
	return run.MaxHP > 0 && float64(run.HP) < float64(run.MaxHP)*p.RetreatBelow
}

// SimulateExpeditions runs iterations expeditions, each on its own seeded
// source so a seed reproduces the whole batch.
func SimulateExpeditions(r *rules.Ruleset, loadout Loadout, policy Policy, iterations int, seed int64) (ExpeditionSummary, error) {
	summary := ExpeditionSummary{Simulations: iterations}
	if iterations <= 0 {
		return summary, nil
	}

	depths := make([]int, 0, iterations)
	var totalDepth, totalGold, totalExp, totalEquip, totalBoss int
	for i := 0; i < iterations; i++ {
		res, err := RunExpedition(r, loadout, policy, dice.New(seed+int64(i)))
		if err != nil {
			return summary, fmt.Errorf("iteration %d: %w", i, err)
		}
		if res.Died {
			summary.Deaths++
		}
		depths = append(depths, res.Depth)
		totalDepth += res.Depth
		totalGold += res.Gold
		totalExp += res.Experience
		totalEquip += res.Equipment
		totalBoss += res.BossKills
	}

	n := float64(iterations)
	sort.Ints(depths)
	summary.DeathRate = float64(summary.Deaths) / n * 100
	summary.AvgDepth = float64(totalDepth) / n
	summary.MedianDepth = depths[iterations/2]
	summary.P90Depth = depths[(iterations*9)/10]
	summary.MaxDepth = depths[iterations-1]
	summary.AvgGold = float64(totalGold) / n
	summary.AvgExp = float64(totalExp) / n
	summary.AvgEquipment = float64(totalEquip) / n
	summary.AvgBossKills = float64(totalBoss) / n
	return summary, nil
}

package balance

import (
	"github.com/lawnchairsociety/abyssforge/internal/combat"
	"github.com/lawnchairsociety/abyssforge/internal/dice"
	"github.com/lawnchairsociety/abyssforge/internal/dungeon"
	"github.com/lawnchairsociety/abyssforge/internal/rules"
)

// DepthResult is how a loadout fares against the encounter at one depth
type DepthResult struct {
	Depth       int
	Boss        bool
	MonsterHP   int
	MonsterATK  int
	Simulations int
	Wins        int
	WinRate     float64
	AvgRounds   float64
	AvgHPLeft   float64 // when winning
}

// SimulateDepths fights the encounter of every depth at full health. Boss
// depths face the boss, every other depth a regular monster.
func SimulateDepths(r *rules.Ruleset, loadout Loadout, depths []int, iterations int, seed int64) ([]DepthResult, error) {
	p, err := loadout.Build(r, dice.New(seed))
	if err != nil {
		return nil, err
	}
	block := p.Effective()

	results := make([]DepthResult, 0, len(depths))
	for _, depth := range depths {
		battle := dungeon.NewMonster(depth)
		if dungeon.IsBossDepth(depth) {
			battle = dungeon.NewBoss(depth)
		}
		res := DepthResult{
			Depth:       depth,
			Boss:        battle.Boss,
			MonsterHP:   battle.MonsterHP,
			MonsterATK:  battle.MonsterATK,
			Simulations: iterations,
		}

		src := dice.New(seed + int64(depth))
		var rounds, hpLeft int
		for i := 0; i < iterations; i++ {
			out, err := combat.Resolve(combat.NewState(block, block.HP, block.HP, battle.MonsterHP, battle.MonsterATK), src)
			if err != nil {
				return nil, err
			}
			rounds += out.Rounds
			if out.Victory {
				res.Wins++
				hpLeft += out.Final.PlayerHP
			}
		}
		if iterations > 0 {
			res.WinRate = float64(res.Wins) / float64(iterations) * 100
			res.AvgRounds = float64(rounds) / float64(iterations)
		}
		if res.Wins > 0 {
			res.AvgHPLeft = float64(hpLeft) / float64(res.Wins)
		}
		results = append(results, res)
	}
	return results, nil
}

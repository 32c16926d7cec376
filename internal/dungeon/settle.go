package dungeon

import (
	"github.com/lawnchairsociety/abyssforge/internal/items"
	"github.com/lawnchairsociety/abyssforge/internal/player"
)

// Withdraw brings the run's loot home. Experience is not merged here:
// ascension applies it the moment it is earned.
func Withdraw(run Run, p *player.Player) error {
	if run.Dead {
		return ErrRunDead
	}
	if run.Battle.Pending() {
		return ErrBattlePending
	}
	p.Collect(run.Loot.Gold,
		append([]items.Material(nil), run.Loot.Materials...),
		append([]items.Equipment(nil), run.Loot.Equipment...))
	return nil
}

// OnDeath settles a dead run: both equipped items are destroyed and the
// run's loot is discarded with it. Bag-only items survive.
func OnDeath(run Run, p *player.Player) ([]items.Equipment, error) {
	if !run.Dead {
		return nil, ErrRunAlive
	}
	lost := p.LoseEquipped()
	p.Stats().RecordDeath(len(lost))
	return lost, nil
}

// HeroOf builds the dungeon's view of a player
func HeroOf(p *player.Player) Hero {
	return Hero{Stats: p.Effective(), Level: p.Level, BestDepth: p.MaxDungeonDepth}
}

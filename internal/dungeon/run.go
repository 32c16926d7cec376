// Package dungeon advances an expedition one depth at a time. A Run is a
// value owned by exactly one caller; every Engine method takes a Run and
// returns the next one without touching the input.
package dungeon

import (
	"errors"

	"github.com/lawnchairsociety/abyssforge/internal/items"
	"github.com/lawnchairsociety/abyssforge/internal/stats"
)

var (
	ErrRunDead       = errors.New("dungeon: the expedition has ended in death")
	ErrRunAlive      = errors.New("dungeon: the expedition is still alive")
	ErrBattlePending = errors.New("dungeon: a battle must be fought first")
	ErrNoBattle      = errors.New("dungeon: there is nothing to fight")
	ErrFloorLocked   = errors.New("dungeon: that start floor is locked")
	ErrNoHealth      = errors.New("dungeon: cannot enter with 0 HP")
)

// EventKind names what happened on the latest step
type EventKind string

const (
	EventStart   EventKind = "start"
	EventBoss    EventKind = "boss"
	EventMonster EventKind = "monster"
	EventLoot    EventKind = "loot"
	EventRest    EventKind = "rest"
	EventVictory EventKind = "victory"
	EventDefeat  EventKind = "defeat"
)

// Hero is the slice of player state the dungeon reads: effective stats,
// level for loot generation, and best depth for start-floor checks.
type Hero struct {
	Stats     stats.Block
	Level     int
	BestDepth int
}

// Battle is the encounter waiting at the current depth
type Battle struct {
	MonsterName  string `json:"monsterName"`
	MonsterMaxHP int    `json:"monsterMaxHP"`
	MonsterHP    int    `json:"monsterHP"`
	MonsterATK   int    `json:"monsterATK"`
	Boss         bool   `json:"boss"`
	Round        int    `json:"round"`
	Finished     bool   `json:"isFinished"`
	Victory      bool   `json:"victory"`
}

// Pending reports whether the battle still has to be fought
func (b *Battle) Pending() bool {
	return b != nil && !b.Finished
}

// Loot is what the run has gathered and not yet brought home
type Loot struct {
	Gold       int               `json:"gold"`
	Materials  []items.Material  `json:"materials"`
	Equipment  []items.Equipment `json:"inventory"`
	Experience int               `json:"exp"`
}

// Empty reports whether there is nothing to bring home
func (l Loot) Empty() bool {
	return l.Gold == 0 && len(l.Materials) == 0 && len(l.Equipment) == 0
}

// Run is one expedition
type Run struct {
	Depth         int       `json:"depth"`
	StartDepth    int       `json:"startDepth"`
	HP            int       `json:"currentHP"`
	MaxHP         int       `json:"maxHP"`
	Loot          Loot      `json:"loot"`
	Log           []string  `json:"log"` // newest first
	Dead          bool      `json:"isDead"`
	Battle        *Battle   `json:"battle,omitempty"`
	LastRestDepth int       `json:"lastHealDepth"`
	Event         EventKind `json:"currentEvent"`
}

// clone copies every slice and pointer so the returned run shares nothing
// with r.
func (r Run) clone() Run {
	r.Log = append([]string(nil), r.Log...)
	r.Loot.Materials = append([]items.Material(nil), r.Loot.Materials...)
	r.Loot.Equipment = append([]items.Equipment(nil), r.Loot.Equipment...)
	if r.Battle != nil {
		b := *r.Battle
		r.Battle = &b
	}
	return r
}

// addLog prepends a line and trims to limit
func (r *Run) addLog(limit int, line string) {
	r.Log = append([]string{line}, r.Log...)
	if len(r.Log) > limit {
		r.Log = r.Log[:limit]
	}
}

// Step reports what one Advance did
type Step struct {
	Depth      int
	Kind       EventKind
	Gold       int
	Material   *items.Material
	Experience int
	Healed     int
	Battle     *Battle
	ForcedRest bool
}

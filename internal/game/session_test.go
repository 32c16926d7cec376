package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawnchairsociety/abyssforge/internal/dice"
	"github.com/lawnchairsociety/abyssforge/internal/dungeon"
	"github.com/lawnchairsociety/abyssforge/internal/forge"
	"github.com/lawnchairsociety/abyssforge/internal/items"
	"github.com/lawnchairsociety/abyssforge/internal/player"
	"github.com/lawnchairsociety/abyssforge/internal/rules"
	"github.com/lawnchairsociety/abyssforge/internal/stats"
)

type fakeRecorder struct {
	expeditions []Expedition
	bossKills   []string
}

func (f *fakeRecorder) RecordExpedition(slot string, e Expedition) error {
	f.expeditions = append(f.expeditions, e)
	return nil
}

func (f *fakeRecorder) RecordBossKill(slot string, depth int, monster string) error {
	f.bossKills = append(f.bossKills, monster)
	return nil
}

func newSession(r *rules.Ruleset, src dice.Source) *Session {
	return NewSession("test", r, player.New(r), src)
}

func materialIDs(ms []items.Material) []string {
	ids := make([]string, len(ms))
	for i, m := range ms {
		ids[i] = m.ID
	}
	return ids
}

func TestBuyAndForge(t *testing.T) {
	s := newSession(rules.Classic(), dice.Repeat(0.5))

	bought, err := s.Buy("common", 3)
	require.NoError(t, err)
	assert.Equal(t, 170, s.Player().Gold)
	assert.Len(t, s.Player().Materials, 3)

	eq, err := s.Forge(items.Weapon, materialIDs(bought))
	require.NoError(t, err)
	assert.Equal(t, items.Common, eq.Quality)
	assert.Equal(t, []items.Quality{items.Common, items.Common, items.Common}, eq.MaterialsUsed)
	assert.NotEmpty(t, eq.ID)
	assert.Empty(t, s.Player().Materials)
	assert.Len(t, s.Player().Inventory, 1)
	assert.Equal(t, 1, s.Player().Stats().Snapshot().ItemsForged)
}

func TestForgeFailureConsumesNothing(t *testing.T) {
	s := newSession(rules.Classic(), dice.Repeat(0.5))
	bought, err := s.Buy("m1", 4)
	require.NoError(t, err)

	_, err = s.Forge(items.Weapon, materialIDs(bought))
	assert.ErrorIs(t, err, forge.ErrTooManyMaterials)

	_, err = s.Forge(items.Weapon, nil)
	assert.ErrorIs(t, err, forge.ErrNoMaterials)

	_, err = s.Forge(items.Weapon, []string{bought[0].ID, "nope"})
	assert.ErrorIs(t, err, player.ErrMaterialNotFound)

	_, err = s.Forge(items.Slot("SHIELD"), materialIDs(bought[:2]))
	assert.ErrorIs(t, err, forge.ErrInvalidSlot)

	assert.Len(t, s.Player().Materials, 4)
	assert.Empty(t, s.Player().Inventory)
}

func TestTownActionsBlockedInExpedition(t *testing.T) {
	s := newSession(rules.Classic(), dice.Repeat(0.5))
	_, err := s.StartExpedition(0)
	require.NoError(t, err)
	assert.True(t, s.InExpedition())

	_, err = s.Buy("common", 1)
	assert.ErrorIs(t, err, ErrInExpedition)
	_, err = s.Forge(items.Weapon, []string{"x"})
	assert.ErrorIs(t, err, ErrInExpedition)
	_, err = s.Equip("x")
	assert.ErrorIs(t, err, ErrInExpedition)
	_, err = s.StartExpedition(0)
	assert.ErrorIs(t, err, ErrInExpedition)
}

func TestDungeonActionsNeedExpedition(t *testing.T) {
	s := newSession(rules.Ascension(), dice.Repeat(0.5))

	_, err := s.Proceed()
	assert.ErrorIs(t, err, ErrNoExpedition)
	_, err = s.Fight()
	assert.ErrorIs(t, err, ErrNoExpedition)
	_, _, err = s.Strike()
	assert.ErrorIs(t, err, ErrNoExpedition)
	_, err = s.Withdraw()
	assert.ErrorIs(t, err, ErrNoExpedition)
	_, err = s.AcknowledgeDeath()
	assert.ErrorIs(t, err, ErrNoExpedition)
}

func TestProceedLootAppliesExperience(t *testing.T) {
	// event 0.5 -> loot; tier 0.5 -> common; gold 0.5*15 -> 7; exp 12+3 -> 15
	rec := &fakeRecorder{}
	s := newSession(rules.Ascension(), dice.Script(0.5, 0.5, 0.5, 0.5))
	s.SetRecorder(rec)
	_, err := s.StartExpedition(0)
	require.NoError(t, err)

	res, err := s.Proceed()
	require.NoError(t, err)
	assert.Equal(t, dungeon.EventLoot, res.Kind)
	assert.Equal(t, 7, res.Gold)
	assert.Equal(t, 15, res.Experience)
	assert.True(t, res.NewBest)
	assert.Empty(t, res.LevelUps)

	p := s.Player()
	assert.Equal(t, 15, p.Exp)
	assert.Equal(t, 1, p.MaxDungeonDepth)

	loot, err := s.Withdraw()
	require.NoError(t, err)
	assert.Equal(t, 7, loot.Gold)
	assert.Equal(t, 207, p.Gold)
	assert.Len(t, p.Materials, 1)
	assert.Equal(t, 15, p.Exp, "withdraw does not merge experience twice")
	assert.False(t, s.InExpedition())

	require.Len(t, rec.expeditions, 1)
	assert.Equal(t, OutcomeWithdrew, rec.expeditions[0].Outcome)
	assert.Equal(t, 7, rec.expeditions[0].Gold)
	assert.Equal(t, 1, rec.expeditions[0].Materials)
}

func TestFightRecordsKillAndExperience(t *testing.T) {
	// advance: monster; three non-crit rounds; material drop
	s := newSession(rules.Ascension(), dice.Script(0.1, 0.99, 0.99, 0.99, 0.7, 0.96))
	_, err := s.StartExpedition(0)
	require.NoError(t, err)
	_, err = s.Proceed()
	require.NoError(t, err)

	res, err := s.Fight()
	require.NoError(t, err)
	assert.True(t, res.Victory)
	assert.Equal(t, 30, res.Experience)

	snap := s.Player().Stats().Snapshot()
	assert.Equal(t, 1, snap.MonstersSlain)
	assert.Equal(t, int64(60), snap.DamageDealt)
	assert.Equal(t, int64(2), snap.DamageTaken)
	assert.Equal(t, 30, s.Player().Exp)

	run, ok := s.Run()
	require.True(t, ok)
	assert.Equal(t, 98, run.HP)
}

func TestBossKillLevelsUpAndIsRecorded(t *testing.T) {
	rec := &fakeRecorder{}
	s := newSession(rules.Ascension(), dice.Repeat(0.99))
	s.SetRecorder(rec)
	s.Player().BaseStats = stats.Block{HP: 500, ATK: 1000, DEF: 50}

	_, err := s.StartExpedition(0)
	require.NoError(t, err)
	s.run.Depth = 9

	step, err := s.Proceed()
	require.NoError(t, err)
	assert.Equal(t, dungeon.EventBoss, step.Kind)

	var res *BattleResult
	for res == nil {
		_, res, err = s.Strike()
		require.NoError(t, err)
	}
	assert.True(t, res.Boss)
	assert.Equal(t, 150, res.Experience)
	require.Len(t, res.LevelUps, 1)
	assert.Equal(t, 2, s.Player().Level)
	assert.Equal(t, []string{"[BOSS] Doom Lord Lv.10"}, rec.bossKills)
	assert.Equal(t, 1, s.Player().Stats().Snapshot().BossesSlain)
}

func TestDeathDestroysEquippedGear(t *testing.T) {
	rec := &fakeRecorder{}
	s := newSession(rules.Ascension(), dice.Repeat(0.99))
	s.SetRecorder(rec)
	p := s.Player()
	p.BaseStats = stats.Block{HP: 10, ATK: 1}
	p.AddEquipment(items.Equipment{ID: "worn", Name: "普通的神兵", Slot: items.Weapon, Quality: items.Common})
	p.AddEquipment(items.Equipment{ID: "spare", Name: "普通的护甲", Slot: items.Armor, Quality: items.Common})
	_, err := s.Equip("worn")
	require.NoError(t, err)

	_, err = s.StartExpedition(0)
	require.NoError(t, err)
	s.run.Depth = 9
	_, err = s.Proceed()
	require.NoError(t, err)

	res, err := s.Fight()
	require.NoError(t, err)
	assert.False(t, res.Victory)

	_, err = s.Withdraw()
	assert.ErrorIs(t, err, dungeon.ErrRunDead)

	lost, err := s.AcknowledgeDeath()
	require.NoError(t, err)
	require.Len(t, lost, 1)
	assert.Equal(t, "worn", lost[0].ID)
	assert.Nil(t, p.EquippedWeapon)
	require.Len(t, p.Inventory, 1)
	assert.Equal(t, "spare", p.Inventory[0].ID)
	assert.False(t, s.InExpedition())

	require.Len(t, rec.expeditions, 1)
	assert.Equal(t, OutcomeDied, rec.expeditions[0].Outcome)
	assert.Equal(t, 1, rec.expeditions[0].ItemsLost)
	assert.Equal(t, 1, p.Stats().Snapshot().Deaths)
}

func TestGrants(t *testing.T) {
	classic := newSession(rules.Classic(), dice.Repeat(0.5))
	assert.Equal(t, 500, classic.GrantGold())
	assert.Equal(t, 700, classic.Player().Gold)
	_, err := classic.GrantExperience()
	assert.ErrorIs(t, err, ErrNoExperience)

	asc := newSession(rules.Ascension(), dice.Repeat(0.5))
	assert.Equal(t, 1000, asc.GrantGold())
	ups, err := asc.GrantExperience()
	require.NoError(t, err)
	require.Len(t, ups, 1)
	assert.Equal(t, 2, asc.Player().Level)
	assert.Equal(t, 50, asc.Player().Exp)
}

package savegame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawnchairsociety/abyssforge/internal/items"
	"github.com/lawnchairsociety/abyssforge/internal/player"
	"github.com/lawnchairsociety/abyssforge/internal/rules"
	"github.com/lawnchairsociety/abyssforge/internal/stats"
)

func TestEncodeDecodeKeepsEquippedBinding(t *testing.T) {
	r := rules.Ascension()
	p := player.New(r)
	p.Gold = 420
	p.Level = 3
	p.MaxDungeonDepth = 17
	p.AddMaterial(r.Catalog.ByQuality(items.Rare).Instance())
	p.AddEquipment(items.Equipment{
		ID:      "blade-1",
		Name:    "精炼神兵",
		Slot:    items.Weapon,
		Quality: items.Refined,
		Stats:   []stats.Entry{r.Stats.Entry(stats.ATK, 30)},
		Value:   120,
	})
	_, err := p.Equip("blade-1")
	require.NoError(t, err)
	p.Stats().RecordKill(true)

	data, err := Encode(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"equippedWeapon"`)
	assert.Contains(t, string(data), `"ATK"`)

	got, err := Decode(r, data)
	require.NoError(t, err)
	assert.Equal(t, 420, got.Gold)
	assert.Equal(t, 3, got.Level)
	assert.Equal(t, 17, got.MaxDungeonDepth)
	assert.Len(t, got.Materials, 1)
	require.NotNil(t, got.EquippedWeapon)
	assert.Equal(t, "blade-1", got.EquippedWeapon.ID)
	assert.Equal(t, 50, got.Effective().ATK)
	assert.Equal(t, 1, got.Stats().Snapshot().BossesSlain)
}

func TestDecodeOlderRecordTakesDefaults(t *testing.T) {
	r := rules.Classic()
	got, err := Decode(r, []byte(`{"gold":350,"materials":[],"inventory":[]}`))
	require.NoError(t, err)

	assert.Equal(t, 350, got.Gold)
	assert.Equal(t, 1, got.Level)
	assert.Equal(t, 0, got.Exp)
	assert.Equal(t, 150, got.MaxExp)
	assert.Equal(t, 0, got.MaxDungeonDepth)
	assert.Equal(t, r.BaseStats, got.BaseStats)
	assert.NotNil(t, got.Stats())
}

func TestDecodeRepairsDamagedRecord(t *testing.T) {
	record := `{
		"gold": 10,
		"materials": [
			{"id": "a", "quality": 1, "name": "普通矿石", "price": 10},
			{"id": "b", "quality": 9, "name": "???", "price": 10}
		],
		"inventory": [
			{"id": "armor-1", "name": "普通的护甲", "type": "ARMOR", "quality": 1, "stats": [], "value": 5}
		],
		"equippedWeapon": {"id": "ghost", "name": "传说神兵", "type": "WEAPON", "quality": 3, "stats": [], "value": 900},
		"equippedArmor": {"id": "armor-1", "name": "普通的护甲", "type": "ARMOR", "quality": 1, "stats": [], "value": 5}
	}`

	got, err := Decode(rules.Ascension(), []byte(record))
	require.NoError(t, err)

	require.Len(t, got.Materials, 1)
	assert.Equal(t, "a", got.Materials[0].ID)
	assert.Nil(t, got.EquippedWeapon, "equipped item missing from the inventory is dropped")
	require.NotNil(t, got.EquippedArmor)
	assert.Equal(t, "armor-1", got.EquippedArmor.ID)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(rules.Classic(), nil)
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Decode(rules.Classic(), []byte("  \n"))
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Decode(rules.Classic(), []byte(`{"gold":`))
	assert.Error(t, err)
}

func TestChecksum(t *testing.T) {
	data := []byte(`{"gold":1}`)
	sum := Checksum(data)

	assert.Len(t, sum, 64)
	assert.Equal(t, sum, Checksum([]byte(`{"gold":1}`)))
	assert.NotEqual(t, sum, Checksum([]byte(`{"gold":2}`)))

	assert.NoError(t, Verify(data, sum))
	assert.NoError(t, Verify(data, ""))
	assert.ErrorIs(t, Verify([]byte(`{"gold":9}`), sum), ErrCorrupt)
}

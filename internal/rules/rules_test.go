package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawnchairsociety/abyssforge/internal/items"
	"github.com/lawnchairsociety/abyssforge/internal/stats"
)

func TestPresets(t *testing.T) {
	classic := Classic()
	require.NoError(t, classic.Validate())
	assert.Equal(t, VariantClassic, classic.Variant)
	assert.False(t, classic.Experience())
	assert.False(t, classic.FloorSelect())
	assert.Equal(t, 500, classic.GrantGold)

	asc := Ascension()
	require.NoError(t, asc.Validate())
	assert.True(t, asc.Experience())
	assert.True(t, asc.FloorSelect())
	assert.Equal(t, 1000, asc.GrantGold)
	assert.Equal(t, 200, asc.GrantExperience)

	for _, r := range []*Ruleset{classic, asc} {
		assert.Equal(t, 200, r.StartingGold)
		assert.Equal(t, 150, r.StartingThreshold)
		assert.Equal(t, 30, r.LogLimit)
		assert.Equal(t, 3, r.ForgeSlots)
		assert.Equal(t, stats.Block{HP: 100, ATK: 20, DEF: 10, CRIT: 5}, r.BaseStats)
	}
}

func TestPresetsAreIndependent(t *testing.T) {
	a := Ascension()
	a.Stats[stats.ATK] = stats.Spec{Label: "x"}
	assert.Equal(t, "攻击", Ascension().Stats[stats.ATK].Label)
}

func TestByName(t *testing.T) {
	r, err := ByName("Classic")
	require.NoError(t, err)
	assert.Equal(t, VariantClassic, r.Variant)

	r, err = ByName("")
	require.NoError(t, err)
	assert.Equal(t, VariantAscension, r.Variant)

	_, err = ByName("hardcore")
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	mats := `materials:
  - {id: c, quality: 1, name: Copper, price: 8}
  - {id: s, quality: 2, name: Silver, price: 40}
  - {id: g, quality: 3, name: Gold, price: 160}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mats.yaml"), []byte(mats), 0644))

	content := `preset: classic
starting_gold: 0
forge_slots: 4
materials: mats.yaml
stats:
  atk:
    label: Attack
    base: 12
    scale: 6
`
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, VariantClassic, r.Variant)
	assert.Equal(t, 0, r.StartingGold)
	assert.Equal(t, 4, r.ForgeSlots)
	assert.Equal(t, 30, r.LogLimit)
	assert.Equal(t, 12.0, r.Stats[stats.ATK].Base)
	assert.Equal(t, 160, r.Catalog.Cost(items.Rare))
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stats:\n  mana: {base: 1}\n"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

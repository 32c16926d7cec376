// Package rules defines the two rule presets the engine can run under.
//
// Classic is the original forge game: no experience, three-way
// monster/loot/rest split. Ascension is the evolved edition with leveling,
// forced rests, level-scaled forging and start-floor selection. A session
// always runs exactly one preset; the engine switches on Variant and never
// mixes the two.
package rules

import (
	"fmt"
	"strings"

	"github.com/lawnchairsociety/abyssforge/internal/items"
	"github.com/lawnchairsociety/abyssforge/internal/leveling"
	"github.com/lawnchairsociety/abyssforge/internal/stats"
)

// Variant selects which rule family the engine follows
type Variant int

const (
	VariantClassic Variant = iota
	VariantAscension
)

func (v Variant) String() string {
	switch v {
	case VariantClassic:
		return "classic"
	case VariantAscension:
		return "ascension"
	}
	return fmt.Sprintf("variant(%d)", int(v))
}

// Ruleset carries every tunable a preset exposes
type Ruleset struct {
	Name    string
	Variant Variant

	StartingGold      int
	BaseStats         stats.Block
	StartingThreshold int // experience needed for level 2
	LogLimit          int // dungeon log lines kept
	ForgeSlots        int // max materials per forge

	// Debug supply grants
	GrantGold       int
	GrantExperience int

	Stats   stats.Table
	Catalog *items.Catalog
}

// Classic returns the original game's preset.
func Classic() *Ruleset {
	return &Ruleset{
		Name:              "classic",
		Variant:           VariantClassic,
		StartingGold:      200,
		BaseStats:         stats.Block{HP: 100, ATK: 20, DEF: 10, CRIT: 5},
		StartingThreshold: leveling.DefaultThreshold,
		LogLimit:          30,
		ForgeSlots:        3,
		GrantGold:         500,
		Stats:             stats.DefaultTable(),
		Catalog:           items.DefaultCatalog(),
	}
}

// Ascension returns the evolved preset with leveling and experience.
func Ascension() *Ruleset {
	r := Classic()
	r.Name = "ascension"
	r.Variant = VariantAscension
	r.GrantGold = 1000
	r.GrantExperience = 200
	return r
}

// ByName returns a fresh preset by name
func ByName(name string) (*Ruleset, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "classic", "a":
		return Classic(), nil
	case "ascension", "b", "":
		return Ascension(), nil
	}
	return nil, fmt.Errorf("unknown ruleset %q", name)
}

// Experience reports whether the preset awards experience and levels
func (r *Ruleset) Experience() bool {
	return r.Variant == VariantAscension
}

// FloorSelect reports whether expeditions may start past floor 0
func (r *Ruleset) FloorSelect() bool {
	return r.Variant == VariantAscension
}

// Validate checks the ruleset for values the engine cannot run with
func (r *Ruleset) Validate() error {
	if r.Variant != VariantClassic && r.Variant != VariantAscension {
		return fmt.Errorf("ruleset %s: unknown variant %d", r.Name, int(r.Variant))
	}
	if r.StartingThreshold <= 0 {
		return fmt.Errorf("ruleset %s: experience threshold must be positive", r.Name)
	}
	if r.LogLimit <= 0 {
		return fmt.Errorf("ruleset %s: log limit must be positive", r.Name)
	}
	if r.ForgeSlots <= 0 {
		return fmt.Errorf("ruleset %s: forge slots must be positive", r.Name)
	}
	if r.BaseStats.HP <= 0 {
		return fmt.Errorf("ruleset %s: base HP must be positive", r.Name)
	}
	if r.Catalog == nil {
		return fmt.Errorf("ruleset %s: no material catalog", r.Name)
	}
	if err := r.Stats.Validate(); err != nil {
		return fmt.Errorf("ruleset %s: %w", r.Name, err)
	}
	return nil
}

// Package balance provides Monte Carlo simulation tools for tuning the
// forge and the abyss.
package balance

import (
	"fmt"

	"github.com/lawnchairsociety/abyssforge/internal/dice"
	"github.com/lawnchairsociety/abyssforge/internal/forge"
	"github.com/lawnchairsociety/abyssforge/internal/items"
	"github.com/lawnchairsociety/abyssforge/internal/player"
	"github.com/lawnchairsociety/abyssforge/internal/rules"
)

// Loadout describes the hero a simulation sends into the abyss
type Loadout struct {
	Level int

	// Forge recipes for the equipped gear; empty means nothing equipped
	Weapon []items.Quality
	Armor  []items.Quality
}

// Build creates a fresh player at the loadout's level wearing freshly
// forged gear. Levels only apply under rules with experience.
func (l Loadout) Build(r *rules.Ruleset, rng dice.Source) (*player.Player, error) {
	p := player.New(r)
	if r.Experience() {
		for p.Level < l.Level {
			p.GainExperience(p.MaxExp - p.Exp)
		}
	}

	gen := forge.NewGenerator(r, rng)
	for _, g := range []struct {
		slot   items.Slot
		recipe []items.Quality
	}{
		{items.Weapon, l.Weapon},
		{items.Armor, l.Armor},
	} {
		if len(g.recipe) == 0 {
			continue
		}
		eq, err := gen.Generate(forge.Request{Slot: g.slot, Materials: g.recipe, PlayerLevel: p.Level})
		if err != nil {
			return nil, fmt.Errorf("forging %s: %w", g.slot, err)
		}
		p.AddEquipment(eq)
		if _, err := p.Equip(eq.ID); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ParseRecipe reads a comma separated list of qualities, e.g.
// "rare,rare,common". An empty string is an empty recipe.
func ParseRecipe(s string) ([]items.Quality, error) {
	if s == "" {
		return nil, nil
	}
	var recipe []items.Quality
	start := 0
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] != ',' {
			continue
		}
		q, err := items.ParseQuality(s[start:i])
		if err != nil {
			return nil, err
		}
		recipe = append(recipe, q)
		start = i + 1
	}
	return recipe, nil
}

// Package forge turns a list of material qualities into a piece of
// equipment. Generation is pure apart from the injected dice.Source.
package forge

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/lawnchairsociety/abyssforge/internal/dice"
	"github.com/lawnchairsociety/abyssforge/internal/items"
	"github.com/lawnchairsociety/abyssforge/internal/rules"
	"github.com/lawnchairsociety/abyssforge/internal/stats"
)

var (
	ErrNoMaterials      = errors.New("forge: no materials")
	ErrInvalidQuality   = errors.New("forge: invalid material quality")
	ErrInvalidSlot      = errors.New("forge: invalid equipment slot")
	ErrInvalidLevel     = errors.New("forge: player level must be at least 1")
	ErrTooManyMaterials = errors.New("forge: too many materials")
)

// Request describes one forge attempt
type Request struct {
	Slot        items.Slot
	Materials   []items.Quality
	PlayerLevel int
	BossDrop    bool
}

// Generator forges equipment under a ruleset. It is not safe for
// concurrent use when its Source is not.
type Generator struct {
	rules *rules.Ruleset
	rng   dice.Source
	newID func() string
}

// NewGenerator creates a generator drawing from rng
func NewGenerator(r *rules.Ruleset, rng dice.Source) *Generator {
	return &Generator{rules: r, rng: rng, newID: uuid.NewString}
}

// Rules returns the ruleset the generator forges under
func (g *Generator) Rules() *rules.Ruleset {
	return g.rules
}

// Generate forges one item and gives it a fresh identifier
func (g *Generator) Generate(req Request) (items.Equipment, error) {
	eq, err := Build(g.rules, req, g.rng)
	if err != nil {
		return items.Equipment{}, err
	}
	eq.ID = g.newID()
	return eq, nil
}

// Validate checks a request's preconditions
func (req Request) Validate() error {
	if len(req.Materials) == 0 {
		return ErrNoMaterials
	}
	for _, q := range req.Materials {
		if !q.Valid() {
			return fmt.Errorf("%w: %d", ErrInvalidQuality, int(q))
		}
	}
	if !req.Slot.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSlot, req.Slot)
	}
	if req.PlayerLevel < 1 {
		return ErrInvalidLevel
	}
	return nil
}

// Build forges an item without an identifier. Draw order: tier coin flip
// (boss drops under total 7 only), pool shuffle, one boost per stat.
func Build(r *rules.Ruleset, req Request, src dice.Source) (items.Equipment, error) {
	if err := req.Validate(); err != nil {
		return items.Equipment{}, err
	}

	total := MaterialTotal(req.Materials)

	bossRare := false
	if total < 7 && req.BossDrop {
		bossRare = dice.Pick(src)
	}
	tier := Tier(total, bossRare)
	count := StatCount(r.Variant, tier, total)
	kinds := pickKinds(r.Variant, req.Slot, count, src)

	entries := make([]stats.Entry, 0, len(kinds))
	for _, k := range kinds {
		boost := dice.Between(src, 0.8, 1.2)
		entries = append(entries, r.Stats.Entry(k, StatValue(r, k, total, req.PlayerLevel, boost)))
	}

	return items.Equipment{
		Name:          tier.Prefix() + req.Slot.Noun(),
		Slot:          req.Slot,
		Quality:       tier,
		Stats:         entries,
		Value:         SaleValue(r.Variant, r.Catalog.TotalCost(req.Materials), tier, req.PlayerLevel),
		MaterialsUsed: append([]items.Quality(nil), req.Materials...),
	}, nil
}

// MaterialTotal is the sum of the material weights
func MaterialTotal(qs []items.Quality) int {
	return items.Sum(qs)
}

// Tier picks the output quality. bossRare is the outcome of a boss drop's
// coin flip and is ignored when the total alone reaches Rare.
func Tier(total int, bossRare bool) items.Quality {
	switch {
	case total >= 7 || bossRare:
		return items.Rare
	case total >= 4:
		return items.Refined
	default:
		return items.Common
	}
}

// StatCount returns how many stat lines an item of the given tier gets
func StatCount(v rules.Variant, tier items.Quality, total int) int {
	if v == rules.VariantAscension {
		limit := 2
		switch tier {
		case items.Refined:
			limit = 3
		case items.Rare:
			limit = 4
		}
		return min(limit, int(float64(total)/1.5)+1)
	}
	return min(3, int(float64(total)/2.5)+1)
}

// pickKinds shuffles the slot's pool and takes count kinds cyclically.
// Ascension re-sorts them into canonical slot order.
func pickKinds(v rules.Variant, slot items.Slot, count int, src dice.Source) []stats.Kind {
	pool := slot.StatOrder()
	src.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	kinds := make([]stats.Kind, count)
	for i := range kinds {
		kinds[i] = pool[i%len(pool)]
	}

	if v == rules.VariantAscension {
		sort.SliceStable(kinds, func(i, j int) bool {
			return slot.Rank(kinds[i]) < slot.Rank(kinds[j])
		})
	}
	return kinds
}

// StatValue computes one stat line's magnitude for a boost in [0.8, 1.2)
func StatValue(r *rules.Ruleset, k stats.Kind, total, level int, boost float64) int {
	spec := r.Stats[k]
	raw := spec.Base + spec.Scale*float64(total)

	if r.Variant != rules.VariantAscension {
		return int(math.Floor(raw * boost))
	}

	if k.Percent() && spec.Cap > 0 {
		levelFactor := 1.0
		if level < 5 {
			levelFactor = 0.2 + (float64(level)/5)*0.8
		}
		qualityFactor := 0.5 + (float64(total)/9)*0.5
		maxVal := float64(spec.Cap)
		return int(math.Min(maxVal, math.Ceil(maxVal*levelFactor*qualityFactor*boost)))
	}

	levelMultiplier := 1 + float64(level-1)*0.15
	return int(math.Floor(raw * levelMultiplier * boost))
}

// SaleValue is what a merchant pays for the item. totalCost is the summed
// shop price of the consumed materials.
func SaleValue(v rules.Variant, totalCost int, tier items.Quality, level int) int {
	// floor(cost * (0.6 + tier*0.1)) computed in tenths to stay exact
	if v == rules.VariantAscension {
		// times (1 + (level-1)*0.05), in twentieths
		return totalCost * (6 + int(tier)) * (19 + level) / 200
	}
	return totalCost * (6 + int(tier)) / 10
}

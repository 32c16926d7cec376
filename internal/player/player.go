// Package player holds the persistent player record and the operations
// that mutate it outside of a dungeon run.
package player

import (
	"errors"
	"fmt"

	"github.com/lawnchairsociety/abyssforge/internal/items"
	"github.com/lawnchairsociety/abyssforge/internal/leveling"
	"github.com/lawnchairsociety/abyssforge/internal/rules"
	"github.com/lawnchairsociety/abyssforge/internal/stats"
)

var (
	ErrItemNotFound     = errors.New("no such item in your bag")
	ErrItemEquipped     = errors.New("that item is equipped")
	ErrNothingEquipped  = errors.New("nothing equipped in that slot")
	ErrMaterialNotFound = errors.New("no such material in your bag")
)

// Player is the persisted player record. JSON field names are the save
// format; do not rename them.
//
// Equipped items are copies of entries that stay in Inventory. Every method
// here keeps the two in step.
type Player struct {
	Level           int               `json:"level"`
	Exp             int               `json:"exp"`
	MaxExp          int               `json:"maxExp"`
	Gold            int               `json:"gold"`
	Materials       []items.Material  `json:"materials"`
	Inventory       []items.Equipment `json:"inventory"`
	EquippedWeapon  *items.Equipment  `json:"equippedWeapon"`
	EquippedArmor   *items.Equipment  `json:"equippedArmor"`
	MaxDungeonDepth int               `json:"maxDungeonDepth"`
	BaseStats       stats.Block       `json:"baseStats"`
	Statistics      *Statistics       `json:"statistics,omitempty"`
}

// New creates a fresh player under a ruleset
func New(r *rules.Ruleset) *Player {
	return &Player{
		Level:      leveling.StartingLevel,
		MaxExp:     r.StartingThreshold,
		Gold:       r.StartingGold,
		Materials:  []items.Material{},
		Inventory:  []items.Equipment{},
		BaseStats:  r.BaseStats,
		Statistics: NewStatistics(),
	}
}

// Effective returns base stats plus both equipped items' bonuses
func (p *Player) Effective() stats.Block {
	total := p.BaseStats
	if p.EquippedWeapon != nil {
		total = total.AddAll(p.EquippedWeapon.Stats)
	}
	if p.EquippedArmor != nil {
		total = total.AddAll(p.EquippedArmor.Stats)
	}
	return total
}

// Equipped returns the item in slot, if any
func (p *Player) Equipped(slot items.Slot) *items.Equipment {
	switch slot {
	case items.Weapon:
		return p.EquippedWeapon
	case items.Armor:
		return p.EquippedArmor
	}
	return nil
}

func (p *Player) setEquipped(slot items.Slot, eq *items.Equipment) {
	switch slot {
	case items.Weapon:
		p.EquippedWeapon = eq
	case items.Armor:
		p.EquippedArmor = eq
	}
}

// IsEquipped reports whether the item with id is in either slot
func (p *Player) IsEquipped(id string) bool {
	return (p.EquippedWeapon != nil && p.EquippedWeapon.ID == id) ||
		(p.EquippedArmor != nil && p.EquippedArmor.ID == id)
}

// Equip puts an inventory item into its slot, replacing whatever was there.
// The item stays in the inventory.
func (p *Player) Equip(id string) (items.Equipment, error) {
	i, ok := items.FindEquipment(p.Inventory, id)
	if !ok {
		return items.Equipment{}, ErrItemNotFound
	}
	eq := p.Inventory[i].Clone()
	p.setEquipped(eq.Slot, &eq)
	return eq, nil
}

// Unequip empties a slot. The item remains in the inventory.
func (p *Player) Unequip(slot items.Slot) (items.Equipment, error) {
	eq := p.Equipped(slot)
	if eq == nil {
		return items.Equipment{}, ErrNothingEquipped
	}
	p.setEquipped(slot, nil)
	return *eq, nil
}

// Sell removes an unequipped item from the inventory and pays its value
func (p *Player) Sell(id string) (items.Equipment, error) {
	i, ok := items.FindEquipment(p.Inventory, id)
	if !ok {
		return items.Equipment{}, ErrItemNotFound
	}
	if p.IsEquipped(p.Inventory[i].ID) {
		return items.Equipment{}, ErrItemEquipped
	}
	sold, _ := items.RemoveEquipment(&p.Inventory, p.Inventory[i].ID)
	p.AddGold(sold.Value)
	return sold, nil
}

// TakeMaterials removes the listed materials from the bag. Either all of
// them are removed or, on error, none are.
func (p *Player) TakeMaterials(ids []string) ([]items.Material, error) {
	bag := append([]items.Material(nil), p.Materials...)
	taken := make([]items.Material, 0, len(ids))
	for _, id := range ids {
		m, ok := items.RemoveMaterial(&bag, id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMaterialNotFound, id)
		}
		taken = append(taken, m)
	}
	p.Materials = bag
	return taken, nil
}

// AddMaterial puts one material into the bag
func (p *Player) AddMaterial(m items.Material) {
	p.Materials = append(p.Materials, m)
}

// AddEquipment puts one item into the inventory
func (p *Player) AddEquipment(eq items.Equipment) {
	p.Inventory = append(p.Inventory, eq)
}

// Collect merges dungeon loot into the permanent record
func (p *Player) Collect(gold int, materials []items.Material, equipment []items.Equipment) {
	p.AddGold(gold)
	p.Materials = append(p.Materials, materials...)
	p.Inventory = append(p.Inventory, equipment...)
}

// LoseEquipped destroys both equipped items: they leave the inventory and
// the slots are cleared in the same call. Returns what was lost.
func (p *Player) LoseEquipped() []items.Equipment {
	var lost []items.Equipment
	for _, slot := range items.Slots {
		eq := p.Equipped(slot)
		if eq == nil {
			continue
		}
		items.RemoveEquipment(&p.Inventory, eq.ID)
		lost = append(lost, *eq)
	}
	p.EquippedWeapon = nil
	p.EquippedArmor = nil
	return lost
}

// GetGold returns the player's current gold
func (p *Player) GetGold() int {
	return p.Gold
}

// AddGold adds gold to the player's wallet
func (p *Player) AddGold(amount int) {
	p.Gold += amount
	if amount > 0 {
		p.stats().RecordGoldEarned(amount)
	}
}

// SpendGold attempts to spend gold, returns true if successful
func (p *Player) SpendGold(amount int) bool {
	if amount < 0 || p.Gold < amount {
		return false
	}
	p.Gold -= amount
	return true
}

// GainExperience adds experience and returns level-up info for every level gained
func (p *Player) GainExperience(amount int) []leveling.LevelUp {
	progress := leveling.Progress{Level: p.Level, Exp: p.Exp, Threshold: p.MaxExp}
	progress, base, ups := leveling.Gain(progress, p.BaseStats, amount)
	p.Level, p.Exp, p.MaxExp = progress.Level, progress.Exp, progress.Threshold
	p.BaseStats = base
	return ups
}

// RecordDepth raises the best depth if depth beats it. Returns true on a new record.
func (p *Player) RecordDepth(depth int) bool {
	p.stats().RecordFloorReached(depth)
	if depth > p.MaxDungeonDepth {
		p.MaxDungeonDepth = depth
		return true
	}
	return false
}

// stats returns the activity counters, creating them if missing
func (p *Player) stats() *Statistics {
	if p.Statistics == nil {
		p.Statistics = NewStatistics()
	}
	return p.Statistics
}

// Stats exposes the activity counters
func (p *Player) Stats() *Statistics {
	return p.stats()
}

// Normalize repairs a record decoded from an older or damaged save: nil
// bags become empty, items with invalid qualities are dropped, and equipped
// references that no longer point into the inventory are cleared.
func (p *Player) Normalize() {
	if p.Level < leveling.StartingLevel {
		p.Level = leveling.StartingLevel
	}
	if p.MaxExp <= 0 {
		p.MaxExp = leveling.DefaultThreshold
	}
	if p.Exp < 0 {
		p.Exp = 0
	}

	mats := make([]items.Material, 0, len(p.Materials))
	for _, m := range p.Materials {
		if m.Quality.Valid() && m.ID != "" {
			mats = append(mats, m)
		}
	}
	p.Materials = mats

	inv := make([]items.Equipment, 0, len(p.Inventory))
	for _, eq := range p.Inventory {
		if eq.Quality.Valid() && eq.Slot.Valid() && eq.ID != "" {
			inv = append(inv, eq)
		}
	}
	p.Inventory = inv

	for _, slot := range items.Slots {
		eq := p.Equipped(slot)
		if eq == nil {
			continue
		}
		i, ok := items.FindEquipment(p.Inventory, eq.ID)
		if !ok || p.Inventory[i].ID != eq.ID || p.Inventory[i].Slot != slot {
			p.setEquipped(slot, nil)
			continue
		}
		// Rebind to the inventory's copy so both agree on stats
		fresh := p.Inventory[i].Clone()
		p.setEquipped(slot, &fresh)
	}

	p.stats()
}

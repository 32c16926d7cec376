package items

import (
	"fmt"
	"strings"

	"github.com/lawnchairsociety/abyssforge/internal/stats"
)

// Slot is the equipment position an item occupies
type Slot string

const (
	Weapon Slot = "WEAPON"
	Armor  Slot = "ARMOR"
)

// Slots lists both equipment slots
var Slots = []Slot{Weapon, Armor}

var (
	weaponOrder = []stats.Kind{stats.ATK, stats.CRIT, stats.LIFESTEAL}
	armorOrder  = []stats.Kind{stats.HP, stats.DEF, stats.LIFESTEAL}
)

// StatOrder returns the canonical stat pool of the slot. The returned slice
// is a copy and may be modified.
func (s Slot) StatOrder() []stats.Kind {
	var src []stats.Kind
	switch s {
	case Weapon:
		src = weaponOrder
	case Armor:
		src = armorOrder
	default:
		return nil
	}
	return append([]stats.Kind(nil), src...)
}

// Rank returns the position of kind in the slot's canonical order, or -1
func (s Slot) Rank(k stats.Kind) int {
	for i, o := range s.StatOrder() {
		if o == k {
			return i
		}
	}
	return -1
}

// Noun is the name suffix forged items of this slot receive
func (s Slot) Noun() string {
	if s == Weapon {
		return "神兵"
	}
	return "护甲"
}

// Valid reports whether s is a known slot
func (s Slot) Valid() bool {
	return s == Weapon || s == Armor
}

// ParseSlot converts "weapon"/"armor" (any case) to a Slot
func ParseSlot(v string) (Slot, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "WEAPON", "W":
		return Weapon, nil
	case "ARMOR", "ARMOUR", "A":
		return Armor, nil
	}
	return "", fmt.Errorf("unknown slot %q", v)
}

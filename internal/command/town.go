package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lawnchairsociety/abyssforge/internal/dungeon"
	"github.com/lawnchairsociety/abyssforge/internal/game"
	"github.com/lawnchairsociety/abyssforge/internal/items"
	"github.com/lawnchairsociety/abyssforge/internal/leveling"
	"github.com/lawnchairsociety/abyssforge/internal/stats"
)

// executeStatus shows level, stats, equipment and the current expedition
func executeStatus(c *Command, s *game.Session) string {
	p := s.Player()
	var result strings.Builder

	result.WriteString(fmt.Sprintf("=== %s ===\n", s.Slot()))
	result.WriteString(fmt.Sprintf("Rules: %s\n", s.Rules().Name))
	if s.Rules().Experience() {
		result.WriteString(fmt.Sprintf("Level: %d  |  EXP: %d / %d\n", p.Level, p.Exp, p.MaxExp))
	}
	result.WriteString(fmt.Sprintf("Gold: %d\n", p.Gold))
	result.WriteString(fmt.Sprintf("Best depth: %d", p.MaxDungeonDepth))
	if s.Rules().FloorSelect() {
		result.WriteString(fmt.Sprintf(" (start floors 0-%d)", dungeon.MaxStartFloor(p.MaxDungeonDepth)))
	}
	result.WriteString("\n")

	result.WriteString("\n--- Stats ---\n")
	result.WriteString(formatStats(p.BaseStats, p.Effective()))

	result.WriteString("\n--- Equipment ---\n")
	for _, slot := range items.Slots {
		line := "(none)"
		if eq := p.Equipped(slot); eq != nil {
			line = eq.Describe()
		}
		result.WriteString(fmt.Sprintf("  %-7s %s\n", strings.ToLower(string(slot))+":", line))
	}

	if run, ok := s.Run(); ok {
		result.WriteString("\n")
		result.WriteString(formatRun(run))
	}
	return strings.TrimRight(result.String(), "\n")
}

// formatStats lists effective stats with the equipment bonus in brackets
func formatStats(base, effective stats.Block) string {
	var b strings.Builder
	for _, k := range stats.Kinds {
		suffix := ""
		if k.Percent() {
			suffix = "%"
		}
		b.WriteString(fmt.Sprintf("  %-9s %d%s", k.String(), effective.Get(k), suffix))
		if bonus := effective.Get(k) - base.Get(k); bonus != 0 {
			b.WriteString(fmt.Sprintf(" (+%d%s)", bonus, suffix))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// executeStatistics shows lifetime counters
func executeStatistics(c *Command, s *game.Session) string {
	snap := s.Player().Stats().Snapshot()
	return fmt.Sprintf(`=== Lifetime statistics ===
Expeditions:     %d
Highest depth:   %d
Monsters slain:  %d
Bosses slain:    %d
Deaths:          %d
Items forged:    %d
Items lost:      %d
Gold earned:     %d
Damage dealt:    %d
Damage taken:    %d`,
		snap.Expeditions, snap.HighestDepth, snap.MonstersSlain, snap.BossesSlain,
		snap.Deaths, snap.ItemsForged, snap.ItemsLost, snap.GoldAccumulated,
		snap.DamageDealt, snap.DamageTaken)
}

// executeBag lists materials and equipment
func executeBag(c *Command, s *game.Session) string {
	p := s.Player()
	var result strings.Builder

	result.WriteString(fmt.Sprintf("Gold: %d\n", p.Gold))

	result.WriteString("\n--- Materials ---\n")
	if len(p.Materials) == 0 {
		result.WriteString("  (none)\n")
	} else {
		counts := items.CountByQuality(p.Materials)
		for _, q := range items.Qualities {
			if counts[q] > 0 {
				result.WriteString(fmt.Sprintf("  %-8s x%d\n", q.String(), counts[q]))
			}
		}
		for _, m := range p.Materials {
			result.WriteString(fmt.Sprintf("    %s\n", m.String()))
		}
	}

	result.WriteString("\n--- Equipment ---\n")
	if len(p.Inventory) == 0 {
		result.WriteString("  (none)\n")
	}
	for i, eq := range p.Inventory {
		marker := ""
		if p.IsEquipped(eq.ID) {
			marker = " [equipped]"
		}
		result.WriteString(fmt.Sprintf("  %2d. %s%s\n", i+1, eq.Describe(), marker))
	}
	return strings.TrimRight(result.String(), "\n")
}

// executeShop lists the material catalog
func executeShop(c *Command, s *game.Session) string {
	var result strings.Builder
	result.WriteString("=== Material shop ===\n")
	for _, m := range s.Shop().Listing() {
		result.WriteString(fmt.Sprintf("  %-4s %-10s %-8s %5d gold\n", m.ID, m.Name, m.Quality.String(), m.Price))
	}
	result.WriteString(fmt.Sprintf("\nYou have %d gold. Usage: buy <quality|id> [count]", s.Player().Gold))
	return result.String()
}

// maxBuyCount caps a single buy command
const maxBuyCount = 100

// executeBuy purchases one or more materials
func executeBuy(c *Command, s *game.Session) string {
	if err := c.RequireArgs(1, "Usage: buy <quality|id> [count]"); err != nil {
		return err.Error()
	}
	qty := 1
	if len(c.Args) > 1 {
		n, err := strconv.Atoi(c.Args[1])
		if err != nil {
			return "Count must be a number."
		}
		if n > maxBuyCount {
			return fmt.Sprintf("You can buy at most %d at a time.", maxBuyCount)
		}
		qty = n
	}

	bought, err := s.Buy(c.Arg(0), qty)
	if err != nil {
		return errorText(err)
	}
	spent := 0
	for _, m := range bought {
		spent += m.Price
	}
	return fmt.Sprintf("You buy %d x %s for %d gold. (%d gold left)", len(bought), bought[0].Name, spent, s.Player().Gold)
}

// executeForge forges equipment from materials in the bag
func executeForge(c *Command, s *game.Session) string {
	if err := c.RequireArgs(2, "Usage: forge <weapon|armor> <material...>"); err != nil {
		return err.Error()
	}
	slot, err := items.ParseSlot(c.Args[0])
	if err != nil {
		return "You can forge a weapon or armor."
	}
	ids, err := materialRefs(s.Player().Materials, c.Args[1:])
	if err != nil {
		return errorText(err)
	}

	eq, err := s.Forge(slot, ids)
	if err != nil {
		return errorText(err)
	}
	return fmt.Sprintf("The forge roars. You create %s!\n  %s", eq.Name, eq.Describe())
}

// executeEquip wears an item from the bag
func executeEquip(c *Command, s *game.Session) string {
	if err := c.RequireArgs(1, "Usage: equip <id|number>"); err != nil {
		return err.Error()
	}
	eq, err := s.Equip(equipmentRef(s.Player().Inventory, c.Args[0]))
	if err != nil {
		return errorText(err)
	}
	return fmt.Sprintf("You equip %s.", eq.Name)
}

// executeUnequip empties a slot
func executeUnequip(c *Command, s *game.Session) string {
	if err := c.RequireArgs(1, "Usage: unequip <weapon|armor>"); err != nil {
		return err.Error()
	}
	slot, err := items.ParseSlot(c.Args[0])
	if err != nil {
		return "Unequip your weapon or your armor."
	}
	eq, err := s.Unequip(slot)
	if err != nil {
		return errorText(err)
	}
	return fmt.Sprintf("You take off %s.", eq.Name)
}

// executeSell sells an unequipped item
func executeSell(c *Command, s *game.Session) string {
	if err := c.RequireArgs(1, "Usage: sell <id|number>"); err != nil {
		return err.Error()
	}
	sold, err := s.Sell(equipmentRef(s.Player().Inventory, c.Args[0]))
	if err != nil {
		return errorText(err)
	}
	return fmt.Sprintf("You sell %s for %d gold. (%d gold)", sold.Name, sold.Value, s.Player().Gold)
}

// executeGrant hands out the debug supplies
func executeGrant(c *Command, s *game.Session, h Host) string {
	if h == nil || !h.GrantsEnabled() {
		return "Supplies are not available on this server."
	}
	switch c.Arg(0) {
	case "gold", "":
		amount := s.GrantGold()
		return fmt.Sprintf("A courier delivers %d gold. (%d gold)", amount, s.Player().Gold)
	case "exp", "xp", "experience":
		ups, err := s.GrantExperience()
		if err != nil {
			if errors.Is(err, game.ErrNoExperience) {
				return "These rules have no experience."
			}
			return errorText(err)
		}
		return "You feel more experienced." + formatLevelUps(ups)
	}
	return "Usage: grant <gold|exp>"
}

// formatLevelUps renders one line per level gained
func formatLevelUps(ups []leveling.LevelUp) string {
	var b strings.Builder
	for _, up := range ups {
		b.WriteString(fmt.Sprintf("\n*** LEVEL UP! You are now level %d. (HP +%d, ATK +%d, DEF +%d, CRIT +%d) ***",
			up.NewLevel, up.HPGain, up.ATKGain, up.DEFGain, up.CritGain))
	}
	return b.String()
}

// executeSave writes the slot to the database
func executeSave(s *game.Session, h Host) string {
	if h == nil {
		return "Saving is not available."
	}
	if err := h.SaveSession(s); err != nil {
		return "Your progress could not be saved. Please try again."
	}
	return "Progress saved."
}

package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lawnchairsociety/abyssforge/internal/combat"
	"github.com/lawnchairsociety/abyssforge/internal/dungeon"
	"github.com/lawnchairsociety/abyssforge/internal/game"
)

const defaultLogLines = 10

// formatRun summarizes the current expedition
func formatRun(run dungeon.Run) string {
	var b strings.Builder
	b.WriteString("--- Abyss ---\n")
	if run.Dead {
		b.WriteString(fmt.Sprintf("You lie fallen at depth %d. Type 'revive' to return to town.", run.Depth))
		return b.String()
	}

	progress := dungeon.BossProgress(run.Depth)
	bar := strings.Repeat("#", progress/10) + strings.Repeat("-", 10-progress/10)
	b.WriteString(fmt.Sprintf("Depth: %d  [%s] boss in %d\n", run.Depth, bar, dungeon.StepsToBoss(run.Depth)))
	b.WriteString(fmt.Sprintf("HP: %d / %d\n", run.HP, run.MaxHP))
	b.WriteString(fmt.Sprintf("Loot: %d gold, %d materials, %d equipment", run.Loot.Gold, len(run.Loot.Materials), len(run.Loot.Equipment)))
	if run.Loot.Experience > 0 {
		b.WriteString(fmt.Sprintf(", %d exp", run.Loot.Experience))
	}
	if run.Battle.Pending() {
		b.WriteString("\n")
		b.WriteString(formatBattle(run.Battle))
	}
	return b.String()
}

func formatBattle(battle *dungeon.Battle) string {
	return fmt.Sprintf("Facing: %s (HP %d/%d, ATK %d)", battle.MonsterName, battle.MonsterHP, battle.MonsterMaxHP, battle.MonsterATK)
}

// executeEnter starts an expedition
func executeEnter(c *Command, s *game.Session) string {
	floor := 0
	if len(c.Args) > 0 {
		n, err := strconv.Atoi(c.Args[0])
		if err != nil {
			return "Usage: enter [floor]"
		}
		floor = n
	}

	run, err := s.StartExpedition(floor)
	if err != nil {
		if errors.Is(err, dungeon.ErrFloorLocked) && !s.Rules().FloorSelect() {
			return "These rules always start at the surface."
		}
		return errorText(err)
	}
	return fmt.Sprintf("You step into the abyss at depth %d with %d HP.\nType 'proceed' to go deeper.", run.Depth, run.HP)
}

// executeProceed advances one depth
func executeProceed(c *Command, s *game.Session) string {
	res, err := s.Proceed()
	if err != nil {
		if errors.Is(err, dungeon.ErrBattlePending) {
			return "Something blocks the way. Type 'fight' or 'strike'."
		}
		return errorText(err)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Depth %d: ", res.Depth))
	switch res.Kind {
	case dungeon.EventBoss:
		b.WriteString("the air grows heavy. A boss chamber!\n")
		b.WriteString(formatBattle(res.Battle))
		b.WriteString("\nType 'fight' or 'strike'.")
	case dungeon.EventMonster:
		b.WriteString("a monster blocks the way!\n")
		b.WriteString(formatBattle(res.Battle))
		b.WriteString("\nType 'fight' or 'strike'.")
	case dungeon.EventLoot:
		b.WriteString(fmt.Sprintf("you search the ruins and find %d gold", res.Gold))
		if res.Material != nil {
			b.WriteString(" and " + res.Material.Name)
		}
		b.WriteString(".")
		if res.Experience > 0 {
			b.WriteString(fmt.Sprintf(" (+%d exp)", res.Experience))
		}
	case dungeon.EventRest:
		if res.ForcedRest {
			b.WriteString("exhaustion forces you to make camp. ")
		} else {
			b.WriteString("you find a safe camp. ")
		}
		b.WriteString(fmt.Sprintf("You recover %d HP.", res.Healed))
	}
	if res.NewBest {
		b.WriteString("\nA new personal best!")
	}
	b.WriteString(formatLevelUps(res.LevelUps))
	return b.String()
}

// executeFight resolves the battle to the end
func executeFight(c *Command, s *game.Session) string {
	res, err := s.Fight()
	if err != nil {
		return battleError(err)
	}
	return formatEvents(res.Events) + "\n" + formatBattleResult(s, res)
}

// executeStrike plays one round
func executeStrike(c *Command, s *game.Session) string {
	events, res, err := s.Strike()
	if err != nil {
		return battleError(err)
	}
	out := formatEvents(events)
	if res != nil {
		return out + "\n" + formatBattleResult(s, *res)
	}
	if run, ok := s.Run(); ok && run.Battle != nil {
		out += fmt.Sprintf("\nYou: %d/%d HP  |  %s: %d/%d HP", run.HP, run.MaxHP, run.Battle.MonsterName, run.Battle.MonsterHP, run.Battle.MonsterMaxHP)
	}
	return out
}

func battleError(err error) string {
	if errors.Is(err, dungeon.ErrNoBattle) {
		return "There is nothing to fight."
	}
	return errorText(err)
}

func formatEvents(events []combat.Event) string {
	lines := make([]string, len(events))
	for i, ev := range events {
		lines[i] = ev.String()
	}
	return strings.Join(lines, "\n")
}

func formatBattleResult(s *game.Session, res game.BattleResult) string {
	if !res.Victory {
		return fmt.Sprintf("*** You have been slain after %d rounds. ***\nType 'revive' to return to town.", res.Rounds)
	}

	var b strings.Builder
	if res.Boss {
		b.WriteString(fmt.Sprintf("*** The boss falls after %d rounds! ***", res.Rounds))
	} else {
		b.WriteString(fmt.Sprintf("Victory after %d rounds.", res.Rounds))
	}
	if res.Experience > 0 {
		b.WriteString(fmt.Sprintf(" (+%d exp)", res.Experience))
	}
	if res.Equipment != nil {
		b.WriteString("\nDrop: " + res.Equipment.Describe())
	}
	if res.Material != nil {
		b.WriteString("\nDrop: " + res.Material.Name)
	}
	if run, ok := s.Run(); ok {
		b.WriteString(fmt.Sprintf("\nHP: %d / %d", run.HP, run.MaxHP))
	}
	b.WriteString(formatLevelUps(res.LevelUps))
	return b.String()
}

// executeWithdraw returns to town with the loot and saves
func executeWithdraw(c *Command, s *game.Session, h Host) string {
	loot, err := s.Withdraw()
	if err != nil {
		if errors.Is(err, dungeon.ErrRunDead) {
			return "You have fallen. Type 'revive' to return to town."
		}
		if errors.Is(err, dungeon.ErrBattlePending) {
			return "You cannot withdraw in the middle of a battle."
		}
		return errorText(err)
	}

	msg := fmt.Sprintf("You return to town with %d gold, %d materials and %d equipment.",
		loot.Gold, len(loot.Materials), len(loot.Equipment))
	return msg + autosave(s, h)
}

// executeRevive settles a dead expedition and saves
func executeRevive(c *Command, s *game.Session, h Host) string {
	lost, err := s.AcknowledgeDeath()
	if err != nil {
		if errors.Is(err, dungeon.ErrRunAlive) {
			return "You are still alive. Type 'withdraw' to return to town."
		}
		return errorText(err)
	}

	var b strings.Builder
	b.WriteString("You wake in town. Everything you gathered in the abyss is gone.")
	for _, eq := range lost {
		b.WriteString(fmt.Sprintf("\nYour %s was destroyed.", eq.Name))
	}
	return b.String() + autosave(s, h)
}

func autosave(s *game.Session, h Host) string {
	if h == nil {
		return ""
	}
	if err := h.SaveSession(s); err != nil {
		return "\nWarning: your progress could not be saved."
	}
	return ""
}

// executeLog shows the newest expedition log lines
func executeLog(c *Command, s *game.Session) string {
	run, ok := s.Run()
	if !ok {
		return "You are not on an expedition."
	}
	n := defaultLogLines
	if len(c.Args) > 0 {
		if v, err := strconv.Atoi(c.Args[0]); err == nil && v > 0 {
			n = v
		}
	}
	lines := run.Log
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}
